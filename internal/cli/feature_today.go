package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/nissaya/reader/internal/config"
	"github.com/nissaya/reader/internal/entities"
	"github.com/nissaya/reader/internal/entrypoint"
)

// FeatureTodayCommand runs one daily featured rotation outside the server.
type FeatureTodayCommand struct {
	cfg *config.Config
}

func NewFeatureTodayCommand(cfg *config.Config) *FeatureTodayCommand {
	return &FeatureTodayCommand{cfg: cfg}
}

func (cmd *FeatureTodayCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("feature-today", flag.ExitOnError)

	fs.StringVar(&cmd.cfg.Database.Path, "db", cmd.cfg.Database.Path, "Path to the teachings database")
	fs.StringVar(&cmd.cfg.Reader.Timezone, "timezone", cmd.cfg.Reader.Timezone, "IANA timezone that decides which day is today")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s feature-today [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Feature the least recently featured daily teaching unless today already has one.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *FeatureTodayCommand) Run() error {
	app, err := entrypoint.NewApp(cmd.cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	entry, created, err := app.NewRotation(cmd.cfg).RunNow(context.Background())
	if err != nil {
		return err
	}

	switch {
	case entry == nil:
		fmt.Println("No published daily teachings to feature.")
	case created:
		fmt.Printf("Featured %q on %s\n", teachingTitle(entry.Teaching), entry.FeaturedOn())
	default:
		fmt.Printf("%s already features %q\n", entry.FeaturedOn(), teachingTitle(entry.Teaching))
	}
	return nil
}

func teachingTitle(t *entities.Teaching) string {
	if t == nil {
		return "(deleted teaching)"
	}
	return t.Title
}
