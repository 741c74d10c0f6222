package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/nissaya/reader/internal/auth"
	"github.com/nissaya/reader/internal/config"
	"github.com/nissaya/reader/internal/database"
	"github.com/nissaya/reader/internal/database/users"
)

// CreateUserCommand registers a user and prints their API token once.
type CreateUserCommand struct {
	Username     string
	Admin        bool
	DatabasePath string
}

func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)

	fs.StringVar(&cmd.Username, "username", "", "Username (required)")
	fs.BoolVar(&cmd.Admin, "admin", false, "Allow the user to edit teachings")
	fs.StringVar(&cmd.DatabasePath, "db", defaultDatabasePath(), "Path to the teachings database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a user and print a bearer token for the API.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s create-user -username sayadaw -admin\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" {
		fs.Usage()
		return fmt.Errorf("username is required")
	}

	return nil
}

func (cmd *CreateUserCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	service := auth.NewService(users.NewRepository(db.DB))
	user, token, err := service.CreateUser(context.Background(), cmd.Username, cmd.Admin)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	role := "reader"
	if user.IsAdmin {
		role = "admin"
	}
	fmt.Printf("Created %s %s (%s)\n", role, user.Username, user.ID)
	fmt.Printf("Token: %s\n", token)
	fmt.Println("Store the token now; it cannot be shown again.")
	return nil
}

// defaultDatabasePath honours DATABASE_PATH like the server does.
func defaultDatabasePath() string {
	if path := os.Getenv("DATABASE_PATH"); path != "" {
		return path
	}
	return config.DefaultDatabasePath
}
