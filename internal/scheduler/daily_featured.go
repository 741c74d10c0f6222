package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/datatypes"

	"github.com/nissaya/reader/internal/entities"
)

// DailyPool lists the published teachings eligible for the daily slot,
// oldest first.
type DailyPool interface {
	ListDailyPool(ctx context.Context) ([]entities.Teaching, error)
}

// DailyHistory reads past daily featured entries.
type DailyHistory interface {
	FindByDate(ctx context.Context, date datatypes.Date) (*entities.DailyFeatured, error)
	LastFeatured(ctx context.Context) (map[string]time.Time, error)
}

// Featurer writes the daily entry and knows the reader's calendar.
// catalog.Client satisfies it and invalidates the cached daily query.
type Featurer interface {
	Today() time.Time
	SetDailyFeatured(ctx context.Context, teachingID string, day time.Time, excerpt *string) (*entities.DailyFeatured, error)
}

// DailyFeaturedScheduler rotates the daily featured teaching on a cron schedule.
type DailyFeaturedScheduler struct {
	pool     DailyPool
	history  DailyHistory
	featurer Featurer
	schedule string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	rotateMu   sync.Mutex
	cancelFunc context.CancelFunc
}

func NewDailyFeaturedScheduler(pool DailyPool, history DailyHistory, featurer Featurer, schedule string, loc *time.Location) *DailyFeaturedScheduler {
	if loc == nil {
		loc = time.Local
	}
	return &DailyFeaturedScheduler{
		pool:     pool,
		history:  history,
		featurer: featurer,
		schedule: schedule,
		cron: cron.New(
			cron.WithParser(cronParser),
			cron.WithLocation(loc),
		),
	}
}

// Start registers the rotation job and runs one rotation immediately so a
// freshly started server has an entry for today.
func (s *DailyFeaturedScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.rotateLogged(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule daily rotation: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := NextRunTime(s.schedule)
	log.Printf("Daily featured scheduler: started with schedule '%s' (%s). Next run: %v",
		s.schedule, CronDescription(s.schedule), nextRun)

	go s.rotateLogged(cancelCtx)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running rotation and stops the cron loop.
func (s *DailyFeaturedScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Printf("Daily featured scheduler: stopped")
}

func (s *DailyFeaturedScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next rotation will occur.
func (s *DailyFeaturedScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// RunNow rotates synchronously. created is false when today already had an
// entry or the pool is empty; entry is nil only in the latter case.
func (s *DailyFeaturedScheduler) RunNow(ctx context.Context) (entry *entities.DailyFeatured, created bool, err error) {
	s.rotateMu.Lock()
	defer s.rotateMu.Unlock()

	today := s.featurer.Today()
	existing, err := s.history.FindByDate(ctx, entities.CalendarDate(today))
	if err != nil {
		return nil, false, fmt.Errorf("failed to read today's entry: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	pool, err := s.pool.ListDailyPool(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list daily pool: %w", err)
	}
	last, err := s.history.LastFeatured(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read featured history: %w", err)
	}

	next := pickLeastRecent(pool, last)
	if next == nil {
		return nil, false, nil
	}

	entry, err = s.featurer.SetDailyFeatured(ctx, next.ID, today, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to feature %s: %w", next.ID, err)
	}
	return entry, true, nil
}

func (s *DailyFeaturedScheduler) rotateLogged(ctx context.Context) {
	entry, created, err := s.RunNow(ctx)
	switch {
	case err != nil:
		log.Printf("Daily featured: rotation failed: %v", err)
	case entry == nil:
		log.Printf("Daily featured: no published daily teachings to feature")
	case created:
		log.Printf("Daily featured: featuring teaching %s on %s", entry.TeachingID, entry.FeaturedOn())
	default:
		log.Printf("Daily featured: %s already set, skipped", entry.FeaturedOn())
	}
}

// pickLeastRecent prefers teachings never featured, then the one featured
// longest ago. Ties keep pool order.
func pickLeastRecent(pool []entities.Teaching, last map[string]time.Time) *entities.Teaching {
	var best *entities.Teaching
	var bestAt time.Time
	for i := range pool {
		at, seen := last[pool[i].ID]
		if !seen {
			return &pool[i]
		}
		if best == nil || at.Before(bestAt) {
			best, bestAt = &pool[i], at
		}
	}
	return best
}
