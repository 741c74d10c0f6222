package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// DownloadCounter bumps the advisory download counter of a teaching.
type DownloadCounter interface {
	IncrementDownloadCount(ctx context.Context, teachingID string) error
}

// RecordDownloadTask counts one offline download of a teaching.
type RecordDownloadTask struct {
	TeachingID string `json:"teaching_id"`
}

func (t RecordDownloadTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "record_download",
		MaxAttempts: 3,
		Backoff:     10 * time.Second,
		Timeout:     30 * time.Second,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: true,
		},
	}
}

func RecordDownloadProcessor(counter DownloadCounter) backlite.QueueProcessor[RecordDownloadTask] {
	return func(ctx context.Context, task RecordDownloadTask) error {
		if counter == nil {
			return fmt.Errorf("download counter not configured")
		}
		if task.TeachingID == "" {
			return fmt.Errorf("record download: missing teaching id")
		}
		if err := counter.IncrementDownloadCount(ctx, task.TeachingID); err != nil {
			return fmt.Errorf("record download of %s: %w", task.TeachingID, err)
		}
		log.Printf("[TASK] Recorded download of teaching %s", task.TeachingID)
		return nil
	}
}

func NewRecordDownloadQueue(counter DownloadCounter) backlite.Queue {
	return backlite.NewQueue(RecordDownloadProcessor(counter))
}
