package notification

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/pkg/jobs"
)

// RetentionJob deletes read notifications older than retentionDays.
func RetentionJob(db *gorm.DB, retentionDays int, logger *slog.Logger) jobs.Job {
	return jobs.Func{
		JobName: "notification-retention",
		Run: func(ctx context.Context) error {
			cutoff := time.Now().AddDate(0, 0, -retentionDays)
			removed, err := PruneRead(db.WithContext(ctx), cutoff)
			if err != nil {
				return err
			}
			if removed > 0 {
				logger.Info("pruned read notifications",
					slog.Int64("removed", removed),
					slog.Time("cutoff", cutoff),
				)
			}
			return nil
		},
	}
}
