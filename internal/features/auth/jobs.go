package auth

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/pkg/jobs"
)

// OTPCleanupJob removes reset codes that expired before the grace window.
func OTPCleanupJob(db *gorm.DB, grace time.Duration, logger *slog.Logger) jobs.Job {
	return jobs.Func{
		JobName: "otp-cleanup",
		Run: func(ctx context.Context) error {
			removed, err := PruneOTPs(db.WithContext(ctx), time.Now().Add(-grace))
			if err != nil {
				return err
			}
			if removed > 0 {
				logger.Info("pruned expired reset codes", slog.Int64("count", removed))
			}
			return nil
		},
	}
}
