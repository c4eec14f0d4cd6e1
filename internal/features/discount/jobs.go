package discount

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/pkg/jobs"
)

// ExpirySweepJob deactivates discounts whose end date has passed.
func ExpirySweepJob(db *gorm.DB, logger *slog.Logger) jobs.Job {
	return jobs.Func{
		JobName: "discount-expiry",
		Run: func(ctx context.Context) error {
			deactivated, err := DeactivateExpired(db.WithContext(ctx), time.Now())
			if err != nil {
				return err
			}
			if deactivated > 0 {
				logger.Info("deactivated expired discounts", slog.Int64("count", deactivated))
			}
			return nil
		},
	}
}
