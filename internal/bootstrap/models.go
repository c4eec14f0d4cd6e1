package bootstrap

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/internal/features/auth"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/course"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/discount"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/enrollment"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/lesson"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/notification"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/progress"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/review"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/user"
	"github.com/mo-amir99/coursemarket-server-go/pkg/database/migrations"
)

// Models lists every persisted model in dependency order.
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&course.Course{},
		&lesson.Lesson{},
		&discount.Discount{},
		&enrollment.Enrollment{},
		&progress.Progress{},
		&review.Review{},
		&notification.Notification{},
		&auth.PasswordResetOTP{},
	}
}

// Postgres-only guards mirroring the validation the services already apply.
var checkConstraints = []struct {
	table, name, expr string
}{
	{"courses", "chk_courses_price", "price >= 0"},
	{"reviews", "chk_reviews_rating", "rating BETWEEN 1 AND 5"},
	{"enrollments", "chk_enrollments_progress", "progress BETWEEN 0 AND 100"},
	{"discounts", "chk_discounts_value", "value >= 0"},
	{"discounts", "chk_discounts_used", "max_uses IS NULL OR used_count <= max_uses"},
}

// RegisterMigrations adds the schema migrations to the registry. Calling it twice is harmless.
func RegisterMigrations() {
	migrations.Register("0001_schema", func(db *gorm.DB) error {
		return db.AutoMigrate(Models()...)
	})
	migrations.Register("0002_check_constraints", func(db *gorm.DB) error {
		if db.Dialector.Name() != "postgres" {
			return nil
		}
		for _, c := range checkConstraints {
			stmt := fmt.Sprintf(`DO $$ BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN
		ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s);
	END IF;
END $$;`, c.name, c.table, c.name, c.expr)
			if err := db.Exec(stmt).Error; err != nil {
				return fmt.Errorf("constraint %s: %w", c.name, err)
			}
		}
		return nil
	})
}
