package enrollment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/internal/features/course"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/discount"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/notification"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/user"
	"github.com/mo-amir99/coursemarket-server-go/pkg/metrics"
	"github.com/mo-amir99/coursemarket-server-go/pkg/telemetry"
	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
)

// Notifier creates best-effort notifications.
type Notifier interface {
	Notify(ctx context.Context, input notification.CreateInput) bool
}

// Service enrolls users in courses.
type Service struct {
	db       *gorm.DB
	notifier Notifier
	logger   *slog.Logger
}

// NewService builds an enrollment service.
func NewService(db *gorm.DB, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{db: db, notifier: notifier, logger: logger}
}

// Enroll creates the actor's enrollment in courseID, redeeming discountCode
// when it is usable. A bad or exhausted code silently falls back to the full
// price. The steps run in sequence without a transaction: the discount use,
// the enrollment row, the course counter, then two notifications.
func (s *Service) Enroll(ctx context.Context, actor user.User, courseID uuid.UUID, discountCode string) (Enrollment, error) {
	ctx, span := telemetry.Tracer("enrollment").Start(ctx, "enrollment.enroll")
	defer span.End()
	span.SetAttributes(
		attribute.String("course_id", courseID.String()),
		attribute.String("user_id", actor.ID.String()),
	)

	db := s.db.WithContext(ctx)

	c, err := course.Get(db, courseID)
	if err != nil {
		return Enrollment{}, err
	}
	if c.Status != types.CourseStatusApproved {
		return Enrollment{}, ErrCourseUnavailable
	}

	enrolled, err := Exists(db, actor.ID, c.ID)
	if err != nil {
		return Enrollment{}, err
	}
	if enrolled {
		return Enrollment{}, ErrAlreadyEnrolled
	}

	redemption := discount.Redeem(ctx, s.db, s.logger, discountCode, c.ID, c.Price)

	e := Enrollment{
		UserID:          actor.ID,
		CourseID:        c.ID,
		PricePaid:       redemption.Price,
		DiscountApplied: redemption.Snapshot,
	}
	if err := Create(db, &e); err != nil {
		telemetry.RecordError(ctx, err)
		return Enrollment{}, err
	}

	if err := course.IncrementEnrollmentCount(db, c.ID); err != nil {
		telemetry.RecordError(ctx, err)
		return Enrollment{}, fmt.Errorf("increment enrollment count: %w", err)
	}

	metrics.RecordEnrollment(redemption.Snapshot != nil)
	span.SetAttributes(attribute.String("discount_outcome", redemption.Outcome))

	// The enrollment is stored; a client hanging up must not drop its notifications.
	notifyCtx := context.WithoutCancel(ctx)
	courseRef := c.ID
	s.notifier.Notify(notifyCtx, notification.CreateInput{
		UserID:          actor.ID,
		Type:            types.NotificationTypeEnrollment,
		Title:           "Enrollment Successful!",
		Message:         fmt.Sprintf("You have successfully enrolled in \"%s\". Start learning now!", c.Title),
		Link:            fmt.Sprintf("/courses/%s/lessons", c.ID),
		RelatedCourseID: &courseRef,
	})
	s.notifier.Notify(notifyCtx, notification.CreateInput{
		UserID:          c.ProviderID,
		Type:            types.NotificationTypeEnrollment,
		Title:           "New Student Enrolled!",
		Message:         fmt.Sprintf("A new student has enrolled in your course \"%s\".", c.Title),
		Link:            fmt.Sprintf("/course/%s", c.ID),
		RelatedCourseID: &courseRef,
	})

	return e, nil
}

// Enrolled lists the actor's enrollments with course and provider details.
func (s *Service) Enrolled(ctx context.Context, actor user.User) ([]Enrollment, error) {
	return ListByUser(s.db.WithContext(ctx), actor.ID)
}
