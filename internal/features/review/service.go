package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/internal/features/course"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/enrollment"
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

// CreateInput is a new review.
type CreateInput struct {
	CourseID uuid.UUID
	Rating   int
	Comment  string
}

// UpdateInput edits a review; nil fields are kept.
type UpdateInput struct {
	Rating  *int
	Comment *string
}

// Service manages reviews and keeps the course rating aggregates current.
type Service struct {
	db       *gorm.DB
	notifier Notifier
	logger   *slog.Logger
}

// NewService builds a review service.
func NewService(db *gorm.DB, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{db: db, notifier: notifier, logger: logger}
}

// ListByCourse returns a course's reviews.
func (s *Service) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]Review, error) {
	return ListByCourse(s.db.WithContext(ctx), courseID)
}

// MyReview returns the actor's review of courseID, or nil.
func (s *Service) MyReview(ctx context.Context, actor user.User, courseID uuid.UUID) (*Review, error) {
	return FindByUser(s.db.WithContext(ctx), actor.ID, courseID)
}

// Create stores the actor's review of a course they are enrolled in,
// recomputes the course rating and notifies the provider.
func (s *Service) Create(ctx context.Context, actor user.User, input CreateInput) (Review, error) {
	comment := strings.TrimSpace(input.Comment)
	if input.CourseID == uuid.Nil || input.Rating == 0 || comment == "" {
		return Review{}, ErrMissingFields
	}
	if err := validateRating(input.Rating); err != nil {
		return Review{}, err
	}
	if err := validateComment(comment); err != nil {
		return Review{}, err
	}

	db := s.db.WithContext(ctx)

	c, err := course.Get(db, input.CourseID)
	if err != nil {
		return Review{}, err
	}

	enrolled, err := enrollment.Exists(db, actor.ID, c.ID)
	if err != nil {
		return Review{}, err
	}
	if !enrolled {
		return Review{}, ErrNotEnrolled
	}

	existing, err := FindByUser(db, actor.ID, c.ID)
	if err != nil {
		return Review{}, err
	}
	if existing != nil {
		return Review{}, ErrAlreadyReviewed
	}

	r := Review{CourseID: c.ID, UserID: actor.ID, Rating: input.Rating, Comment: comment}
	if err := Create(db, &r); err != nil {
		return Review{}, err
	}
	metrics.RecordReview("create")

	if err := s.Recompute(ctx, c.ID); err != nil {
		return Review{}, err
	}

	reviewer := actor.FullName
	if reviewer == "" {
		reviewer = "A student"
	}
	courseRef := c.ID
	s.notifier.Notify(context.WithoutCancel(ctx), notification.CreateInput{
		UserID:          c.ProviderID,
		Type:            types.NotificationTypeReview,
		Title:           "New Review Received! ⭐",
		Message:         fmt.Sprintf("%s left a %d-star review on your course \"%s\".", reviewer, r.Rating, c.Title),
		Link:            fmt.Sprintf("/courses/%s/review", c.ID),
		RelatedCourseID: &courseRef,
	})

	r.User = &Reviewer{ID: actor.ID, FullName: actor.FullName, AvatarURL: actor.AvatarURL}
	return r, nil
}

// Update edits the actor's own review and recomputes the course rating.
func (s *Service) Update(ctx context.Context, actor user.User, id uuid.UUID, input UpdateInput) (Review, error) {
	db := s.db.WithContext(ctx)

	current, err := Get(db, id)
	if err != nil {
		return current, err
	}
	if current.UserID != actor.ID {
		return current, ErrNotOwnerUpdate
	}

	updates := map[string]interface{}{}
	if input.Rating != nil {
		if err := validateRating(*input.Rating); err != nil {
			return current, err
		}
		updates["rating"] = *input.Rating
	}
	if input.Comment != nil {
		comment := strings.TrimSpace(*input.Comment)
		if comment != "" {
			if err := validateComment(comment); err != nil {
				return current, err
			}
			updates["comment"] = comment
		}
	}

	if len(updates) > 0 {
		if err := db.Model(&Review{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return current, err
		}
		metrics.RecordReview("update")
		if err := s.Recompute(ctx, current.CourseID); err != nil {
			return current, err
		}
	}

	return Get(db, id)
}

// Delete removes a review. Its author and admins may delete it.
func (s *Service) Delete(ctx context.Context, actor user.User, id uuid.UUID) error {
	db := s.db.WithContext(ctx)

	current, err := Get(db, id)
	if err != nil {
		return err
	}
	if current.UserID != actor.ID && !actor.IsAdmin() {
		return ErrNotOwnerDelete
	}

	result := db.Delete(&Review{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	metrics.RecordReview("delete")

	return s.Recompute(ctx, current.CourseID)
}

// Recompute refreshes the course's average rating and review count.
func (s *Service) Recompute(ctx context.Context, courseID uuid.UUID) error {
	ctx, span := telemetry.Tracer("review").Start(ctx, "review.recompute")
	defer span.End()

	db := s.db.WithContext(ctx)
	stats, err := Aggregate(db, courseID)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return fmt.Errorf("aggregate ratings: %w", err)
	}
	span.SetAttributes(
		attribute.String("course_id", courseID.String()),
		attribute.Float64("average", stats.Average),
		attribute.Int64("total", stats.Total),
	)

	if err := course.SetRatingStats(db, courseID, stats.Average, int(stats.Total)); err != nil {
		telemetry.RecordError(ctx, err)
		s.logger.Error("rating stats not stored",
			slog.String("course_id", courseID.String()),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("store rating stats: %w", err)
	}
	return nil
}
