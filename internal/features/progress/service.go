package progress

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/internal/features/enrollment"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/lesson"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/user"
	"github.com/mo-amir99/coursemarket-server-go/pkg/database"
	"github.com/mo-amir99/coursemarket-server-go/pkg/metrics"
	"github.com/mo-amir99/coursemarket-server-go/pkg/telemetry"
)

// CourseSummary is a user's progress through one course.
type CourseSummary struct {
	Progress             []Progress `json:"progress"`
	CompletionPercentage int        `json:"completionPercentage"`
}

// CompletionResult is returned after a lesson is completed.
type CompletionResult struct {
	Progress             Progress `json:"progress"`
	CompletionPercentage int      `json:"completionPercentage"`
}

// LessonView pairs a lesson with the user's progress on it, if any.
type LessonView struct {
	Lesson   lesson.Lesson `json:"lesson"`
	Progress *Progress     `json:"progress"`
}

// CourseProgress lists the actor's progress rows in courseID with the completion percentage.
func CourseProgress(db *gorm.DB, actor user.User, courseID uuid.UUID) (CourseSummary, error) {
	if _, err := enrollment.Find(db, actor.ID, courseID); err != nil {
		return CourseSummary{}, err
	}

	rows, err := ListByCourse(db, actor.ID, courseID)
	if err != nil {
		return CourseSummary{}, err
	}
	pct, err := CompletionPercentage(db, actor.ID, courseID)
	if err != nil {
		return CourseSummary{}, err
	}
	return CourseSummary{Progress: rows, CompletionPercentage: pct}, nil
}

// LessonProgress returns a lesson together with the actor's progress on it.
func LessonProgress(db *gorm.DB, actor user.User, lessonID uuid.UUID) (LessonView, error) {
	l, err := lesson.Get(db, lessonID)
	if err != nil {
		return LessonView{}, err
	}
	if _, err := enrollment.Find(db, actor.ID, l.CourseID); err != nil {
		return LessonView{}, err
	}

	p, err := Find(db, actor.ID, lessonID)
	if err != nil {
		return LessonView{}, err
	}
	return LessonView{Lesson: l, Progress: p}, nil
}

// MarkAccessed records that the actor opened a lesson, creating the progress row on first access.
func MarkAccessed(ctx context.Context, db *gorm.DB, actor user.User, lessonID uuid.UUID) (Progress, error) {
	db = db.WithContext(ctx)

	l, err := lesson.Get(db, lessonID)
	if err != nil {
		return Progress{}, err
	}
	e, err := enrollment.Find(db, actor.ID, l.CourseID)
	if err != nil {
		return Progress{}, err
	}

	now := time.Now()
	p, err := upsert(db, actor.ID, l, func(p *Progress) { p.LastAccessedAt = now })
	if err != nil {
		return Progress{}, err
	}

	if err := enrollment.TouchLesson(db, e.ID, l.ID); err != nil {
		return Progress{}, err
	}
	return p, nil
}

// MarkCompleted completes a lesson for the actor and refreshes the enrollment's
// progress bookkeeping. Completing an already completed lesson changes nothing
// but the returned percentage.
func MarkCompleted(ctx context.Context, db *gorm.DB, actor user.User, lessonID uuid.UUID) (CompletionResult, error) {
	ctx, span := telemetry.Tracer("progress").Start(ctx, "progress.complete")
	defer span.End()
	span.SetAttributes(attribute.String("lesson_id", lessonID.String()))

	db = db.WithContext(ctx)

	l, err := lesson.Get(db, lessonID)
	if err != nil {
		return CompletionResult{}, err
	}
	e, err := enrollment.Find(db, actor.ID, l.CourseID)
	if err != nil {
		return CompletionResult{}, err
	}

	now := time.Now()
	firstCompletion := false
	p, err := upsert(db, actor.ID, l, func(p *Progress) {
		if p.Completed {
			return
		}
		firstCompletion = true
		p.Completed = true
		p.CompletedAt = &now
		p.LastAccessedAt = now
	})
	if err != nil {
		telemetry.RecordError(ctx, err)
		return CompletionResult{}, err
	}
	if firstCompletion {
		metrics.RecordLessonCompletion()
	}

	pct, err := CompletionPercentage(db, actor.ID, l.CourseID)
	if err != nil {
		return CompletionResult{}, err
	}

	completedAt := e.CompletedAt
	switch {
	case pct < 100:
		completedAt = nil
	case completedAt == nil:
		completedAt = &now
	}
	err = enrollment.RecordProgress(db, e.ID, enrollment.ProgressUpdate{
		Percentage:   pct,
		LastLessonID: l.ID,
		CompletedAt:  completedAt,
	})
	if err != nil {
		return CompletionResult{}, err
	}

	span.SetAttributes(attribute.Int("completion_percentage", pct))
	return CompletionResult{Progress: p, CompletionPercentage: pct}, nil
}

// upsert loads or creates the user's progress row for l and applies mutate.
// A concurrent first insert loses to the unique index and is retried as an update.
func upsert(db *gorm.DB, userID uuid.UUID, l lesson.Lesson, mutate func(*Progress)) (Progress, error) {
	existing, err := Find(db, userID, l.ID)
	if err != nil {
		return Progress{}, err
	}

	if existing == nil {
		p := Progress{UserID: userID, CourseID: l.CourseID, LessonID: l.ID, LastAccessedAt: time.Now()}
		mutate(&p)
		err := db.Create(&p).Error
		if err == nil {
			return p, nil
		}
		if !database.IsUniqueViolation(err) {
			return Progress{}, err
		}
		if existing, err = Find(db, userID, l.ID); err != nil {
			return Progress{}, err
		}
		if existing == nil {
			return Progress{}, gorm.ErrRecordNotFound
		}
	}

	mutate(existing)
	err = db.Model(existing).Select("completed", "completed_at", "last_accessed_at").Updates(existing).Error
	if err != nil {
		return Progress{}, err
	}
	return *existing, nil
}
