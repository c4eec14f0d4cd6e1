package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/internal/features/course"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/enrollment"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/notification"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/user"
	"github.com/mo-amir99/coursemarket-server-go/pkg/cache"
	"github.com/mo-amir99/coursemarket-server-go/pkg/pagination"
	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
)

const (
	statsCacheKey = "admin:stats"
	statsCacheTTL = time.Minute
)

// Notifier creates best-effort notifications.
type Notifier interface {
	Notify(ctx context.Context, input notification.CreateInput) bool
}

// Service implements user management, provider approval, course moderation and platform statistics.
type Service struct {
	db       *gorm.DB
	notifier Notifier
	cache    cache.Client
	logger   *slog.Logger
}

// NewService builds the admin service. cache may be nil.
func NewService(db *gorm.DB, notifier Notifier, c cache.Client, logger *slog.Logger) *Service {
	return &Service{db: db, notifier: notifier, cache: c, logger: logger}
}

// ListUsers returns users matching filters.
func (s *Service) ListUsers(ctx context.Context, filters user.ListFilters, params pagination.Params) ([]user.User, int64, error) {
	return user.List(s.db.WithContext(ctx), filters, params)
}

// UpdateUser edits any account, including its role and status.
func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, input user.UpdateInput) (user.User, error) {
	if input.Role != nil && !input.Role.Valid() {
		return user.User{}, ErrInvalidRole
	}
	if input.Status != nil && !input.Status.Valid() {
		return user.User{}, ErrInvalidStatus
	}

	updated, err := user.Update(s.db.WithContext(ctx), id, input)
	if err != nil {
		return updated, err
	}
	s.invalidateStats(ctx)
	return updated, nil
}

// ToggleUserStatus flips an account between active and inactive. Admins cannot target themselves.
func (s *Service) ToggleUserStatus(ctx context.Context, actor user.User, id uuid.UUID) (user.User, error) {
	db := s.db.WithContext(ctx)

	target, err := user.Get(db, id)
	if err != nil {
		return target, err
	}
	if target.ID == actor.ID {
		return target, ErrSelfDeactivation
	}

	next := types.UserStatusInactive
	if target.Status != types.UserStatusActive {
		next = types.UserStatusActive
	}
	return user.Update(db, id, user.UpdateInput{Status: &next})
}

// PendingProviders lists customers waiting for provider approval.
func (s *Service) PendingProviders(ctx context.Context) ([]user.User, error) {
	var users []user.User
	err := s.db.WithContext(ctx).
		Where("status = ?", types.UserStatusPendingProvider).
		Order("created_at ASC").
		Find(&users).Error
	return users, err
}

// ApproveProvider promotes a pending customer to provider.
func (s *Service) ApproveProvider(ctx context.Context, id uuid.UUID) (user.User, error) {
	role := types.RoleProvider
	approved, err := s.resolveProviderRequest(ctx, id, &role)
	if err != nil {
		return approved, err
	}

	s.notifier.Notify(ctx, notification.CreateInput{
		UserID:  approved.ID,
		Type:    types.NotificationTypeProviderApproved,
		Title:   "Provider Request Approved! 🎉",
		Message: "Congratulations! Your provider request has been approved. You can now create and manage courses.",
		Link:    "/course/create",
	})
	return approved, nil
}

// RejectProvider returns a pending customer to active without changing their role.
func (s *Service) RejectProvider(ctx context.Context, id uuid.UUID) (user.User, error) {
	rejected, err := s.resolveProviderRequest(ctx, id, nil)
	if err != nil {
		return rejected, err
	}

	s.notifier.Notify(ctx, notification.CreateInput{
		UserID:  rejected.ID,
		Type:    types.NotificationTypeProviderRejected,
		Title:   "Provider Request Not Approved",
		Message: "Unfortunately, your provider request was not approved at this time. Please contact support for more information.",
		Link:    "/profile",
	})
	return rejected, nil
}

func (s *Service) resolveProviderRequest(ctx context.Context, id uuid.UUID, role *types.Role) (user.User, error) {
	db := s.db.WithContext(ctx)

	target, err := user.Get(db, id)
	if err != nil {
		return target, err
	}
	if target.Status != types.UserStatusPendingProvider {
		return target, ErrNoPendingRequest
	}

	active := types.UserStatusActive
	updated, err := user.Update(db, id, user.UpdateInput{Role: role, Status: &active})
	if err != nil {
		return updated, err
	}
	s.invalidateStats(ctx)
	return updated, nil
}

// ListCourses returns courses in any status.
func (s *Service) ListCourses(ctx context.Context, filters course.ListFilters, params pagination.Params) ([]course.Course, int64, error) {
	return course.List(s.db.WithContext(ctx), filters, params)
}

// PendingCourses lists courses awaiting moderation.
func (s *Service) PendingCourses(ctx context.Context) ([]course.Course, error) {
	var courses []course.Course
	err := s.db.WithContext(ctx).
		Preload("Provider").
		Where("status = ?", types.CourseStatusPending).
		Order("created_at ASC").
		Find(&courses).Error
	return courses, err
}

// ApproveCourse publishes a course and notifies its provider.
func (s *Service) ApproveCourse(ctx context.Context, id uuid.UUID) (course.Course, error) {
	db := s.db.WithContext(ctx)

	current, err := course.Get(db, id)
	if err != nil {
		return current, err
	}
	if current.Status == types.CourseStatusApproved {
		return current, course.ErrAlreadyApproved
	}

	approved, err := course.SetStatus(db, id, types.CourseStatusApproved)
	if err != nil {
		return approved, err
	}
	s.invalidateStats(ctx)

	courseRef := approved.ID
	s.notifier.Notify(ctx, notification.CreateInput{
		UserID:          approved.ProviderID,
		Type:            types.NotificationTypeCourseApproved,
		Title:           "Course Approved! ✅",
		Message:         fmt.Sprintf("Your course \"%s\" has been approved and is now live on the platform!", approved.Title),
		Link:            fmt.Sprintf("/course/%s", approved.ID),
		RelatedCourseID: &courseRef,
	})
	return approved, nil
}

// RejectCourse marks a course rejected and notifies its provider.
func (s *Service) RejectCourse(ctx context.Context, id uuid.UUID) (course.Course, error) {
	rejected, err := course.SetStatus(s.db.WithContext(ctx), id, types.CourseStatusRejected)
	if err != nil {
		return rejected, err
	}
	s.invalidateStats(ctx)

	courseRef := rejected.ID
	s.notifier.Notify(ctx, notification.CreateInput{
		UserID:          rejected.ProviderID,
		Type:            types.NotificationTypeCourseRejected,
		Title:           "Course Not Approved",
		Message:         fmt.Sprintf("Your course \"%s\" was not approved. Please review our course guidelines and resubmit after making necessary changes.", rejected.Title),
		Link:            fmt.Sprintf("/course/%s/edit", rejected.ID),
		RelatedCourseID: &courseRef,
	})
	return rejected, nil
}

// UserStats counts accounts by role and status.
type UserStats struct {
	Total            int64 `json:"total"`
	Customers        int64 `json:"customers"`
	Providers        int64 `json:"providers"`
	PendingProviders int64 `json:"pendingProviders"`
}

// CourseStats counts courses by moderation status.
type CourseStats struct {
	Total    int64 `json:"total"`
	Approved int64 `json:"approved"`
	Pending  int64 `json:"pending"`
	Rejected int64 `json:"rejected"`
}

// Stats is the platform overview. Revenue sums the current price of each
// enrolled course; PaidRevenue sums what enrollments actually paid.
type Stats struct {
	Users       UserStats   `json:"users"`
	Courses     CourseStats `json:"courses"`
	Enrollments int64       `json:"enrollments"`
	Revenue     types.Money `json:"revenue"`
	PaidRevenue types.Money `json:"paidRevenue"`
}

// Stats returns the platform overview, cached briefly.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	if s.cache != nil {
		err := cache.GetJSON(ctx, s.cache, statsCacheKey, &stats)
		if err == nil {
			return stats, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("admin stats cache read failed", slog.String("error", err.Error()))
		}
	}

	stats, err := s.computeStats(s.db.WithContext(ctx))
	if err != nil {
		return Stats{}, err
	}

	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, statsCacheKey, stats, statsCacheTTL); err != nil {
			s.logger.Warn("admin stats cache write failed", slog.String("error", err.Error()))
		}
	}
	return stats, nil
}

func (s *Service) computeStats(db *gorm.DB) (Stats, error) {
	var (
		stats Stats
		err   error
	)

	counts := []struct {
		dest  *int64
		count func() (int64, error)
	}{
		{&stats.Users.Total, func() (int64, error) { return countAll(db, &user.User{}) }},
		{&stats.Users.Customers, func() (int64, error) { return user.CountBy(db, "role", types.RoleCustomer) }},
		{&stats.Users.Providers, func() (int64, error) { return user.CountBy(db, "role", types.RoleProvider) }},
		{&stats.Users.PendingProviders, func() (int64, error) { return user.CountBy(db, "status", types.UserStatusPendingProvider) }},
		{&stats.Courses.Total, func() (int64, error) { return course.CountByStatus(db, "") }},
		{&stats.Courses.Approved, func() (int64, error) { return course.CountByStatus(db, types.CourseStatusApproved) }},
		{&stats.Courses.Pending, func() (int64, error) { return course.CountByStatus(db, types.CourseStatusPending) }},
		{&stats.Courses.Rejected, func() (int64, error) { return course.CountByStatus(db, types.CourseStatusRejected) }},
		{&stats.Enrollments, func() (int64, error) { return enrollment.Count(db) }},
	}
	for _, c := range counts {
		if *c.dest, err = c.count(); err != nil {
			return Stats{}, err
		}
	}

	if stats.Revenue, err = enrollment.Revenue(db); err != nil {
		return Stats{}, err
	}
	if stats.PaidRevenue, err = enrollment.PaidRevenue(db); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func countAll(db *gorm.DB, model interface{}) (int64, error) {
	var count int64
	err := db.Model(model).Count(&count).Error
	return count, err
}

func (s *Service) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, statsCacheKey); err != nil {
		s.logger.Warn("admin stats cache invalidation failed", slog.String("error", err.Error()))
	}
}
