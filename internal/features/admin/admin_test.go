package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/internal/features/course"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/enrollment"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/lesson"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/notification"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/user"
	"github.com/mo-amir99/coursemarket-server-go/internal/testutil"
	"github.com/mo-amir99/coursemarket-server-go/pkg/apperrors"
	"github.com/mo-amir99/coursemarket-server-go/pkg/cache"
	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingNotifier struct {
	sent []notification.CreateInput
}

func (r *recordingNotifier) Notify(_ context.Context, input notification.CreateInput) bool {
	r.sent = append(r.sent, input)
	return true
}

type fixture struct {
	db       *gorm.DB
	admin    user.User
	provider user.User
	notifier *recordingNotifier
	svc      *Service
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewDB(t, &user.User{}, &course.Course{}, &lesson.Lesson{}, &enrollment.Enrollment{})

	admin := user.User{FullName: "Admin", Email: "admin@example.com", Password: "x", Role: types.RoleAdmin}
	require.NoError(t, db.Create(&admin).Error)
	provider := user.User{FullName: "Provider", Email: "provider@example.com", Password: "x", Role: types.RoleProvider}
	require.NoError(t, db.Create(&provider).Error)

	notifier := &recordingNotifier{}
	return fixture{
		db:       db,
		admin:    admin,
		provider: provider,
		notifier: notifier,
		svc:      NewService(db, notifier, cache.NewMemoryCache(), testutil.Logger()),
	}
}

func (f fixture) course(t *testing.T, title string, price int64) course.Course {
	t.Helper()
	c, err := course.Create(f.db, course.CreateInput{
		Title:        title,
		Description:  "About " + title,
		Price:        types.NewMoneyFromInt(price),
		ThumbnailURL: "https://cdn.example.com/t.png",
		Category:     "programming",
		ProviderID:   f.provider.ID,
	})
	require.NoError(t, err)
	return c
}

func TestProviderRequestLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	applicant := user.User{FullName: "Applicant", Email: "applicant@example.com", Password: "x", Status: types.UserStatusPendingProvider}
	require.NoError(t, f.db.Create(&applicant).Error)

	pending, err := f.svc.PendingProviders(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, applicant.ID, pending[0].ID)

	approved, err := f.svc.ApproveProvider(ctx, applicant.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RoleProvider, approved.Role)
	assert.Equal(t, types.UserStatusActive, approved.Status)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, types.NotificationTypeProviderApproved, f.notifier.sent[0].Type)
	assert.Equal(t, "Provider Request Approved! 🎉", f.notifier.sent[0].Title)
	assert.Equal(t, "/course/create", f.notifier.sent[0].Link)

	_, err = f.svc.ApproveProvider(ctx, applicant.ID)
	assert.ErrorIs(t, err, ErrNoPendingRequest)
}

func TestRejectProviderKeepsRole(t *testing.T) {
	f := setup(t)

	applicant := user.User{FullName: "Applicant", Email: "applicant@example.com", Password: "x", Status: types.UserStatusPendingProvider}
	require.NoError(t, f.db.Create(&applicant).Error)

	rejected, err := f.svc.RejectProvider(context.Background(), applicant.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RoleCustomer, rejected.Role)
	assert.Equal(t, types.UserStatusActive, rejected.Status)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, types.NotificationTypeProviderRejected, f.notifier.sent[0].Type)
	assert.Equal(t, "/profile", f.notifier.sent[0].Link)
}

func TestToggleUserStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	toggled, err := f.svc.ToggleUserStatus(ctx, f.admin, f.provider.ID)
	require.NoError(t, err)
	assert.Equal(t, types.UserStatusInactive, toggled.Status)

	toggled, err = f.svc.ToggleUserStatus(ctx, f.admin, f.provider.ID)
	require.NoError(t, err)
	assert.Equal(t, types.UserStatusActive, toggled.Status)

	_, err = f.svc.ToggleUserStatus(ctx, f.admin, f.admin.ID)
	assert.ErrorIs(t, err, ErrSelfDeactivation)
}

func TestUpdateUserRejectsUnknownRole(t *testing.T) {
	f := setup(t)

	bogus := types.Role("superuser")
	_, err := f.svc.UpdateUser(context.Background(), f.provider.ID, user.UpdateInput{Role: &bogus})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestCourseModeration(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := f.course(t, "Distributed Systems", 300)

	pending, err := f.svc.PendingCourses(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.NotNil(t, pending[0].Provider)

	approved, err := f.svc.ApproveCourse(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, types.CourseStatusApproved, approved.Status)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "Course Approved! ✅", f.notifier.sent[0].Title)
	assert.Equal(t, `Your course "Distributed Systems" has been approved and is now live on the platform!`, f.notifier.sent[0].Message)
	assert.Equal(t, f.provider.ID, f.notifier.sent[0].UserID)

	_, err = f.svc.ApproveCourse(ctx, c.ID)
	assert.ErrorIs(t, err, course.ErrAlreadyApproved)

	rejected, err := f.svc.RejectCourse(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, types.CourseStatusRejected, rejected.Status)
	assert.Equal(t, "/course/"+c.ID.String()+"/edit", f.notifier.sent[1].Link)
}

func TestStatsReportsBothRevenueFigures(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := f.course(t, "Databases", 300)

	for i, paid := range []int64{300, 240} {
		student := user.User{FullName: "Student", Email: []string{"a@example.com", "b@example.com"}[i], Password: "x"}
		require.NoError(t, f.db.Create(&student).Error)
		require.NoError(t, enrollment.Create(f.db, &enrollment.Enrollment{
			UserID:    student.ID,
			CourseID:  c.ID,
			PricePaid: types.NewMoneyFromInt(paid),
		}))
	}

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Users.Total)
	assert.Equal(t, int64(2), stats.Users.Customers)
	assert.Equal(t, int64(1), stats.Users.Providers)
	assert.Equal(t, int64(1), stats.Courses.Total)
	assert.Equal(t, int64(1), stats.Courses.Pending)
	assert.Equal(t, int64(2), stats.Enrollments)
	assert.True(t, stats.Revenue.Equal(types.NewMoneyFromInt(600)), stats.Revenue.String())
	assert.True(t, stats.PaidRevenue.Equal(types.NewMoneyFromInt(540)), stats.PaidRevenue.String())
}

func TestStatsCacheInvalidatedByModeration(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := f.course(t, "Networking", 100)

	first, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Courses.Pending)

	f.course(t, "Security", 100)
	cached, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cached.Courses.Total)

	_, err = f.svc.ApproveCourse(ctx, c.ID)
	require.NoError(t, err)

	fresh, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), fresh.Courses.Total)
	assert.Equal(t, int64(1), fresh.Courses.Approved)
	assert.Equal(t, int64(1), fresh.Courses.Pending)
}

func TestTailLogAndClear(t *testing.T) {
	dir := t.TempDir()
	var lines []string
	for i := 0; i < 30; i++ {
		lines = append(lines, strings.Repeat("x", i+1))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "info.log"), []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "error.log"), []byte("boom\n"), 0o644))

	tail, err := TailLog(dir, "info", 5)
	require.NoError(t, err)
	assert.Equal(t, 10, tail.Lines)
	assert.Equal(t, lines[29], tail.Log[9])
	assert.Equal(t, lines[20], tail.Log[0])

	tail, err = TailLog(dir, "bogus", 0)
	require.NoError(t, err)
	assert.Equal(t, "info", tail.Type)
	assert.Equal(t, 30, tail.Lines)

	cleared, err := ClearLogs(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, cleared)

	info, err := os.Stat(filepath.Join(dir, "info.log"))
	require.NoError(t, err)
	assert.Zero(t, info.Size())

	_, err = TailLog(filepath.Join(dir, "missing"), "error", 10)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestHandlerRoutes(t *testing.T) {
	f := setup(t)
	f.course(t, "Algorithms", 50)

	router := gin.New()
	asAdmin := []gin.HandlerFunc{func(c *gin.Context) { user.WithContext(c, f.admin) }}
	RegisterRoutes(router.Group("/api"), NewHandler(f.svc, f.db, t.TempDir(), testutil.Logger()), asAdmin)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/courses?status=pending", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Count      int `json:"count"`
		Pagination struct {
			TotalItems int64 `json:"totalItems"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Equal(t, 1, listed.Count)
	assert.Equal(t, int64(1), listed.Pagination.TotalItems)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/courses?status=archived", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/admin/users/"+f.admin.ID.String()+"/toggle-status", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "You cannot deactivate your own account")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		Data Stats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.Data.Courses.Pending)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/system", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "goroutines")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/logs", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
