package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/internal/features/course"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/enrollment"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/lesson"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/user"
	"github.com/mo-amir99/coursemarket-server-go/internal/testutil"
	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	db         *gorm.DB
	student    user.User
	course     course.Course
	lessons    []lesson.Lesson
	enrollment enrollment.Enrollment
}

func setup(t *testing.T, lessonCount int) fixture {
	t.Helper()
	db := testutil.NewDB(t, &user.User{}, &course.Course{}, &lesson.Lesson{}, &enrollment.Enrollment{}, &Progress{})

	provider := user.User{FullName: "Provider", Email: "provider@example.com", Password: "x", Role: types.RoleProvider}
	require.NoError(t, db.Create(&provider).Error)
	student := user.User{FullName: "Student", Email: "student@example.com", Password: "x"}
	require.NoError(t, db.Create(&student).Error)

	c, err := course.Create(db, course.CreateInput{
		Title:        "Databases",
		Description:  "Indexes and plans",
		Price:        types.NewMoneyFromInt(500),
		ThumbnailURL: "https://cdn.example.com/db.png",
		Category:     "data",
		ProviderID:   provider.ID,
	})
	require.NoError(t, err)

	lessons := make([]lesson.Lesson, 0, lessonCount)
	for i := 0; i < lessonCount; i++ {
		l, err := lesson.Create(db, lesson.CreateInput{
			CourseID: c.ID,
			Title:    fmt.Sprintf("Lesson %d", i+1),
			VideoURL: "https://video.example.com/" + fmt.Sprint(i),
			Duration: 10,
		})
		require.NoError(t, err)
		lessons = append(lessons, l)
	}

	e := enrollment.Enrollment{UserID: student.ID, CourseID: c.ID, PricePaid: c.Price}
	require.NoError(t, enrollment.Create(db, &e))

	return fixture{db: db, student: student, course: c, lessons: lessons, enrollment: e}
}

func TestMarkCompletedUpdatesEnrollment(t *testing.T) {
	f := setup(t, 3)
	ctx := context.Background()

	first, err := MarkCompleted(ctx, f.db, f.student, f.lessons[0].ID)
	require.NoError(t, err)
	assert.True(t, first.Progress.Completed)
	assert.Equal(t, 33, first.CompletionPercentage)

	again, err := MarkCompleted(ctx, f.db, f.student, f.lessons[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 33, again.CompletionPercentage)
	require.NotNil(t, again.Progress.CompletedAt)
	assert.True(t, first.Progress.CompletedAt.Equal(*again.Progress.CompletedAt))

	e, err := enrollment.Find(f.db, f.student.ID, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, 33, e.Progress)
	assert.Nil(t, e.CompletedAt)

	for _, l := range f.lessons[1:] {
		_, err := MarkCompleted(ctx, f.db, f.student, l.ID)
		require.NoError(t, err)
	}

	e, err = enrollment.Find(f.db, f.student.ID, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, e.Progress)
	assert.NotNil(t, e.CompletedAt)
	require.NotNil(t, e.LastAccessedLessonID)
	assert.Equal(t, f.lessons[2].ID, *e.LastAccessedLessonID)
}

func TestMarkAccessedCreatesRow(t *testing.T) {
	f := setup(t, 2)

	view, err := LessonProgress(f.db, f.student, f.lessons[1].ID)
	require.NoError(t, err)
	assert.Nil(t, view.Progress)

	p, err := MarkAccessed(context.Background(), f.db, f.student, f.lessons[1].ID)
	require.NoError(t, err)
	assert.False(t, p.Completed)
	assert.False(t, p.LastAccessedAt.IsZero())

	view, err = LessonProgress(f.db, f.student, f.lessons[1].ID)
	require.NoError(t, err)
	require.NotNil(t, view.Progress)
	assert.Equal(t, p.ID, view.Progress.ID)

	e, err := enrollment.Find(f.db, f.student.ID, f.course.ID)
	require.NoError(t, err)
	require.NotNil(t, e.LastAccessedLessonID)
	assert.Equal(t, f.lessons[1].ID, *e.LastAccessedLessonID)
}

func TestProgressRequiresEnrollment(t *testing.T) {
	f := setup(t, 1)
	outsider := user.User{FullName: "Outsider", Email: "outsider@example.com", Password: "x"}
	require.NoError(t, f.db.Create(&outsider).Error)

	_, err := MarkCompleted(context.Background(), f.db, outsider, f.lessons[0].ID)
	assert.ErrorIs(t, err, enrollment.ErrNotEnrolled)

	_, err = CourseProgress(f.db, outsider, f.course.ID)
	assert.ErrorIs(t, err, enrollment.ErrNotEnrolled)

	_, err = MarkAccessed(context.Background(), f.db, f.student, f.course.ID)
	assert.ErrorIs(t, err, lesson.ErrLessonNotFound)
}

func TestCourseProgressWithoutLessons(t *testing.T) {
	f := setup(t, 0)

	summary, err := CourseProgress(f.db, f.student, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.CompletionPercentage)
	assert.Empty(t, summary.Progress)
}

func TestCompletionIgnoresDeletedLessons(t *testing.T) {
	f := setup(t, 2)
	ctx := context.Background()

	_, err := MarkCompleted(ctx, f.db, f.student, f.lessons[0].ID)
	require.NoError(t, err)
	require.NoError(t, lesson.Delete(f.db, f.lessons[0].ID))

	pct, err := CompletionPercentage(f.db, f.student.ID, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, pct)
}

func TestCourseProgressHandler(t *testing.T) {
	f := setup(t, 2)
	outsider := user.User{FullName: "Outsider", Email: "outsider@example.com", Password: "x"}
	require.NoError(t, f.db.Create(&outsider).Error)

	_, err := MarkCompleted(context.Background(), f.db, f.student, f.lessons[0].ID)
	require.NoError(t, err)

	serve := func(actor user.User, method, path string) *httptest.ResponseRecorder {
		router := gin.New()
		auth := func(c *gin.Context) { user.WithContext(c, actor) }
		RegisterRoutes(router.Group("/api"), NewHandler(f.db, testutil.Logger()), auth)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}

	rec := serve(outsider, http.MethodGet, "/api/progress/course/"+f.course.ID.String())
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "You must be enrolled in this course")

	rec = serve(outsider, http.MethodPost, "/api/progress/lesson/"+f.lessons[1].ID.String()+"/complete")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(f.student, http.MethodGet, "/api/progress/course/"+f.course.ID.String())
	require.Equal(t, http.StatusOK, rec.Code)
	var summary struct {
		Data CourseSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 50, summary.Data.CompletionPercentage)
	assert.Len(t, summary.Data.Progress, 1)

	rec = serve(f.student, http.MethodGet, "/api/progress/course/not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
