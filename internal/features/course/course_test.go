package course

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursemarket-server-go/internal/features/lesson"
	"github.com/mo-amir99/coursemarket-server-go/internal/features/user"
	"github.com/mo-amir99/coursemarket-server-go/internal/testutil"
	"github.com/mo-amir99/coursemarket-server-go/pkg/pagination"
	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	db       *gorm.DB
	provider user.User
	other    user.User
	admin    user.User
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewDB(t, &user.User{}, &Course{}, &lesson.Lesson{})
	require.NoError(t, db.Exec("CREATE TABLE enrollments (id TEXT PRIMARY KEY, course_id TEXT NOT NULL)").Error)
	require.NoError(t, db.Exec("CREATE TABLE discounts (id TEXT PRIMARY KEY, course_id TEXT NOT NULL)").Error)

	provider := user.User{FullName: "Provider", Email: "provider@example.com", Password: "x", Role: types.RoleProvider}
	require.NoError(t, db.Create(&provider).Error)
	other := user.User{FullName: "Other", Email: "other@example.com", Password: "x", Role: types.RoleProvider}
	require.NoError(t, db.Create(&other).Error)
	admin := user.User{FullName: "Admin", Email: "admin@example.com", Password: "x", Role: types.RoleAdmin}
	require.NoError(t, db.Create(&admin).Error)

	return fixture{db: db, provider: provider, other: other, admin: admin}
}

func (f fixture) course(t *testing.T, title string, price int64, status types.CourseStatus) Course {
	t.Helper()
	c, err := CreateForProvider(f.db, f.provider, CreateInput{
		Title:        title,
		Description:  title + " explained",
		Price:        types.NewMoneyFromInt(price),
		ThumbnailURL: "https://cdn.example.com/thumb.png",
		Category:     "programming",
	})
	require.NoError(t, err)
	if status != types.CourseStatusPending {
		c, err = SetStatus(f.db, c.ID, status)
		require.NoError(t, err)
	}
	return c
}

func TestCreateValidation(t *testing.T) {
	f := setup(t)

	created := f.course(t, "Go Basics", 50, types.CourseStatusPending)
	assert.Equal(t, types.CourseStatusPending, created.Status)
	assert.Equal(t, f.provider.ID, created.ProviderID)
	assert.Zero(t, created.EnrollmentCount)

	tests := []struct {
		name  string
		input CreateInput
		want  error
	}{
		{"missing category", CreateInput{Title: "A", Description: "B", ThumbnailURL: "t"}, ErrMissingFields},
		{"negative price", CreateInput{Title: "A", Description: "B", ThumbnailURL: "t", Category: "c", Price: types.NewMoneyFromInt(-1)}, ErrNegativePrice},
		{"duplicate title", CreateInput{Title: "Go Basics", Description: "B", ThumbnailURL: "t", Category: "c"}, ErrTitleTaken},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CreateForProvider(f.db, f.provider, tc.input)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUpdateReopensRejectedCourse(t *testing.T) {
	f := setup(t)
	c := f.course(t, "Rust in Practice", 80, types.CourseStatusRejected)

	title := "Rust in Production"
	updated, err := UpdateForProvider(f.db, f.provider, c.ID, UpdateInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, types.CourseStatusPending, updated.Status)

	_, err = UpdateForProvider(f.db, f.other, c.ID, UpdateInput{Title: &title})
	assert.ErrorIs(t, err, ErrNotOwnerUpdate)
}

func TestVisibilityOfUnapprovedCourses(t *testing.T) {
	f := setup(t)
	pending := f.course(t, "Hidden Draft", 10, types.CourseStatusPending)

	_, err := GetVisible(f.db, nil, pending.ID)
	assert.ErrorIs(t, err, ErrCourseUnavailable)
	_, err = GetVisible(f.db, &f.other, pending.ID)
	assert.ErrorIs(t, err, ErrCourseUnavailable)

	for _, viewer := range []user.User{f.provider, f.admin} {
		got, err := GetVisible(f.db, &viewer, pending.ID)
		require.NoError(t, err)
		assert.Equal(t, pending.ID, got.ID)
	}

	_, err = GetVisible(f.db, nil, uuid.New())
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestGetDetailedOrdersLessons(t *testing.T) {
	f := setup(t)
	c := f.course(t, "Databases", 30, types.CourseStatusApproved)

	for _, title := range []string{"Intro", "Indexes", "Transactions"} {
		_, err := lesson.Create(f.db, lesson.CreateInput{CourseID: c.ID, Title: title, VideoURL: "https://videos.example.com/" + title})
		require.NoError(t, err)
	}

	got, err := GetVisible(f.db, nil, c.ID)
	require.NoError(t, err)
	require.Len(t, got.Lessons, 3)
	assert.Equal(t, "Intro", got.Lessons[0].Title)
	assert.Equal(t, 3, got.Lessons[2].Order)
	require.NotNil(t, got.Provider)
	assert.Equal(t, "Provider", got.Provider.FullName)
}

func TestListFiltersAndSorts(t *testing.T) {
	f := setup(t)
	f.course(t, "Cheap Course", 10, types.CourseStatusApproved)
	f.course(t, "Mid Course", 40, types.CourseStatusApproved)
	f.course(t, "Pricey Course", 90, types.CourseStatusApproved)
	f.course(t, "Pending Course", 20, types.CourseStatusPending)

	approved := types.CourseStatusApproved
	params := pagination.New("1", "10")

	courses, total, err := List(f.db, ListFilters{Status: &approved, Sort: SortPriceAsc}, params)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, courses, 3)
	assert.Equal(t, "Cheap Course", courses[0].Title)
	assert.Equal(t, "Pricey Course", courses[2].Title)

	low, high := types.NewMoneyFromInt(20), types.NewMoneyFromInt(50)
	courses, total, err = List(f.db, ListFilters{Status: &approved, MinPrice: &low, MaxPrice: &high}, params)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Mid Course", courses[0].Title)

	courses, _, err = List(f.db, ListFilters{Status: &approved, Search: "PRICEY"}, params)
	require.NoError(t, err)
	require.Len(t, courses, 1)

	courses, total, err = List(f.db, ListFilters{ProviderID: &f.provider.ID}, pagination.New("2", "3"))
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, courses, 1)
}

func TestDeleteRefusedWithEnrollments(t *testing.T) {
	f := setup(t)
	c := f.course(t, "Popular", 10, types.CourseStatusApproved)
	_, err := lesson.Create(f.db, lesson.CreateInput{CourseID: c.ID, Title: "One", VideoURL: "https://videos.example.com/1"})
	require.NoError(t, err)

	assert.ErrorIs(t, DeleteForProvider(f.db, f.other, c.ID), ErrNotOwnerDelete)

	require.NoError(t, f.db.Exec("INSERT INTO enrollments (id, course_id) VALUES (?, ?)", uuid.New(), c.ID).Error)
	assert.ErrorIs(t, DeleteForProvider(f.db, f.provider, c.ID), ErrHasEnrollments)

	require.NoError(t, f.db.Exec("DELETE FROM enrollments").Error)
	require.NoError(t, f.db.Exec("INSERT INTO discounts (id, course_id) VALUES (?, ?)", uuid.New(), c.ID).Error)
	require.NoError(t, DeleteForProvider(f.db, f.provider, c.ID))

	_, err = Get(f.db, c.ID)
	assert.ErrorIs(t, err, ErrCourseNotFound)
	remaining, err := lesson.CountByCourse(f.db, c.ID)
	require.NoError(t, err)
	assert.Zero(t, remaining)
	var discounts int64
	require.NoError(t, f.db.Table("discounts").Count(&discounts).Error)
	assert.Zero(t, discounts)
}

func TestCounters(t *testing.T) {
	f := setup(t)
	c := f.course(t, "Counted", 10, types.CourseStatusApproved)

	require.NoError(t, IncrementEnrollmentCount(f.db, c.ID))
	require.NoError(t, IncrementEnrollmentCount(f.db, c.ID))
	require.NoError(t, SetRatingStats(f.db, c.ID, 4.5, 2))

	got, err := Get(f.db, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.EnrollmentCount)
	assert.Equal(t, 4.5, got.AverageRating)
	assert.Equal(t, 2, got.TotalReviews)

	count, err := CountByStatus(f.db, types.CourseStatusApproved)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	_, err = SetStatus(f.db, uuid.New(), types.CourseStatusApproved)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestHandlerCatalogAndCreate(t *testing.T) {
	f := setup(t)
	f.course(t, "Listed", 10, types.CourseStatusApproved)
	f.course(t, "Unlisted", 10, types.CourseStatusPending)

	router := gin.New()
	asProvider := []gin.HandlerFunc{func(c *gin.Context) { user.WithContext(c, f.provider) }}
	noop := func(c *gin.Context) {}
	RegisterRoutes(router.Group("/api"), NewHandler(f.db, testutil.Logger()), noop, asProvider)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/courses?sort=price_desc", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=30", rec.Header().Get("Cache-Control"))

	var listed struct {
		Count      int                 `json:"count"`
		Data       []Course            `json:"data"`
		Pagination pagination.Metadata `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Equal(t, 1, listed.Count)
	assert.Equal(t, "Listed", listed.Data[0].Title)

	body := `{"title":"Fresh","description":"New material","price":25,"thumbnailUrl":"https://cdn.example.com/f.png","category":"design"}`
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/courses", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "Waiting for admin approval")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/courses/provider/my-courses", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Equal(t, 3, listed.Count)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/courses/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
