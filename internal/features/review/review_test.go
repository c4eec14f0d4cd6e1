package review

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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
	"github.com/mo-amir99/coursemarket-server-go/pkg/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingNotifier struct {
	sent    []notification.CreateInput
	ctxErrs []error
	onSend  func()
}

func (r *recordingNotifier) Notify(ctx context.Context, input notification.CreateInput) bool {
	if r.onSend != nil {
		r.onSend()
	}
	r.sent = append(r.sent, input)
	r.ctxErrs = append(r.ctxErrs, ctx.Err())
	return true
}

type fixture struct {
	db       *gorm.DB
	provider user.User
	course   course.Course
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewDB(t, &user.User{}, &course.Course{}, &lesson.Lesson{}, &enrollment.Enrollment{}, &Review{})

	provider := user.User{FullName: "Provider", Email: "provider@example.com", Password: "x", Role: types.RoleProvider}
	require.NoError(t, db.Create(&provider).Error)

	c, err := course.Create(db, course.CreateInput{
		Title:        "Compilers",
		Description:  "Parsing and code generation",
		Price:        types.NewMoneyFromInt(300),
		ThumbnailURL: "https://cdn.example.com/c.png",
		Category:     "programming",
		ProviderID:   provider.ID,
	})
	require.NoError(t, err)

	return fixture{db: db, provider: provider, course: c}
}

func (f fixture) student(t *testing.T, name, email string, enrolled bool) user.User {
	t.Helper()
	u := user.User{FullName: name, Email: email, Password: "x"}
	require.NoError(t, f.db.Create(&u).Error)
	if enrolled {
		require.NoError(t, enrollment.Create(f.db, &enrollment.Enrollment{UserID: u.ID, CourseID: f.course.ID}))
	}
	return u
}

func (f fixture) rating(t *testing.T) (float64, int) {
	t.Helper()
	c, err := course.Get(f.db, f.course.ID)
	require.NoError(t, err)
	return c.AverageRating, c.TotalReviews
}

func TestRatingAggregatesFollowWrites(t *testing.T) {
	f := setup(t)
	notifier := &recordingNotifier{}
	svc := NewService(f.db, notifier, testutil.Logger())
	ctx := context.Background()

	ana := f.student(t, "Ana", "ana@example.com", true)
	ben := f.student(t, "Ben", "ben@example.com", true)

	first, err := svc.Create(ctx, ana, CreateInput{CourseID: f.course.ID, Rating: 4, Comment: "Solid"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, ben, CreateInput{CourseID: f.course.ID, Rating: 2, Comment: "Too fast"})
	require.NoError(t, err)

	avg, total := f.rating(t)
	assert.Equal(t, 3.0, avg)
	assert.Equal(t, 2, total)

	five := 5
	updated, err := svc.Update(ctx, ana, first.ID, UpdateInput{Rating: &five})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)

	avg, total = f.rating(t)
	assert.Equal(t, 3.5, avg)
	assert.Equal(t, 2, total)

	admin := user.User{FullName: "Admin", Email: "admin@example.com", Password: "x", Role: types.RoleAdmin}
	require.NoError(t, f.db.Create(&admin).Error)
	require.NoError(t, svc.Delete(ctx, admin, first.ID))

	avg, total = f.rating(t)
	assert.Equal(t, 2.0, avg)
	assert.Equal(t, 1, total)

	require.Len(t, notifier.sent, 2)
	assert.Equal(t, f.provider.ID, notifier.sent[0].UserID)
	assert.Equal(t, `Ana left a 4-star review on your course "Compilers".`, notifier.sent[0].Message)
}

func TestCreateNotifiesAfterCallerCancels(t *testing.T) {
	f := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier := &recordingNotifier{onSend: cancel}
	svc := NewService(f.db, notifier, testutil.Logger())
	ana := f.student(t, "Ana", "ana@example.com", true)

	_, err := svc.Create(ctx, ana, CreateInput{CourseID: f.course.ID, Rating: 4, Comment: "Solid"})
	require.NoError(t, err)
	require.Len(t, notifier.ctxErrs, 1)
	assert.NoError(t, notifier.ctxErrs[0])
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestAverageRoundsToOneDecimal(t *testing.T) {
	f := setup(t)
	svc := NewService(f.db, &recordingNotifier{}, testutil.Logger())
	ctx := context.Background()

	for i, r := range []int{5, 4, 4} {
		u := f.student(t, "Student", string(rune('a'+i))+"@example.com", true)
		_, err := svc.Create(ctx, u, CreateInput{CourseID: f.course.ID, Rating: r, Comment: "ok"})
		require.NoError(t, err)
	}

	avg, _ := f.rating(t)
	assert.Equal(t, 4.3, avg)
}

func TestCreateRules(t *testing.T) {
	f := setup(t)
	svc := NewService(f.db, &recordingNotifier{}, testutil.Logger())
	ctx := context.Background()

	outsider := f.student(t, "Outsider", "outsider@example.com", false)
	_, err := svc.Create(ctx, outsider, CreateInput{CourseID: f.course.ID, Rating: 5, Comment: "Great"})
	assert.ErrorIs(t, err, ErrNotEnrolled)

	member := f.student(t, "Member", "member@example.com", true)
	_, err = svc.Create(ctx, member, CreateInput{CourseID: f.course.ID, Rating: 6, Comment: "Great"})
	assert.ErrorIs(t, err, ErrInvalidRating)
	_, err = svc.Create(ctx, member, CreateInput{CourseID: f.course.ID, Rating: 5})
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = svc.Create(ctx, member, CreateInput{CourseID: f.course.ID, Rating: 5, Comment: "Great"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, member, CreateInput{CourseID: f.course.ID, Rating: 3, Comment: "Again"})
	assert.ErrorIs(t, err, ErrAlreadyReviewed)

	mine, err := svc.MyReview(ctx, member, f.course.ID)
	require.NoError(t, err)
	require.NotNil(t, mine)
	require.NotNil(t, mine.User)
	assert.Equal(t, "Member", mine.User.FullName)

	_, err = svc.Update(ctx, outsider, mine.ID, UpdateInput{Comment: strPtr("hijack")})
	assert.ErrorIs(t, err, ErrNotOwnerUpdate)
	assert.ErrorIs(t, svc.Delete(ctx, outsider, mine.ID), ErrNotOwnerDelete)
}

func strPtr(v string) *string { return &v }

func TestReviewHandlerOwnership(t *testing.T) {
	f := setup(t)
	svc := NewService(f.db, &recordingNotifier{}, testutil.Logger())
	ctx := context.Background()

	ana := f.student(t, "Ana", "ana@example.com", true)
	ben := f.student(t, "Ben", "ben@example.com", true)
	admin := user.User{FullName: "Admin", Email: "admin@example.com", Password: "x", Role: types.RoleAdmin}
	require.NoError(t, f.db.Create(&admin).Error)

	anas, err := svc.Create(ctx, ana, CreateInput{CourseID: f.course.ID, Rating: 5, Comment: "Clear"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, ben, CreateInput{CourseID: f.course.ID, Rating: 2, Comment: "Dense"})
	require.NoError(t, err)

	serve := func(actor user.User, method, path, body string) *httptest.ResponseRecorder {
		router := gin.New()
		auth := func(c *gin.Context) { user.WithContext(c, actor) }
		RegisterRoutes(router.Group("/api"), NewHandler(svc, testutil.Logger()), auth, []gin.HandlerFunc{auth})
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := serve(ben, http.MethodPut, "/api/reviews/"+anas.ID.String(), `{"rating":1}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not authorized to update this review")

	stored, err := Get(f.db, anas.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Rating)

	rec = serve(ben, http.MethodDelete, "/api/reviews/"+anas.ID.String(), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(ana, http.MethodPut, "/api/reviews/"+anas.ID.String(), `{"rating":4}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated struct {
		Data Review `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, 4, updated.Data.Rating)

	avg, total := f.rating(t)
	assert.Equal(t, 3.0, avg)
	assert.Equal(t, 2, total)

	rec = serve(admin, http.MethodDelete, "/api/reviews/"+anas.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Review deleted successfully")

	avg, total = f.rating(t)
	assert.Equal(t, 2.0, avg)
	assert.Equal(t, 1, total)

	rec = serve(admin, http.MethodDelete, "/api/reviews/"+anas.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
