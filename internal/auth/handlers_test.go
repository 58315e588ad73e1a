package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gogofit/backend/internal/middleware"
	"github.com/gogofit/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	bcryptCost = bcrypt.MinCost
}

type sentLink struct {
	email string
	link  string
}

type captureMailer struct {
	mu   sync.Mutex
	sent []sentLink
}

func (m *captureMailer) SendResetLink(_ context.Context, email, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentLink{email: email, link: link})
	return nil
}

func (m *captureMailer) last(t *testing.T) sentLink {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	return m.sent[len(m.sent)-1]
}

type recordingNotifier struct {
	kinds map[uint][]string
}

func (n *recordingNotifier) Notify(_ context.Context, userID uint, kind string, _ map[string]any) error {
	n.kinds[userID] = append(n.kinds[userID], kind)
	return nil
}

type harness struct {
	t        *testing.T
	db       *gorm.DB
	mailer   *captureMailer
	notifier *recordingNotifier
	router   http.Handler
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	d := testutil.NewDB(t, Models()...)

	mailer := &captureMailer{}
	notifier := &recordingNotifier{kinds: map[uint][]string{}}
	if opts.Broker == nil {
		opts.Broker = NewPasswordBroker(d, mailer, BrokerOptions{
			AppURL:   "http://app.test/",
			Throttle: time.Minute,
			Now:      opts.Now,
		})
	}
	opts.Notifier = notifier

	h := NewHandler(d, opts)
	sessions := SessionInfo{DB: d, Now: opts.Now}

	r := chi.NewRouter()
	r.Mount("/auth", SetupRoutes(h, sessions))
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessions))
		r.Get("/user/profile", h.GetProfile)
		r.Post("/update-profile", h.UpdateProfile)
	})

	return &harness{t: t, db: d, mailer: mailer, notifier: notifier, router: r}
}

func (h *harness) send(method, path, token string, body any, headers ...string) (int, map[string]any) {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func (h *harness) register(name, email string) string {
	h.t.Helper()
	code, body := h.send(http.MethodPost, "/auth/register", "", map[string]any{
		"name":                  name,
		"email":                 email,
		"password":              "password123",
		"password_confirmation": "password123",
	})
	require.Equal(h.t, http.StatusCreated, code, body)
	return body["token"].(string)
}

func errorsFor(t *testing.T, body map[string]any, field string) []any {
	t.Helper()
	errs, ok := body["errors"].(map[string]any)
	require.True(t, ok, "expected errors object in %v", body)
	msgs, ok := errs[field].([]any)
	require.True(t, ok, "expected errors.%s in %v", field, body)
	return msgs
}

var tokenPattern = regexp.MustCompile(`^\d+\|[0-9a-f]{40}$`)

func TestRegisterIssuesTokenAndRejectsDuplicateEmail(t *testing.T) {
	h := newHarness(t, Options{})

	code, body := h.send(http.MethodPost, "/auth/register", "", map[string]any{
		"name":                  "Ann",
		"email":                 "a@x.com",
		"password":              "password123",
		"password_confirmation": "password123",
		"gender":                "female",
		"goal":                  "lose_weight",
		"activity_level":        "moderately_active",
		"height":                165.5,
	})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "User registered successfully", body["message"])
	assert.Regexp(t, tokenPattern, body["token"])

	user := body["user"].(map[string]any)
	assert.Equal(t, "a@x.com", user["email"])
	assert.Equal(t, "female", user["gender"])
	assert.Equal(t, 165.5, user["height"])
	assert.NotContains(t, user, "password")

	code, body = h.send(http.MethodPost, "/auth/register", "", map[string]any{
		"name":                  "Other",
		"email":                 "a@x.com",
		"password":              "password123",
		"password_confirmation": "password123",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, errorsFor(t, body, "email"), "The email has already been taken.")

	var n int64
	require.NoError(t, h.db.Model(&User{}).Where("email = ?", "a@x.com").Count(&n).Error)
	assert.Equal(t, int64(1), n)

	var u User
	require.NoError(t, h.db.First(&u, "email = ?", "a@x.com").Error)
	assert.Equal(t, []string{"welcome"}, h.notifier.kinds[u.ID])
}

func TestRegisterValidation(t *testing.T) {
	h := newHarness(t, Options{})

	code, body := h.send(http.MethodPost, "/auth/register", "", map[string]any{
		"name":                  "Ann",
		"email":                 "not-an-email",
		"password":              "short",
		"password_confirmation": "other",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, errorsFor(t, body, "email"))
	assert.NotEmpty(t, errorsFor(t, body, "password"))

	code, body = h.send(http.MethodPost, "/auth/register", "", map[string]any{
		"name":                  "Ann",
		"email":                 "ann@x.com",
		"password":              "password123",
		"password_confirmation": "password123",
		"gender":                "robot",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, []any{"The selected gender is invalid."}, errorsFor(t, body, "gender"))

	code, body = h.send(http.MethodPost, "/auth/register", "", map[string]any{
		"name":                  "Ann",
		"email":                 "ann@x.com",
		"password":              "password123",
		"password_confirmation": "password123",
		"birth_date":            "yesterday",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, []any{"The birth date field must be a valid date."}, errorsFor(t, body, "birth_date"))

	var n int64
	require.NoError(t, h.db.Model(&User{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestLoginFailureDoesNotRevealWhichPartWasWrong(t *testing.T) {
	h := newHarness(t, Options{})
	h.register("Ann", "a@x.com")

	wrongPass, bodyA := h.send(http.MethodPost, "/auth/login", "", map[string]string{"email": "a@x.com", "password": "nope-nope"})
	unknown, bodyB := h.send(http.MethodPost, "/auth/login", "", map[string]string{"email": "b@x.com", "password": "password123"})

	assert.Equal(t, http.StatusUnprocessableEntity, wrongPass)
	assert.Equal(t, wrongPass, unknown)
	assert.Equal(t, bodyA, bodyB)

	code, body := h.send(http.MethodPost, "/auth/login", "", map[string]string{"email": "a@x.com", "password": "password123"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Login successful", body["message"])
	assert.Regexp(t, tokenPattern, body["token"])
}

func TestStoredTokenIsHashed(t *testing.T) {
	h := newHarness(t, Options{})
	token := h.register("Ann", "a@x.com")

	id, secret, _ := strings.Cut(token, "|")
	var pat PersonalAccessToken
	require.NoError(t, h.db.First(&pat, "id = ?", id).Error)
	assert.NotEqual(t, secret, pat.Token)
	assert.Equal(t, hashSecret(secret), pat.Token)
	assert.Equal(t, tokenName, pat.Name)
}

func TestLogoutRevokesOnlyCurrentToken(t *testing.T) {
	h := newHarness(t, Options{})
	first := h.register("Ann", "a@x.com")
	_, body := h.send(http.MethodPost, "/auth/login", "", map[string]string{"email": "a@x.com", "password": "password123"})
	second := body["token"].(string)

	code, body := h.send(http.MethodPost, "/auth/logout", first, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Logged out successfully", body["message"])

	code, body = h.send(http.MethodGet, "/user/profile", first, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Unauthenticated.", body["message"])

	code, _ = h.send(http.MethodGet, "/user/profile", second, nil)
	assert.Equal(t, http.StatusOK, code)

	// The revoked token no longer authenticates, so a second logout is
	// turned away by the middleware.
	code, body = h.send(http.MethodPost, "/auth/logout", first, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Unauthenticated.", body["message"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h := newHarness(t, Options{})

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/auth/logout"},
		{http.MethodPost, "/auth/change-password"},
		{http.MethodGet, "/user/profile"},
		{http.MethodPost, "/update-profile"},
	} {
		code, body := h.send(tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, code, tc.path)
		assert.Equal(t, "Unauthenticated.", body["message"], tc.path)
	}
}

func TestExpiredTokenIsRejected(t *testing.T) {
	now := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	h := newHarness(t, Options{TokenTTL: time.Hour, Now: func() time.Time { return now }})
	token := h.register("Ann", "a@x.com")

	now = now.Add(59 * time.Minute)
	code, _ := h.send(http.MethodGet, "/user/profile", token, nil)
	assert.Equal(t, http.StatusOK, code)

	now = now.Add(time.Minute)
	code, body := h.send(http.MethodGet, "/user/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Session expired", body["message"])
}

func TestBirthDateKeepsCalendarDayEastOfUTC(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	h := newHarness(t, Options{Location: jakarta})

	code, body := h.send(http.MethodPost, "/auth/register", "", map[string]any{
		"name":                  "Ann",
		"email":                 "a@x.com",
		"password":              "password123",
		"password_confirmation": "password123",
		"birth_date":            "1990-05-06",
	})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "1990-05-06", body["user"].(map[string]any)["birth_date"])
	token := body["token"].(string)

	for _, tc := range []struct{ sent, want string }{
		{"2000-01-01", "2000-01-01"},
		{"2000-01-01 03:00:00", "2000-01-01"},
		{"2000-01-01T20:00:00Z", "2000-01-02"},
	} {
		code, body = h.send(http.MethodPost, "/update-profile", token, map[string]any{"birth_date": tc.sent})
		require.Equal(t, http.StatusOK, code, body)
		assert.Equal(t, tc.want, body["user"].(map[string]any)["birth_date"], tc.sent)

		code, body = h.send(http.MethodGet, "/user/profile", token, nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, tc.want, body["user"].(map[string]any)["birth_date"], tc.sent)
	}
}

func TestInvalidEnumIsReportedWithOtherFieldErrors(t *testing.T) {
	h := newHarness(t, Options{})

	code, body := h.send(http.MethodPost, "/auth/register", "", map[string]any{
		"name":                  "Ann",
		"email":                 "a@x.com",
		"password":              "password123",
		"password_confirmation": "password456",
		"gender":                "other",
		"goal":                  "",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, []any{"The selected gender is invalid."}, errorsFor(t, body, "gender"))
	assert.Equal(t, []any{"The selected goal is invalid."}, errorsFor(t, body, "goal"))
	assert.Equal(t, []any{"The password field confirmation does not match."}, errorsFor(t, body, "password"))

	code, body = h.send(http.MethodPost, "/auth/register", "", map[string]any{
		"name":                  "Ann",
		"email":                 "a@x.com",
		"password":              "password123",
		"password_confirmation": "password123",
		"activity_level":        42,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, []any{"The selected activity level is invalid."}, errorsFor(t, body, "activity_level"))
}

func TestChangePassword(t *testing.T) {
	h := newHarness(t, Options{})
	token := h.register("Ann", "a@x.com")

	code, body := h.send(http.MethodPost, "/auth/change-password", token, map[string]string{
		"old_password":              "wrong-password",
		"new_password":              "newpassword1",
		"new_password_confirmation": "newpassword1",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.NotEmpty(t, errorsFor(t, body, "old_password"))

	code, body = h.send(http.MethodPost, "/auth/change-password", token, map[string]string{
		"old_password":              "password123",
		"new_password":              "newpassword1",
		"new_password_confirmation": "mismatch123",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.NotEmpty(t, errorsFor(t, body, "new_password"))

	code, body = h.send(http.MethodPost, "/auth/change-password", token, map[string]string{
		"old_password":              "password123",
		"new_password":              "newpassword1",
		"new_password_confirmation": "newpassword1",
	})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Password changed successfully.", body["message"])

	// Existing tokens stay valid.
	code, _ = h.send(http.MethodGet, "/user/profile", token, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = h.send(http.MethodPost, "/auth/login", "", map[string]string{"email": "a@x.com", "password": "password123"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	code, _ = h.send(http.MethodPost, "/auth/login", "", map[string]string{"email": "a@x.com", "password": "newpassword1"})
	assert.Equal(t, http.StatusOK, code)
}

func TestProfileReadAndPartialUpdate(t *testing.T) {
	h := newHarness(t, Options{})
	token := h.register("Ann", "a@x.com")
	h.register("Bob", "b@x.com")

	code, body := h.send(http.MethodGet, "/user/profile", token, nil)
	require.Equal(t, http.StatusOK, code)
	user := body["user"].(map[string]any)
	assert.Equal(t, "Ann", user["name"])
	assert.Nil(t, user["goal"])

	code, body = h.send(http.MethodPost, "/update-profile", token, map[string]any{
		"email":      "a@x.com",
		"weight":     60.5,
		"birth_date": "2000-05-17",
		"goal":       "stay_healthy",
	})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Profile updated successfully", body["message"])
	user = body["user"].(map[string]any)
	assert.Equal(t, "Ann", user["name"])
	assert.Equal(t, 60.5, user["weight"])
	assert.Equal(t, "2000-05-17", user["birth_date"])
	assert.Equal(t, "stay_healthy", user["goal"])

	code, body = h.send(http.MethodPost, "/update-profile", token, map[string]any{"email": "b@x.com"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, errorsFor(t, body, "email"), "The email has already been taken.")

	code, body = h.send(http.MethodPost, "/update-profile", token, map[string]any{"activity_level": "couch"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, []any{"The selected activity level is invalid."}, errorsFor(t, body, "activity_level"))

	code, body = h.send(http.MethodPost, "/update-profile", token, map[string]any{"name": "  "})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.NotEmpty(t, errorsFor(t, body, "name"))

	code, body = h.send(http.MethodGet, "/user/profile", token, nil)
	require.Equal(t, http.StatusOK, code)
	user = body["user"].(map[string]any)
	assert.Equal(t, "a@x.com", user["email"])
	assert.Equal(t, 60.5, user["weight"])
}

func TestForgotAndResetPassword(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	h := newHarness(t, Options{Now: func() time.Time { return now }})
	h.register("Ann", "a@x.com")

	code, body := h.send(http.MethodPost, "/auth/forgot-password", "", map[string]string{"email": "nobody@x.com"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])

	code, body = h.send(http.MethodPost, "/auth/forgot-password", "", map[string]string{"email": "a@x.com"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "We have emailed your password reset link.", body["message"])

	code, body = h.send(http.MethodPost, "/auth/forgot-password", "", map[string]string{"email": "a@x.com"},
		"Accept-Language", "id-ID,id;q=0.9")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Harap tunggu sebelum mencoba lagi.", body["message"])

	sent := h.mailer.last(t)
	assert.Equal(t, "a@x.com", sent.email)
	assert.True(t, strings.HasPrefix(sent.link, "http://app.test/reset-password?token="), sent.link)
	secret := strings.TrimPrefix(strings.SplitN(sent.link, "&", 2)[0], "http://app.test/reset-password?token=")

	reset := map[string]string{
		"email":                 "a@x.com",
		"token":                 secret,
		"password":              "brandnew123",
		"password_confirmation": "brandnew123",
	}
	code, body = h.send(http.MethodPost, "/auth/reset-password", "", reset)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Your password has been reset.", body["message"])

	code, body = h.send(http.MethodPost, "/auth/reset-password", "", reset)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "This password reset token is invalid.", body["message"])

	code, _ = h.send(http.MethodPost, "/auth/login", "", map[string]string{"email": "a@x.com", "password": "brandnew123"})
	assert.Equal(t, http.StatusOK, code)

	var u User
	require.NoError(t, h.db.First(&u, "email = ?", "a@x.com").Error)
	assert.Equal(t, []string{"welcome", "password_reset"}, h.notifier.kinds[u.ID])
}

func TestResetTokenExpires(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	d := testutil.NewDB(t, Models()...)
	mailer := &captureMailer{}
	b := NewPasswordBroker(d, mailer, BrokerOptions{Expire: time.Hour, Now: clock})

	_, err := CreateUser(context.Background(), d, "Ann", "a@x.com", "password123")
	require.NoError(t, err)

	status, err := b.SendResetLink(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.Equal(t, ResetLinkSent, status)
	secret := strings.TrimPrefix(strings.SplitN(mailer.last(t).link, "&", 2)[0], "/reset-password?token=")

	now = now.Add(2 * time.Hour)
	status, user, err := b.Reset(context.Background(), "a@x.com", secret, "brandnew123")
	require.NoError(t, err)
	assert.Equal(t, InvalidToken, status)
	assert.Nil(t, user)

	var n int64
	require.NoError(t, d.Model(&PasswordResetToken{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestTranslateFallsBack(t *testing.T) {
	assert.Equal(t, "Your password has been reset.", Translate(PasswordReset, "", "en"))
	assert.Equal(t, "Kata sandi Anda telah direset.", Translate(PasswordReset, "", "id"))
	assert.Equal(t, "Kata sandi Anda telah direset.", Translate(PasswordReset, "id", "en"))
	assert.Equal(t, "Your password has been reset.", Translate(PasswordReset, "fr-FR", "en"))
}

func TestCreateUserRejectsDuplicate(t *testing.T) {
	d := testutil.NewDB(t, Models()...)
	ctx := context.Background()

	u, err := CreateUser(ctx, d, " Ann ", " a@x.com ", "password123")
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.Name)
	assert.Equal(t, "a@x.com", u.Email)
	assert.True(t, checkPassword(&u, "password123"))
	assert.False(t, checkPassword(nil, "password123"))

	_, err = CreateUser(ctx, d, "Other", "a@x.com", "password123")
	assert.ErrorIs(t, err, ErrEmailTaken)
}
