package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gogofit/backend/internal/apperr"
	"github.com/gogofit/backend/internal/db"
	"github.com/gogofit/backend/internal/httputil"
	"github.com/gogofit/backend/internal/metrics"
	"github.com/gogofit/backend/internal/utils"
	"github.com/gogofit/backend/internal/validation"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const msgEmailTaken = "The email has already been taken."

// Notifier records user-facing notifications for account events.
type Notifier interface {
	Notify(ctx context.Context, userID uint, kind string, data map[string]any) error
}

type Options struct {
	TokenTTL      time.Duration
	DefaultLocale string
	Location      *time.Location
	Broker        *PasswordBroker
	Notifier      Notifier
	Now           func() time.Time
}

type Handler struct {
	db   *gorm.DB
	opts Options
}

func NewHandler(d *gorm.DB, opts Options) *Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.DefaultLocale == "" {
		opts.DefaultLocale = "en"
	}
	if opts.Broker == nil {
		opts.Broker = NewPasswordBroker(d, LogMailer{}, BrokerOptions{Now: opts.Now})
	}
	return &Handler{db: d, opts: opts}
}

func (h *Handler) notify(ctx context.Context, userID uint, kind string, data map[string]any) {
	if h.opts.Notifier == nil {
		return
	}
	if err := h.opts.Notifier.Notify(ctx, userID, kind, data); err != nil {
		log.Warn().Err(err).Uint("user_id", userID).Str("type", kind).Msg("failed to record notification")
	}
}

func callerFrom(r *http.Request) (utils.Caller, error) {
	c, ok := utils.GetCallerFromContext(r.Context())
	if !ok {
		return utils.Caller{}, apperr.Unauthenticated("Unauthenticated.")
	}
	return c, nil
}

// profileFields are the optional biometrics shared by registration and
// profile updates.
type profileFields struct {
	Gender        *Gender        `json:"gender" validate:"omitempty,enum"`
	BirthDate     *string        `json:"birth_date"`
	Height        *float64       `json:"height"`
	Weight        *float64       `json:"weight"`
	TargetWeight  *float64       `json:"target_weight"`
	Goal          *Goal          `json:"goal" validate:"omitempty,enum"`
	ActivityLevel *ActivityLevel `json:"activity_level" validate:"omitempty,enum"`
}

// parse reports field errors for values the validator cannot check.
func (p profileFields) parse(loc *time.Location) (*time.Time, apperr.Fields) {
	fields := apperr.Fields{}
	if p.BirthDate == nil {
		return nil, fields
	}
	// The calendar day is read in loc, before any conversion to UTC.
	local, err := utils.ParseDate(*p.BirthDate, loc)
	if err != nil {
		t, err := utils.ParseTimestamp(*p.BirthDate, loc)
		if err != nil {
			fields.Add("birth_date", "The birth date field must be a valid date.")
			return nil, fields
		}
		local = t.In(loc)
	}
	d := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	return &d, fields
}

// apply copies the present fields onto u. Absent fields are left as they are.
func (p profileFields) apply(u *User, birthDate *time.Time) {
	if p.Gender != nil {
		u.Gender = p.Gender
	}
	if birthDate != nil {
		u.BirthDate = birthDate
	}
	if p.Height != nil {
		u.Height = p.Height
	}
	if p.Weight != nil {
		u.Weight = p.Weight
	}
	if p.TargetWeight != nil {
		u.TargetWeight = p.TargetWeight
	}
	if p.Goal != nil {
		u.Goal = p.Goal
	}
	if p.ActivityLevel != nil {
		u.ActivityLevel = p.ActivityLevel
	}
}

type registerRequest struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8,eqfield=PasswordConfirmation"`
	PasswordConfirmation string `json:"password_confirmation"`
	profileFields
}

type authResponse struct {
	Message string  `json:"message"`
	Token   string  `json:"token"`
	User    Profile `json:"user"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	birthDate, extra := req.parse(h.opts.Location)
	if req.Email != "" {
		taken, err := emailTaken(ctx, h.db, req.Email, 0)
		if err != nil {
			httputil.WriteError(w, r, apperr.Internal("Failed to register user", err))
			return
		}
		if taken {
			extra.Add("email", msgEmailTaken)
		}
	}
	if err := validation.Merge(validation.Struct(req), extra); err != nil {
		metrics.RecordAuthEvent("register", false)
		httputil.WriteError(w, r, err)
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		httputil.WriteError(w, r, apperr.Internal("Failed to register user", err))
		return
	}

	user := User{Name: req.Name, Email: req.Email, Password: hash}
	req.apply(&user, birthDate)

	var token string
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		var err error
		token, err = issueToken(tx, user.ID, h.opts.TokenTTL, h.opts.Now())
		return err
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			httputil.WriteError(w, r, apperr.FieldError("email", msgEmailTaken))
			return
		}
		httputil.WriteError(w, r, apperr.Internal("Failed to register user", err))
		return
	}

	h.notify(ctx, user.ID, "welcome", map[string]any{
		"title":   "Welcome to GoGoFit",
		"message": "Hi " + user.Name + ", your account is ready.",
	})
	metrics.RecordAuthEvent("register", true)

	httputil.WriteJSON(w, http.StatusCreated, authResponse{
		Message: "User registered successfully",
		Token:   token,
		User:    user.Profile(),
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	var found *User
	var user User
	err := h.db.WithContext(ctx).First(&user, "email = ?", req.Email).Error
	switch {
	case err == nil:
		found = &user
	case !errors.Is(err, gorm.ErrRecordNotFound):
		httputil.WriteError(w, r, apperr.Internal("Failed to log in", err))
		return
	}

	if !checkPassword(found, req.Password) {
		metrics.RecordAuthEvent("login", false)
		httputil.WriteError(w, r, apperr.InvalidCredentials("email"))
		return
	}

	token, err := issueToken(h.db.WithContext(ctx), user.ID, h.opts.TokenTTL, h.opts.Now())
	if err != nil {
		httputil.WriteError(w, r, apperr.Internal("Failed to log in", err))
		return
	}
	metrics.RecordAuthEvent("login", true)

	httputil.WriteJSON(w, http.StatusOK, authResponse{
		Message: "Login successful",
		Token:   token,
		User:    user.Profile(),
	})
}

// Logout revokes only the token that authenticated this request.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	if err := revokeToken(r.Context(), h.db, caller.TokenID); err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			httputil.WriteError(w, r, apperr.NotFound("Token already revoked"))
			return
		}
		httputil.WriteError(w, r, apperr.Internal("Failed to log out", err))
		return
	}
	metrics.RecordAuthEvent("logout", true)

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

type changePasswordRequest struct {
	OldPassword             string `json:"old_password" validate:"required"`
	NewPassword             string `json:"new_password" validate:"required,min=8,eqfield=NewPasswordConfirmation"`
	NewPasswordConfirmation string `json:"new_password_confirmation"`
}

// ChangePassword keeps every issued token valid.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := callerFrom(r)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	var req changePasswordRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	var user User
	if err := h.db.WithContext(ctx).First(&user, caller.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httputil.WriteError(w, r, apperr.Unauthenticated("Unauthenticated."))
			return
		}
		httputil.WriteError(w, r, apperr.Internal("Failed to change password", err))
		return
	}

	if !checkPassword(&user, req.OldPassword) {
		metrics.RecordAuthEvent("change_password", false)
		httputil.WriteError(w, r, apperr.InvalidCredentials("old_password"))
		return
	}

	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		httputil.WriteError(w, r, apperr.Internal("Failed to change password", err))
		return
	}
	if err := h.db.WithContext(ctx).Model(&user).Update("password", hash).Error; err != nil {
		httputil.WriteError(w, r, apperr.Internal("Failed to change password", err))
		return
	}

	h.notify(ctx, user.ID, "password_changed", map[string]any{
		"title":   "Password changed",
		"message": "Your password was changed.",
	})
	metrics.RecordAuthEvent("change_password", true)

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully."})
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type brokerResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *Handler) brokerReply(w http.ResponseWriter, r *http.Request, status ResetStatus, ok bool) {
	msg := Translate(status, r.Header.Get("Accept-Language"), h.opts.DefaultLocale)
	code := http.StatusOK
	if !ok {
		code = http.StatusBadRequest
	}
	httputil.WriteJSON(w, code, brokerResponse{Success: ok, Message: msg})
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	status, err := h.opts.Broker.SendResetLink(r.Context(), req.Email)
	if err != nil {
		httputil.WriteError(w, r, apperr.Internal("Failed to send reset link", err))
		return
	}
	metrics.RecordAuthEvent("forgot_password", status == ResetLinkSent)
	h.brokerReply(w, r, status, status == ResetLinkSent)
}

type resetPasswordRequest struct {
	Token                string `json:"token" validate:"required"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8,eqfield=PasswordConfirmation"`
	PasswordConfirmation string `json:"password_confirmation"`
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req resetPasswordRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	status, user, err := h.opts.Broker.Reset(ctx, req.Email, req.Token, req.Password)
	if err != nil {
		httputil.WriteError(w, r, apperr.Internal("Failed to reset password", err))
		return
	}
	if status == PasswordReset {
		h.notify(ctx, user.ID, "password_reset", map[string]any{
			"title":   "Password reset",
			"message": "Your password was reset using a reset link.",
		})
	}
	metrics.RecordAuthEvent("reset_password", status == PasswordReset)
	h.brokerReply(w, r, status, status == PasswordReset)
}
