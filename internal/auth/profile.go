package auth

import (
	"errors"
	"net/http"

	"github.com/gogofit/backend/internal/apperr"
	"github.com/gogofit/backend/internal/db"
	"github.com/gogofit/backend/internal/httputil"
	"github.com/gogofit/backend/internal/validation"
	"gorm.io/gorm"
)

func (h *Handler) loadCaller(r *http.Request) (User, error) {
	caller, err := callerFrom(r)
	if err != nil {
		return User{}, err
	}
	var user User
	if err := h.db.WithContext(r.Context()).First(&user, caller.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return User{}, apperr.Unauthenticated("Unauthenticated.")
		}
		return User{}, apperr.Internal("Failed to load profile", err)
	}
	return user, nil
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.loadCaller(r)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]Profile{"user": user.Profile()})
}

type updateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,filled,max=255"`
	Email *string `json:"email" validate:"omitempty,filled,email,max=255"`
	profileFields
}

type profileResponse struct {
	Message string  `json:"message"`
	User    Profile `json:"user"`
}

// UpdateProfile writes only the fields present in the body. A JSON null
// counts as absent.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := h.loadCaller(r)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	var req updateProfileRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	birthDate, extra := req.parse(h.opts.Location)
	if req.Email != nil && *req.Email != "" {
		taken, err := emailTaken(ctx, h.db, *req.Email, user.ID)
		if err != nil {
			httputil.WriteError(w, r, apperr.Internal("Failed to update profile", err))
			return
		}
		if taken {
			extra.Add("email", msgEmailTaken)
		}
	}
	if err := validation.Merge(validation.Struct(req), extra); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	req.apply(&user, birthDate)

	if err := h.db.WithContext(ctx).Save(&user).Error; err != nil {
		if db.IsUniqueViolation(err) {
			httputil.WriteError(w, r, apperr.FieldError("email", msgEmailTaken))
			return
		}
		httputil.WriteError(w, r, apperr.Internal("Failed to update profile", err))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profileResponse{
		Message: "Profile updated successfully",
		User:    user.Profile(),
	})
}
