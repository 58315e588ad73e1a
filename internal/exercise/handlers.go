package exercise

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gogofit/backend/internal/apperr"
	"github.com/gogofit/backend/internal/httputil"
	"github.com/gogofit/backend/internal/utils"
	"github.com/gogofit/backend/internal/validation"
)

type Handler struct {
	store *Store
	loc   *time.Location
}

func NewHandler(s *Store, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{store: s, loc: loc}
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type createRequest struct {
	ActivityName    *string `json:"activity_name" validate:"required,filled,max=255"`
	DurationMinutes *int    `json:"duration_minutes" validate:"required,min=1"`
	CaloriesBurned  *int    `json:"calories_burned" validate:"required,min=1"`
	ExercisedAt     *string `json:"exercised_at" validate:"required,filled"`
}

type updateRequest struct {
	ActivityName    *string `json:"activity_name" validate:"omitempty,filled,max=255"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,min=1"`
	CaloriesBurned  *int    `json:"calories_burned" validate:"omitempty,min=1"`
	ExercisedAt     *string `json:"exercised_at" validate:"omitempty,filled"`
}

// parseExercisedAt validates payload and parses exercised_at when present.
func parseExercisedAt(payload any, raw *string, loc *time.Location) (*time.Time, error) {
	extra := apperr.Fields{}
	var at *time.Time
	if raw != nil && *raw != "" {
		t, err := utils.ParseTimestamp(*raw, loc)
		if err != nil {
			extra.Add("exercised_at", "The exercised at field must be a valid date.")
		} else {
			at = &t
		}
	}
	return at, validation.Merge(validation.Struct(payload), extra)
}

func (h *Handler) owned(r *http.Request) (ExerciseLog, error) {
	caller, ok := utils.GetCallerFromContext(r.Context())
	if !ok {
		return ExerciseLog{}, apperr.Unauthenticated("Unauthenticated.")
	}

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		return ExerciseLog{}, apperr.NotFound("Exercise log not found")
	}

	l, err := h.store.Get(r.Context(), uint(id))
	if errors.Is(err, ErrNotFound) {
		return ExerciseLog{}, apperr.NotFound("Exercise log not found")
	}
	if err != nil {
		return ExerciseLog{}, apperr.Internal("Failed to fetch exercise log", err)
	}
	if l.UserID != caller.UserID {
		return ExerciseLog{}, apperr.Forbidden()
	}
	return l, nil
}

// ListExerciseLogs requires ?date=YYYY-MM-DD. A missing or malformed date
// is a validation error keyed on "date".
func (h *Handler) ListExerciseLogs(w http.ResponseWriter, r *http.Request) {
	caller, ok := utils.GetCallerFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperr.Unauthenticated("Unauthenticated."))
		return
	}

	raw := r.URL.Query().Get("date")
	if raw == "" {
		httputil.WriteError(w, r, apperr.FieldError("date", "The date field is required."))
		return
	}
	day, err := utils.ParseDate(raw, h.loc)
	if err != nil {
		httputil.WriteError(w, r, apperr.FieldError("date", "The date field must match the format Y-m-d."))
		return
	}

	from, to := utils.DayRange(day, h.loc)
	logs, err := h.store.ListBetween(r.Context(), caller.UserID, from, to)
	if err != nil {
		httputil.WriteError(w, r, apperr.Internal("Failed to fetch exercise logs", err))
		return
	}
	if logs == nil {
		logs = []ExerciseLog{}
	}
	httputil.WriteJSON(w, http.StatusOK, envelope{Success: true, Data: logs})
}

func (h *Handler) CreateExerciseLog(w http.ResponseWriter, r *http.Request) {
	caller, ok := utils.GetCallerFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperr.Unauthenticated("Unauthenticated."))
		return
	}

	var req createRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	at, err := parseExercisedAt(req, req.ExercisedAt, h.loc)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	l := ExerciseLog{
		UserID:          caller.UserID,
		ActivityName:    *req.ActivityName,
		DurationMinutes: *req.DurationMinutes,
		CaloriesBurned:  *req.CaloriesBurned,
		ExercisedAt:     *at,
	}
	if err := h.store.Create(r.Context(), &l); err != nil {
		httputil.WriteError(w, r, apperr.Internal("Failed to create exercise log", err))
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, envelope{
		Success: true,
		Message: "Exercise log created successfully.",
		Data:    l,
	})
}

func (h *Handler) GetExerciseLog(w http.ResponseWriter, r *http.Request) {
	l, err := h.owned(r)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, envelope{Success: true, Data: l})
}

func (h *Handler) UpdateExerciseLog(w http.ResponseWriter, r *http.Request) {
	l, err := h.owned(r)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	var req updateRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	at, err := parseExercisedAt(req, req.ExercisedAt, h.loc)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	if req.ActivityName != nil {
		l.ActivityName = *req.ActivityName
	}
	if req.DurationMinutes != nil {
		l.DurationMinutes = *req.DurationMinutes
	}
	if req.CaloriesBurned != nil {
		l.CaloriesBurned = *req.CaloriesBurned
	}
	if at != nil {
		l.ExercisedAt = *at
	}

	if err := h.store.Save(r.Context(), &l); err != nil {
		httputil.WriteError(w, r, apperr.Internal("Failed to update exercise log", err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: "Exercise log updated successfully.",
		Data:    l,
	})
}

func (h *Handler) DeleteExerciseLog(w http.ResponseWriter, r *http.Request) {
	l, err := h.owned(r)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	if err := h.store.Delete(r.Context(), l.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.WriteError(w, r, apperr.NotFound("Exercise log not found"))
			return
		}
		httputil.WriteError(w, r, apperr.Internal("Failed to delete exercise log", err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, envelope{Success: true, Message: "Exercise log deleted successfully."})
}
