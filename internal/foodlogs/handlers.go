package foodlogs

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
	now   func() time.Time
}

// NewHandler returns food log handlers. loc decides which calendar day
// "today" is when no date is given.
func NewHandler(s *Store, loc *time.Location, now func() time.Time) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Handler{store: s, loc: loc, now: now}
}

type response struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// logRequest is used for create and update. Both require every field
// except saturated_fat.
type logRequest struct {
	Name          *string  `json:"name" validate:"required,filled,max=255"`
	Calories      *float64 `json:"calories" validate:"required"`
	Fat           *float64 `json:"fat" validate:"required"`
	SaturatedFat  *float64 `json:"saturated_fat"`
	Carbohydrates *float64 `json:"carbohydrates" validate:"required"`
	Protein       *float64 `json:"protein" validate:"required"`
	Sugar         *float64 `json:"sugar" validate:"required"`
	ConsumedAt    *string  `json:"consumed_at" validate:"required,filled"`
	MealType      *string  `json:"meal_type" validate:"required,filled,max=64"`
}

func (req logRequest) validate(loc *time.Location) (time.Time, error) {
	extra := apperr.Fields{}
	var consumedAt time.Time
	if req.ConsumedAt != nil && *req.ConsumedAt != "" {
		t, err := utils.ParseTimestamp(*req.ConsumedAt, loc)
		if err != nil {
			extra.Add("consumed_at", "The consumed at field must be a valid date.")
		}
		consumedAt = t
	}
	return consumedAt, validation.Merge(validation.Struct(req), extra)
}

func (req logRequest) apply(l *FoodLog, consumedAt time.Time) {
	l.Name = *req.Name
	l.Calories = *req.Calories
	l.Fat = *req.Fat
	l.SaturatedFat = 0
	if req.SaturatedFat != nil {
		l.SaturatedFat = *req.SaturatedFat
	}
	l.Carbohydrates = *req.Carbohydrates
	l.Protein = *req.Protein
	l.Sugar = *req.Sugar
	l.ConsumedAt = consumedAt
	l.MealType = *req.MealType
}

// owned resolves the log in the URL and checks it belongs to the caller.
// Ownership is decided before the body is read.
func (h *Handler) owned(r *http.Request) (FoodLog, error) {
	caller, ok := utils.GetCallerFromContext(r.Context())
	if !ok {
		return FoodLog{}, apperr.Unauthenticated("Unauthenticated.")
	}

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		return FoodLog{}, apperr.NotFound("Food log not found")
	}

	l, err := h.store.Get(r.Context(), uint(id))
	if errors.Is(err, ErrNotFound) {
		return FoodLog{}, apperr.NotFound("Food log not found")
	}
	if err != nil {
		return FoodLog{}, apperr.Internal("Failed to fetch food log", err)
	}
	if l.UserID != caller.UserID {
		return FoodLog{}, apperr.Forbidden()
	}
	return l, nil
}

// ListFoodLogs returns the caller's logs for ?date=YYYY-MM-DD, or for
// today when the parameter is missing.
func (h *Handler) ListFoodLogs(w http.ResponseWriter, r *http.Request) {
	caller, ok := utils.GetCallerFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperr.Unauthenticated("Unauthenticated."))
		return
	}

	day := h.now().In(h.loc)
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := utils.ParseDate(raw, h.loc)
		if err != nil {
			httputil.WriteError(w, r, apperr.InvalidFormat("Invalid date format. Use YYYY-MM-DD."))
			return
		}
		day = d
	}

	from, to := utils.DayRange(day, h.loc)
	logs, err := h.store.ListBetween(r.Context(), caller.UserID, from, to)
	if err != nil {
		httputil.WriteError(w, r, apperr.Internal("Failed to fetch food logs", err))
		return
	}
	if logs == nil {
		logs = []FoodLog{}
	}
	httputil.WriteJSON(w, http.StatusOK, response{Message: "Food logs retrieved successfully", Data: logs})
}

func (h *Handler) CreateFoodLog(w http.ResponseWriter, r *http.Request) {
	caller, ok := utils.GetCallerFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperr.Unauthenticated("Unauthenticated."))
		return
	}

	var req logRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	consumedAt, err := req.validate(h.loc)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	l := FoodLog{UserID: caller.UserID}
	req.apply(&l, consumedAt)
	if err := h.store.Create(r.Context(), &l); err != nil {
		httputil.WriteError(w, r, apperr.Internal("Failed to create food log", err))
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, response{Message: "Food log created successfully", Data: l})
}

func (h *Handler) GetFoodLog(w http.ResponseWriter, r *http.Request) {
	l, err := h.owned(r)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, response{Message: "Food log retrieved successfully", Data: l})
}

func (h *Handler) UpdateFoodLog(w http.ResponseWriter, r *http.Request) {
	l, err := h.owned(r)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	var req logRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	consumedAt, err := req.validate(h.loc)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	req.apply(&l, consumedAt)
	if err := h.store.Save(r.Context(), &l); err != nil {
		httputil.WriteError(w, r, apperr.Internal("Failed to update food log", err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, response{Message: "Food log updated successfully", Data: l})
}

func (h *Handler) DeleteFoodLog(w http.ResponseWriter, r *http.Request) {
	l, err := h.owned(r)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	if err := h.store.Delete(r.Context(), l.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.WriteError(w, r, apperr.NotFound("Food log not found"))
			return
		}
		httputil.WriteError(w, r, apperr.Internal("Failed to delete food log", err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, response{Message: "Food log deleted successfully"})
}
