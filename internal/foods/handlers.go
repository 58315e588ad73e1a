package foods

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gogofit/backend/internal/apperr"
	"github.com/gogofit/backend/internal/db"
	"github.com/gogofit/backend/internal/httputil"
	"github.com/gogofit/backend/internal/validation"
)

const msgNameTaken = "The name has already been taken."

type Handler struct {
	store *Store
}

func NewHandler(s *Store) *Handler {
	return &Handler{store: s}
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type createRequest struct {
	Name          *string  `json:"name" validate:"required,filled,max=255"`
	Calories      *float64 `json:"calories" validate:"required,gte=0"`
	Sugar         *float64 `json:"sugar" validate:"required,gte=0"`
	Protein       *float64 `json:"protein" validate:"required,gte=0"`
	Carbohydrates *float64 `json:"carbohydrates" validate:"required,gte=0"`
	Fat           *float64 `json:"fat" validate:"required,gte=0"`
	SaturatedFat  *float64 `json:"saturated_fat" validate:"required,gte=0"`
	Image         *string  `json:"image" validate:"omitempty,max=2048"`
}

type updateRequest struct {
	Name          *string  `json:"name" validate:"omitempty,filled,max=255"`
	Calories      *float64 `json:"calories" validate:"omitempty,gte=0"`
	Sugar         *float64 `json:"sugar" validate:"omitempty,gte=0"`
	Protein       *float64 `json:"protein" validate:"omitempty,gte=0"`
	Carbohydrates *float64 `json:"carbohydrates" validate:"omitempty,gte=0"`
	Fat           *float64 `json:"fat" validate:"omitempty,gte=0"`
	SaturatedFat  *float64 `json:"saturated_fat" validate:"omitempty,gte=0"`
	Image         *string  `json:"image" validate:"omitempty,max=2048"`
}

// apply copies present fields onto f. An empty image string clears it.
func (u updateRequest) apply(f *Food) {
	if u.Name != nil {
		f.Name = *u.Name
	}
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	set(&f.Calories, u.Calories)
	set(&f.Sugar, u.Sugar)
	set(&f.Protein, u.Protein)
	set(&f.Carbohydrates, u.Carbohydrates)
	set(&f.Fat, u.Fat)
	set(&f.SaturatedFat, u.SaturatedFat)
	if u.Image != nil {
		if *u.Image == "" {
			f.Image = nil
		} else {
			f.Image = u.Image
		}
	}
}

func foodID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.NotFound("Food not found")
	}
	return uint(id), nil
}

func (h *Handler) load(r *http.Request) (Food, error) {
	id, err := foodID(r)
	if err != nil {
		return Food{}, err
	}
	f, err := h.store.Get(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		return Food{}, apperr.NotFound("Food not found")
	}
	if err != nil {
		return Food{}, apperr.Internal("Failed to fetch food", err)
	}
	return f, nil
}

// ListFoods pages through the catalog. ?query= switches to an unpaged
// list of every match.
func (h *Handler) ListFoods(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Has("query") {
		items, err := h.store.Search(r.Context(), q.Get("query"))
		if err != nil {
			httputil.WriteError(w, r, apperr.Internal("Failed to fetch foods", err))
			return
		}
		if items == nil {
			items = []Food{}
		}
		httputil.WriteJSON(w, http.StatusOK, envelope{Success: true, Data: items})
		return
	}

	page := httputil.PageParam(r)
	items, total, err := h.store.List(r.Context(), q.Get("search"), page)
	if err != nil {
		httputil.WriteError(w, r, apperr.Internal("Failed to fetch foods", err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, envelope{
		Success: true,
		Data:    httputil.NewPage(r, items, page, PerPage, total),
	})
}

func (h *Handler) CreateFood(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	extra := apperr.Fields{}
	if req.Name != nil && *req.Name != "" {
		taken, err := h.store.NameTaken(ctx, *req.Name, 0)
		if err != nil {
			httputil.WriteError(w, r, apperr.Internal("Failed to create food", err))
			return
		}
		if taken {
			extra.Add("name", msgNameTaken)
		}
	}
	if err := validation.Merge(validation.Struct(req), extra); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	f := Food{
		Name:          *req.Name,
		Calories:      *req.Calories,
		Sugar:         *req.Sugar,
		Protein:       *req.Protein,
		Carbohydrates: *req.Carbohydrates,
		Fat:           *req.Fat,
		SaturatedFat:  *req.SaturatedFat,
	}
	if req.Image != nil && *req.Image != "" {
		f.Image = req.Image
	}

	if err := h.store.Create(ctx, &f); err != nil {
		if db.IsUniqueViolation(err) {
			httputil.WriteError(w, r, apperr.FieldError("name", msgNameTaken))
			return
		}
		httputil.WriteError(w, r, apperr.Internal("Failed to create food", err))
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, envelope{Success: true, Data: f})
}

func (h *Handler) GetFood(w http.ResponseWriter, r *http.Request) {
	f, err := h.load(r)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, envelope{Success: true, Data: f})
}

func (h *Handler) UpdateFood(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f, err := h.load(r)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	var req updateRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	extra := apperr.Fields{}
	if req.Name != nil && *req.Name != "" {
		taken, err := h.store.NameTaken(ctx, *req.Name, f.ID)
		if err != nil {
			httputil.WriteError(w, r, apperr.Internal("Failed to update food", err))
			return
		}
		if taken {
			extra.Add("name", msgNameTaken)
		}
	}
	if err := validation.Merge(validation.Struct(req), extra); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	req.apply(&f)
	if err := h.store.Save(ctx, &f); err != nil {
		if db.IsUniqueViolation(err) {
			httputil.WriteError(w, r, apperr.FieldError("name", msgNameTaken))
			return
		}
		httputil.WriteError(w, r, apperr.Internal("Failed to update food", err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, envelope{Success: true, Data: f})
}

func (h *Handler) DeleteFood(w http.ResponseWriter, r *http.Request) {
	id, err := foodID(r)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.WriteError(w, r, apperr.NotFound("Food not found"))
			return
		}
		httputil.WriteError(w, r, apperr.Internal("Failed to delete food", err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, envelope{Success: true, Message: "Food deleted successfully"})
}
