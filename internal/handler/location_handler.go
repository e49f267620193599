package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/meetplan/internal/location"
	"github.com/hitoshi/meetplan/internal/model"
)

// LocationServiceInterface は場所ハンドラーが必要とするサービスインターフェース。
type LocationServiceInterface interface {
	Get(ctx context.Context, id string) (*model.Location, error)
	List(ctx context.Context) ([]*model.Location, error)
	Create(ctx context.Context, in location.Input) (*model.Location, error)
	Update(ctx context.Context, id string, in location.Input) (*model.Location, error)
	Delete(ctx context.Context, id string) error
}

// LocationHandler は場所管理のHTTPハンドラー。
type LocationHandler struct {
	service LocationServiceInterface
}

// NewLocationHandler はLocationHandlerを生成する。
func NewLocationHandler(service LocationServiceInterface) *LocationHandler {
	return &LocationHandler{service: service}
}

// locationRequest は場所の作成・更新リクエストのボディ。capacityを省略すると定員不明になる。
type locationRequest struct {
	Name      string `json:"name"`
	Capacity  *int   `json:"capacity"`
	WorkStart string `json:"work_start"`
	WorkEnd   string `json:"work_end"`
}

// locationResponse は場所のAPIレスポンス。定員不明の場合capacityはnull。
type locationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Capacity  *int      `json:"capacity"`
	WorkStart string    `json:"work_start,omitempty"`
	WorkEnd   string    `json:"work_end,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// List は場所一覧を返す。
// GET /api/locations
func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	locations, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := make([]locationResponse, len(locations))
	for i, l := range locations {
		resp[i] = toLocationResponse(l)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get は場所を1件返す。
// GET /api/locations/{id}
func (h *LocationHandler) Get(w http.ResponseWriter, r *http.Request) {
	l, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLocationResponse(l))
}

// Create は場所を登録する。
// POST /api/locations
func (h *LocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeInvalidBody(w)
		return
	}

	l, err := h.service.Create(r.Context(), req.toInput())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLocationResponse(l))
}

// Update は場所を更新する。
// PUT /api/locations/{id}
func (h *LocationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeInvalidBody(w)
		return
	}

	l, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLocationResponse(l))
}

// Delete は場所を削除する。この場所を使っていた会議は場所未定になる。
// DELETE /api/locations/{id}
func (h *LocationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (req locationRequest) toInput() location.Input {
	return location.Input{
		Name:      req.Name,
		Capacity:  req.Capacity,
		WorkStart: req.WorkStart,
		WorkEnd:   req.WorkEnd,
	}
}

func toLocationResponse(l *model.Location) locationResponse {
	start, end := formatWorkingHours(l.WorkingHours)
	return locationResponse{
		ID:        l.ID,
		Name:      l.Name,
		Capacity:  l.Capacity,
		WorkStart: start,
		WorkEnd:   end,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}
