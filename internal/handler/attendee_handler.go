package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/meetplan/internal/attendee"
	"github.com/hitoshi/meetplan/internal/availability"
	"github.com/hitoshi/meetplan/internal/model"
)

// AttendeeServiceInterface は参加者ハンドラーが必要とするサービスインターフェース。
type AttendeeServiceInterface interface {
	Get(ctx context.Context, id string) (*model.Attendee, error)
	List(ctx context.Context) ([]*model.Attendee, error)
	Create(ctx context.Context, in attendee.Input) (*model.Attendee, error)
	Update(ctx context.Context, id string, in attendee.Input) (*model.Attendee, error)
	Delete(ctx context.Context, id string) error
}

// AttendeeHandler は参加者管理のHTTPハンドラー。
type AttendeeHandler struct {
	service AttendeeServiceInterface
}

// NewAttendeeHandler はAttendeeHandlerを生成する。
func NewAttendeeHandler(service AttendeeServiceInterface) *AttendeeHandler {
	return &AttendeeHandler{service: service}
}

// attendeeRequest は参加者の作成・更新リクエストのボディ。
type attendeeRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	WorkStart string `json:"work_start"`
	WorkEnd   string `json:"work_end"`
}

// attendeeResponse は参加者のAPIレスポンス。勤務時間未設定の場合はwork_start/work_endを省略する。
type attendeeResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	WorkStart string    `json:"work_start,omitempty"`
	WorkEnd   string    `json:"work_end,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// List は参加者一覧を返す。
// GET /api/attendees
func (h *AttendeeHandler) List(w http.ResponseWriter, r *http.Request) {
	attendees, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := make([]attendeeResponse, len(attendees))
	for i, a := range attendees {
		resp[i] = toAttendeeResponse(a)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get は参加者を1件返す。
// GET /api/attendees/{id}
func (h *AttendeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAttendeeResponse(a))
}

// Create は参加者を登録する。
// POST /api/attendees
func (h *AttendeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req attendeeRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeInvalidBody(w)
		return
	}

	a, err := h.service.Create(r.Context(), req.toInput())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAttendeeResponse(a))
}

// Update は参加者を更新する。
// PUT /api/attendees/{id}
func (h *AttendeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req attendeeRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeInvalidBody(w)
		return
	}

	a, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAttendeeResponse(a))
}

// Delete は参加者を削除する。参加していた会議からも外れる。
// DELETE /api/attendees/{id}
func (h *AttendeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (req attendeeRequest) toInput() attendee.Input {
	return attendee.Input{
		Name:      req.Name,
		Email:     req.Email,
		WorkStart: req.WorkStart,
		WorkEnd:   req.WorkEnd,
	}
}

func toAttendeeResponse(a *model.Attendee) attendeeResponse {
	start, end := formatWorkingHours(a.WorkingHours)
	return attendeeResponse{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		WorkStart: start,
		WorkEnd:   end,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// formatWorkingHours は勤務時間を "09:00" 形式の組に変換する。未設定の場合は空文字を返す。
func formatWorkingHours(wh *availability.WorkingHours) (string, string) {
	if wh == nil {
		return "", ""
	}
	return availability.FormatClock(wh.Start), availability.FormatClock(wh.End)
}
