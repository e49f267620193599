package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// SchedulingServiceInterface は空き時間照会ハンドラーが必要とするサービスインターフェース。
// 結果はhandlerのレスポンス型で返す（SchedulingServiceAdapterが変換する）。
type SchedulingServiceInterface interface {
	// ParseDate は "YYYY-MM-DD" 形式の日付を解釈する。
	ParseDate(value string) (time.Time, error)
	AttendeeAvailability(ctx context.Context, attendeeID string, date time.Time) ([]slotResponse, error)
	LocationAvailability(ctx context.Context, locationID string, date time.Time) ([]slotResponse, error)
	CommonAvailability(ctx context.Context, attendeeIDs []string, date time.Time) ([]slotResponse, error)
	LocationsByDuration(ctx context.Context, date time.Time, duration time.Duration, minCapacity *int) ([]locationSlotResponse, error)
	Suggest(ctx context.Context, attendeeIDs []string, duration time.Duration, date time.Time) ([]suggestionResponse, error)
}

// AvailabilityHandler は空き時間照会と会議候補提案のHTTPハンドラー。
type AvailabilityHandler struct {
	service SchedulingServiceInterface
}

// NewAvailabilityHandler はAvailabilityHandlerを生成する。
func NewAvailabilityHandler(service SchedulingServiceInterface) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// slotResponse は空き区間 [start, end) のAPIレスポンス。
type slotResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// locationSlotResponse は場所検索結果のAPIレスポンス。
type locationSlotResponse struct {
	LocationID   string    `json:"location_id"`
	LocationName string    `json:"location_name"`
	Capacity     *int      `json:"capacity"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
}

// suggestedLocation は会議候補に含まれる場所情報。
type suggestedLocation struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity *int   `json:"capacity"`
}

// suggestionResponse は会議候補のAPIレスポンス。
type suggestionResponse struct {
	Start    time.Time         `json:"start"`
	End      time.Time         `json:"end"`
	Location suggestedLocation `json:"location"`
}

// commonAvailabilityRequest は共通空き時間照会のリクエストボディ。
type commonAvailabilityRequest struct {
	AttendeeIDs []string `json:"attendee_ids"`
	Date        string   `json:"date"`
}

// locationSearchRequest は場所検索のリクエストボディ。
type locationSearchRequest struct {
	Date            string `json:"date"`
	DurationMinutes int    `json:"duration_minutes"`
	MinCapacity     *int   `json:"min_capacity"`
}

// suggestionRequest は会議候補提案のリクエストボディ。
type suggestionRequest struct {
	AttendeeIDs     []string `json:"attendee_ids"`
	DurationMinutes int      `json:"duration_minutes"`
	Date            string   `json:"date"`
}

// AttendeeAvailability は参加者1人の空き区間を返す。
// GET /api/attendees/{id}/availability?date=YYYY-MM-DD
func (h *AvailabilityHandler) AttendeeAvailability(w http.ResponseWriter, r *http.Request) {
	date, err := h.service.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	slots, err := h.service.AttendeeAvailability(r.Context(), chi.URLParam(r, "id"), date)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(slots))
}

// LocationAvailability は場所1件の空き区間を返す。
// GET /api/locations/{id}/availability?date=YYYY-MM-DD
func (h *AvailabilityHandler) LocationAvailability(w http.ResponseWriter, r *http.Request) {
	date, err := h.service.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	slots, err := h.service.LocationAvailability(r.Context(), chi.URLParam(r, "id"), date)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(slots))
}

// CommonAvailability は指定した参加者全員が空いている区間を返す。
// POST /api/availability/common
func (h *AvailabilityHandler) CommonAvailability(w http.ResponseWriter, r *http.Request) {
	var req commonAvailabilityRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeInvalidBody(w)
		return
	}

	date, err := h.service.ParseDate(req.Date)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	slots, err := h.service.CommonAvailability(r.Context(), req.AttendeeIDs, date)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(slots))
}

// SearchLocations は指定時間以上空いている場所を返す。
// POST /api/locations/search
func (h *AvailabilityHandler) SearchLocations(w http.ResponseWriter, r *http.Request) {
	var req locationSearchRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeInvalidBody(w)
		return
	}

	date, err := h.service.ParseDate(req.Date)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	slots, err := h.service.LocationsByDuration(r.Context(), date, minutes(req.DurationMinutes), req.MinCapacity)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(slots))
}

// Suggest は会議候補を返す。候補がない場合は空配列を返す。
// POST /api/suggestions
func (h *AvailabilityHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req suggestionRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeInvalidBody(w)
		return
	}

	date, err := h.service.ParseDate(req.Date)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	suggestions, err := h.service.Suggest(r.Context(), req.AttendeeIDs, minutes(req.DurationMinutes), date)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(suggestions))
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}

// nonNil はnilスライスを空スライスに置き換え、JSONでnullではなく[]を返すようにする。
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
