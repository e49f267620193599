package handler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/emersion/go-ical"
	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/meetplan/internal/meeting"
	"github.com/hitoshi/meetplan/internal/model"
)

// calendarDefaultRange はカレンダー出力で期間を省略したときの長さ。
const calendarDefaultRange = 90 * 24 * time.Hour

// MeetingServiceInterface は会議ハンドラーが必要とするサービスインターフェース。
type MeetingServiceInterface interface {
	Get(ctx context.Context, id string) (*model.Meeting, error)
	List(ctx context.Context, from, to time.Time) ([]*model.Meeting, error)
	Create(ctx context.Context, in meeting.Input) (*model.Meeting, error)
	Update(ctx context.Context, id string, in meeting.Input) (*model.Meeting, error)
	Delete(ctx context.Context, id string) error
	ExportCalendar(ctx context.Context, attendeeID string, from, to time.Time) (*ical.Calendar, error)
}

// MeetingHandler は会議予約とカレンダー出力のHTTPハンドラー。
type MeetingHandler struct {
	service MeetingServiceInterface
	loc     *time.Location
	now     func() time.Time
}

// NewMeetingHandler はMeetingHandlerを生成する。
// locは日付のみのクエリパラメータを解釈するタイムゾーン。
func NewMeetingHandler(service MeetingServiceInterface, loc *time.Location) *MeetingHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &MeetingHandler{service: service, loc: loc, now: time.Now}
}

// meetingRequest は会議の作成・更新リクエストのボディ。
type meetingRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	LocationID  string    `json:"location_id"`
	AttendeeIDs []string  `json:"attendee_ids"`
}

// meetingResponse は会議のAPIレスポンス。
type meetingResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	LocationID  *string   `json:"location_id"`
	AttendeeIDs []string  `json:"attendee_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// List は期間と重なる会議一覧を返す。
// GET /api/meetings?from=&to=
func (h *MeetingHandler) List(w http.ResponseWriter, r *http.Request) {
	from, to, err := h.parseRange(r, false)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	meetings, err := h.service.List(r.Context(), from, to)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := make([]meetingResponse, len(meetings))
	for i, m := range meetings {
		resp[i] = h.toMeetingResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get は会議を1件返す。
// GET /api/meetings/{id}
func (h *MeetingHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toMeetingResponse(m))
}

// Create は会議を登録する。
// POST /api/meetings
func (h *MeetingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req meetingRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeInvalidBody(w)
		return
	}

	m, err := h.service.Create(r.Context(), req.toInput())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toMeetingResponse(m))
}

// Update は会議を更新する。参加者は置き換えられる。
// PUT /api/meetings/{id}
func (h *MeetingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req meetingRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeInvalidBody(w)
		return
	}

	m, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toMeetingResponse(m))
}

// Delete は会議を削除する。
// DELETE /api/meetings/{id}
func (h *MeetingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Calendar は参加者の会議をiCalendar形式で返す。
// from・toを省略した場合は今日から90日間とする。
// GET /api/attendees/{id}/calendar.ics?from=&to=
func (h *MeetingHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	from, to, err := h.parseRange(r, true)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	attendeeID := chi.URLParam(r, "id")
	cal, err := h.service.ExportCalendar(r.Context(), attendeeID, from, to)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		handleServiceError(w, r, fmt.Errorf("カレンダーのエンコードに失敗しました: %w", err))
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="meetings.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.WarnContext(r.Context(), "failed to write calendar",
			slog.String("attendee_id", attendeeID),
			slog.String("error", err.Error()),
		)
	}
}

// parseRange はfrom・toクエリパラメータを解釈する。
// RFC 3339形式のほか "YYYY-MM-DD"（設定タイムゾーンの0時）を受け付ける。
// withDefaultsがtrueの場合、省略された値を今日から90日間で補う。
func (h *MeetingHandler) parseRange(r *http.Request, withDefaults bool) (time.Time, time.Time, error) {
	q := r.URL.Query()
	fromRaw, toRaw := q.Get("from"), q.Get("to")

	if !withDefaults && (fromRaw == "" || toRaw == "") {
		return time.Time{}, time.Time{}, model.NewInvalidRequestError("from と to を指定してください")
	}

	var from, to time.Time
	if fromRaw == "" {
		y, m, d := h.now().In(h.loc).Date()
		from = time.Date(y, m, d, 0, 0, 0, 0, h.loc)
	} else {
		t, err := parseTimeParam(fromRaw, h.loc)
		if err != nil {
			return time.Time{}, time.Time{}, model.NewInvalidDateError(fromRaw)
		}
		from = t
	}

	if toRaw == "" {
		to = from.Add(calendarDefaultRange)
	} else {
		t, err := parseTimeParam(toRaw, h.loc)
		if err != nil {
			return time.Time{}, time.Time{}, model.NewInvalidDateError(toRaw)
		}
		to = t
	}
	return from, to, nil
}

// parseTimeParam はRFC 3339形式または日付のみの文字列を時刻に変換する。
func parseTimeParam(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.ParseInLocation(time.DateOnly, value, loc)
}

func (req meetingRequest) toInput() meeting.Input {
	return meeting.Input{
		Title:       req.Title,
		Description: req.Description,
		Start:       req.Start,
		End:         req.End,
		LocationID:  req.LocationID,
		AttendeeIDs: req.AttendeeIDs,
	}
}

func (h *MeetingHandler) toMeetingResponse(m *model.Meeting) meetingResponse {
	resp := meetingResponse{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Start:       m.StartTime.In(h.loc),
		End:         m.EndTime.In(h.loc),
		AttendeeIDs: m.AttendeeIDs,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if resp.AttendeeIDs == nil {
		resp.AttendeeIDs = []string{}
	}
	if m.LocationID != "" {
		resp.LocationID = &m.LocationID
	}
	return resp
}
