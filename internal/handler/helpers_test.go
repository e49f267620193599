package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/meetplan/internal/attendee"
	"github.com/hitoshi/meetplan/internal/location"
	"github.com/hitoshi/meetplan/internal/meeting"
	"github.com/hitoshi/meetplan/internal/model"
)

// --- モック定義 ---

// mockAttendeeService はAttendeeServiceInterfaceのモック実装。
type mockAttendeeService struct {
	getFn    func(ctx context.Context, id string) (*model.Attendee, error)
	listFn   func(ctx context.Context) ([]*model.Attendee, error)
	createFn func(ctx context.Context, in attendee.Input) (*model.Attendee, error)
	updateFn func(ctx context.Context, id string, in attendee.Input) (*model.Attendee, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockAttendeeService) Get(ctx context.Context, id string) (*model.Attendee, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, model.NewAttendeeNotFoundError(id)
}

func (m *mockAttendeeService) List(ctx context.Context) ([]*model.Attendee, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockAttendeeService) Create(ctx context.Context, in attendee.Input) (*model.Attendee, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return nil, nil
}

func (m *mockAttendeeService) Update(ctx context.Context, id string, in attendee.Input) (*model.Attendee, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, in)
	}
	return nil, nil
}

func (m *mockAttendeeService) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// mockLocationService はLocationServiceInterfaceのモック実装。
type mockLocationService struct {
	getFn    func(ctx context.Context, id string) (*model.Location, error)
	listFn   func(ctx context.Context) ([]*model.Location, error)
	createFn func(ctx context.Context, in location.Input) (*model.Location, error)
	updateFn func(ctx context.Context, id string, in location.Input) (*model.Location, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockLocationService) Get(ctx context.Context, id string) (*model.Location, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, model.NewLocationNotFoundError(id)
}

func (m *mockLocationService) List(ctx context.Context) ([]*model.Location, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockLocationService) Create(ctx context.Context, in location.Input) (*model.Location, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return nil, nil
}

func (m *mockLocationService) Update(ctx context.Context, id string, in location.Input) (*model.Location, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, in)
	}
	return nil, nil
}

func (m *mockLocationService) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// mockMeetingService はMeetingServiceInterfaceのモック実装。
type mockMeetingService struct {
	getFn      func(ctx context.Context, id string) (*model.Meeting, error)
	listFn     func(ctx context.Context, from, to time.Time) ([]*model.Meeting, error)
	createFn   func(ctx context.Context, in meeting.Input) (*model.Meeting, error)
	updateFn   func(ctx context.Context, id string, in meeting.Input) (*model.Meeting, error)
	deleteFn   func(ctx context.Context, id string) error
	calendarFn func(ctx context.Context, attendeeID string, from, to time.Time) (*ical.Calendar, error)
}

func (m *mockMeetingService) Get(ctx context.Context, id string) (*model.Meeting, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, model.NewMeetingNotFoundError(id)
}

func (m *mockMeetingService) List(ctx context.Context, from, to time.Time) ([]*model.Meeting, error) {
	if m.listFn != nil {
		return m.listFn(ctx, from, to)
	}
	return nil, nil
}

func (m *mockMeetingService) Create(ctx context.Context, in meeting.Input) (*model.Meeting, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return nil, nil
}

func (m *mockMeetingService) Update(ctx context.Context, id string, in meeting.Input) (*model.Meeting, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, in)
	}
	return nil, nil
}

func (m *mockMeetingService) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockMeetingService) ExportCalendar(ctx context.Context, attendeeID string, from, to time.Time) (*ical.Calendar, error) {
	if m.calendarFn != nil {
		return m.calendarFn(ctx, attendeeID, from, to)
	}
	return nil, model.NewAttendeeNotFoundError(attendeeID)
}

// mockSchedulingService はSchedulingServiceInterfaceのモック実装。
type mockSchedulingService struct {
	attendeeFn func(ctx context.Context, attendeeID string, date time.Time) ([]slotResponse, error)
	locationFn func(ctx context.Context, locationID string, date time.Time) ([]slotResponse, error)
	commonFn   func(ctx context.Context, attendeeIDs []string, date time.Time) ([]slotResponse, error)
	searchFn   func(ctx context.Context, date time.Time, duration time.Duration, minCapacity *int) ([]locationSlotResponse, error)
	suggestFn  func(ctx context.Context, attendeeIDs []string, duration time.Duration, date time.Time) ([]suggestionResponse, error)
}

// ParseDate は実サービスと同じ形式（UTC）で日付を解釈する。
func (m *mockSchedulingService) ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, model.NewInvalidDateError(value)
	}
	return t, nil
}

func (m *mockSchedulingService) AttendeeAvailability(ctx context.Context, attendeeID string, date time.Time) ([]slotResponse, error) {
	if m.attendeeFn != nil {
		return m.attendeeFn(ctx, attendeeID, date)
	}
	return nil, nil
}

func (m *mockSchedulingService) LocationAvailability(ctx context.Context, locationID string, date time.Time) ([]slotResponse, error) {
	if m.locationFn != nil {
		return m.locationFn(ctx, locationID, date)
	}
	return nil, nil
}

func (m *mockSchedulingService) CommonAvailability(ctx context.Context, attendeeIDs []string, date time.Time) ([]slotResponse, error) {
	if m.commonFn != nil {
		return m.commonFn(ctx, attendeeIDs, date)
	}
	return nil, nil
}

func (m *mockSchedulingService) LocationsByDuration(ctx context.Context, date time.Time, duration time.Duration, minCapacity *int) ([]locationSlotResponse, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, date, duration, minCapacity)
	}
	return nil, nil
}

func (m *mockSchedulingService) Suggest(ctx context.Context, attendeeIDs []string, duration time.Duration, date time.Time) ([]suggestionResponse, error) {
	if m.suggestFn != nil {
		return m.suggestFn(ctx, attendeeIDs, duration, date)
	}
	return nil, nil
}

// --- テストヘルパー ---

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// parseAPIErrorResponse はレスポンスボディからAPIErrorレスポンスをパースするヘルパー。
func parseAPIErrorResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return result
}

// decodeBody はレスポンスボディをvにデコードするヘルパー。
func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func intPtr(n int) *int { return &n }
