package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/meetplan/internal/model"
)

func decodeErrorBody(t *testing.T, w *httptest.ResponseRecorder) ErrorResponseBody {
	t.Helper()
	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return body
}

func TestStatusForAPIError(t *testing.T) {
	tests := []struct {
		err  *model.APIError
		want int
	}{
		{model.NewAttendeeNotFoundError("a"), http.StatusNotFound},
		{model.NewLocationNotFoundError("l"), http.StatusNotFound},
		{model.NewMeetingNotFoundError("m"), http.StatusNotFound},
		{model.NewEmptyAttendeesError(), http.StatusBadRequest},
		{model.NewTooManyAttendeesError(50), http.StatusBadRequest},
		{model.NewInvalidDurationError(0), http.StatusBadRequest},
		{model.NewInvalidDateError("2026-13-01"), http.StatusBadRequest},
		{model.NewInvalidTimeRangeError(), http.StatusBadRequest},
		{model.NewInvalidWorkingHoursError("end before start"), http.StatusBadRequest},
		{model.NewInvalidCapacityError(0), http.StatusBadRequest},
		{model.NewInvalidNameError("name"), http.StatusBadRequest},
		{model.NewInvalidEmailError("x"), http.StatusBadRequest},
		{model.NewInvalidRequestError("bad"), http.StatusBadRequest},
		{model.NewDuplicateEmailError(), http.StatusConflict},
		{model.NewUnauthorizedError(), http.StatusUnauthorized},
		{model.NewRateLimitedError(), http.StatusTooManyRequests},
		{model.NewInternalError(), http.StatusInternalServerError},
		{&model.APIError{Code: "SOMETHING_NEW"}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			if got := StatusForAPIError(tt.err); got != tt.want {
				t.Errorf("StatusForAPIError(%s) = %d, want %d", tt.err.Code, got, tt.want)
			}
		})
	}
}

// スケジューリング固有のエラーがコードに応じたステータスと統一フォーマットで返ること
func TestWriteAPIError_SchedulingErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *model.APIError
		wantStatus int
	}{
		{"参加者未指定", model.NewEmptyAttendeesError(), http.StatusBadRequest},
		{"勤務時間不正", model.NewInvalidWorkingHoursError("start 18:00 must be before end 09:00"), http.StatusBadRequest},
		{"参加者不明", model.NewAttendeeNotFoundError("0190b3f4-7a6e-7c3a-9f10-2b1d4c5e6f70"), http.StatusNotFound},
		{"メール重複", model.NewDuplicateEmailError(), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteAPIError(w, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
			body := decodeErrorBody(t, w)
			if body.Code != tt.err.Code || body.Category != tt.err.Category {
				t.Errorf("body = %+v, want code %q category %q", body, tt.err.Code, tt.err.Category)
			}
			if body.Message == "" || body.Action == "" {
				t.Errorf("message and action must be set: %+v", body)
			}
		})
	}
}

func TestWriteErrorResponse_StatusOverridesCode(t *testing.T) {
	w := httptest.NewRecorder()

	// 認証ミドルウェアはリゾルバのエラーを常に401で返す
	WriteErrorResponse(w, http.StatusUnauthorized, model.NewInvalidRequestError("token revoked"))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if body := decodeErrorBody(t, w); body.Code != model.ErrCodeInvalidRequest {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeInvalidRequest)
	}
}

func TestWriteInternalServerError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteInternalServerError(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	body := decodeErrorBody(t, w)
	if body.Code != model.ErrCodeInternal || body.Category != "system" {
		t.Errorf("body = %+v", body)
	}
}

func TestErrorResponseBody_JSONFieldNames(t *testing.T) {
	w := httptest.NewRecorder()
	WriteAPIError(w, model.NewTooManyAttendeesError(50))

	var raw map[string]any
	if err := json.NewDecoder(w.Body).Decode(&raw); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	for _, field := range []string{"code", "message", "category", "action"} {
		if _, ok := raw[field]; !ok {
			t.Errorf("missing field %q", field)
		}
	}
}
