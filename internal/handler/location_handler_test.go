package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/meetplan/internal/location"
	"github.com/hitoshi/meetplan/internal/model"
)

func TestLocationHandler_Create_CapacityIsOptional(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantCapacity interface{}
	}{
		{name: "定員あり", body: `{"name":"Room A","capacity":8}`, wantCapacity: float64(8)},
		{name: "定員なしはnull", body: `{"name":"Lounge"}`, wantCapacity: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewLocationHandler(&mockLocationService{
				createFn: func(ctx context.Context, in location.Input) (*model.Location, error) {
					return &model.Location{ID: "loc-1", Name: in.Name, Capacity: in.Capacity, CreatedAt: time.Now()}, nil
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/api/locations", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			h.Create(w, req)

			if w.Code != http.StatusCreated {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
			}
			var result map[string]interface{}
			decodeBody(t, w, &result)
			capacity, ok := result["capacity"]
			if !ok {
				t.Fatal("capacity key should always be present")
			}
			if capacity != tt.wantCapacity {
				t.Errorf("capacity = %v, want %v", capacity, tt.wantCapacity)
			}
		})
	}
}

func TestLocationHandler_Create_InvalidCapacity(t *testing.T) {
	h := NewLocationHandler(&mockLocationService{
		createFn: func(ctx context.Context, in location.Input) (*model.Location, error) {
			return nil, model.NewInvalidCapacityError(*in.Capacity)
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/locations", bytes.NewBufferString(`{"name":"Room","capacity":0}`))
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if got := parseAPIErrorResponse(t, w)["code"]; got != model.ErrCodeInvalidCapacity {
		t.Errorf("code = %q, want %q", got, model.ErrCodeInvalidCapacity)
	}
}

func TestLocationHandler_GetAndDelete_NotFound(t *testing.T) {
	h := NewLocationHandler(&mockLocationService{
		deleteFn: func(ctx context.Context, id string) error {
			return model.NewLocationNotFoundError(id)
		},
	})

	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/api/locations/x", nil), "id", "x")
	w := httptest.NewRecorder()
	h.Get(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("GET status = %d, want %d", w.Code, http.StatusNotFound)
	}

	req = withChiURLParam(httptest.NewRequest(http.MethodDelete, "/api/locations/x", nil), "id", "x")
	w = httptest.NewRecorder()
	h.Delete(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("DELETE status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestLocationHandler_List(t *testing.T) {
	h := NewLocationHandler(&mockLocationService{
		listFn: func(ctx context.Context) ([]*model.Location, error) {
			return []*model.Location{
				{ID: "loc-1", Name: "Room A", Capacity: intPtr(4)},
				{ID: "loc-2", Name: "Lounge"},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/locations", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var result []map[string]interface{}
	decodeBody(t, w, &result)
	if len(result) != 2 {
		t.Fatalf("len = %d, want 2", len(result))
	}
	if result[0]["name"] != "Room A" || result[1]["capacity"] != nil {
		t.Errorf("result = %v", result)
	}
}
