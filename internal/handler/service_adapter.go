package handler

import (
	"context"
	"time"

	"github.com/hitoshi/meetplan/internal/availability"
	"github.com/hitoshi/meetplan/internal/interval"
	"github.com/hitoshi/meetplan/internal/scheduling"
)

// SchedulingServiceAdapter は scheduling.Service を SchedulingServiceInterface に適合させるアダプタ。
type SchedulingServiceAdapter struct {
	svc *scheduling.Service
}

// NewSchedulingServiceAdapter はSchedulingServiceAdapterを生成する。
func NewSchedulingServiceAdapter(svc *scheduling.Service) *SchedulingServiceAdapter {
	return &SchedulingServiceAdapter{svc: svc}
}

// ParseDate は日付文字列を設定タイムゾーンで解釈する。
func (a *SchedulingServiceAdapter) ParseDate(value string) (time.Time, error) {
	return a.svc.ParseDate(value)
}

// AttendeeAvailability は参加者の空き区間をhandlerレスポンス型で返す。
func (a *SchedulingServiceAdapter) AttendeeAvailability(ctx context.Context, attendeeID string, date time.Time) ([]slotResponse, error) {
	slots, err := a.svc.AttendeeAvailability(ctx, attendeeID, date)
	if err != nil {
		return nil, err
	}
	return toSlotResponses(slots), nil
}

// LocationAvailability は場所の空き区間をhandlerレスポンス型で返す。
func (a *SchedulingServiceAdapter) LocationAvailability(ctx context.Context, locationID string, date time.Time) ([]slotResponse, error) {
	slots, err := a.svc.LocationAvailability(ctx, locationID, date)
	if err != nil {
		return nil, err
	}
	return toSlotResponses(slots), nil
}

// CommonAvailability は共通空き区間をhandlerレスポンス型で返す。
func (a *SchedulingServiceAdapter) CommonAvailability(ctx context.Context, attendeeIDs []string, date time.Time) ([]slotResponse, error) {
	slots, err := a.svc.CommonAvailability(ctx, attendeeIDs, date)
	if err != nil {
		return nil, err
	}
	return toSlotResponses(slots), nil
}

// LocationsByDuration は場所検索結果をhandlerレスポンス型で返す。
func (a *SchedulingServiceAdapter) LocationsByDuration(ctx context.Context, date time.Time, duration time.Duration, minCapacity *int) ([]locationSlotResponse, error) {
	slots, err := a.svc.LocationsByDuration(ctx, date, duration, minCapacity)
	if err != nil {
		return nil, err
	}

	results := make([]locationSlotResponse, len(slots))
	for i, s := range slots {
		results[i] = toLocationSlotResponse(s)
	}
	return results, nil
}

// Suggest は会議候補をhandlerレスポンス型で返す。
func (a *SchedulingServiceAdapter) Suggest(ctx context.Context, attendeeIDs []string, duration time.Duration, date time.Time) ([]suggestionResponse, error) {
	suggestions, err := a.svc.Suggest(ctx, attendeeIDs, duration, date)
	if err != nil {
		return nil, err
	}

	results := make([]suggestionResponse, len(suggestions))
	for i, s := range suggestions {
		results[i] = toSuggestionResponse(s)
	}
	return results, nil
}

func toSlotResponses(slots []interval.Interval) []slotResponse {
	results := make([]slotResponse, len(slots))
	for i, s := range slots {
		results[i] = slotResponse{Start: s.Start, End: s.End}
	}
	return results
}

func toLocationSlotResponse(s availability.LocationSlot) locationSlotResponse {
	return locationSlotResponse{
		LocationID:   s.Location.ID,
		LocationName: s.Location.Name,
		Capacity:     s.Location.Capacity,
		Start:        s.Slot.Start,
		End:          s.Slot.End,
	}
}

func toSuggestionResponse(s availability.Suggestion) suggestionResponse {
	return suggestionResponse{
		Start: s.Start,
		End:   s.End,
		Location: suggestedLocation{
			ID:       s.Location.ID,
			Name:     s.Location.Name,
			Capacity: s.Location.Capacity,
		},
	}
}
