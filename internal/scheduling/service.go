// Package scheduling は空き時間照会と会議候補提案のユースケースを提供する。
//
// リポジトリから勤務時間と予定区間のスナップショットを取得し、前提条件を検査したうえで
// availabilityパッケージの計算エンジンに渡す。エンジン自体はデータ取得を行わない。
package scheduling

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/meetplan/internal/availability"
	"github.com/hitoshi/meetplan/internal/interval"
	"github.com/hitoshi/meetplan/internal/metrics"
	"github.com/hitoshi/meetplan/internal/model"
	"github.com/hitoshi/meetplan/internal/repository"
)

// DateLayout は日付パラメータの形式。
const DateLayout = "2006-01-02"

// maxDuration は会議時間の上限。勤務時間は1日を超えないため、これより長い会議は成立しない。
const maxDuration = 24 * time.Hour

// Config はスケジューリングサービスの設定。
type Config struct {
	// TimeZone は日付と勤務時間を解釈するタイムゾーン。nilの場合はUTC。
	TimeZone *time.Location
	// MaxAttendees は共通空き時間・候補提案で指定できる参加者数の上限。0以下の場合は無制限。
	MaxAttendees int
}

// Service は空き時間照会のサービス層。
type Service struct {
	attendees repository.AttendeeRepository
	locations repository.LocationRepository
	meetings  repository.MeetingRepository
	metrics   metrics.MetricsCollector
	cfg       Config
}

// NewService はServiceの新しいインスタンスを生成する。
// collectorがnilの場合はメトリクスを記録しない。
func NewService(
	attendees repository.AttendeeRepository,
	locations repository.LocationRepository,
	meetings repository.MeetingRepository,
	collector metrics.MetricsCollector,
	cfg Config,
) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	if cfg.TimeZone == nil {
		cfg.TimeZone = time.UTC
	}
	return &Service{
		attendees: attendees,
		locations: locations,
		meetings:  meetings,
		metrics:   collector,
		cfg:       cfg,
	}
}

// ParseDate は "YYYY-MM-DD" 形式の日付を設定タイムゾーンの0時として解釈する。
func (s *Service) ParseDate(value string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, value, s.cfg.TimeZone)
	if err != nil {
		return time.Time{}, model.NewInvalidDateError(value)
	}
	return d, nil
}

// AttendeeAvailability は参加者1人の指定日の空き区間を返す。
func (s *Service) AttendeeAvailability(ctx context.Context, attendeeID string, date time.Time) ([]interval.Interval, error) {
	date = s.day(date)

	a, err := s.attendees.FindByID(ctx, attendeeID)
	if err != nil {
		return nil, fmt.Errorf("参加者の取得に失敗しました: %w", err)
	}
	if a == nil {
		return nil, model.NewAttendeeNotFoundError(attendeeID)
	}

	entities, err := s.attendeeSnapshots(ctx, []*model.Attendee{a}, date)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	free := availability.FreeSlots(entities[0].Hours, date, entities[0].Booked)
	s.record(metrics.KindAttendeeAvailability, start, len(free))
	return free, nil
}

// LocationAvailability は場所1件の指定日の空き区間を返す。
func (s *Service) LocationAvailability(ctx context.Context, locationID string, date time.Time) ([]interval.Interval, error) {
	date = s.day(date)

	l, err := s.locations.FindByID(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("場所の取得に失敗しました: %w", err)
	}
	if l == nil {
		return nil, model.NewLocationNotFoundError(locationID)
	}

	snapshots, err := s.locationSnapshots(ctx, []*model.Location{l}, date)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	free := availability.FreeSlots(snapshots[0].Hours, date, snapshots[0].Booked)
	s.record(metrics.KindLocationAvailability, start, len(free))
	return free, nil
}

// CommonAvailability は指定した参加者全員が空いている区間を返す。
// 参加者IDの重複は1人として扱う。
func (s *Service) CommonAvailability(ctx context.Context, attendeeIDs []string, date time.Time) ([]interval.Interval, error) {
	date = s.day(date)

	entities, err := s.loadAttendees(ctx, attendeeIDs, date)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	common := availability.CommonFreeSlots(date, entities)
	s.record(metrics.KindCommonAvailability, start, len(common))
	return common, nil
}

// LocationsByDuration は指定日にduration以上連続して空いている場所と区間を返す。
// minCapacityを指定した場合は定員がそれ以上と分かっている場所に限定する。
func (s *Service) LocationsByDuration(ctx context.Context, date time.Time, duration time.Duration, minCapacity *int) ([]availability.LocationSlot, error) {
	date = s.day(date)

	if err := validateDuration(duration); err != nil {
		return nil, err
	}
	if minCapacity != nil && *minCapacity < 0 {
		return nil, model.NewInvalidCapacityError(*minCapacity)
	}

	var (
		locs []*model.Location
		err  error
	)
	if minCapacity != nil {
		locs, err = s.locations.ListWithCapacityAtLeast(ctx, *minCapacity)
	} else {
		locs, err = s.locations.List(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("場所一覧の取得に失敗しました: %w", err)
	}

	snapshots, err := s.locationSnapshots(ctx, locs, date)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	slots := availability.FindByDuration(date, duration, minCapacity, snapshots)
	s.record(metrics.KindLocationSearch, start, len(slots))
	return slots, nil
}

// Suggest は参加者全員が空いていて、参加人数以上の定員を持つ場所が確保できる会議候補を返す。
// 条件を満たす候補がない場合はエラーではなく空を返す。
func (s *Service) Suggest(ctx context.Context, attendeeIDs []string, duration time.Duration, date time.Time) ([]availability.Suggestion, error) {
	date = s.day(date)

	if err := validateDuration(duration); err != nil {
		return nil, err
	}

	entities, err := s.loadAttendees(ctx, attendeeIDs, date)
	if err != nil {
		return nil, err
	}

	locs, err := s.locations.ListWithCapacityAtLeast(ctx, len(entities))
	if err != nil {
		return nil, fmt.Errorf("場所一覧の取得に失敗しました: %w", err)
	}
	snapshots, err := s.locationSnapshots(ctx, locs, date)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	suggestions := availability.Suggest(date, duration, entities, snapshots)
	s.record(metrics.KindSuggestion, start, len(suggestions))

	slog.DebugContext(ctx, "suggestions computed",
		slog.String("date", date.Format(DateLayout)),
		slog.Int("attendees", len(entities)),
		slog.Int("candidate_locations", len(snapshots)),
		slog.Duration("duration", duration),
		slog.Int("suggestions", len(suggestions)),
	)
	return suggestions, nil
}

// loadAttendees は参加者IDの前提条件を検査し、スナップショットを返す。
func (s *Service) loadAttendees(ctx context.Context, attendeeIDs []string, date time.Time) ([]availability.Entity, error) {
	ids := model.UniqueIDs(attendeeIDs)
	if len(ids) == 0 {
		return nil, model.NewEmptyAttendeesError()
	}
	if s.cfg.MaxAttendees > 0 && len(ids) > s.cfg.MaxAttendees {
		return nil, model.NewTooManyAttendeesError(s.cfg.MaxAttendees)
	}

	found, err := s.attendees.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("参加者の取得に失敗しました: %w", err)
	}
	if missing := model.FirstMissingAttendee(ids, found); missing != "" {
		return nil, model.NewAttendeeNotFoundError(missing)
	}

	return s.attendeeSnapshots(ctx, found, date)
}

func (s *Service) attendeeSnapshots(ctx context.Context, attendees []*model.Attendee, date time.Time) ([]availability.Entity, error) {
	ids := make([]string, len(attendees))
	for i, a := range attendees {
		ids[i] = a.ID
	}

	day := availability.DayRange(date)
	bookings, err := s.meetings.ListBookedByAttendees(ctx, ids, day.Start, day.End)
	if err != nil {
		return nil, fmt.Errorf("参加者の予定取得に失敗しました: %w", err)
	}
	booked, err := groupBookings(bookings)
	if err != nil {
		return nil, err
	}

	entities := make([]availability.Entity, len(attendees))
	for i, a := range attendees {
		entities[i] = availability.Entity{
			ID:     a.ID,
			Hours:  a.WorkingHours,
			Booked: booked[a.ID],
		}
	}
	return entities, nil
}

func (s *Service) locationSnapshots(ctx context.Context, locs []*model.Location, date time.Time) ([]availability.Location, error) {
	if len(locs) == 0 {
		return nil, nil
	}

	ids := make([]string, len(locs))
	for i, l := range locs {
		ids[i] = l.ID
	}

	day := availability.DayRange(date)
	bookings, err := s.meetings.ListBookedByLocations(ctx, ids, day.Start, day.End)
	if err != nil {
		return nil, fmt.Errorf("場所の予定取得に失敗しました: %w", err)
	}
	booked, err := groupBookings(bookings)
	if err != nil {
		return nil, err
	}

	out := make([]availability.Location, len(locs))
	for i, l := range locs {
		out[i] = availability.Location{
			ID:       l.ID,
			Name:     l.Name,
			Capacity: l.Capacity,
			Hours:    l.WorkingHours,
			Booked:   booked[l.ID],
		}
	}
	return out, nil
}

// day は日付を設定タイムゾーンのその日の0時に揃える。
// 年月日はそのまま使い、時刻とタイムゾーンのみを置き換える。
func (s *Service) day(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.cfg.TimeZone)
}

func (s *Service) record(kind string, start time.Time, results int) {
	s.metrics.RecordEngineLatency(kind, time.Since(start))
	s.metrics.RecordQuery(kind, results)
}

// groupBookings は予定を所有者ID別の区間に変換する。
// start >= end の予定は上流で防がれているべき構造違反としてエラーにする。
func groupBookings(bookings []model.Booking) (map[string][]interval.Interval, error) {
	out := make(map[string][]interval.Interval)
	for _, b := range bookings {
		iv, err := interval.New(b.StartTime, b.EndTime)
		if err != nil {
			return nil, fmt.Errorf("会議 %s の予定区間が不正です: %w", b.MeetingID, err)
		}
		out[b.OwnerID] = append(out[b.OwnerID], iv)
	}
	return out, nil
}

func validateDuration(d time.Duration) error {
	if d <= 0 || d > maxDuration {
		return model.NewInvalidDurationError(int(d / time.Minute))
	}
	return nil
}
