// Package meeting は会議予約のドメインロジックを提供する。
//
// 会議は参加者・場所の予定区間の唯一の情報源であり、空き時間計算はここで登録された
// 会議から導出される。
package meeting

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hitoshi/meetplan/internal/model"
	"github.com/hitoshi/meetplan/internal/repository"
	"github.com/hitoshi/meetplan/internal/security"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 5000
)

// Input は会議の作成・更新時の入力値。
// LocationIDが空の場合は場所未定として登録する。
type Input struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	LocationID  string
	AttendeeIDs []string
}

// Service は会議予約のサービス層。
type Service struct {
	meetings  repository.MeetingRepository
	attendees repository.AttendeeRepository
	locations repository.LocationRepository
	sanitizer security.TextSanitizerService
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	meetings repository.MeetingRepository,
	attendees repository.AttendeeRepository,
	locations repository.LocationRepository,
	sanitizer security.TextSanitizerService,
) *Service {
	return &Service{
		meetings:  meetings,
		attendees: attendees,
		locations: locations,
		sanitizer: sanitizer,
		now:       time.Now,
	}
}

// Get は指定IDの会議を返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Meeting, error) {
	m, err := s.meetings.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("会議の取得に失敗しました: %w", err)
	}
	if m == nil {
		return nil, model.NewMeetingNotFoundError(id)
	}
	return m, nil
}

// List は [from, to) と重なる会議を開始時刻昇順で返す。
func (s *Service) List(ctx context.Context, from, to time.Time) ([]*model.Meeting, error) {
	if !from.Before(to) {
		return nil, model.NewInvalidTimeRangeError()
	}
	meetings, err := s.meetings.ListOverlapping(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("会議一覧の取得に失敗しました: %w", err)
	}
	return meetings, nil
}

// Create は会議を登録する。参加者・場所は全て登録済みである必要がある。
func (s *Service) Create(ctx context.Context, in Input) (*model.Meeting, error) {
	m, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("会議IDの生成に失敗しました: %w", err)
	}
	now := s.now().UTC()
	m.ID = id.String()
	m.CreatedAt = now
	m.UpdatedAt = now

	if err := s.meetings.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("会議の登録に失敗しました: %w", err)
	}
	return m, nil
}

// Update は会議の内容と参加者を置き換える。
func (s *Service) Update(ctx context.Context, id string, in Input) (*model.Meeting, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	m, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}
	m.ID = current.ID
	m.CreatedAt = current.CreatedAt
	m.UpdatedAt = s.now().UTC()

	if err := s.meetings.Update(ctx, m); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewMeetingNotFoundError(id)
		}
		return nil, fmt.Errorf("会議の更新に失敗しました: %w", err)
	}
	return m, nil
}

// Delete は会議を削除する。
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.meetings.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewMeetingNotFoundError(id)
		}
		return fmt.Errorf("会議の削除に失敗しました: %w", err)
	}
	return nil
}

func (s *Service) validate(ctx context.Context, in Input) (*model.Meeting, error) {
	title := s.sanitizer.SanitizeLine(in.Title)
	if title == "" || utf8.RuneCountInString(title) > maxTitleLength {
		return nil, model.NewInvalidNameError("タイトル")
	}

	description := s.sanitizer.SanitizeText(in.Description)
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		description = string([]rune(description)[:maxDescriptionLength])
	}

	if in.Start.IsZero() || in.End.IsZero() || !in.Start.Before(in.End) {
		return nil, model.NewInvalidTimeRangeError()
	}

	attendeeIDs := model.UniqueIDs(in.AttendeeIDs)
	if err := s.ensureAttendeesExist(ctx, attendeeIDs); err != nil {
		return nil, err
	}

	if in.LocationID != "" {
		loc, err := s.locations.FindByID(ctx, in.LocationID)
		if err != nil {
			return nil, fmt.Errorf("場所の取得に失敗しました: %w", err)
		}
		if loc == nil {
			return nil, model.NewLocationNotFoundError(in.LocationID)
		}
	}

	return &model.Meeting{
		Title:       title,
		Description: description,
		StartTime:   in.Start.UTC(),
		EndTime:     in.End.UTC(),
		LocationID:  in.LocationID,
		AttendeeIDs: attendeeIDs,
	}, nil
}

func (s *Service) ensureAttendeesExist(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := s.attendees.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("参加者の取得に失敗しました: %w", err)
	}
	if missing := model.FirstMissingAttendee(ids, found); missing != "" {
		return model.NewAttendeeNotFoundError(missing)
	}
	return nil
}
