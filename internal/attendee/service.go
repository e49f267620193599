// Package attendee は参加者管理のドメインロジックを提供する。
package attendee

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hitoshi/meetplan/internal/availability"
	"github.com/hitoshi/meetplan/internal/model"
	"github.com/hitoshi/meetplan/internal/repository"
	"github.com/hitoshi/meetplan/internal/security"
)

// maxNameLength は名前の最大文字数。
const maxNameLength = 200

// Input は参加者の作成・更新時の入力値。
// WorkStart・WorkEndが両方空の場合は勤務時間未設定として扱う。
type Input struct {
	Name      string
	Email     string
	WorkStart string
	WorkEnd   string
}

// Service は参加者管理のサービス層。
type Service struct {
	repo      repository.AttendeeRepository
	sanitizer security.TextSanitizerService
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.AttendeeRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		now:       time.Now,
	}
}

// Get は指定IDの参加者を返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Attendee, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("参加者の取得に失敗しました: %w", err)
	}
	if a == nil {
		return nil, model.NewAttendeeNotFoundError(id)
	}
	return a, nil
}

// List は全参加者をID昇順で返す。
func (s *Service) List(ctx context.Context) ([]*model.Attendee, error) {
	attendees, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("参加者一覧の取得に失敗しました: %w", err)
	}
	return attendees, nil
}

// Create は参加者を登録する。
func (s *Service) Create(ctx context.Context, in Input) (*model.Attendee, error) {
	a, err := s.validate(in)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("参加者IDの生成に失敗しました: %w", err)
	}
	now := s.now().UTC()
	a.ID = id.String()
	a.CreatedAt = now
	a.UpdatedAt = now

	if err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, model.NewDuplicateEmailError()
		}
		return nil, fmt.Errorf("参加者の登録に失敗しました: %w", err)
	}
	return a, nil
}

// Update は参加者の名前・メールアドレス・勤務時間を置き換える。
func (s *Service) Update(ctx context.Context, id string, in Input) (*model.Attendee, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	a, err := s.validate(in)
	if err != nil {
		return nil, err
	}
	a.ID = current.ID
	a.CreatedAt = current.CreatedAt
	a.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, a); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateKey):
			return nil, model.NewDuplicateEmailError()
		case errors.Is(err, repository.ErrNotFound):
			return nil, model.NewAttendeeNotFoundError(id)
		}
		return nil, fmt.Errorf("参加者の更新に失敗しました: %w", err)
	}
	return a, nil
}

// Delete は参加者を削除する。
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewAttendeeNotFoundError(id)
		}
		return fmt.Errorf("参加者の削除に失敗しました: %w", err)
	}
	return nil
}

func (s *Service) validate(in Input) (*model.Attendee, error) {
	name := s.sanitizer.SanitizeLine(in.Name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return nil, model.NewInvalidNameError("名前")
	}

	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, model.NewInvalidEmailError(in.Email)
	}

	wh, err := availability.ParseOptionalWorkingHours(in.WorkStart, in.WorkEnd)
	if err != nil {
		return nil, model.NewInvalidWorkingHoursError(err.Error())
	}

	return &model.Attendee{Name: name, Email: email, WorkingHours: wh}, nil
}

// normalizeEmail は表示名なしの単一アドレスのみを受け付け、小文字化して返す。
func normalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return "", err
	}
	if addr.Address != raw {
		return "", fmt.Errorf("unexpected display name in %q", raw)
	}
	return strings.ToLower(addr.Address), nil
}
