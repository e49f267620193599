// Package location は会議場所管理のドメインロジックを提供する。
package location

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hitoshi/meetplan/internal/availability"
	"github.com/hitoshi/meetplan/internal/model"
	"github.com/hitoshi/meetplan/internal/repository"
	"github.com/hitoshi/meetplan/internal/security"
)

const maxNameLength = 200

// Input は場所の作成・更新時の入力値。
// Capacityがnilの場合は定員不明として登録する。
type Input struct {
	Name      string
	Capacity  *int
	WorkStart string
	WorkEnd   string
}

// Service は場所管理のサービス層。
type Service struct {
	repo      repository.LocationRepository
	sanitizer security.TextSanitizerService
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.LocationRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		now:       time.Now,
	}
}

// Get は指定IDの場所を返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Location, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("場所の取得に失敗しました: %w", err)
	}
	if l == nil {
		return nil, model.NewLocationNotFoundError(id)
	}
	return l, nil
}

// List は全場所をID昇順で返す。
func (s *Service) List(ctx context.Context) ([]*model.Location, error) {
	locations, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("場所一覧の取得に失敗しました: %w", err)
	}
	return locations, nil
}

// Create は場所を登録する。
func (s *Service) Create(ctx context.Context, in Input) (*model.Location, error) {
	l, err := s.validate(in)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("場所IDの生成に失敗しました: %w", err)
	}
	now := s.now().UTC()
	l.ID = id.String()
	l.CreatedAt = now
	l.UpdatedAt = now

	if err := s.repo.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("場所の登録に失敗しました: %w", err)
	}
	return l, nil
}

// Update は場所の名前・定員・利用可能時間を置き換える。
func (s *Service) Update(ctx context.Context, id string, in Input) (*model.Location, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	l, err := s.validate(in)
	if err != nil {
		return nil, err
	}
	l.ID = current.ID
	l.CreatedAt = current.CreatedAt
	l.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, l); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewLocationNotFoundError(id)
		}
		return nil, fmt.Errorf("場所の更新に失敗しました: %w", err)
	}
	return l, nil
}

// Delete は場所を削除する。この場所を使っていた会議は場所未定になる。
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewLocationNotFoundError(id)
		}
		return fmt.Errorf("場所の削除に失敗しました: %w", err)
	}
	return nil
}

func (s *Service) validate(in Input) (*model.Location, error) {
	name := s.sanitizer.SanitizeLine(in.Name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return nil, model.NewInvalidNameError("場所名")
	}

	if in.Capacity != nil && *in.Capacity <= 0 {
		return nil, model.NewInvalidCapacityError(*in.Capacity)
	}

	wh, err := availability.ParseOptionalWorkingHours(in.WorkStart, in.WorkEnd)
	if err != nil {
		return nil, model.NewInvalidWorkingHoursError(err.Error())
	}

	var capacity *int
	if in.Capacity != nil {
		c := *in.Capacity
		capacity = &c
	}
	return &model.Location{Name: name, Capacity: capacity, WorkingHours: wh}, nil
}
