// Package auth はAPIクライアントのトークン発行と認証を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/hitoshi/meetplan/internal/model"
	"github.com/hitoshi/meetplan/internal/repository"
)

// tokenBytes はトークンの乱数バイト長。hexエンコード後は64文字になる。
const tokenBytes = 32

// maxClientNameLength はクライアント名の最大文字数。
const maxClientNameLength = 100

// Service はAPIトークンに関するビジネスロジックを提供する。
type Service struct {
	clients repository.APIClientRepository
	now     func() time.Time
}

// NewService はServiceを生成する。
func NewService(clients repository.APIClientRepository) *Service {
	return &Service{clients: clients, now: time.Now}
}

// Issue は名前付きクライアントを登録し、平文トークンを返す。
// 平文トークンはこの戻り値でのみ得られ、DBにはハッシュのみを保存する。
func (s *Service) Issue(ctx context.Context, name string) (string, *model.APIClient, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxClientNameLength {
		return "", nil, model.NewInvalidNameError("client name")
	}

	token, err := generateToken()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate client ID: %w", err)
	}

	client := &model.APIClient{
		ID:        id.String(),
		Name:      name,
		TokenHash: HashToken(token),
		CreatedAt: s.now().UTC(),
	}
	if err := s.clients.Create(ctx, client); err != nil {
		return "", nil, fmt.Errorf("failed to save api client: %w", err)
	}

	slog.Info("api token issued",
		slog.String("client_id", client.ID),
		slog.String("client_name", client.Name),
	)
	return token, client, nil
}

// Resolve はトークンに対応するクライアントを返す。
// 空・未登録のトークンはUnauthorizedエラーとする。最終利用日時の更新失敗は認証結果に影響しない。
func (s *Service) Resolve(ctx context.Context, token string) (*model.APIClient, error) {
	if token == "" {
		return nil, model.NewUnauthorizedError()
	}

	client, err := s.clients.FindByTokenHash(ctx, HashToken(token))
	if err != nil {
		return nil, fmt.Errorf("failed to find api client: %w", err)
	}
	if client == nil {
		return nil, model.NewUnauthorizedError()
	}

	now := s.now().UTC()
	if err := s.clients.TouchLastUsed(ctx, client.ID, now); err != nil {
		slog.WarnContext(ctx, "failed to update last_used_at",
			slog.String("client_id", client.ID),
			slog.String("error", err.Error()),
		)
	} else {
		client.LastUsedAt = &now
	}
	return client, nil
}

// HashToken はトークンのSHA-256ハッシュをhex文字列で返す。
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// generateToken は暗号的に安全なトークンを生成する。
func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
