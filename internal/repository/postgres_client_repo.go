package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/meetplan/internal/model"
)

// PostgresAPIClientRepo はPostgreSQLを使用したAPIクライアントリポジトリ。
type PostgresAPIClientRepo struct {
	db *sql.DB
}

// NewPostgresAPIClientRepo はPostgresAPIClientRepoを生成する。
func NewPostgresAPIClientRepo(db *sql.DB) *PostgresAPIClientRepo {
	return &PostgresAPIClientRepo{db: db}
}

// Create はAPIクライアントを作成する。
func (r *PostgresAPIClientRepo) Create(ctx context.Context, c *model.APIClient) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_clients (id, name, token_hash, created_at) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.TokenHash, c.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateKey
	}
	if err != nil {
		return fmt.Errorf("failed to create api client: %w", err)
	}
	return nil
}

// FindByTokenHash はトークンハッシュでクライアントを検索する。見つからない場合はnilを返す。
func (r *PostgresAPIClientRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.APIClient, error) {
	c := &model.APIClient{}
	var lastUsed sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT id::text, name, token_hash, created_at, last_used_at FROM api_clients WHERE token_hash = $1`,
		tokenHash,
	).Scan(&c.ID, &c.Name, &c.TokenHash, &c.CreatedAt, &lastUsed)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find api client: %w", err)
	}
	if lastUsed.Valid {
		c.LastUsedAt = &lastUsed.Time
	}
	return c, nil
}

// TouchLastUsed は最終利用日時を更新する。
func (r *PostgresAPIClientRepo) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE api_clients SET last_used_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to update api client last_used_at: %w", err)
	}
	return nil
}

// compile-time interface check
var _ APIClientRepository = (*PostgresAPIClientRepo)(nil)
