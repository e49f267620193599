package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/hitoshi/meetplan/internal/model"
)

const locationColumns = `id::text, name, capacity, work_start::text, work_end::text, created_at, updated_at`

// PostgresLocationRepo はPostgreSQLを使用した場所リポジトリ。
type PostgresLocationRepo struct {
	db *sql.DB
}

// NewPostgresLocationRepo はPostgresLocationRepoを生成する。
func NewPostgresLocationRepo(db *sql.DB) *PostgresLocationRepo {
	return &PostgresLocationRepo{db: db}
}

func scanLocation(row rowScanner) (*model.Location, error) {
	l := &model.Location{}
	var capacity sql.NullInt64
	var workStart, workEnd sql.NullString
	if err := row.Scan(&l.ID, &l.Name, &capacity, &workStart, &workEnd, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	wh, err := scanWorkingHours(workStart, workEnd)
	if err != nil {
		return nil, fmt.Errorf("location %s: %w", l.ID, err)
	}
	l.Capacity = nullIntValue(capacity)
	l.WorkingHours = wh
	return l, nil
}

// FindByID は指定IDの場所を取得する。見つからない場合はnilを返す。
func (r *PostgresLocationRepo) FindByID(ctx context.Context, id string) (*model.Location, error) {
	if uuid.Validate(id) != nil {
		return nil, nil
	}

	l, err := scanLocation(r.db.QueryRowContext(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE id = $1`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("場所の取得に失敗しました: %w", err)
	}
	return l, nil
}

// List は全場所をID昇順で返す。
func (r *PostgresLocationRepo) List(ctx context.Context) ([]*model.Location, error) {
	return r.list(ctx, `SELECT `+locationColumns+` FROM locations ORDER BY id::text`)
}

// ListWithCapacityAtLeast は定員がn以上の場所をID昇順で返す。定員未設定の場所は含まない。
func (r *PostgresLocationRepo) ListWithCapacityAtLeast(ctx context.Context, n int) ([]*model.Location, error) {
	return r.list(ctx,
		`SELECT `+locationColumns+` FROM locations
		 WHERE capacity IS NOT NULL AND capacity >= $1
		 ORDER BY id::text`,
		n,
	)
}

func (r *PostgresLocationRepo) list(ctx context.Context, query string, args ...any) ([]*model.Location, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("場所一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var locations []*model.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("場所のスキャンに失敗しました: %w", err)
		}
		locations = append(locations, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("場所一覧の読み取りに失敗しました: %w", err)
	}
	return locations, nil
}

// Create は場所を作成する。
func (r *PostgresLocationRepo) Create(ctx context.Context, l *model.Location) error {
	workStart, workEnd := workingHoursColumns(l.WorkingHours)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO locations (id, name, capacity, work_start, work_end, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		l.ID, l.Name, nullInt(l.Capacity), workStart, workEnd, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("場所の作成に失敗しました: %w", err)
	}
	return nil
}

// Update は場所を更新する。存在しない場合はErrNotFoundを返す。
func (r *PostgresLocationRepo) Update(ctx context.Context, l *model.Location) error {
	workStart, workEnd := workingHoursColumns(l.WorkingHours)
	result, err := r.db.ExecContext(ctx,
		`UPDATE locations SET name = $2, capacity = $3, work_start = $4, work_end = $5, updated_at = $6
		 WHERE id = $1`,
		l.ID, l.Name, nullInt(l.Capacity), workStart, workEnd, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("場所の更新に失敗しました: %w", err)
	}
	return expectAffected(result)
}

// Delete は場所を削除する。この場所を使う会議のlocation_idはNULLになる。
func (r *PostgresLocationRepo) Delete(ctx context.Context, id string) error {
	if uuid.Validate(id) != nil {
		return ErrNotFound
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("場所の削除に失敗しました: %w", err)
	}
	return expectAffected(result)
}

// compile-time interface check
var _ LocationRepository = (*PostgresLocationRepo)(nil)
