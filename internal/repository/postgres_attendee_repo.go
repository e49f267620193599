package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/hitoshi/meetplan/internal/model"
)

const attendeeColumns = `id::text, name, email, work_start::text, work_end::text, created_at, updated_at`

// PostgresAttendeeRepo はPostgreSQLを使用した参加者リポジトリ。
type PostgresAttendeeRepo struct {
	db *sql.DB
}

// NewPostgresAttendeeRepo はPostgresAttendeeRepoを生成する。
func NewPostgresAttendeeRepo(db *sql.DB) *PostgresAttendeeRepo {
	return &PostgresAttendeeRepo{db: db}
}

func scanAttendee(row rowScanner) (*model.Attendee, error) {
	a := &model.Attendee{}
	var workStart, workEnd sql.NullString
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &workStart, &workEnd, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	wh, err := scanWorkingHours(workStart, workEnd)
	if err != nil {
		return nil, fmt.Errorf("attendee %s: %w", a.ID, err)
	}
	a.WorkingHours = wh
	return a, nil
}

// FindByID は指定IDの参加者を取得する。見つからない場合はnilを返す。
func (r *PostgresAttendeeRepo) FindByID(ctx context.Context, id string) (*model.Attendee, error) {
	if uuid.Validate(id) != nil {
		return nil, nil
	}

	a, err := scanAttendee(r.db.QueryRowContext(ctx,
		`SELECT `+attendeeColumns+` FROM attendees WHERE id = $1`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("参加者の取得に失敗しました: %w", err)
	}
	return a, nil
}

// FindByIDs は指定IDの参加者をID昇順で取得する。存在しないIDは結果に含まれない。
func (r *PostgresAttendeeRepo) FindByIDs(ctx context.Context, ids []string) ([]*model.Attendee, error) {
	ids = validIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx,
		`SELECT `+attendeeColumns+` FROM attendees WHERE id = ANY($1::uuid[]) ORDER BY id::text`,
		pq.Array(ids),
	)
}

// FindByEmail はメールアドレスで参加者を検索する。見つからない場合はnilを返す。
func (r *PostgresAttendeeRepo) FindByEmail(ctx context.Context, email string) (*model.Attendee, error) {
	a, err := scanAttendee(r.db.QueryRowContext(ctx,
		`SELECT `+attendeeColumns+` FROM attendees WHERE email = $1`,
		email,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("メールアドレスによる参加者の検索に失敗しました: %w", err)
	}
	return a, nil
}

// List は全参加者をID昇順で返す。
func (r *PostgresAttendeeRepo) List(ctx context.Context) ([]*model.Attendee, error) {
	return r.list(ctx, `SELECT `+attendeeColumns+` FROM attendees ORDER BY id::text`)
}

func (r *PostgresAttendeeRepo) list(ctx context.Context, query string, args ...any) ([]*model.Attendee, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("参加者一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var attendees []*model.Attendee
	for rows.Next() {
		a, err := scanAttendee(rows)
		if err != nil {
			return nil, fmt.Errorf("参加者のスキャンに失敗しました: %w", err)
		}
		attendees = append(attendees, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("参加者一覧の読み取りに失敗しました: %w", err)
	}
	return attendees, nil
}

// Create は参加者を作成する。emailが重複する場合はErrDuplicateKeyを返す。
func (r *PostgresAttendeeRepo) Create(ctx context.Context, a *model.Attendee) error {
	workStart, workEnd := workingHoursColumns(a.WorkingHours)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO attendees (id, name, email, work_start, work_end, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.Name, a.Email, workStart, workEnd, a.CreatedAt, a.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateKey
	}
	if err != nil {
		return fmt.Errorf("参加者の作成に失敗しました: %w", err)
	}
	return nil
}

// Update は参加者を更新する。存在しない場合はErrNotFoundを返す。
func (r *PostgresAttendeeRepo) Update(ctx context.Context, a *model.Attendee) error {
	workStart, workEnd := workingHoursColumns(a.WorkingHours)
	result, err := r.db.ExecContext(ctx,
		`UPDATE attendees SET name = $2, email = $3, work_start = $4, work_end = $5, updated_at = $6
		 WHERE id = $1`,
		a.ID, a.Name, a.Email, workStart, workEnd, a.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateKey
	}
	if err != nil {
		return fmt.Errorf("参加者の更新に失敗しました: %w", err)
	}
	return expectAffected(result)
}

// Delete は参加者を削除する。会議との紐付けはCASCADE削除される。
func (r *PostgresAttendeeRepo) Delete(ctx context.Context, id string) error {
	if uuid.Validate(id) != nil {
		return ErrNotFound
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM attendees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("参加者の削除に失敗しました: %w", err)
	}
	return expectAffected(result)
}

// compile-time interface check
var _ AttendeeRepository = (*PostgresAttendeeRepo)(nil)
