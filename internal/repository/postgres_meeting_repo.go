package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/hitoshi/meetplan/internal/model"
)

// meetingSelect は会議と参加者ID配列を1行で取得するSELECT句。
const meetingSelect = `
	SELECT m.id::text, m.title, m.description, m.start_time, m.end_time, m.location_id::text,
	       COALESCE(
	           array_agg(ma.attendee_id::text ORDER BY ma.attendee_id::text)
	               FILTER (WHERE ma.attendee_id IS NOT NULL),
	           '{}'
	       ) AS attendee_ids,
	       m.created_at, m.updated_at
	FROM meetings m
	LEFT JOIN meeting_attendees ma ON ma.meeting_id = m.id`

// PostgresMeetingRepo はPostgreSQLを使用した会議リポジトリ。
type PostgresMeetingRepo struct {
	db *sql.DB
}

// NewPostgresMeetingRepo はPostgresMeetingRepoを生成する。
func NewPostgresMeetingRepo(db *sql.DB) *PostgresMeetingRepo {
	return &PostgresMeetingRepo{db: db}
}

func scanMeeting(row rowScanner) (*model.Meeting, error) {
	m := &model.Meeting{}
	var locationID sql.NullString
	var attendeeIDs pq.StringArray
	if err := row.Scan(
		&m.ID, &m.Title, &m.Description, &m.StartTime, &m.EndTime, &locationID,
		&attendeeIDs, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	m.LocationID = nullStringValue(locationID)
	m.AttendeeIDs = []string(attendeeIDs)
	return m, nil
}

// FindByID は指定IDの会議を参加者ID付きで取得する。見つからない場合はnilを返す。
func (r *PostgresMeetingRepo) FindByID(ctx context.Context, id string) (*model.Meeting, error) {
	if uuid.Validate(id) != nil {
		return nil, nil
	}

	m, err := scanMeeting(r.db.QueryRowContext(ctx,
		meetingSelect+` WHERE m.id = $1 GROUP BY m.id`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("会議の取得に失敗しました: %w", err)
	}
	return m, nil
}

// ListOverlapping は [from, to) と重なる会議を開始時刻昇順で返す。
func (r *PostgresMeetingRepo) ListOverlapping(ctx context.Context, from, to time.Time) ([]*model.Meeting, error) {
	return r.list(ctx,
		meetingSelect+`
		WHERE m.start_time < $2 AND m.end_time > $1
		GROUP BY m.id
		ORDER BY m.start_time, m.id::text`,
		from, to,
	)
}

// ListByAttendee は指定参加者が出席する会議のうち [from, to) と重なるものを返す。
func (r *PostgresMeetingRepo) ListByAttendee(ctx context.Context, attendeeID string, from, to time.Time) ([]*model.Meeting, error) {
	if uuid.Validate(attendeeID) != nil {
		return nil, nil
	}
	return r.list(ctx,
		meetingSelect+`
		WHERE m.start_time < $3 AND m.end_time > $2
		  AND EXISTS (
		      SELECT 1 FROM meeting_attendees x
		      WHERE x.meeting_id = m.id AND x.attendee_id = $1
		  )
		GROUP BY m.id
		ORDER BY m.start_time, m.id::text`,
		attendeeID, from, to,
	)
}

func (r *PostgresMeetingRepo) list(ctx context.Context, query string, args ...any) ([]*model.Meeting, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("会議一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var meetings []*model.Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("会議のスキャンに失敗しました: %w", err)
		}
		meetings = append(meetings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("会議一覧の読み取りに失敗しました: %w", err)
	}
	return meetings, nil
}

// ListBookedByAttendees は指定参加者ごとの予定区間のうち [from, to) と重なるものを返す。
// 前日から続く会議も含む。
func (r *PostgresMeetingRepo) ListBookedByAttendees(ctx context.Context, attendeeIDs []string, from, to time.Time) ([]model.Booking, error) {
	ids := validIDs(attendeeIDs)
	if len(ids) == 0 {
		return nil, nil
	}
	return r.bookings(ctx,
		`SELECT m.id::text, ma.attendee_id::text, m.start_time, m.end_time
		 FROM meetings m
		 JOIN meeting_attendees ma ON ma.meeting_id = m.id
		 WHERE ma.attendee_id = ANY($1::uuid[])
		   AND m.start_time < $3 AND m.end_time > $2
		 ORDER BY ma.attendee_id::text, m.start_time`,
		pq.Array(ids), from, to,
	)
}

// ListBookedByLocations は指定場所ごとの予定区間のうち [from, to) と重なるものを返す。
func (r *PostgresMeetingRepo) ListBookedByLocations(ctx context.Context, locationIDs []string, from, to time.Time) ([]model.Booking, error) {
	ids := validIDs(locationIDs)
	if len(ids) == 0 {
		return nil, nil
	}
	return r.bookings(ctx,
		`SELECT m.id::text, m.location_id::text, m.start_time, m.end_time
		 FROM meetings m
		 WHERE m.location_id = ANY($1::uuid[])
		   AND m.start_time < $3 AND m.end_time > $2
		 ORDER BY m.location_id::text, m.start_time`,
		pq.Array(ids), from, to,
	)
}

func (r *PostgresMeetingRepo) bookings(ctx context.Context, query string, args ...any) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("予定区間の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var out []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.MeetingID, &b.OwnerID, &b.StartTime, &b.EndTime); err != nil {
			return nil, fmt.Errorf("予定区間のスキャンに失敗しました: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("予定区間の読み取りに失敗しました: %w", err)
	}
	return out, nil
}

// Create は会議と参加者の紐付けを同一トランザクションで作成する。
func (r *PostgresMeetingRepo) Create(ctx context.Context, m *model.Meeting) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO meetings (id, title, description, start_time, end_time, location_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.Title, m.Description, m.StartTime, m.EndTime, nullString(m.LocationID), m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("会議の作成に失敗しました: %w", err)
	}

	if err := insertMeetingAttendees(ctx, tx, m.ID, m.AttendeeIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Update は会議を更新し、参加者の紐付けを置き換える。存在しない場合はErrNotFoundを返す。
func (r *PostgresMeetingRepo) Update(ctx context.Context, m *model.Meeting) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE meetings SET title = $2, description = $3, start_time = $4, end_time = $5,
		        location_id = $6, updated_at = $7
		 WHERE id = $1`,
		m.ID, m.Title, m.Description, m.StartTime, m.EndTime, nullString(m.LocationID), m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("会議の更新に失敗しました: %w", err)
	}
	if err := expectAffected(result); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM meeting_attendees WHERE meeting_id = $1`, m.ID); err != nil {
		return fmt.Errorf("会議参加者の削除に失敗しました: %w", err)
	}
	if err := insertMeetingAttendees(ctx, tx, m.ID, m.AttendeeIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertMeetingAttendees(ctx context.Context, tx *sql.Tx, meetingID string, attendeeIDs []string) error {
	if len(attendeeIDs) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO meeting_attendees (meeting_id, attendee_id)
		 SELECT $1, unnest($2::uuid[])
		 ON CONFLICT DO NOTHING`,
		meetingID, pq.Array(attendeeIDs),
	)
	if err != nil {
		return fmt.Errorf("会議参加者の登録に失敗しました: %w", err)
	}
	return nil
}

// Delete は会議を削除する。存在しない場合はErrNotFoundを返す。
func (r *PostgresMeetingRepo) Delete(ctx context.Context, id string) error {
	if uuid.Validate(id) != nil {
		return ErrNotFound
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM meetings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("会議の削除に失敗しました: %w", err)
	}
	return expectAffected(result)
}

// DeleteEndedBefore はcutoffより前に終了した会議を削除し、削除件数を返す。
func (r *PostgresMeetingRepo) DeleteEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM meetings WHERE end_time < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("終了済み会議の削除に失敗しました: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// compile-time interface check
var _ MeetingRepository = (*PostgresMeetingRepo)(nil)
