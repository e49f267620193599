package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/hitoshi/meetplan/internal/availability"
)

// pgUniqueViolation はPostgreSQLのユニーク制約違反のエラーコード。
const pgUniqueViolation = "23505"

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// nullString は空文字列をNULLとして扱うsql.NullStringを返す。
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullStringValue はsql.NullStringから文字列を取得する。
func nullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// nullInt はnilをNULLとして扱うsql.NullInt64を返す。
func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

// nullIntValue はsql.NullInt64をポインタに変換する。
func nullIntValue(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

// workingHoursColumns は勤務時間をwork_start・work_endカラムの値に変換する。
// 未設定の場合は両方NULLになる。
func workingHoursColumns(wh *availability.WorkingHours) (sql.NullString, sql.NullString) {
	if wh == nil {
		return sql.NullString{}, sql.NullString{}
	}
	return nullString(availability.FormatClock(wh.Start)), nullString(availability.FormatClock(wh.End))
}

// scanWorkingHours はwork_start・work_endカラム（::text）から勤務時間を復元する。
func scanWorkingHours(start, end sql.NullString) (*availability.WorkingHours, error) {
	if !start.Valid || !end.Valid {
		return nil, nil
	}
	wh, err := availability.ParseWorkingHours(start.String, end.String)
	if err != nil {
		return nil, fmt.Errorf("保存済みの勤務時間が不正です: %w", err)
	}
	return &wh, nil
}

// validIDs はUUIDとして解釈できるIDのみを返す。
// UUID形式でないIDは存在し得ないため、クエリに渡す前に除外する。
func validIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if uuid.Validate(id) == nil {
			out = append(out, id)
		}
	}
	return out
}

// isUniqueViolation はエラーがユニーク制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}

// expectAffected は更新・削除の影響行数が0の場合にErrNotFoundを返す。
func expectAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
