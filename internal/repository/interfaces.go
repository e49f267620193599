// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hitoshi/meetplan/internal/model"
)

var (
	// ErrNotFound は更新・削除対象の行が存在しない場合のエラー。
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey はユニーク制約に違反した場合のエラー。
	ErrDuplicateKey = errors.New("duplicate key")
)

// AttendeeRepository は参加者データの永続化インターフェース。
type AttendeeRepository interface {
	// FindByID は指定IDの参加者を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Attendee, error)

	// FindByIDs は指定IDの参加者をID昇順で取得する。存在しないIDは結果に含まれない。
	FindByIDs(ctx context.Context, ids []string) ([]*model.Attendee, error)

	// FindByEmail はメールアドレスで参加者を検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Attendee, error)

	// List は全参加者をID昇順で返す。
	List(ctx context.Context) ([]*model.Attendee, error)

	// Create は参加者を作成する。emailが重複する場合はErrDuplicateKeyを返す。
	Create(ctx context.Context, attendee *model.Attendee) error

	// Update は参加者を更新する。存在しない場合はErrNotFoundを返す。
	Update(ctx context.Context, attendee *model.Attendee) error

	// Delete は参加者を削除する。会議との紐付けはCASCADE削除される。
	Delete(ctx context.Context, id string) error
}

// LocationRepository は場所データの永続化インターフェース。
type LocationRepository interface {
	// FindByID は指定IDの場所を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Location, error)

	// List は全場所をID昇順で返す。
	List(ctx context.Context) ([]*model.Location, error)

	// ListWithCapacityAtLeast は定員がn以上の場所をID昇順で返す。定員未設定の場所は含まない。
	ListWithCapacityAtLeast(ctx context.Context, n int) ([]*model.Location, error)

	// Create は場所を作成する。
	Create(ctx context.Context, location *model.Location) error

	// Update は場所を更新する。存在しない場合はErrNotFoundを返す。
	Update(ctx context.Context, location *model.Location) error

	// Delete は場所を削除する。この場所を使う会議のlocation_idはNULLになる。
	Delete(ctx context.Context, id string) error
}

// MeetingRepository は会議データの永続化インターフェース。
// 参加者・場所の予定区間は全て会議から導出する。
type MeetingRepository interface {
	// FindByID は指定IDの会議を参加者ID付きで取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Meeting, error)

	// ListOverlapping は [from, to) と重なる会議を開始時刻昇順で返す。
	ListOverlapping(ctx context.Context, from, to time.Time) ([]*model.Meeting, error)

	// ListByAttendee は指定参加者が出席する会議のうち [from, to) と重なるものを返す。
	ListByAttendee(ctx context.Context, attendeeID string, from, to time.Time) ([]*model.Meeting, error)

	// ListBookedByAttendees は指定参加者ごとの予定区間のうち [from, to) と重なるものを返す。
	// 前日から続く会議も含む。
	ListBookedByAttendees(ctx context.Context, attendeeIDs []string, from, to time.Time) ([]model.Booking, error)

	// ListBookedByLocations は指定場所ごとの予定区間のうち [from, to) と重なるものを返す。
	ListBookedByLocations(ctx context.Context, locationIDs []string, from, to time.Time) ([]model.Booking, error)

	// Create は会議と参加者の紐付けを同一トランザクションで作成する。
	Create(ctx context.Context, meeting *model.Meeting) error

	// Update は会議を更新し、参加者の紐付けを置き換える。存在しない場合はErrNotFoundを返す。
	Update(ctx context.Context, meeting *model.Meeting) error

	// Delete は会議を削除する。存在しない場合はErrNotFoundを返す。
	Delete(ctx context.Context, id string) error

	// DeleteEndedBefore はcutoffより前に終了した会議を削除し、削除件数を返す。
	DeleteEndedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// APIClientRepository はAPIクライアントの永続化インターフェース。
type APIClientRepository interface {
	// Create はAPIクライアントを作成する。
	Create(ctx context.Context, client *model.APIClient) error

	// FindByTokenHash はトークンハッシュでクライアントを検索する。見つからない場合はnilを返す。
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.APIClient, error)

	// TouchLastUsed は最終利用日時を更新する。
	TouchLastUsed(ctx context.Context, id string, at time.Time) error
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
