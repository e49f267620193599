// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, scheduling, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeAttendeeNotFound    = "ATTENDEE_NOT_FOUND"
	ErrCodeLocationNotFound    = "LOCATION_NOT_FOUND"
	ErrCodeMeetingNotFound     = "MEETING_NOT_FOUND"
	ErrCodeEmptyAttendees      = "EMPTY_ATTENDEES"
	ErrCodeTooManyAttendees    = "TOO_MANY_ATTENDEES"
	ErrCodeInvalidDuration     = "INVALID_DURATION"
	ErrCodeInvalidDate         = "INVALID_DATE"
	ErrCodeInvalidTimeRange    = "INVALID_TIME_RANGE"
	ErrCodeInvalidWorkingHours = "INVALID_WORKING_HOURS"
	ErrCodeInvalidCapacity     = "INVALID_CAPACITY"
	ErrCodeInvalidName         = "INVALID_NAME"
	ErrCodeInvalidEmail        = "INVALID_EMAIL"
	ErrCodeDuplicateEmail      = "DUPLICATE_EMAIL"
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeRateLimited         = "RATE_LIMITED"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// NewAttendeeNotFoundError は参加者未検出エラーを生成する。
func NewAttendeeNotFoundError(attendeeID string) *APIError {
	return &APIError{
		Code:     ErrCodeAttendeeNotFound,
		Message:  fmt.Sprintf("指定された参加者が見つかりません: %s", attendeeID),
		Category: "scheduling",
		Action:   "参加者IDを確認してください。",
	}
}

// NewLocationNotFoundError は場所未検出エラーを生成する。
func NewLocationNotFoundError(locationID string) *APIError {
	return &APIError{
		Code:     ErrCodeLocationNotFound,
		Message:  fmt.Sprintf("指定された場所が見つかりません: %s", locationID),
		Category: "scheduling",
		Action:   "場所IDを確認してください。",
	}
}

// NewMeetingNotFoundError は会議未検出エラーを生成する。
func NewMeetingNotFoundError(meetingID string) *APIError {
	return &APIError{
		Code:     ErrCodeMeetingNotFound,
		Message:  fmt.Sprintf("指定された会議が見つかりません: %s", meetingID),
		Category: "scheduling",
		Action:   "会議IDを確認してください。",
	}
}

// NewEmptyAttendeesError は参加者が指定されていない場合のエラーを生成する。
func NewEmptyAttendeesError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyAttendees,
		Message:  "参加者が指定されていません。",
		Category: "validation",
		Action:   "attendee_idsに1人以上の参加者IDを指定してください。",
	}
}

// NewTooManyAttendeesError は参加者数が上限を超えた場合のエラーを生成する。
func NewTooManyAttendeesError(limit int) *APIError {
	return &APIError{
		Code:     ErrCodeTooManyAttendees,
		Message:  fmt.Sprintf("参加者数が上限（%d人）を超えています。", limit),
		Category: "validation",
		Action:   "参加者を減らしてから再度お試しください。",
	}
}

// NewInvalidDurationError は会議時間が不正な場合のエラーを生成する。
func NewInvalidDurationError(minutes int) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDuration,
		Message:  fmt.Sprintf("無効な会議時間です: %d分", minutes),
		Category: "validation",
		Action:   "会議時間は1分以上、24時間以内で指定してください。",
	}
}

// NewInvalidDateError は日付が不正な場合のエラーを生成する。
func NewInvalidDateError(value string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDate,
		Message:  fmt.Sprintf("無効な日付です: %s", value),
		Category: "validation",
		Action:   "日付はYYYY-MM-DD形式で指定してください。",
	}
}

// NewInvalidTimeRangeError は開始・終了時刻の関係が不正な場合のエラーを生成する。
func NewInvalidTimeRangeError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidTimeRange,
		Message:  "終了時刻は開始時刻より後である必要があります。",
		Category: "validation",
		Action:   "開始時刻と終了時刻を確認してください。",
	}
}

// NewInvalidWorkingHoursError は勤務時間が不正な場合のエラーを生成する。
func NewInvalidWorkingHoursError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidWorkingHours,
		Message:  fmt.Sprintf("無効な勤務時間です: %s", reason),
		Category: "validation",
		Action:   "開始・終了をHH:MM形式で両方指定し、開始を終了より前にしてください。日付をまたぐ指定はできません。",
	}
}

// NewInvalidCapacityError は定員が不正な場合のエラーを生成する。
func NewInvalidCapacityError(capacity int) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCapacity,
		Message:  fmt.Sprintf("無効な定員です: %d", capacity),
		Category: "validation",
		Action:   "定員は1以上で指定するか、未設定にしてください。",
	}
}

// NewInvalidNameError は名前・タイトルが空の場合のエラーを生成する。
func NewInvalidNameError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidName,
		Message:  fmt.Sprintf("%sが空です。", field),
		Category: "validation",
		Action:   "1文字以上200文字以内で入力してください。",
	}
}

// NewInvalidEmailError はメールアドレスが不正な場合のエラーを生成する。
func NewInvalidEmailError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEmail,
		Message:  fmt.Sprintf("無効なメールアドレスです: %s", email),
		Category: "validation",
		Action:   "正しいメールアドレスを入力してください。",
	}
}

// NewDuplicateEmailError は同じメールアドレスの参加者が既に存在する場合のエラーを生成する。
func NewDuplicateEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "validation",
		Action:   "参加者一覧から該当する参加者を確認してください。",
	}
}

// NewUnauthorizedError はAPIトークンが無効な場合のエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "APIトークンが無効です。",
		Category: "auth",
		Action:   "Authorization ヘッダーに有効な Bearer トークンを指定してください。",
	}
}

// NewRateLimitedError はレート制限を超過した場合のエラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "リクエスト数が上限を超えました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewInvalidRequestError はリクエスト形式が不正な場合のエラーを生成する。
func NewInvalidRequestError(detail string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", detail),
		Category: "validation",
		Action:   "リクエストの形式を確認してください。",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログにのみ残す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
