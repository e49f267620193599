// Package model はドメインモデルを定義する。
package model

import "time"

// Meeting は予約済みの会議を表す。
// 参加者と場所の双方の予定として扱われる。
type Meeting struct {
	ID          string
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	LocationID  string   // 場所未定の場合は空文字
	AttendeeIDs []string // meeting_attendeesから取得した参加者ID（ID昇順）
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Booking は会議から導出された、参加者または場所1件分の占有区間。
// OwnerIDは参加者IDまたは場所ID。
type Booking struct {
	MeetingID string
	OwnerID   string
	StartTime time.Time
	EndTime   time.Time
}
