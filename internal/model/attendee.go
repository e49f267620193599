// Package model はドメインモデルを定義する。
package model

import (
	"time"

	"github.com/hitoshi/meetplan/internal/availability"
)

// Attendee は会議の参加者を表す。
// WorkingHoursがnilの場合は勤務時間未設定で、空き時間は存在しないものとして扱う。
type Attendee struct {
	ID           string
	Name         string
	Email        string
	WorkingHours *availability.WorkingHours
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
