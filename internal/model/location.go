// Package model はドメインモデルを定義する。
package model

import (
	"time"

	"github.com/hitoshi/meetplan/internal/availability"
)

// Location は会議室などの予約可能な場所を表す。
type Location struct {
	ID           string
	Name         string
	Capacity     *int // 未設定の場合は定員不明
	WorkingHours *availability.WorkingHours
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
