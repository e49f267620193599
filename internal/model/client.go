// Package model はドメインモデルを定義する。
package model

import "time"

// APIClient はAPIトークンを発行されたクライアントを表す。
// トークン自体は保存せず、SHA-256ハッシュのみを保持する。
type APIClient struct {
	ID         string
	Name       string
	TokenHash  string
	CreatedAt  time.Time
	LastUsedAt *time.Time
}
