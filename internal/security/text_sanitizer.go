// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer は参加者名・場所名・会議タイトルなど利用者が入力する文字列から
// HTMLを除去し、プレーンテキストとして保存できる形に正規化する。
// bluemondayのStrictPolicyで全タグを除去したうえで、エスケープされた文字を元に戻す。
package security

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService はプレーンテキスト化のインターフェースを定義する。
type TextSanitizerService interface {
	// SanitizeLine は1行の文字列（名前・タイトル）を返す。
	// タグを除去し、改行・タブを含む連続空白を1つの空白にまとめ、前後の空白を取り除く。
	SanitizeLine(raw string) string

	// SanitizeText は複数行の文字列（説明文）を返す。
	// タグを除去し、改行コードをLFに揃え、前後の空白を取り除く。改行は保持する。
	SanitizeText(raw string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのポリシーはスレッドセーフなので共有して使う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// SanitizeLine は1行の文字列を返す。
func (s *textSanitizer) SanitizeLine(raw string) string {
	return strings.Join(strings.FieldsFunc(s.strip(raw), unicode.IsSpace), " ")
}

// SanitizeText は複数行の文字列を返す。
func (s *textSanitizer) SanitizeText(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	return strings.TrimSpace(strings.Map(dropControl, s.strip(raw)))
}

func (s *textSanitizer) strip(raw string) string {
	if raw == "" {
		return ""
	}
	return html.UnescapeString(s.policy.Sanitize(raw))
}

// dropControl は改行・タブ以外の制御文字を除去する。
func dropControl(r rune) rune {
	if r == '\n' || r == '\t' {
		return r
	}
	if unicode.IsControl(r) {
		return -1
	}
	return r
}
