package security

import (
	"strings"
	"testing"
)

// TestSanitizeLine はタグ除去と空白の正規化を検証する。
func TestSanitizeLine(t *testing.T) {
	sanitizer := NewTextSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "プレーンテキストはそのまま", input: "定例ミーティング", want: "定例ミーティング"},
		{name: "scriptタグは中身ごと除去される", input: `Room<script>alert(1)</script> A`, want: "Room A"},
		{name: "装飾タグは除去され中身は残る", input: "<b>会議室</b> <i>A</i>", want: "会議室 A"},
		{name: "on属性付きタグも除去される", input: `<img src=x onerror="alert(1)">Alice`, want: "Alice"},
		{name: "改行とタブは空白1つにまとめる", input: "週次\n\t 定例", want: "週次 定例"},
		{name: "前後の空白は除去される", input: "  Alice  ", want: "Alice"},
		{name: "アンパサンドはエスケープされずに残る", input: "R&D 会議", want: "R&D 会議"},
		{name: "空文字列", input: "", want: ""},
		{name: "タグのみの場合は空になる", input: "<p></p>", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.SanitizeLine(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeLine(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestSanitizeText は説明文の改行が保持されることを検証する。
func TestSanitizeText(t *testing.T) {
	sanitizer := NewTextSanitizer()

	got := sanitizer.SanitizeText("議題:\r\n1. 進捗<script>x</script>\r\n2. 課題\x07\n")
	want := "議題:\n1. 進捗\n2. 課題"
	if got != want {
		t.Errorf("SanitizeText = %q, want %q", got, want)
	}
}

// TestSanitize_Idempotent は同一入力に対して同一出力を返し、再適用しても変化しないことを検証する。
func TestSanitize_Idempotent(t *testing.T) {
	sanitizer := NewTextSanitizer()
	input := `<a href="javascript:alert(1)">Link</a> & <em>text</em>`

	first := sanitizer.SanitizeLine(input)
	second := sanitizer.SanitizeLine(first)
	if first != second {
		t.Errorf("SanitizeLine is not idempotent: %q -> %q", first, second)
	}
	if strings.Contains(first, "<") {
		t.Errorf("tags remain after sanitize: %q", first)
	}
}

// TestTextSanitizer_ImplementsInterface はインターフェースを満たすことを検証する。
func TestTextSanitizer_ImplementsInterface(t *testing.T) {
	var _ TextSanitizerService = NewTextSanitizer()
}
