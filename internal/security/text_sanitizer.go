// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer は利用者が入力した自由記述テキストからHTMLを除去する。
// PasswordHasher は受講生パスワードのハッシュ化を行う。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はプレーンテキストとして保存するフィールドのサニタイズ機能を定義する。
type TextSanitizer interface {
	// Sanitize はタグをすべて除去し、前後の空白を取り除いたテキストを返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(s string) string
}

// textSanitizer はbluemondayのStrictPolicyを使用したTextSanitizerの実装。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerの新しいインスタンスを生成する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

// maxSanitizePasses は多重にエスケープされた入力を剥がす回数の上限。
const maxSanitizePasses = 4

// Sanitize はHTMLタグを除去する。
// エンティティで書かれたタグも除去対象にするため、タグ除去の前にデコードする。
// 結果が変化しなくなるまで繰り返し、出力を再度渡しても同じ値になるようにする。
func (s *textSanitizer) Sanitize(in string) string {
	out := in
	for i := 0; i < maxSanitizePasses; i++ {
		next := s.strip(out)
		if next == out {
			break
		}
		out = next
	}
	return out
}

// strip はデコード、タグ除去、デコードを1回行う。
// StrictPolicyはテキストをエスケープして返すため、最後にプレーンテキストへ戻す。
func (s *textSanitizer) strip(in string) string {
	if in == "" {
		return ""
	}
	out := s.policy.Sanitize(html.UnescapeString(in))
	return strings.TrimSpace(html.UnescapeString(out))
}

// CleanRequired はテキストをサニタイズし、結果が空でないかを返す。
// タグだけの入力のように、サニタイズ後に中身が残らない場合はfalseを返す。
func CleanRequired(s TextSanitizer, in string) (string, bool) {
	out := s.Sanitize(in)
	return out, out != ""
}

// NormalizeEmail はメールアドレスの前後の空白を除去し、小文字に揃える。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
