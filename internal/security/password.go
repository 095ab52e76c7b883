package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes はbcryptがハッシュ化できるパスワードの最大バイト数。
// 文字数ではなくバイト数で数えるため、マルチバイト文字は1文字で複数バイトを消費する。
const MaxPasswordBytes = 72

// ValidPassword はパスワードが空でなく、bcryptでハッシュ化できる長さかを返す。
func ValidPassword(password string) bool {
	return password != "" && len(password) <= MaxPasswordBytes
}

// PasswordHasher はパスワードのハッシュ化を行う。
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher はbcryptのコストを指定してPasswordHasherを生成する。
// 範囲外のコストはbcrypt.DefaultCostに置き換える。
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash は平文パスワードのbcryptハッシュを返す。
// 72バイトを超えるパスワードはbcrypt.ErrPasswordTooLongになる。
func (h *PasswordHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}
	return string(hashed), nil
}
