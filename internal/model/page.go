package model

import "github.com/google/uuid"

// ページネーションの既定値と上限。
const (
	DefaultPageLimit = 100
	MaxPageLimit     = 1000
)

// Page はオフセット/リミット方式のページ指定を表す。
type Page struct {
	Skip  int
	Limit int
}

// DefaultPage は先頭から既定件数を取得するPageを返す。
func DefaultPage() Page {
	return Page{Skip: 0, Limit: DefaultPageLimit}
}

// NewPage はskipとlimitを検証してPageを生成する。
// skipが負、またはlimitが1-MaxPageLimitの範囲外の場合はエラーを返す。
func NewPage(skip, limit int) (Page, error) {
	if skip < 0 || limit < 1 || limit > MaxPageLimit {
		return Page{}, NewInvalidPaginationError(skip, limit)
	}
	return Page{Skip: skip, Limit: limit}, nil
}

// IsValidID はIDがUUID形式かを返す。
// 不正な形式のIDはストアに問い合わせずに未検出として扱う。
func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// NewID は新しいエンティティIDを生成する。
func NewID() string {
	return uuid.NewString()
}
