package model

import (
	"strings"
	"time"
)

// DateTimeLayout はAPIで扱う日時の書式（DD-MM-YYYY HH:MM:SS）。
const DateTimeLayout = "02-01-2006 15:04:05"

// ParseDateTime はDD-MM-YYYY HH:MM:SS形式の日時をUTCとして解析する。
// 31-02-2024のような存在しない日付も含め、解析できない場合はINVALID_DATEエラーを返す。
func ParseDateTime(field, value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, NewInvalidDateError(field, value)
	}
	t, err := time.ParseInLocation(DateTimeLayout, v, time.UTC)
	if err != nil {
		return time.Time{}, NewInvalidDateError(field, value)
	}
	return t, nil
}

// FormatDateTime は日時をDD-MM-YYYY HH:MM:SS形式に整形する。
func FormatDateTime(t time.Time) string {
	return t.UTC().Format(DateTimeLayout)
}
