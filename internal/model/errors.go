package model

import (
	"fmt"
	"sort"
	"strings"
)

// APIError は統一エラーフォーマットを表す。
// 原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: not_found, conflict, validation, system
	Action   string // 利用者向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// エラーカテゴリ
const (
	CategoryNotFound   = "not_found"
	CategoryConflict   = "conflict"
	CategoryValidation = "validation"
	CategorySystem     = "system"
)

// 定義済みエラーコード
const (
	ErrCodeTutorNotFound         = "TUTOR_NOT_FOUND"
	ErrCodeClassNotFound         = "CLASS_NOT_FOUND"
	ErrCodeStudentNotFound       = "STUDENT_NOT_FOUND"
	ErrCodeSessionNotFound       = "SESSION_NOT_FOUND"
	ErrCodeDuplicateTutorEmail   = "DUPLICATE_TUTOR_EMAIL"
	ErrCodeDuplicateStudentEmail = "DUPLICATE_STUDENT_EMAIL"
	ErrCodeClassNotEmpty         = "CLASS_NOT_EMPTY"
	ErrCodeTutorHasClasses       = "TUTOR_HAS_CLASSES"
	ErrCodeInvalidRequest        = "INVALID_REQUEST"
	ErrCodeInvalidDate           = "INVALID_DATE"
	ErrCodeInvalidDateRange      = "INVALID_DATE_RANGE"
	ErrCodeInvalidPagination     = "INVALID_PAGINATION"
	ErrCodeValidationFailed      = "VALIDATION_FAILED"
	ErrCodeEmptyPatch            = "EMPTY_PATCH"
)

// NewTutorNotFoundError は講師未検出エラーを生成する。
func NewTutorNotFoundError(tutorID string) *APIError {
	return &APIError{
		Code:     ErrCodeTutorNotFound,
		Message:  fmt.Sprintf("指定された講師が見つかりません: %s", tutorID),
		Category: CategoryNotFound,
		Action:   "講師IDを確認してください。",
	}
}

// NewClassNotFoundError はクラス未検出エラーを生成する。
func NewClassNotFoundError(classID string) *APIError {
	return &APIError{
		Code:     ErrCodeClassNotFound,
		Message:  fmt.Sprintf("指定されたクラスが見つかりません: %s", classID),
		Category: CategoryNotFound,
		Action:   "クラスIDを確認してください。",
	}
}

// NewStudentNotFoundError は受講生未検出エラーを生成する。
// 受講生が存在しても指定クラスに所属していない場合もこのエラーを返し、
// スコープ外のエンティティの存在を漏らさない。
func NewStudentNotFoundError(studentID string) *APIError {
	return &APIError{
		Code:     ErrCodeStudentNotFound,
		Message:  fmt.Sprintf("指定された受講生が見つかりません: %s", studentID),
		Category: CategoryNotFound,
		Action:   "受講生IDとクラスIDを確認してください。",
	}
}

// NewSessionNotFoundError は会話セッション未検出エラーを生成する。
func NewSessionNotFoundError(sessionID string) *APIError {
	return &APIError{
		Code:     ErrCodeSessionNotFound,
		Message:  fmt.Sprintf("指定された会話セッションが見つかりません: %s", sessionID),
		Category: CategoryNotFound,
		Action:   "セッションIDとクラスIDを確認してください。",
	}
}

// NewDuplicateTutorEmailError は講師メールアドレス重複エラーを生成する。
func NewDuplicateTutorEmailError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateTutorEmail,
		Message:  fmt.Sprintf("このメールアドレスの講師は既に登録されています: %s", email),
		Category: CategoryConflict,
		Action:   "別のメールアドレスを指定してください。",
	}
}

// NewDuplicateStudentEmailError は受講生メールアドレス重複エラーを生成する。
func NewDuplicateStudentEmailError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateStudentEmail,
		Message:  fmt.Sprintf("このメールアドレスの受講生は既に登録されています: %s", email),
		Category: CategoryConflict,
		Action:   "別のメールアドレスを指定してください。",
	}
}

// NewClassNotEmptyError は受講生が所属するクラスの削除を拒否するエラーを生成する。
func NewClassNotEmptyError(classID string, students int) *APIError {
	return &APIError{
		Code:     ErrCodeClassNotEmpty,
		Message:  fmt.Sprintf("クラス %s には受講生が %d 名所属しています。", classID, students),
		Category: CategoryConflict,
		Action:   "受講生を別のクラスへ移動するか削除してから、再度お試しください。",
	}
}

// NewTutorHasClassesError は担当クラスを持つ講師の削除を拒否するエラーを生成する。
func NewTutorHasClassesError(tutorID string, classes int) *APIError {
	return &APIError{
		Code:     ErrCodeTutorHasClasses,
		Message:  fmt.Sprintf("講師 %s は %d 件のクラスを担当しています。", tutorID, classes),
		Category: CategoryConflict,
		Action:   "担当クラスを削除してから、再度お試しください。",
	}
}

// NewInvalidRequestError はリクエストボディ解析失敗エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストボディの解析に失敗しました: %s", reason),
		Category: CategoryValidation,
		Action:   "正しいJSON形式でリクエストしてください。未定義のフィールドは指定できません。",
	}
}

// NewInvalidDateError は日時書式エラーを生成する。
func NewInvalidDateError(field, value string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDate,
		Message:  fmt.Sprintf("%s の日時が不正です: %q", field, value),
		Category: CategoryValidation,
		Action:   "DD-MM-YYYY HH:MM:SS 形式の実在する日時を指定してください。",
	}
}

// NewInvalidDateRangeError は期間指定の前後関係エラーを生成する。
func NewInvalidDateRangeError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDateRange,
		Message:  "start_date が end_date より後になっています。",
		Category: CategoryValidation,
		Action:   "start_date には end_date 以前の日時を指定してください。",
	}
}

// NewInvalidPaginationError はページ指定エラーを生成する。
func NewInvalidPaginationError(skip, limit int) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPagination,
		Message:  fmt.Sprintf("無効なページ指定です: skip=%d, limit=%d", skip, limit),
		Category: CategoryValidation,
		Action:   fmt.Sprintf("skip は0以上、limit は1から%dの範囲で指定してください。", MaxPageLimit),
	}
}

// NewValidationFailedError は入力値検証エラーを生成する。
// fieldsには検証に失敗したフィールド名を渡す。
func NewValidationFailedError(fields []string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("入力値が不正です: %s", strings.Join(fields, ", ")),
		Category: CategoryValidation,
		Action:   "必須項目と形式を確認してください。",
	}
}

// InvalidFields は検証結果のうちfalseになっているフィールド名を名前順で返す。
func InvalidFields(valid map[string]bool) []string {
	var out []string
	for name, ok := range valid {
		if !ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// NewEmptyPatchError は更新内容が空のパッチに対するエラーを生成する。
func NewEmptyPatchError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyPatch,
		Message:  "更新するフィールドが指定されていません。",
		Category: CategoryValidation,
		Action:   "少なくとも1つのフィールドを指定してください。",
	}
}
