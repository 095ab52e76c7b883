package model

import (
	"reflect"
	"strings"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	err := NewClassNotFoundError("c-1")
	if !strings.HasPrefix(err.Error(), "[CLASS_NOT_FOUND] ") {
		t.Errorf("Error() = %q, want prefix [CLASS_NOT_FOUND]", err.Error())
	}
	if err.Category != CategoryNotFound {
		t.Errorf("Category = %q, want %q", err.Category, CategoryNotFound)
	}
}

// TestErrorCategories は各コンストラクタのカテゴリがステータス対応表と一致することを検証する。
func TestErrorCategories(t *testing.T) {
	tests := []struct {
		err  *APIError
		want string
	}{
		{NewTutorNotFoundError("x"), CategoryNotFound},
		{NewStudentNotFoundError("x"), CategoryNotFound},
		{NewSessionNotFoundError("x"), CategoryNotFound},
		{NewDuplicateTutorEmailError("a@x.com"), CategoryConflict},
		{NewDuplicateStudentEmailError("a@x.com"), CategoryConflict},
		{NewClassNotEmptyError("c", 2), CategoryConflict},
		{NewTutorHasClassesError("t", 1), CategoryConflict},
		{NewInvalidRequestError("bad"), CategoryValidation},
		{NewInvalidDateRangeError(), CategoryValidation},
		{NewValidationFailedError([]string{"name"}), CategoryValidation},
		{NewEmptyPatchError(), CategoryValidation},
	}
	for _, tt := range tests {
		if tt.err.Category != tt.want {
			t.Errorf("%s: Category = %q, want %q", tt.err.Code, tt.err.Category, tt.want)
		}
	}
}

func TestInvalidFields_SortedAndFiltered(t *testing.T) {
	got := InvalidFields(map[string]bool{"name": false, "email": true, "level": false})
	want := []string{"level", "name"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("InvalidFields = %v, want %v", got, want)
	}
	if got := InvalidFields(map[string]bool{"name": true}); len(got) != 0 {
		t.Errorf("InvalidFields(all valid) = %v, want empty", got)
	}
}
