package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestEscapeLikePattern(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ana", "%ana%"},
		{"100%", `%100\%%`},
		{"a_b", `%a\_b%`},
		{`c:\x`, `%c:\\x%`},
		{"", "%%"},
	}
	for _, tt := range tests {
		if got := escapeLikePattern(tt.input); got != tt.want {
			t.Errorf("escapeLikePattern(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNullableRef_RoundTrip(t *testing.T) {
	if ns := nullableRef(nil); ns.Valid {
		t.Error("nullableRef(nil) should be invalid")
	}
	if refValue(nullableRef(nil)) != nil {
		t.Error("refValue of NULL should be nil")
	}

	id := "class-1"
	got := refValue(nullableRef(&id))
	if got == nil || *got != id {
		t.Errorf("refValue = %v, want %q", got, id)
	}
	if got == &id {
		t.Error("refValue should not alias the input pointer")
	}
}

// TestIsUniqueViolation はpq.Errorのコード23505のみを一意制約違反と判定することを検証する。
func TestIsUniqueViolation(t *testing.T) {
	dup := &pq.Error{Code: "23505"}
	if !isUniqueViolation(dup) {
		t.Error("23505 should be a unique violation")
	}
	if !isUniqueViolation(fmt.Errorf("wrapped: %w", dup)) {
		t.Error("wrapped 23505 should be a unique violation")
	}
	if isUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Error("foreign key violation should not be reported as unique violation")
	}
	if isUniqueViolation(errors.New("other")) {
		t.Error("non-pq error should not be a unique violation")
	}
	if isUniqueViolation(nil) {
		t.Error("nil should not be a unique violation")
	}
}
