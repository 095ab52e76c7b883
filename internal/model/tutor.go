// Package model はドメインモデルを定義する。
package model

import "time"

// Tutor は語学講師を表す。
// 0個以上のTurma(クラス)を担当するルートエンティティ。
type Tutor struct {
	ID        string
	Name      string
	Email     string
	Language  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TutorPatch は講師の部分更新内容を表す。
// nilのフィールドは変更しない。
type TutorPatch struct {
	Name     *string
	Email    *string
	Language *string
}

// Apply はパッチの内容を講師に反映する。
func (p TutorPatch) Apply(t *Tutor) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Email != nil {
		t.Email = *p.Email
	}
	if p.Language != nil {
		t.Language = *p.Language
	}
}
