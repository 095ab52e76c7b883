package model

import "time"

// Class はクラス(turma)を表す。
// 講師はIDによるライブ参照で保持し、スナップショットは持たない。
// 名簿は受講生側のClassIDから導出する。
type Class struct {
	ID        string
	Name      string
	Level     string
	TutorID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClassDetail はクラスと読み取り時に解決した講師を結合したもの。
// 講師が削除済みの場合、Tutorはnil。
type ClassDetail struct {
	Class
	Tutor         *Tutor
	Conversations []ConversationSession
}

// ClassPatch はクラスの部分更新内容を表す。
// 講師は作成後に変更できない。
type ClassPatch struct {
	Name  *string
	Level *string
}

// Apply はパッチの内容をクラスに反映する。
func (p ClassPatch) Apply(c *Class) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Level != nil {
		c.Level = *p.Level
	}
}

// ConversationSession はクラスに属する会話練習セッションを表す。
type ConversationSession struct {
	ID          string
	ClassID     string
	Name        string
	ScheduledAt time.Time
	CreatedAt   time.Time
}

// SessionPatch はセッションの部分更新内容を表す。
type SessionPatch struct {
	Name        *string
	ScheduledAt *time.Time
}

// Apply はパッチの内容をセッションに反映する。
func (p SessionPatch) Apply(s *ConversationSession) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.ScheduledAt != nil {
		s.ScheduledAt = *p.ScheduledAt
	}
}

// ClassStudentCount はクラスごとの受講生数の集計行。
// TutorLanguageは講師を結合したビューでのみ設定される。
type ClassStudentCount struct {
	ClassID       string
	ClassName     string
	Level         string
	TutorLanguage string
	StudentCount  int
}
