package model

import "time"

// Student は受講生(aluno)を表す。
// TutorIDとClassIDは弱参照で、ClassIDが設定されている場合、
// TutorIDはそのクラスの講師IDと常に一致しなければならない。
type Student struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Nickname     string
	TutorID      *string
	ClassID      *string
	EnrolledAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// InClass は受講生が指定クラスに所属しているかを返す。
func (s *Student) InClass(classID string) bool {
	return s.ClassID != nil && *s.ClassID == classID
}

// AssignClass は受講生をクラスに所属させ、講師参照をクラスの講師から導出する。
// 以前の講師との関係は破棄される。atは名簿上の登録日時になる。
func (s *Student) AssignClass(class *Class, at time.Time) {
	classID := class.ID
	tutorID := class.TutorID
	s.ClassID = &classID
	s.TutorID = &tutorID
	s.EnrolledAt = &at
}

// MatchesClass は受講生の参照がクラスとその講師に一致しているかを返す。
func (s *Student) MatchesClass(class *Class) bool {
	return s.InClass(class.ID) && s.TutorID != nil && *s.TutorID == class.TutorID
}

// Detach はクラスと講師への参照を両方解除する。
func (s *Student) Detach() {
	s.ClassID = nil
	s.TutorID = nil
	s.EnrolledAt = nil
}

// StudentInput は受講生作成時の入力を表す。
// 講師とクラスは呼び出し元から指定させない。
type StudentInput struct {
	Name     string
	Email    string
	Password string
	Nickname string
}

// StudentPatch は受講生の部分更新内容を表す。
// 更新可能なフィールドはここに列挙したものに限られる。
type StudentPatch struct {
	Name     *string
	Email    *string
	Password *string
	Nickname *string
}

// IsEmpty はパッチに変更内容が含まれていないかを返す。
func (p StudentPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Password == nil && p.Nickname == nil
}
