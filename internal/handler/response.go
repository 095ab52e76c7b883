package handler

import (
	"time"

	"github.com/hitoshi/turmas/internal/model"
)

// 日時はすべてDD-MM-YYYY HH:MM:SS形式の文字列で返す。

// tutorResponse は講師情報のAPIレスポンス。
type tutorResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Language  string `json:"language"`
	CreatedAt string `json:"created_at"`
}

// classResponse はクラス情報のAPIレスポンス。
type classResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Level     string `json:"level"`
	TutorID   string `json:"tutor_id"`
	CreatedAt string `json:"created_at"`
}

// classDetailResponse は講師と会話セッションを含むクラス詳細のAPIレスポンス。
type classDetailResponse struct {
	classResponse
	Tutor         *tutorResponse    `json:"tutor"`
	Conversations []sessionResponse `json:"conversations"`
}

// studentResponse は受講生情報のAPIレスポンス。パスワードハッシュは含めない。
type studentResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Nickname   string  `json:"nickname"`
	TutorID    *string `json:"tutor_id"`
	ClassID    *string `json:"class_id"`
	EnrolledAt *string `json:"enrolled_at"`
	CreatedAt  string  `json:"created_at"`
}

// sessionResponse は会話セッションのAPIレスポンス。
type sessionResponse struct {
	ID          string `json:"id"`
	ClassID     string `json:"class_id"`
	Name        string `json:"name"`
	ScheduledAt string `json:"scheduled_at"`
}

// classCountResponse はクラス別受講生数のAPIレスポンス。
type classCountResponse struct {
	ClassID       string `json:"class_id"`
	ClassName     string `json:"class_name"`
	Level         string `json:"level"`
	TutorLanguage string `json:"tutor_language,omitempty"`
	StudentCount  int    `json:"student_count"`
}

func toTutorResponse(t *model.Tutor) tutorResponse {
	return tutorResponse{
		ID:        t.ID,
		Name:      t.Name,
		Email:     t.Email,
		Language:  t.Language,
		CreatedAt: model.FormatDateTime(t.CreatedAt),
	}
}

func toTutorResponses(tutors []*model.Tutor) []tutorResponse {
	out := make([]tutorResponse, len(tutors))
	for i, t := range tutors {
		out[i] = toTutorResponse(t)
	}
	return out
}

func toClassResponse(c *model.Class) classResponse {
	return classResponse{
		ID:        c.ID,
		Name:      c.Name,
		Level:     c.Level,
		TutorID:   c.TutorID,
		CreatedAt: model.FormatDateTime(c.CreatedAt),
	}
}

func toClassResponses(classes []*model.Class) []classResponse {
	out := make([]classResponse, len(classes))
	for i, c := range classes {
		out[i] = toClassResponse(c)
	}
	return out
}

func toClassDetailResponse(d *model.ClassDetail) classDetailResponse {
	resp := classDetailResponse{
		classResponse: toClassResponse(&d.Class),
		Conversations: toSessionResponses(d.Conversations),
	}
	if d.Tutor != nil {
		t := toTutorResponse(d.Tutor)
		resp.Tutor = &t
	}
	return resp
}

func toStudentResponse(s *model.Student) studentResponse {
	return studentResponse{
		ID:         s.ID,
		Name:       s.Name,
		Email:      s.Email,
		Nickname:   s.Nickname,
		TutorID:    s.TutorID,
		ClassID:    s.ClassID,
		EnrolledAt: formatOptional(s.EnrolledAt),
		CreatedAt:  model.FormatDateTime(s.CreatedAt),
	}
}

func toStudentResponses(students []*model.Student) []studentResponse {
	out := make([]studentResponse, len(students))
	for i, s := range students {
		out[i] = toStudentResponse(s)
	}
	return out
}

func toSessionResponse(s *model.ConversationSession) sessionResponse {
	return sessionResponse{
		ID:          s.ID,
		ClassID:     s.ClassID,
		Name:        s.Name,
		ScheduledAt: model.FormatDateTime(s.ScheduledAt),
	}
}

func toSessionResponses(sessions []model.ConversationSession) []sessionResponse {
	out := make([]sessionResponse, len(sessions))
	for i := range sessions {
		out[i] = toSessionResponse(&sessions[i])
	}
	return out
}

func toClassCountResponses(counts []model.ClassStudentCount) []classCountResponse {
	out := make([]classCountResponse, len(counts))
	for i, c := range counts {
		out[i] = classCountResponse{
			ClassID:       c.ClassID,
			ClassName:     c.ClassName,
			Level:         c.Level,
			TutorLanguage: c.TutorLanguage,
			StudentCount:  c.StudentCount,
		}
	}
	return out
}

func formatOptional(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := model.FormatDateTime(*t)
	return &s
}
