package repository

import (
	"time"

	"github.com/hitoshi/turmas/internal/model"
)

// MongoDBのコレクション名。
const (
	TutorCollection   = "tutor"
	StudentCollection = "aluno"
	ClassCollection   = "turma"
)

// tutorDocument はtutorコレクションのドキュメント。
type tutorDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	Language  string    `bson:"language"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func newTutorDocument(t *model.Tutor) tutorDocument {
	return tutorDocument{
		ID:        t.ID,
		Name:      t.Name,
		Email:     t.Email,
		Language:  t.Language,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func (d tutorDocument) toModel() *model.Tutor {
	return &model.Tutor{
		ID:        d.ID,
		Name:      d.Name,
		Email:     d.Email,
		Language:  d.Language,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

// sessionDocument はturma.conversationsに埋め込まれる会話セッション。
type sessionDocument struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	ScheduledAt time.Time `bson:"scheduled_at"`
	CreatedAt   time.Time `bson:"created_at"`
}

func newSessionDocument(s *model.ConversationSession) sessionDocument {
	return sessionDocument{
		ID:          s.ID,
		Name:        s.Name,
		ScheduledAt: s.ScheduledAt,
		CreatedAt:   s.CreatedAt,
	}
}

func (d sessionDocument) toModel(classID string) model.ConversationSession {
	return model.ConversationSession{
		ID:          d.ID,
		ClassID:     classID,
		Name:        d.Name,
		ScheduledAt: d.ScheduledAt.UTC(),
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

// classDocument はturmaコレクションのドキュメント。
type classDocument struct {
	ID            string            `bson:"_id"`
	Name          string            `bson:"name"`
	Level         string            `bson:"level"`
	TutorID       string            `bson:"tutor_id"`
	Conversations []sessionDocument `bson:"conversations"`
	CreatedAt     time.Time         `bson:"created_at"`
	UpdatedAt     time.Time         `bson:"updated_at"`
}

func newClassDocument(c *model.Class) classDocument {
	return classDocument{
		ID:            c.ID,
		Name:          c.Name,
		Level:         c.Level,
		TutorID:       c.TutorID,
		Conversations: []sessionDocument{},
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func (d classDocument) toModel() *model.Class {
	return &model.Class{
		ID:        d.ID,
		Name:      d.Name,
		Level:     d.Level,
		TutorID:   d.TutorID,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

// studentDocument はalunoコレクションのドキュメント。
// tutor_idとclass_idは未所属の場合nullになる。
type studentDocument struct {
	ID           string     `bson:"_id"`
	Name         string     `bson:"name"`
	Email        string     `bson:"email"`
	PasswordHash string     `bson:"password_hash"`
	Nickname     string     `bson:"nickname,omitempty"`
	TutorID      *string    `bson:"tutor_id"`
	ClassID      *string    `bson:"class_id"`
	EnrolledAt   *time.Time `bson:"enrolled_at"`
	CreatedAt    time.Time  `bson:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at"`
}

func newStudentDocument(s *model.Student) studentDocument {
	return studentDocument{
		ID:           s.ID,
		Name:         s.Name,
		Email:        s.Email,
		PasswordHash: s.PasswordHash,
		Nickname:     s.Nickname,
		TutorID:      s.TutorID,
		ClassID:      s.ClassID,
		EnrolledAt:   s.EnrolledAt,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func (d studentDocument) toModel() *model.Student {
	s := &model.Student{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Nickname:     d.Nickname,
		TutorID:      d.TutorID,
		ClassID:      d.ClassID,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
	if d.EnrolledAt != nil {
		t := d.EnrolledAt.UTC()
		s.EnrolledAt = &t
	}
	return s
}

// classCountDocument は集計パイプラインの出力。
type classCountDocument struct {
	ID            string `bson:"_id"`
	Name          string `bson:"name"`
	Level         string `bson:"level"`
	TutorLanguage string `bson:"tutor_language,omitempty"`
	StudentCount  int    `bson:"student_count"`
}

func (d classCountDocument) toModel() model.ClassStudentCount {
	return model.ClassStudentCount{
		ClassID:       d.ID,
		ClassName:     d.Name,
		Level:         d.Level,
		TutorLanguage: d.TutorLanguage,
		StudentCount:  d.StudentCount,
	}
}
