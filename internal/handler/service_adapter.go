package handler

import (
	"context"

	"github.com/hitoshi/turmas/internal/enrollment"
	"github.com/hitoshi/turmas/internal/model"
	"github.com/hitoshi/turmas/internal/roster"
	"github.com/hitoshi/turmas/internal/turma"
	"github.com/hitoshi/turmas/internal/tutor"
)

// TutorServiceAdapter は tutor.Service を TutorServiceInterface に適合させるアダプタ。
type TutorServiceAdapter struct {
	svc *tutor.Service
}

// NewTutorServiceAdapter はTutorServiceAdapterを生成する。
func NewTutorServiceAdapter(svc *tutor.Service) *TutorServiceAdapter {
	return &TutorServiceAdapter{svc: svc}
}

// Create は講師を作成する。
func (a *TutorServiceAdapter) Create(ctx context.Context, name, email, language string) (*model.Tutor, error) {
	return a.svc.Create(ctx, tutor.CreateInput{Name: name, Email: email, Language: language})
}

// Get は講師を返す。
func (a *TutorServiceAdapter) Get(ctx context.Context, id string) (*model.Tutor, error) {
	return a.svc.Get(ctx, id)
}

// List は講師一覧を返す。
func (a *TutorServiceAdapter) List(ctx context.Context, page model.Page) ([]*model.Tutor, error) {
	return a.svc.List(ctx, page)
}

// Update は講師を部分更新する。
func (a *TutorServiceAdapter) Update(ctx context.Context, id string, patch model.TutorPatch) (*model.Tutor, error) {
	return a.svc.Update(ctx, id, patch)
}

// Delete は講師を削除する。
func (a *TutorServiceAdapter) Delete(ctx context.Context, id string) error {
	return a.svc.Delete(ctx, id)
}

// ClassServiceAdapter は turma.Service を ClassServiceInterface に適合させるアダプタ。
// 会話セッション操作はturma.Serviceが直接ConversationServiceInterfaceを満たす。
type ClassServiceAdapter struct {
	*turma.Service
}

// NewClassServiceAdapter はClassServiceAdapterを生成する。
func NewClassServiceAdapter(svc *turma.Service) *ClassServiceAdapter {
	return &ClassServiceAdapter{Service: svc}
}

// CreateClass はクラスを作成する。
func (a *ClassServiceAdapter) CreateClass(ctx context.Context, name, level, tutorID string) (*model.Class, error) {
	return a.Service.CreateClass(ctx, turma.CreateClassInput{Name: name, Level: level, TutorID: tutorID})
}

// --- compile-time interface checks ---

var _ TutorServiceInterface = (*TutorServiceAdapter)(nil)
var _ ClassServiceInterface = (*ClassServiceAdapter)(nil)
var _ ConversationServiceInterface = (*turma.Service)(nil)
var _ StudentServiceInterface = (*enrollment.Service)(nil)
var _ RosterServiceInterface = (*roster.Service)(nil)
