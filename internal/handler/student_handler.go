package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/turmas/internal/model"
)

// StudentServiceInterface は受講生ハンドラーが必要とするサービスインターフェース。
// 講師参照は常にクラスから導出されるため、どの操作も講師IDを受け取らない。
type StudentServiceInterface interface {
	EnrollStudent(ctx context.Context, classID string, in model.StudentInput) (*model.Student, error)
	CreateStudent(ctx context.Context, in model.StudentInput) (*model.Student, error)
	TransferStudent(ctx context.Context, studentID, newClassID string) (*model.Student, error)
	UpdateStudentFields(ctx context.Context, classID, studentID string, patch model.StudentPatch) (*model.Student, error)
	RemoveStudent(ctx context.Context, classID, studentID string) error
	GetStudent(ctx context.Context, studentID string) (*model.Student, error)
	ListStudents(ctx context.Context, page model.Page) ([]*model.Student, error)
	ListClassStudents(ctx context.Context, classID string, page model.Page) ([]*model.Student, error)
	DeleteStudent(ctx context.Context, studentID string) error
}

// StudentHandler は受講生管理のHTTPハンドラー。
type StudentHandler struct {
	service StudentServiceInterface
}

// NewStudentHandler はStudentHandlerを生成する。
func NewStudentHandler(service StudentServiceInterface) *StudentHandler {
	return &StudentHandler{service: service}
}

// createStudentRequest は受講生作成・登録リクエストのボディ。
type createStudentRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Nickname string `json:"nickname" validate:"max=100"`
}

func (req createStudentRequest) toInput() model.StudentInput {
	return model.StudentInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Nickname: req.Nickname,
	}
}

// updateStudentRequest は受講生更新リクエストのボディ。
// 講師とクラスは更新対象に含めず、指定された場合は未定義フィールドとして拒否される。
type updateStudentRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=200"`
	Email    *string `json:"email" validate:"omitempty,email,max=254"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
	Nickname *string `json:"nickname" validate:"omitempty,max=100"`
}

// transferRequest はクラス移動リクエストのボディ。
type transferRequest struct {
	ClassID string `json:"class_id" validate:"required"`
}

// Create はクラスに所属しない受講生を作成する。
// POST /alunos
func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createStudentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	s, err := h.service.CreateStudent(r.Context(), req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toStudentResponse(s))
}

// List は受講生一覧を返す。
// GET /alunos
func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	students, err := h.service.ListStudents(r.Context(), page)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStudentResponses(students))
}

// Get は受講生を返す。
// GET /alunos/{aluno_id}
func (h *StudentHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.GetStudent(r.Context(), chi.URLParam(r, "aluno_id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStudentResponse(s))
}

// Delete は受講生を削除する。
// DELETE /alunos/{aluno_id}
func (h *StudentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteStudent(r.Context(), chi.URLParam(r, "aluno_id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Transfer は受講生を別のクラスへ移動する。
// PUT /alunos/{aluno_id}/turma
func (h *StudentHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	s, err := h.service.TransferStudent(r.Context(), chi.URLParam(r, "aluno_id"), req.ClassID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStudentResponse(s))
}

// Enroll はクラスに新しい受講生を登録する。
// POST /turmas/{turma_id}/alunos
func (h *StudentHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	var req createStudentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	s, err := h.service.EnrollStudent(r.Context(), chi.URLParam(r, "turma_id"), req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toStudentResponse(s))
}

// ListClassStudents はクラスの名簿を登録順で返す。
// GET /turmas/{turma_id}/alunos
func (h *StudentHandler) ListClassStudents(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	students, err := h.service.ListClassStudents(r.Context(), chi.URLParam(r, "turma_id"), page)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStudentResponses(students))
}

// UpdateInClass はクラス配下の受講生を部分更新する。
// PUT /turmas/{turma_id}/alunos/{aluno_id}
func (h *StudentHandler) UpdateInClass(w http.ResponseWriter, r *http.Request) {
	var req updateStudentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	patch := model.StudentPatch{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Nickname: req.Nickname,
	}
	s, err := h.service.UpdateStudentFields(r.Context(), chi.URLParam(r, "turma_id"), chi.URLParam(r, "aluno_id"), patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStudentResponse(s))
}

// RemoveFromClass はクラス配下の受講生を削除する。
// DELETE /turmas/{turma_id}/alunos/{aluno_id}
func (h *StudentHandler) RemoveFromClass(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveStudent(r.Context(), chi.URLParam(r, "turma_id"), chi.URLParam(r, "aluno_id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
