package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/turmas/internal/model"
)

// ClassServiceInterface はクラスハンドラーが必要とするサービスインターフェース。
type ClassServiceInterface interface {
	CreateClass(ctx context.Context, name, level, tutorID string) (*model.Class, error)
	// GetClass は担当講師を読み取り時に解決したクラス詳細を返す。
	GetClass(ctx context.Context, id string) (*model.ClassDetail, error)
	ListClasses(ctx context.Context, page model.Page) ([]*model.Class, error)
	UpdateClass(ctx context.Context, id string, patch model.ClassPatch) (*model.Class, error)
	// DeleteClass は受講生が所属しているクラスの削除をConflictで拒否する。
	DeleteClass(ctx context.Context, id string) error
}

// ClassHandler はクラス管理のHTTPハンドラー。
type ClassHandler struct {
	service ClassServiceInterface
}

// NewClassHandler はClassHandlerを生成する。
func NewClassHandler(service ClassServiceInterface) *ClassHandler {
	return &ClassHandler{service: service}
}

// createClassRequest はクラス作成リクエストのボディ。
type createClassRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Level   string `json:"level" validate:"required,max=50"`
	TutorID string `json:"tutor_id" validate:"required"`
}

// updateClassRequest はクラス更新リクエストのボディ。担当講師は変更できない。
type updateClassRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=200"`
	Level *string `json:"level" validate:"omitempty,max=50"`
}

// Create はクラスを作成する。
// POST /turmas
func (h *ClassHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createClassRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	c, err := h.service.CreateClass(r.Context(), req.Name, req.Level, req.TutorID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toClassResponse(c))
}

// List はクラス一覧を返す。
// GET /turmas
func (h *ClassHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	classes, err := h.service.ListClasses(r.Context(), page)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClassResponses(classes))
}

// Get はクラスを担当講師と会話セッション付きで返す。
// GET /turmas/{turma_id}
func (h *ClassHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.GetClass(r.Context(), chi.URLParam(r, "turma_id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClassDetailResponse(detail))
}

// Update はクラスを部分更新する。
// PUT /turmas/{turma_id}
func (h *ClassHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateClassRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	c, err := h.service.UpdateClass(r.Context(), chi.URLParam(r, "turma_id"), model.ClassPatch{Name: req.Name, Level: req.Level})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClassResponse(c))
}

// Delete はクラスを削除する。
// DELETE /turmas/{turma_id}
func (h *ClassHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteClass(r.Context(), chi.URLParam(r, "turma_id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
