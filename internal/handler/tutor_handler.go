package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/turmas/internal/model"
)

// TutorServiceInterface は講師ハンドラーが必要とするサービスインターフェース。
type TutorServiceInterface interface {
	Create(ctx context.Context, name, email, language string) (*model.Tutor, error)
	Get(ctx context.Context, id string) (*model.Tutor, error)
	List(ctx context.Context, page model.Page) ([]*model.Tutor, error)
	Update(ctx context.Context, id string, patch model.TutorPatch) (*model.Tutor, error)
	// Delete は担当クラスが残っている講師の削除をConflictで拒否する。
	Delete(ctx context.Context, id string) error
}

// TutorHandler は講師管理のHTTPハンドラー。
type TutorHandler struct {
	service TutorServiceInterface
}

// NewTutorHandler はTutorHandlerを生成する。
func NewTutorHandler(service TutorServiceInterface) *TutorHandler {
	return &TutorHandler{service: service}
}

// createTutorRequest は講師作成リクエストのボディ。
type createTutorRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Language string `json:"language" validate:"required,max=100"`
}

// updateTutorRequest は講師更新リクエストのボディ。指定したフィールドだけを更新する。
type updateTutorRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=200"`
	Email    *string `json:"email" validate:"omitempty,email,max=254"`
	Language *string `json:"language" validate:"omitempty,max=100"`
}

// Create は講師を作成する。
// POST /tutores
func (h *TutorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTutorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	t, err := h.service.Create(r.Context(), req.Name, req.Email, req.Language)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTutorResponse(t))
}

// List は講師一覧を返す。
// GET /tutores
func (h *TutorHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	tutors, err := h.service.List(r.Context(), page)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTutorResponses(tutors))
}

// Get は講師を返す。
// GET /tutores/{tutor_id}
func (h *TutorHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.Get(r.Context(), chi.URLParam(r, "tutor_id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTutorResponse(t))
}

// Update は講師を部分更新する。
// PUT /tutores/{tutor_id}
func (h *TutorHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateTutorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	patch := model.TutorPatch{Name: req.Name, Email: req.Email, Language: req.Language}
	t, err := h.service.Update(r.Context(), chi.URLParam(r, "tutor_id"), patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTutorResponse(t))
}

// Delete は講師を削除する。
// DELETE /tutores/{tutor_id}
func (h *TutorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "tutor_id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
