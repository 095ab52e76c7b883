package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/turmas/internal/model"
)

// ConversationServiceInterface は会話セッションハンドラーが必要とするサービスインターフェース。
type ConversationServiceInterface interface {
	AddSession(ctx context.Context, classID, name string, scheduledAt time.Time) (*model.ConversationSession, error)
	ListSessions(ctx context.Context, classID string) ([]model.ConversationSession, error)
	UpdateSession(ctx context.Context, classID, sessionID string, patch model.SessionPatch) (*model.ConversationSession, error)
	DeleteSession(ctx context.Context, classID, sessionID string) error
}

// ConversationHandler は会話セッション管理のHTTPハンドラー。
type ConversationHandler struct {
	service ConversationServiceInterface
}

// NewConversationHandler はConversationHandlerを生成する。
func NewConversationHandler(service ConversationServiceInterface) *ConversationHandler {
	return &ConversationHandler{service: service}
}

// createSessionRequest は会話セッション追加リクエストのボディ。
// scheduled_atはDD-MM-YYYY HH:MM:SS形式。
type createSessionRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	ScheduledAt string `json:"scheduled_at" validate:"required"`
}

// updateSessionRequest は会話セッション更新リクエストのボディ。
type updateSessionRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=200"`
	ScheduledAt *string `json:"scheduled_at"`
}

// Add はクラスに会話セッションを追加する。
// POST /turmas/{turma_id}/conversations
func (h *ConversationHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, err)
		return
	}
	at, err := model.ParseDateTime("scheduled_at", req.ScheduledAt)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	s, err := h.service.AddSession(r.Context(), chi.URLParam(r, "turma_id"), req.Name, at)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(s))
}

// List はクラスの会話セッションを登録順で返す。
// GET /turmas/{turma_id}/conversations
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.service.ListSessions(r.Context(), chi.URLParam(r, "turma_id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponses(sessions))
}

// Update は会話セッションを部分更新する。
// PUT /turmas/{turma_id}/conversations/{conversation_id}
func (h *ConversationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	patch := model.SessionPatch{Name: req.Name}
	if req.ScheduledAt != nil {
		at, err := model.ParseDateTime("scheduled_at", *req.ScheduledAt)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		patch.ScheduledAt = &at
	}

	s, err := h.service.UpdateSession(r.Context(), chi.URLParam(r, "turma_id"), chi.URLParam(r, "conversation_id"), patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(s))
}

// Delete は会話セッションを削除する。
// DELETE /turmas/{turma_id}/conversations/{conversation_id}
func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSession(r.Context(), chi.URLParam(r, "turma_id"), chi.URLParam(r, "conversation_id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
