package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/turmas/internal/model"
)

// RosterServiceInterface は名簿集計ハンドラーが必要とするサービスインターフェース。
type RosterServiceInterface interface {
	CountStudentsByClass(ctx context.Context) ([]model.ClassStudentCount, error)
	CountStudentsByClassWithTutorLanguage(ctx context.Context) ([]model.ClassStudentCount, error)
	FindSessionsInRange(ctx context.Context, classID string, start, end time.Time) ([]model.ConversationSession, error)
	SearchStudentsByName(ctx context.Context, pattern string, page model.Page) ([]*model.Student, error)
}

// RosterHandler は名簿集計ビューのHTTPハンドラー。
type RosterHandler struct {
	service RosterServiceInterface
}

// NewRosterHandler はRosterHandlerを生成する。
func NewRosterHandler(service RosterServiceInterface) *RosterHandler {
	return &RosterHandler{service: service}
}

// CountByClass はクラス別受講生数を返す。受講生のいないクラスも0件で含む。
// GET /turmas/aluno/contagem
func (h *RosterHandler) CountByClass(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.CountStudentsByClass(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClassCountResponses(counts))
}

// CountByClassWithLanguage はクラス別受講生数を講師の言語付きで返す。
// GET /turmas/aluno/por_turma
func (h *RosterHandler) CountByClassWithLanguage(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.CountStudentsByClassWithTutorLanguage(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClassCountResponses(counts))
}

// SessionsInRange はクラスの会話セッションのうち期間内に予定されているものを返す。
// GET /turmas/{turma_id}/conversations/data?start_date=&end_date=
func (h *RosterHandler) SessionsInRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := model.ParseDateTime("start_date", q.Get("start_date"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	end, err := model.ParseDateTime("end_date", q.Get("end_date"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	sessions, err := h.service.FindSessionsInRange(r.Context(), chi.URLParam(r, "turma_id"), start, end)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponses(sessions))
}

// SearchStudents は名前に指定文字列を含む受講生を返す。
// GET /alunos/busca?nome=
func (h *RosterHandler) SearchStudents(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	students, err := h.service.SearchStudentsByName(r.Context(), r.URL.Query().Get("nome"), page)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStudentResponses(students))
}
