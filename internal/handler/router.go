package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/turmas/internal/metrics"
	"github.com/hitoshi/turmas/internal/middleware"
	"github.com/hitoshi/turmas/internal/repository"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Metrics           metrics.MetricsCollector

	// 運用エンドポイント
	HealthChecker  repository.HealthChecker
	MetricsHandler http.Handler

	TutorService        TutorServiceInterface
	ClassService        ClassServiceInterface
	StudentService      StudentServiceInterface
	ConversationService ConversationServiceInterface
	RosterService       RosterServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Metrics → RateLimit(General) → RateLimit(Write)
//
// /health と /metrics はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := deps.Metrics
	if m == nil {
		m = metrics.Nop()
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewMetricsMiddleware(m))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeAPIErrorResponse(w, http.StatusNotFound, routeNotFoundError())
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeAPIErrorResponse(w, http.StatusMethodNotAllowed, methodNotAllowedError())
	})

	// --- 運用エンドポイント ---
	if deps.HealthChecker != nil {
		r.Get("/health", NewHealthHandler(deps.HealthChecker))
	}
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	tutorHandler := NewTutorHandler(deps.TutorService)
	classHandler := NewClassHandler(deps.ClassService)
	studentHandler := NewStudentHandler(deps.StudentService)
	conversationHandler := NewConversationHandler(deps.ConversationService)
	rosterHandler := NewRosterHandler(deps.RosterService)

	// --- API ---
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
			r.Use(deps.RateLimiter.WriteMiddleware())
		}

		r.Route("/tutores", func(r chi.Router) {
			r.Post("/", tutorHandler.Create)
			r.Get("/", tutorHandler.List)
			r.Route("/{tutor_id}", func(r chi.Router) {
				r.Get("/", tutorHandler.Get)
				r.Put("/", tutorHandler.Update)
				r.Delete("/", tutorHandler.Delete)
			})
		})

		r.Route("/alunos", func(r chi.Router) {
			r.Post("/", studentHandler.Create)
			r.Get("/", studentHandler.List)
			r.Get("/busca", rosterHandler.SearchStudents)
			r.Route("/{aluno_id}", func(r chi.Router) {
				r.Get("/", studentHandler.Get)
				r.Delete("/", studentHandler.Delete)
				r.Put("/turma", studentHandler.Transfer)
			})
		})

		r.Route("/turmas", func(r chi.Router) {
			r.Post("/", classHandler.Create)
			r.Get("/", classHandler.List)

			// 集計ビュー（/{turma_id}より優先される静的パス）
			r.Get("/aluno/por_turma", rosterHandler.CountByClassWithLanguage)
			r.Get("/aluno/contagem", rosterHandler.CountByClass)

			r.Route("/{turma_id}", func(r chi.Router) {
				r.Get("/", classHandler.Get)
				r.Put("/", classHandler.Update)
				r.Delete("/", classHandler.Delete)

				r.Route("/alunos", func(r chi.Router) {
					r.Post("/", studentHandler.Enroll)
					r.Get("/", studentHandler.ListClassStudents)
					r.Put("/{aluno_id}", studentHandler.UpdateInClass)
					r.Delete("/{aluno_id}", studentHandler.RemoveFromClass)
				})

				r.Route("/conversations", func(r chi.Router) {
					r.Post("/", conversationHandler.Add)
					r.Get("/", conversationHandler.List)
					r.Get("/data", rosterHandler.SessionsInRange)
					r.Put("/{conversation_id}", conversationHandler.Update)
					r.Delete("/{conversation_id}", conversationHandler.Delete)
				})
			})
		})
	})

	return r
}
