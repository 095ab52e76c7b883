package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/turmas/internal/config"
	"github.com/hitoshi/turmas/internal/database"
	"github.com/hitoshi/turmas/internal/enrollment"
	"github.com/hitoshi/turmas/internal/handler"
	"github.com/hitoshi/turmas/internal/logger"
	"github.com/hitoshi/turmas/internal/metrics"
	"github.com/hitoshi/turmas/internal/middleware"
	"github.com/hitoshi/turmas/internal/roster"
	"github.com/hitoshi/turmas/internal/security"
	"github.com/hitoshi/turmas/internal/turma"
	"github.com/hitoshi/turmas/internal/tutor"
	"github.com/hitoshi/turmas/internal/worker/repair"
)

// Init はアプリケーションの初期化を行う。
// .envファイルと環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルを反映する
	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("store_driver", cfg.StoreDriver),
		slog.String("port", cfg.ServerPort),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case CommandWorker:
		return runWorker(ctx, cfg)
	case CommandMigrate:
		return runMigrate(ctx, cfg)
	default:
		return runServe(ctx, cfg)
	}
}

// newRouter はストアとメトリクスから全依存関係をワイヤリングしたHTTPハンドラーを構築する。
func newRouter(cfg *config.Config, st *store, m metrics.MetricsCollector, metricsHandler http.Handler, rl *middleware.RateLimiter) http.Handler {
	sanitizer := security.NewTextSanitizer()
	hasher := security.NewPasswordHasher(cfg.BcryptCost)

	tutorService := tutor.NewService(st.tutors, st.classes, sanitizer, m)
	classService := turma.NewService(st.classes, st.tutors, st.students, st.conversations, sanitizer, m)
	enrollmentService := enrollment.NewService(st.students, st.classes, hasher, sanitizer, m)
	rosterService := roster.NewService(st.roster, st.classes, m)

	return handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rl,
		Metrics:           m,

		HealthChecker:  st.health,
		MetricsHandler: metricsHandler,

		TutorService:        handler.NewTutorServiceAdapter(tutorService),
		ClassService:        handler.NewClassServiceAdapter(classService),
		StudentService:      enrollmentService,
		ConversationService: classService,
		RosterService:       rosterService,
	})
}

// newMetrics は専用レジストリにアプリケーションとランタイムのメトリクスを登録する。
func newMetrics() (*metrics.Collector, http.Handler) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return metrics.NewCollector(reg), metrics.Handler(reg)
}

// runServe はAPIサーバーモードで起動する。
// ストアに接続し、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// ctxがキャンセルされる（SIGINTまたはSIGTERM）とグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	// 1. ストア接続
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	// 2. メトリクスとレート制限
	collector, metricsHandler := newMetrics()
	rl := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitWrite))
	defer rl.Stop()

	// 3. ルーターの構築
	router := newRouter(cfg, st, collector, metricsHandler, rl)

	// 4. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// ストアに接続し、参照整合性の修復ジョブをREPAIR_INTERVALごとに実行する。
// ctxがキャンセルされるまでブロックする。
func runWorker(ctx context.Context, cfg *config.Config) error {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	// ワーカーは/metricsを公開しないため、修復件数はログで確認する
	job := repair.NewJob(st.repair, metrics.Nop(), slog.Default())

	slog.Info("worker starting",
		slog.Duration("repair_interval", cfg.RepairInterval),
	)

	job.Start(ctx, cfg.RepairInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はスキーマを最新化する。
// PostgreSQLでは未適用のマイグレーションを順番に適用し、MongoDBではインデックスを作成する。
func runMigrate(ctx context.Context, cfg *config.Config) error {
	if cfg.StoreDriver == config.DriverMongo {
		slog.Info("ensuring mongodb indexes",
			slog.String("mongo_uri", redactURL(cfg.MongoURI)),
		)
		st, err := openStore(ctx, cfg)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		defer st.close()
		slog.Info("mongodb indexes are up to date")
		return nil
	}

	slog.Info("running database migrations",
		slog.String("database_url", redactURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	version, err := database.SchemaVersion(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	slog.Info("database migrations completed successfully",
		slog.Uint64("schema_version", uint64(version)),
	)
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	endpoint := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(endpoint)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// redactURL は接続URLのパスワードをマスクする。
// 解析できないURLは全体をマスクする。
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
