package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/turmas/internal/config"
	"github.com/hitoshi/turmas/internal/database"
	"github.com/hitoshi/turmas/internal/repository"
)

// store は選択されたドライバーのリポジトリ一式と接続のクローズ処理をまとめる。
// 接続はプロセスごとに1回だけ生成し、各リポジトリに注入する。
type store struct {
	tutors        repository.TutorRepository
	classes       repository.ClassRepository
	students      repository.StudentRepository
	conversations repository.ConversationRepository
	roster        repository.RosterRepository
	repair        repository.RepairRepository
	health        repository.HealthChecker
	close         func() error
}

// openStore はSTORE_DRIVERに応じてPostgreSQLまたはMongoDBへ接続し、リポジトリを構築する。
func openStore(ctx context.Context, cfg *config.Config) (*store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		return openMongoStore(ctx, cfg)
	default:
		return openPostgresStore(ctx, cfg)
	}
}

func openPostgresStore(ctx context.Context, cfg *config.Config) (*store, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established", slog.String("driver", config.DriverPostgres))

	return &store{
		tutors:        repository.NewPostgresTutorRepo(db),
		classes:       repository.NewPostgresClassRepo(db),
		students:      repository.NewPostgresStudentRepo(db),
		conversations: repository.NewPostgresConversationRepo(db),
		roster:        repository.NewPostgresRosterRepo(db),
		repair:        repository.NewPostgresRepairRepo(db),
		health:        db,
		close:         db.Close,
	}, nil
}

func openMongoStore(ctx context.Context, cfg *config.Config) (*store, error) {
	client, err := database.OpenMongo(ctx, cfg.MongoURI, cfg.StoreTimeout)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.MongoDatabase)

	if err := repository.EnsureMongoIndexes(ctx, db); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ensure mongodb indexes: %w", err)
	}

	slog.Info("database connection established",
		slog.String("driver", config.DriverMongo),
		slog.String("database", cfg.MongoDatabase),
	)

	return &store{
		tutors:        repository.NewMongoTutorRepo(db),
		classes:       repository.NewMongoClassRepo(db),
		students:      repository.NewMongoStudentRepo(db),
		conversations: repository.NewMongoConversationRepo(db),
		roster:        repository.NewMongoRosterRepo(db),
		repair:        repository.NewMongoRepairRepo(db),
		health:        database.MongoPinger{Client: client},
		close: func() error {
			return client.Disconnect(context.Background())
		},
	}, nil
}
