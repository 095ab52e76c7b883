// Package repair は受講生・クラス・講師間の参照整合性を修復する定期ジョブを提供する。
// 削除されたクラスを参照する受講生の参照解除と、クラスの講師と食い違った
// 講師参照の再導出を行う。どちらの処理も冪等で、修復対象がなければ何もしない。
package repair

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/turmas/internal/metrics"
	"github.com/hitoshi/turmas/internal/repository"
)

// Job は参照整合性の修復ジョブ。
type Job struct {
	repo    repository.RepairRepository
	metrics metrics.MetricsCollector
	logger  *slog.Logger
}

// Result は1回の実行で修復した件数を表す。
type Result struct {
	Detached int64 // クラス参照を解除した受講生数
	Resynced int64 // 講師参照を再導出した受講生数
}

// Total は修復した受講生の合計数を返す。
func (r Result) Total() int64 {
	return r.Detached + r.Resynced
}

// NewJob は新しいJobを生成する。
func NewJob(repo repository.RepairRepository, m metrics.MetricsCollector, logger *slog.Logger) *Job {
	if m == nil {
		m = metrics.Nop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Job{repo: repo, metrics: m, logger: logger}
}

// Run は参照整合性の修復を1回実行する。
// 孤立した受講生の参照解除を先に行い、その後に講師参照を再同期する。
func (j *Job) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	var res Result

	detached, err := j.repo.DetachOrphanedStudents(ctx)
	if err != nil {
		j.logger.Error("孤立した受講生の参照解除に失敗しました",
			slog.String("error", err.Error()),
		)
		return res, fmt.Errorf("孤立した受講生の参照解除に失敗: %w", err)
	}
	res.Detached = detached

	resynced, err := j.repo.ResyncStudentTutors(ctx)
	if err != nil {
		j.logger.Error("講師参照の再同期に失敗しました",
			slog.String("error", err.Error()),
			slog.Int64("detached_count", detached),
		)
		j.metrics.RecordRepairedStudents(detached)
		return res, fmt.Errorf("講師参照の再同期に失敗: %w", err)
	}
	res.Resynced = resynced

	j.metrics.RecordRepairedStudents(res.Total())

	duration := time.Since(start)
	j.logger.Info("参照整合性の修復ジョブが完了しました",
		slog.Int64("detached_count", res.Detached),
		slog.Int64("resynced_count", res.Resynced),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return res, nil
}

// Start はintervalごとにRunを実行する。起動直後に1回実行する。
// ctxがキャンセルされるまでブロックする。個々の実行エラーはログに記録して継続する。
func (j *Job) Start(ctx context.Context, interval time.Duration) {
	j.Run(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("修復ジョブを停止しました")
			return
		case <-ticker.C:
			j.Run(ctx)
		}
	}
}
