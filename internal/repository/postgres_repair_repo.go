package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresRepairRepo はPostgreSQL上で参照整合性の修復を行う。
type PostgresRepairRepo struct {
	db *sql.DB
}

// NewPostgresRepairRepo はPostgresRepairRepoを生成する。
func NewPostgresRepairRepo(db *sql.DB) *PostgresRepairRepo {
	return &PostgresRepairRepo{db: db}
}

// DetachOrphanedStudents は存在しないクラスを参照する受講生の参照を解除する。
func (r *PostgresRepairRepo) DetachOrphanedStudents(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE students s
		 SET class_id = NULL, tutor_id = NULL, enrolled_at = NULL, updated_at = now()
		 WHERE s.class_id IS NOT NULL
		   AND NOT EXISTS (SELECT 1 FROM classes c WHERE c.id = s.class_id)`,
	)
	if err != nil {
		return 0, fmt.Errorf("孤立した受講生の参照解除に失敗しました: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	return n, nil
}

// ResyncStudentTutors はクラスの講師と一致しない講師参照を修正する。
func (r *PostgresRepairRepo) ResyncStudentTutors(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE students s
		 SET tutor_id = c.tutor_id, updated_at = now()
		 FROM classes c
		 WHERE s.class_id = c.id
		   AND s.tutor_id IS DISTINCT FROM c.tutor_id`,
	)
	if err != nil {
		return 0, fmt.Errorf("受講生の講師参照の再同期に失敗しました: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	return n, nil
}

var _ RepairRepository = (*PostgresRepairRepo)(nil)
