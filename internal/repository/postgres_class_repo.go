package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/turmas/internal/model"
)

// PostgresClassRepo はPostgreSQLを使用したクラスリポジトリ。
type PostgresClassRepo struct {
	db *sql.DB
}

// NewPostgresClassRepo はPostgresClassRepoを生成する。
func NewPostgresClassRepo(db *sql.DB) *PostgresClassRepo {
	return &PostgresClassRepo{db: db}
}

const classColumns = `id, name, level, tutor_id, created_at, updated_at`

func scanClass(row interface{ Scan(...any) error }) (*model.Class, error) {
	c := &model.Class{}
	if err := row.Scan(&c.ID, &c.Name, &c.Level, &c.TutorID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// FindByID は指定IDのクラスを取得する。見つからない場合はnilを返す。
func (r *PostgresClassRepo) FindByID(ctx context.Context, id string) (*model.Class, error) {
	c, err := scanClass(r.db.QueryRowContext(ctx,
		`SELECT `+classColumns+` FROM classes WHERE id = $1`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("クラスの取得に失敗しました: %w", err)
	}
	return c, nil
}

// List はクラス一覧を作成順で返す。
func (r *PostgresClassRepo) List(ctx context.Context, page model.Page) ([]*model.Class, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+classColumns+` FROM classes
		 ORDER BY created_at ASC, id ASC
		 OFFSET $1 LIMIT $2`,
		page.Skip, page.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("クラス一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	classes := []*model.Class{}
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, fmt.Errorf("クラスのスキャンに失敗しました: %w", err)
		}
		classes = append(classes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("クラス一覧の走査に失敗しました: %w", err)
	}
	return classes, nil
}

// CountByTutorID は講師が担当するクラス数を返す。
func (r *PostgresClassRepo) CountByTutorID(ctx context.Context, tutorID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM classes WHERE tutor_id = $1`, tutorID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("担当クラス数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// Create はクラスを作成する。
func (r *PostgresClassRepo) Create(ctx context.Context, class *model.Class) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO classes (id, name, level, tutor_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		class.ID, class.Name, class.Level, class.TutorID, class.CreatedAt, class.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("クラスの作成に失敗しました: %w", err)
	}
	return nil
}

// Update はクラスの名前とレベルを更新する。
func (r *PostgresClassRepo) Update(ctx context.Context, class *model.Class) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE classes SET name = $2, level = $3, updated_at = $4 WHERE id = $1`,
		class.ID, class.Name, class.Level, class.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("クラスの更新に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDのクラスを削除する。
// 会話セッションは外部キーのON DELETE CASCADEで同時に削除される。
func (r *PostgresClassRepo) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("クラスの削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	return rowsAffected > 0, nil
}

var _ ClassRepository = (*PostgresClassRepo)(nil)
