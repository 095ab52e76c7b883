package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/turmas/internal/model"
)

// PostgresTutorRepo はPostgreSQLを使用した講師リポジトリ。
type PostgresTutorRepo struct {
	db *sql.DB
}

// NewPostgresTutorRepo はPostgresTutorRepoを生成する。
func NewPostgresTutorRepo(db *sql.DB) *PostgresTutorRepo {
	return &PostgresTutorRepo{db: db}
}

const tutorColumns = `id, name, email, language, created_at, updated_at`

func scanTutor(row interface{ Scan(...any) error }) (*model.Tutor, error) {
	t := &model.Tutor{}
	if err := row.Scan(&t.ID, &t.Name, &t.Email, &t.Language, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

// FindByID は指定IDの講師を取得する。見つからない場合はnilを返す。
func (r *PostgresTutorRepo) FindByID(ctx context.Context, id string) (*model.Tutor, error) {
	t, err := scanTutor(r.db.QueryRowContext(ctx,
		`SELECT `+tutorColumns+` FROM tutors WHERE id = $1`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("講師の取得に失敗しました: %w", err)
	}
	return t, nil
}

// FindByEmail はメールアドレスで講師を検索する。見つからない場合はnilを返す。
func (r *PostgresTutorRepo) FindByEmail(ctx context.Context, email string) (*model.Tutor, error) {
	t, err := scanTutor(r.db.QueryRowContext(ctx,
		`SELECT `+tutorColumns+` FROM tutors WHERE email = $1`, email,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("メールアドレスによる講師の検索に失敗しました: %w", err)
	}
	return t, nil
}

// List は講師一覧を作成順で返す。
func (r *PostgresTutorRepo) List(ctx context.Context, page model.Page) ([]*model.Tutor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tutorColumns+` FROM tutors
		 ORDER BY created_at ASC, id ASC
		 OFFSET $1 LIMIT $2`,
		page.Skip, page.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("講師一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	tutors := []*model.Tutor{}
	for rows.Next() {
		t, err := scanTutor(rows)
		if err != nil {
			return nil, fmt.Errorf("講師のスキャンに失敗しました: %w", err)
		}
		tutors = append(tutors, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("講師一覧の走査に失敗しました: %w", err)
	}
	return tutors, nil
}

// Create は講師を作成する。
func (r *PostgresTutorRepo) Create(ctx context.Context, tutor *model.Tutor) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tutors (id, name, email, language, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		tutor.ID, tutor.Name, tutor.Email, tutor.Language, tutor.CreatedAt, tutor.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("講師の作成に失敗しました: %w", err)
	}
	return nil
}

// Update は講師情報を更新する。
func (r *PostgresTutorRepo) Update(ctx context.Context, tutor *model.Tutor) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tutors SET name = $2, email = $3, language = $4, updated_at = $5
		 WHERE id = $1`,
		tutor.ID, tutor.Name, tutor.Email, tutor.Language, tutor.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("講師の更新に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDの講師を削除する。
func (r *PostgresTutorRepo) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tutors WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("講師の削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	return rowsAffected > 0, nil
}

// コンパイル時にインターフェースの実装を検証する。
var _ TutorRepository = (*PostgresTutorRepo)(nil)
