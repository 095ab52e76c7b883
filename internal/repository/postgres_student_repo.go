package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/turmas/internal/model"
)

// PostgresStudentRepo はPostgreSQLを使用した受講生リポジトリ。
type PostgresStudentRepo struct {
	db *sql.DB
}

// NewPostgresStudentRepo はPostgresStudentRepoを生成する。
func NewPostgresStudentRepo(db *sql.DB) *PostgresStudentRepo {
	return &PostgresStudentRepo{db: db}
}

const studentColumns = `id, name, email, password_hash, nickname, tutor_id, class_id,
		        enrolled_at, created_at, updated_at`

func scanStudent(row interface{ Scan(...any) error }) (*model.Student, error) {
	s := &model.Student{}
	var nickname, tutorID, classID sql.NullString
	var enrolled sql.NullTime
	if err := row.Scan(
		&s.ID, &s.Name, &s.Email, &s.PasswordHash, &nickname,
		&tutorID, &classID, &enrolled, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	s.Nickname = nullStringValue(nickname)
	s.TutorID = refValue(tutorID)
	s.ClassID = refValue(classID)
	if enrolled.Valid {
		t := enrolled.Time
		s.EnrolledAt = &t
	}
	return s, nil
}

func scanStudents(rows *sql.Rows) ([]*model.Student, error) {
	defer rows.Close()

	students := []*model.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("受講生のスキャンに失敗しました: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("受講生一覧の走査に失敗しました: %w", err)
	}
	return students, nil
}

// enrolledAt は登録日時をSQLパラメータに変換する。
func enrolledAt(s *model.Student) sql.NullTime {
	if s.EnrolledAt == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *s.EnrolledAt, Valid: true}
}

// FindByID は指定IDの受講生を取得する。見つからない場合はnilを返す。
func (r *PostgresStudentRepo) FindByID(ctx context.Context, id string) (*model.Student, error) {
	s, err := scanStudent(r.db.QueryRowContext(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = $1`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("受講生の取得に失敗しました: %w", err)
	}
	return s, nil
}

// FindByEmail はメールアドレスで受講生を検索する。見つからない場合はnilを返す。
func (r *PostgresStudentRepo) FindByEmail(ctx context.Context, email string) (*model.Student, error) {
	s, err := scanStudent(r.db.QueryRowContext(ctx,
		`SELECT `+studentColumns+` FROM students WHERE email = $1`, email,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("メールアドレスによる受講生の検索に失敗しました: %w", err)
	}
	return s, nil
}

// List は受講生一覧を作成順で返す。
func (r *PostgresStudentRepo) List(ctx context.Context, page model.Page) ([]*model.Student, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+studentColumns+` FROM students
		 ORDER BY created_at ASC, id ASC
		 OFFSET $1 LIMIT $2`,
		page.Skip, page.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("受講生一覧の取得に失敗しました: %w", err)
	}
	return scanStudents(rows)
}

// ListByClassID はクラスの名簿を登録順で返す。
func (r *PostgresStudentRepo) ListByClassID(ctx context.Context, classID string, page model.Page) ([]*model.Student, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+studentColumns+` FROM students
		 WHERE class_id = $1
		 ORDER BY enrolled_at ASC, id ASC
		 OFFSET $2 LIMIT $3`,
		classID, page.Skip, page.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("クラス名簿の取得に失敗しました: %w", err)
	}
	return scanStudents(rows)
}

// CountByClassID はクラスに所属する受講生数を返す。
func (r *PostgresStudentRepo) CountByClassID(ctx context.Context, classID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM students WHERE class_id = $1`, classID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("所属受講生数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// Create は受講生を作成する。
func (r *PostgresStudentRepo) Create(ctx context.Context, student *model.Student) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO students (id, name, email, password_hash, nickname, tutor_id, class_id,
		                       enrolled_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		student.ID, student.Name, student.Email, student.PasswordHash,
		nullString(student.Nickname), nullableRef(student.TutorID), nullableRef(student.ClassID),
		enrolledAt(student), student.CreatedAt, student.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("受講生の作成に失敗しました: %w", err)
	}
	return nil
}

// Update は受講生を上書き保存する。
// クラス参照と講師参照は同一のUPDATE文で書き換えるため、片方だけが更新された状態は観測されない。
func (r *PostgresStudentRepo) Update(ctx context.Context, student *model.Student) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE students SET
		    name = $2, email = $3, password_hash = $4, nickname = $5,
		    tutor_id = $6, class_id = $7, enrolled_at = $8, updated_at = $9
		 WHERE id = $1`,
		student.ID, student.Name, student.Email, student.PasswordHash,
		nullString(student.Nickname), nullableRef(student.TutorID), nullableRef(student.ClassID),
		enrolledAt(student), student.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("受講生の更新に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDの受講生を削除する。
func (r *PostgresStudentRepo) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("受講生の削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	return rowsAffected > 0, nil
}

var _ StudentRepository = (*PostgresStudentRepo)(nil)
