package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/turmas/internal/model"
)

// PostgresRosterRepo はPostgreSQLの集計クエリで名簿ビューを提供する。
type PostgresRosterRepo struct {
	db *sql.DB
}

// NewPostgresRosterRepo はPostgresRosterRepoを生成する。
func NewPostgresRosterRepo(db *sql.DB) *PostgresRosterRepo {
	return &PostgresRosterRepo{db: db}
}

// CountStudentsByClass は受講生をクラスごとに集計する。
// LEFT JOINにより受講生0名のクラスも含まれる。
func (r *PostgresRosterRepo) CountStudentsByClass(ctx context.Context) ([]model.ClassStudentCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.level, COUNT(s.id)
		 FROM classes c
		 LEFT JOIN students s ON s.class_id = c.id
		 GROUP BY c.id, c.name, c.level
		 ORDER BY c.name ASC, c.id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("クラス別受講生数の集計に失敗しました: %w", err)
	}
	defer rows.Close()

	counts := []model.ClassStudentCount{}
	for rows.Next() {
		var c model.ClassStudentCount
		if err := rows.Scan(&c.ClassID, &c.ClassName, &c.Level, &c.StudentCount); err != nil {
			return nil, fmt.Errorf("集計結果のスキャンに失敗しました: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("集計結果の走査に失敗しました: %w", err)
	}
	return counts, nil
}

// CountStudentsByClassWithTutorLanguage はクラス別受講生数に講師の言語を結合する。
// 講師との結合はINNER JOINのため、講師を解決できないクラスは除外される。
func (r *PostgresRosterRepo) CountStudentsByClassWithTutorLanguage(ctx context.Context) ([]model.ClassStudentCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.level, t.language, COUNT(s.id)
		 FROM classes c
		 INNER JOIN tutors t ON t.id = c.tutor_id
		 LEFT JOIN students s ON s.class_id = c.id
		 GROUP BY c.id, c.name, c.level, t.language
		 ORDER BY c.name ASC, c.id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("講師言語付きクラス別受講生数の集計に失敗しました: %w", err)
	}
	defer rows.Close()

	counts := []model.ClassStudentCount{}
	for rows.Next() {
		var c model.ClassStudentCount
		if err := rows.Scan(&c.ClassID, &c.ClassName, &c.Level, &c.TutorLanguage, &c.StudentCount); err != nil {
			return nil, fmt.Errorf("集計結果のスキャンに失敗しました: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("集計結果の走査に失敗しました: %w", err)
	}
	return counts, nil
}

// FindSessionsInRange はクラスのセッションのうち予定日時が[start, end]に入るものを返す。
func (r *PostgresRosterRepo) FindSessionsInRange(ctx context.Context, classID string, start, end time.Time) ([]model.ConversationSession, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM conversation_sessions
		 WHERE class_id = $1 AND scheduled_at >= $2 AND scheduled_at <= $3
		 ORDER BY scheduled_at ASC, id ASC`,
		classID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("期間内の会話セッションの取得に失敗しました: %w", err)
	}
	return scanSessions(rows)
}

// SearchStudentsByName は名前に部分文字列を含む受講生を返す。
// パターン中のワイルドカード文字はリテラルとして扱う。
func (r *PostgresRosterRepo) SearchStudentsByName(ctx context.Context, pattern string, page model.Page) ([]*model.Student, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+studentColumns+` FROM students
		 WHERE name ILIKE $1 ESCAPE '\'
		 ORDER BY name ASC, id ASC
		 OFFSET $2 LIMIT $3`,
		escapeLikePattern(pattern), page.Skip, page.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("受講生の名前検索に失敗しました: %w", err)
	}
	return scanStudents(rows)
}

var _ RosterRepository = (*PostgresRosterRepo)(nil)
