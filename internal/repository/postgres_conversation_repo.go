package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/turmas/internal/model"
)

// PostgresConversationRepo はPostgreSQLを使用した会話セッションリポジトリ。
type PostgresConversationRepo struct {
	db *sql.DB
}

// NewPostgresConversationRepo はPostgresConversationRepoを生成する。
func NewPostgresConversationRepo(db *sql.DB) *PostgresConversationRepo {
	return &PostgresConversationRepo{db: db}
}

const sessionColumns = `id, class_id, name, scheduled_at, created_at`

func scanSession(row interface{ Scan(...any) error }) (model.ConversationSession, error) {
	var cs model.ConversationSession
	err := row.Scan(&cs.ID, &cs.ClassID, &cs.Name, &cs.ScheduledAt, &cs.CreatedAt)
	if err == nil {
		cs.ScheduledAt = cs.ScheduledAt.UTC()
	}
	return cs, err
}

func scanSessions(rows *sql.Rows) ([]model.ConversationSession, error) {
	defer rows.Close()

	sessions := []model.ConversationSession{}
	for rows.Next() {
		cs, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("会話セッションのスキャンに失敗しました: %w", err)
		}
		sessions = append(sessions, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("会話セッション一覧の走査に失敗しました: %w", err)
	}
	return sessions, nil
}

// Create はクラスにセッションを追加する。
func (r *PostgresConversationRepo) Create(ctx context.Context, session *model.ConversationSession) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO conversation_sessions (id, class_id, name, scheduled_at, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		session.ID, session.ClassID, session.Name, session.ScheduledAt, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("会話セッションの作成に失敗しました: %w", err)
	}
	return nil
}

// FindByID はクラス配下の指定セッションを取得する。見つからない場合はnilを返す。
func (r *PostgresConversationRepo) FindByID(ctx context.Context, classID, sessionID string) (*model.ConversationSession, error) {
	cs, err := scanSession(r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM conversation_sessions
		 WHERE class_id = $1 AND id = $2`,
		classID, sessionID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("会話セッションの取得に失敗しました: %w", err)
	}
	return &cs, nil
}

// ListByClassID はクラスのセッションを登録順で返す。
func (r *PostgresConversationRepo) ListByClassID(ctx context.Context, classID string) ([]model.ConversationSession, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM conversation_sessions
		 WHERE class_id = $1
		 ORDER BY created_at ASC, id ASC`,
		classID,
	)
	if err != nil {
		return nil, fmt.Errorf("会話セッション一覧の取得に失敗しました: %w", err)
	}
	return scanSessions(rows)
}

// Update はセッションの名前と予定日時を更新する。
func (r *PostgresConversationRepo) Update(ctx context.Context, session *model.ConversationSession) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE conversation_sessions SET name = $3, scheduled_at = $4
		 WHERE class_id = $1 AND id = $2`,
		session.ClassID, session.ID, session.Name, session.ScheduledAt,
	)
	if err != nil {
		return fmt.Errorf("会話セッションの更新に失敗しました: %w", err)
	}
	return nil
}

// Delete はクラス配下の指定セッションを削除する。
func (r *PostgresConversationRepo) Delete(ctx context.Context, classID, sessionID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM conversation_sessions WHERE class_id = $1 AND id = $2`,
		classID, sessionID,
	)
	if err != nil {
		return false, fmt.Errorf("会話セッションの削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	return rowsAffected > 0, nil
}

var _ ConversationRepository = (*PostgresConversationRepo)(nil)
