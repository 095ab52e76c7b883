package turma

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/turmas/internal/model"
	"github.com/hitoshi/turmas/internal/security"
)

// AddSession はクラスに会話セッションを追加する。
func (s *Service) AddSession(ctx context.Context, classID, name string, scheduledAt time.Time) (*model.ConversationSession, error) {
	clean, ok := security.CleanRequired(s.sanitizer, name)
	if !ok {
		return nil, model.NewValidationFailedError([]string{"name"})
	}
	class, err := s.findClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	session := &model.ConversationSession{
		ID:          model.NewID(),
		ClassID:     class.ID,
		Name:        clean,
		ScheduledAt: scheduledAt.UTC(),
		CreatedAt:   s.now(),
	}
	if err := s.conversationRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("会話セッションの追加に失敗しました: %w", err)
	}
	return session, nil
}

// ListSessions はクラスの会話セッションを登録順で返す。
func (s *Service) ListSessions(ctx context.Context, classID string) ([]model.ConversationSession, error) {
	class, err := s.findClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.conversationRepo.ListByClassID(ctx, class.ID)
	if err != nil {
		return nil, fmt.Errorf("会話セッション一覧の取得に失敗しました: %w", err)
	}
	return sessions, nil
}

// findSession はクラス配下のセッションを取得する。
// セッションが別クラスに属する場合も存在しないものとして扱う。
func (s *Service) findSession(ctx context.Context, classID, sessionID string) (*model.ConversationSession, error) {
	class, err := s.findClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	if !model.IsValidID(sessionID) {
		return nil, model.NewSessionNotFoundError(sessionID)
	}
	session, err := s.conversationRepo.FindByID(ctx, class.ID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("会話セッションの取得に失敗しました: %w", err)
	}
	if session == nil {
		return nil, model.NewSessionNotFoundError(sessionID)
	}
	return session, nil
}

// UpdateSession は会話セッションの名前と予定日時を部分更新する。
func (s *Service) UpdateSession(ctx context.Context, classID, sessionID string, patch model.SessionPatch) (*model.ConversationSession, error) {
	if patch.Name == nil && patch.ScheduledAt == nil {
		return nil, model.NewEmptyPatchError()
	}
	var clean model.SessionPatch
	if patch.Name != nil {
		v, ok := security.CleanRequired(s.sanitizer, *patch.Name)
		if !ok {
			return nil, model.NewValidationFailedError([]string{"name"})
		}
		clean.Name = &v
	}
	if patch.ScheduledAt != nil {
		at := patch.ScheduledAt.UTC()
		clean.ScheduledAt = &at
	}

	session, err := s.findSession(ctx, classID, sessionID)
	if err != nil {
		return nil, err
	}
	clean.Apply(session)
	if err := s.conversationRepo.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("会話セッションの更新に失敗しました: %w", err)
	}
	return session, nil
}

// DeleteSession はクラス配下の会話セッションを削除する。
func (s *Service) DeleteSession(ctx context.Context, classID, sessionID string) error {
	session, err := s.findSession(ctx, classID, sessionID)
	if err != nil {
		return err
	}
	deleted, err := s.conversationRepo.Delete(ctx, session.ClassID, session.ID)
	if err != nil {
		return fmt.Errorf("会話セッションの削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewSessionNotFoundError(sessionID)
	}
	return nil
}
