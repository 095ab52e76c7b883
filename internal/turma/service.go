// Package turma はクラスと会話セッションのドメインロジックを提供する。
package turma

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/turmas/internal/metrics"
	"github.com/hitoshi/turmas/internal/model"
	"github.com/hitoshi/turmas/internal/repository"
	"github.com/hitoshi/turmas/internal/security"
)

// CreateClassInput はクラス作成時の入力。
type CreateClassInput struct {
	Name    string
	Level   string
	TutorID string
}

// Service はクラス管理のサービス層。
// クラス削除は所属受講生が残っている間は拒否し、会話セッションはクラスと一緒に削除される。
type Service struct {
	classRepo        repository.ClassRepository
	tutorRepo        repository.TutorRepository
	studentRepo      repository.StudentRepository
	conversationRepo repository.ConversationRepository
	sanitizer        security.TextSanitizer
	metrics          metrics.MetricsCollector
	now              func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	classRepo repository.ClassRepository,
	tutorRepo repository.TutorRepository,
	studentRepo repository.StudentRepository,
	conversationRepo repository.ConversationRepository,
	sanitizer security.TextSanitizer,
	m metrics.MetricsCollector,
) *Service {
	return &Service{
		classRepo:        classRepo,
		tutorRepo:        tutorRepo,
		studentRepo:      studentRepo,
		conversationRepo: conversationRepo,
		sanitizer:        sanitizer,
		metrics:          m,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// CreateClass は既存の講師を担当としてクラスを作成する。
func (s *Service) CreateClass(ctx context.Context, in CreateClassInput) (*model.Class, error) {
	name, nameOK := security.CleanRequired(s.sanitizer, in.Name)
	level, levelOK := security.CleanRequired(s.sanitizer, in.Level)
	if invalid := model.InvalidFields(map[string]bool{"name": nameOK, "level": levelOK}); len(invalid) > 0 {
		return nil, model.NewValidationFailedError(invalid)
	}

	if !model.IsValidID(in.TutorID) {
		return nil, model.NewTutorNotFoundError(in.TutorID)
	}
	tutor, err := s.tutorRepo.FindByID(ctx, in.TutorID)
	if err != nil {
		return nil, fmt.Errorf("講師の取得に失敗しました: %w", err)
	}
	if tutor == nil {
		return nil, model.NewTutorNotFoundError(in.TutorID)
	}

	now := s.now()
	class := &model.Class{
		ID:        model.NewID(),
		Name:      name,
		Level:     level,
		TutorID:   tutor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.classRepo.Create(ctx, class); err != nil {
		return nil, fmt.Errorf("クラスの作成に失敗しました: %w", err)
	}

	slog.Info("クラスを作成しました",
		slog.String("class_id", class.ID),
		slog.String("tutor_id", class.TutorID),
	)
	return class, nil
}

// findClass はクラスを取得する。不正なIDや存在しない場合はNotFoundを返す。
func (s *Service) findClass(ctx context.Context, id string) (*model.Class, error) {
	if !model.IsValidID(id) {
		return nil, model.NewClassNotFoundError(id)
	}
	class, err := s.classRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("クラスの取得に失敗しました: %w", err)
	}
	if class == nil {
		return nil, model.NewClassNotFoundError(id)
	}
	return class, nil
}

// GetClass はクラスを担当講師と会話セッション付きで返す。
// 講師は読み取り時に解決するため、講師の変更は即座に反映される。
func (s *Service) GetClass(ctx context.Context, id string) (*model.ClassDetail, error) {
	class, err := s.findClass(ctx, id)
	if err != nil {
		return nil, err
	}

	tutor, err := s.tutorRepo.FindByID(ctx, class.TutorID)
	if err != nil {
		return nil, fmt.Errorf("担当講師の取得に失敗しました: %w", err)
	}
	sessions, err := s.conversationRepo.ListByClassID(ctx, class.ID)
	if err != nil {
		return nil, fmt.Errorf("会話セッションの取得に失敗しました: %w", err)
	}

	return &model.ClassDetail{Class: *class, Tutor: tutor, Conversations: sessions}, nil
}

// ListClasses はクラス一覧を返す。
func (s *Service) ListClasses(ctx context.Context, page model.Page) ([]*model.Class, error) {
	classes, err := s.classRepo.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("クラス一覧の取得に失敗しました: %w", err)
	}
	return classes, nil
}

// UpdateClass はクラスの名前とレベルを部分更新する。担当講師は変更できない。
func (s *Service) UpdateClass(ctx context.Context, id string, patch model.ClassPatch) (*model.Class, error) {
	if patch.Name == nil && patch.Level == nil {
		return nil, model.NewEmptyPatchError()
	}
	class, err := s.findClass(ctx, id)
	if err != nil {
		return nil, err
	}

	var clean model.ClassPatch
	ok := map[string]bool{}
	if patch.Name != nil {
		v, valid := security.CleanRequired(s.sanitizer, *patch.Name)
		clean.Name, ok["name"] = &v, valid
	}
	if patch.Level != nil {
		v, valid := security.CleanRequired(s.sanitizer, *patch.Level)
		clean.Level, ok["level"] = &v, valid
	}
	if invalid := model.InvalidFields(ok); len(invalid) > 0 {
		return nil, model.NewValidationFailedError(invalid)
	}

	clean.Apply(class)
	class.UpdatedAt = s.now()
	if err := s.classRepo.Update(ctx, class); err != nil {
		return nil, fmt.Errorf("クラスの更新に失敗しました: %w", err)
	}
	return class, nil
}

// DeleteClass はクラスを削除する。
// 所属する受講生がいる間はCLASS_NOT_EMPTYで拒否し、受講生の参照が宙に浮かないようにする。
func (s *Service) DeleteClass(ctx context.Context, id string) error {
	class, err := s.findClass(ctx, id)
	if err != nil {
		return err
	}

	students, err := s.studentRepo.CountByClassID(ctx, class.ID)
	if err != nil {
		return fmt.Errorf("所属受講生数の取得に失敗しました: %w", err)
	}
	if students > 0 {
		s.metrics.RecordConflict(model.ErrCodeClassNotEmpty)
		return model.NewClassNotEmptyError(class.ID, students)
	}

	deleted, err := s.classRepo.Delete(ctx, class.ID)
	if err != nil {
		return fmt.Errorf("クラスの削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewClassNotFoundError(class.ID)
	}

	slog.Info("クラスを削除しました", slog.String("class_id", class.ID))
	return nil
}
