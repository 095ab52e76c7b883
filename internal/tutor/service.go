// Package tutor は講師管理のドメインロジックを提供する。
package tutor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/turmas/internal/metrics"
	"github.com/hitoshi/turmas/internal/model"
	"github.com/hitoshi/turmas/internal/repository"
	"github.com/hitoshi/turmas/internal/security"
)

// CreateInput は講師作成時の入力。
type CreateInput struct {
	Name     string
	Email    string
	Language string
}

// Service は講師管理のサービス層。
type Service struct {
	tutorRepo repository.TutorRepository
	classRepo repository.ClassRepository
	sanitizer security.TextSanitizer
	metrics   metrics.MetricsCollector
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	tutorRepo repository.TutorRepository,
	classRepo repository.ClassRepository,
	sanitizer security.TextSanitizer,
	m metrics.MetricsCollector,
) *Service {
	return &Service{
		tutorRepo: tutorRepo,
		classRepo: classRepo,
		sanitizer: sanitizer,
		metrics:   m,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create は講師を作成する。同じメールアドレスの講師が存在する場合はConflictを返す。
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Tutor, error) {
	name, nameOK := security.CleanRequired(s.sanitizer, in.Name)
	language, langOK := security.CleanRequired(s.sanitizer, in.Language)
	if invalid := model.InvalidFields(map[string]bool{"name": nameOK, "language": langOK}); len(invalid) > 0 {
		return nil, model.NewValidationFailedError(invalid)
	}
	email := security.NormalizeEmail(in.Email)

	existing, err := s.tutorRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("講師の重複確認に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, s.duplicateEmail(email)
	}

	now := s.now()
	t := &model.Tutor{
		ID:        model.NewID(),
		Name:      name,
		Email:     email,
		Language:  language,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.tutorRepo.Create(ctx, t); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, s.duplicateEmail(email)
		}
		return nil, fmt.Errorf("講師の作成に失敗しました: %w", err)
	}

	slog.Info("講師を作成しました", slog.String("tutor_id", t.ID))
	return t, nil
}

// Get は指定IDの講師を返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Tutor, error) {
	if !model.IsValidID(id) {
		return nil, model.NewTutorNotFoundError(id)
	}
	t, err := s.tutorRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("講師の取得に失敗しました: %w", err)
	}
	if t == nil {
		return nil, model.NewTutorNotFoundError(id)
	}
	return t, nil
}

// List は講師一覧を返す。
func (s *Service) List(ctx context.Context, page model.Page) ([]*model.Tutor, error) {
	tutors, err := s.tutorRepo.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("講師一覧の取得に失敗しました: %w", err)
	}
	return tutors, nil
}

// Update は講師情報を部分更新する。
// 変更後のメールアドレスが他の講師に使われている場合はConflictを返す。
func (s *Service) Update(ctx context.Context, id string, patch model.TutorPatch) (*model.Tutor, error) {
	if patch.Name == nil && patch.Email == nil && patch.Language == nil {
		return nil, model.NewEmptyPatchError()
	}
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	clean, err := s.cleanPatch(patch)
	if err != nil {
		return nil, err
	}
	if clean.Email != nil && *clean.Email != t.Email {
		other, err := s.tutorRepo.FindByEmail(ctx, *clean.Email)
		if err != nil {
			return nil, fmt.Errorf("講師の重複確認に失敗しました: %w", err)
		}
		if other != nil && other.ID != t.ID {
			return nil, s.duplicateEmail(*clean.Email)
		}
	}

	clean.Apply(t)
	t.UpdatedAt = s.now()
	if err := s.tutorRepo.Update(ctx, t); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, s.duplicateEmail(t.Email)
		}
		return nil, fmt.Errorf("講師の更新に失敗しました: %w", err)
	}
	return t, nil
}

// Delete は講師を削除する。担当クラスが残っている場合はConflictを返す。
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	classes, err := s.classRepo.CountByTutorID(ctx, id)
	if err != nil {
		return fmt.Errorf("担当クラス数の取得に失敗しました: %w", err)
	}
	if classes > 0 {
		s.metrics.RecordConflict(model.ErrCodeTutorHasClasses)
		return model.NewTutorHasClassesError(id, classes)
	}

	deleted, err := s.tutorRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("講師の削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewTutorNotFoundError(id)
	}

	slog.Info("講師を削除しました", slog.String("tutor_id", id))
	return nil
}

func (s *Service) cleanPatch(p model.TutorPatch) (model.TutorPatch, error) {
	var out model.TutorPatch
	ok := map[string]bool{}
	if p.Name != nil {
		v, valid := security.CleanRequired(s.sanitizer, *p.Name)
		out.Name, ok["name"] = &v, valid
	}
	if p.Language != nil {
		v, valid := security.CleanRequired(s.sanitizer, *p.Language)
		out.Language, ok["language"] = &v, valid
	}
	if p.Email != nil {
		v := security.NormalizeEmail(*p.Email)
		out.Email = &v
	}
	if invalid := model.InvalidFields(ok); len(invalid) > 0 {
		return out, model.NewValidationFailedError(invalid)
	}
	return out, nil
}

func (s *Service) duplicateEmail(email string) error {
	s.metrics.RecordConflict(model.ErrCodeDuplicateTutorEmail)
	return model.NewDuplicateTutorEmailError(email)
}
