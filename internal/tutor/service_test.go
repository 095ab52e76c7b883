package tutor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/turmas/internal/metrics"
	"github.com/hitoshi/turmas/internal/model"
	"github.com/hitoshi/turmas/internal/repository"
	"github.com/hitoshi/turmas/internal/security"
)

// --- モック ---

type mockTutorRepo struct {
	findByIDFn    func(ctx context.Context, id string) (*model.Tutor, error)
	findByEmailFn func(ctx context.Context, email string) (*model.Tutor, error)
	createFn      func(ctx context.Context, t *model.Tutor) error
	updateFn      func(ctx context.Context, t *model.Tutor) error
	deleteFn      func(ctx context.Context, id string) (bool, error)
}

func (m *mockTutorRepo) FindByID(ctx context.Context, id string) (*model.Tutor, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockTutorRepo) FindByEmail(ctx context.Context, email string) (*model.Tutor, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}
func (m *mockTutorRepo) List(ctx context.Context, page model.Page) ([]*model.Tutor, error) {
	return []*model.Tutor{}, nil
}
func (m *mockTutorRepo) Create(ctx context.Context, t *model.Tutor) error {
	if m.createFn != nil {
		return m.createFn(ctx, t)
	}
	return nil
}
func (m *mockTutorRepo) Update(ctx context.Context, t *model.Tutor) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, t)
	}
	return nil
}
func (m *mockTutorRepo) Delete(ctx context.Context, id string) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return true, nil
}

type mockClassRepo struct {
	repository.ClassRepository
	countByTutorIDFn func(ctx context.Context, tutorID string) (int, error)
}

func (m *mockClassRepo) CountByTutorID(ctx context.Context, tutorID string) (int, error) {
	return m.countByTutorIDFn(ctx, tutorID)
}

func newTestService(tr *mockTutorRepo, cr *mockClassRepo) *Service {
	if cr == nil {
		cr = &mockClassRepo{countByTutorIDFn: func(ctx context.Context, id string) (int, error) { return 0, nil }}
	}
	s := NewService(tr, cr, security.NewTextSanitizer(), metrics.Nop())
	s.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	return s
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError with code %s, got %v", code, err)
	}
	if apiErr.Code != code {
		t.Errorf("Code = %q, want %q", apiErr.Code, code)
	}
}

// --- テスト ---

// TestService_Create_NormalizesInput は入力が正規化されて保存されることを検証する。
func TestService_Create_NormalizesInput(t *testing.T) {
	var saved *model.Tutor
	svc := newTestService(&mockTutorRepo{
		createFn: func(ctx context.Context, tu *model.Tutor) error {
			saved = tu
			return nil
		},
	}, nil)

	got, err := svc.Create(context.Background(), CreateInput{
		Name: " <b>Maria</b> ", Email: "Maria@Example.com", Language: "Español",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if saved == nil || saved != got {
		t.Fatal("Create should persist and return the same tutor")
	}
	if got.Name != "Maria" || got.Email != "maria@example.com" || got.Language != "Español" {
		t.Errorf("tutor = %+v", got)
	}
	if !model.IsValidID(got.ID) {
		t.Errorf("ID = %q, want UUID", got.ID)
	}
}

// TestService_Create_DuplicateEmail は重複メールでConflictになり書き込みが行われないことを検証する。
func TestService_Create_DuplicateEmail(t *testing.T) {
	createCalled := false
	svc := newTestService(&mockTutorRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.Tutor, error) {
			return &model.Tutor{ID: "existing", Email: email}, nil
		},
		createFn: func(ctx context.Context, tu *model.Tutor) error {
			createCalled = true
			return nil
		},
	}, nil)

	_, err := svc.Create(context.Background(), CreateInput{Name: "X", Email: "a@x.com", Language: "en"})
	assertCode(t, err, model.ErrCodeDuplicateTutorEmail)
	if createCalled {
		t.Error("Create should not be called for duplicate email")
	}
}

// TestService_Create_RaceOnUniqueIndex は一意インデックス違反もConflictになることを検証する。
func TestService_Create_RaceOnUniqueIndex(t *testing.T) {
	svc := newTestService(&mockTutorRepo{
		createFn: func(ctx context.Context, tu *model.Tutor) error {
			return repository.ErrDuplicateEmail
		},
	}, nil)

	_, err := svc.Create(context.Background(), CreateInput{Name: "X", Email: "a@x.com", Language: "en"})
	assertCode(t, err, model.ErrCodeDuplicateTutorEmail)
}

func TestService_Create_TagOnlyNameRejected(t *testing.T) {
	svc := newTestService(&mockTutorRepo{}, nil)
	_, err := svc.Create(context.Background(), CreateInput{Name: "<i></i>", Email: "a@x.com", Language: "en"})
	assertCode(t, err, model.ErrCodeValidationFailed)
}

func TestService_Get_InvalidIDSkipsStore(t *testing.T) {
	svc := newTestService(&mockTutorRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Tutor, error) {
			t.Fatal("store should not be called for malformed id")
			return nil, nil
		},
	}, nil)

	_, err := svc.Get(context.Background(), "not-a-uuid")
	assertCode(t, err, model.ErrCodeTutorNotFound)
}

// TestService_Update_EmailTakenByOther は他の講師のメールへの変更がConflictになることを検証する。
func TestService_Update_EmailTakenByOther(t *testing.T) {
	id := model.NewID()
	svc := newTestService(&mockTutorRepo{
		findByIDFn: func(ctx context.Context, _ string) (*model.Tutor, error) {
			return &model.Tutor{ID: id, Email: "mine@x.com"}, nil
		},
		findByEmailFn: func(ctx context.Context, email string) (*model.Tutor, error) {
			return &model.Tutor{ID: model.NewID(), Email: email}, nil
		},
		updateFn: func(ctx context.Context, tu *model.Tutor) error {
			t.Fatal("Update should not be called")
			return nil
		},
	}, nil)

	email := "theirs@x.com"
	_, err := svc.Update(context.Background(), id, model.TutorPatch{Email: &email})
	assertCode(t, err, model.ErrCodeDuplicateTutorEmail)
}

func TestService_Update_AppliesPatch(t *testing.T) {
	id := model.NewID()
	svc := newTestService(&mockTutorRepo{
		findByIDFn: func(ctx context.Context, _ string) (*model.Tutor, error) {
			return &model.Tutor{ID: id, Name: "Old", Email: "a@x.com", Language: "en"}, nil
		},
	}, nil)

	lang := " Français "
	got, err := svc.Update(context.Background(), id, model.TutorPatch{Language: &lang})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if got.Language != "Français" || got.Name != "Old" {
		t.Errorf("tutor = %+v", got)
	}
	if !got.UpdatedAt.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("UpdatedAt = %v", got.UpdatedAt)
	}
}

func TestService_Update_EmptyPatch(t *testing.T) {
	svc := newTestService(&mockTutorRepo{}, nil)
	_, err := svc.Update(context.Background(), model.NewID(), model.TutorPatch{})
	assertCode(t, err, model.ErrCodeEmptyPatch)
}

// TestService_Delete_RejectsWhenClassesRemain は担当クラスが残る講師の削除が拒否されることを検証する。
func TestService_Delete_RejectsWhenClassesRemain(t *testing.T) {
	id := model.NewID()
	svc := newTestService(&mockTutorRepo{
		findByIDFn: func(ctx context.Context, _ string) (*model.Tutor, error) {
			return &model.Tutor{ID: id}, nil
		},
		deleteFn: func(ctx context.Context, _ string) (bool, error) {
			t.Fatal("Delete should not be called")
			return false, nil
		},
	}, &mockClassRepo{countByTutorIDFn: func(ctx context.Context, tutorID string) (int, error) {
		return 2, nil
	}})

	err := svc.Delete(context.Background(), id)
	assertCode(t, err, model.ErrCodeTutorHasClasses)
}

func TestService_Delete_NotFound(t *testing.T) {
	svc := newTestService(&mockTutorRepo{}, nil)
	err := svc.Delete(context.Background(), model.NewID())
	assertCode(t, err, model.ErrCodeTutorNotFound)
}

func TestService_Delete_StoreErrorIsWrapped(t *testing.T) {
	id := model.NewID()
	storeErr := errors.New("connection reset")
	svc := newTestService(&mockTutorRepo{
		findByIDFn: func(ctx context.Context, _ string) (*model.Tutor, error) {
			return &model.Tutor{ID: id}, nil
		},
		deleteFn: func(ctx context.Context, _ string) (bool, error) {
			return false, storeErr
		},
	}, nil)

	err := svc.Delete(context.Background(), id)
	if !errors.Is(err, storeErr) {
		t.Errorf("error = %v, want wrapping %v", err, storeErr)
	}
}
