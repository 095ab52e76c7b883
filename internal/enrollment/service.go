// Package enrollment は受講生とクラス・講師の関係を整合的に保つドメインロジックを提供する。
//
// 受講生の講師参照は常に所属クラスの講師から導出し、呼び出し元から指定させない。
// クラス配下の受講生に対する操作は、所属確認を変更より先に行う。
package enrollment

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

// PasswordHasher はパスワードのハッシュ化インターフェース。
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// Service は受講生の登録・移動・更新・削除を担うサービス層。
type Service struct {
	studentRepo repository.StudentRepository
	classRepo   repository.ClassRepository
	hasher      PasswordHasher
	sanitizer   security.TextSanitizer
	metrics     metrics.MetricsCollector
	now         func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	studentRepo repository.StudentRepository,
	classRepo repository.ClassRepository,
	hasher PasswordHasher,
	sanitizer security.TextSanitizer,
	m metrics.MetricsCollector,
) *Service {
	return &Service{
		studentRepo: studentRepo,
		classRepo:   classRepo,
		hasher:      hasher,
		sanitizer:   sanitizer,
		metrics:     m,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// EnrollStudent はクラスに新しい受講生を登録する。
// 講師参照はクラスの講師から導出する。クラス側のドキュメントには書き込まない。
func (s *Service) EnrollStudent(ctx context.Context, classID string, in model.StudentInput) (*model.Student, error) {
	class, err := s.findClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	student, err := s.newStudent(ctx, in)
	if err != nil {
		return nil, err
	}
	student.AssignClass(class, student.CreatedAt)

	if err := s.create(ctx, student); err != nil {
		return nil, err
	}

	s.metrics.RecordEnrollment()
	slog.Info("受講生をクラスに登録しました",
		slog.String("student_id", student.ID),
		slog.String("class_id", class.ID),
		slog.String("tutor_id", class.TutorID),
	)
	return student, nil
}

// CreateStudent はクラスに所属しない受講生を作成する。
func (s *Service) CreateStudent(ctx context.Context, in model.StudentInput) (*model.Student, error) {
	student, err := s.newStudent(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.create(ctx, student); err != nil {
		return nil, err
	}

	slog.Info("受講生を作成しました", slog.String("student_id", student.ID))
	return student, nil
}

// TransferStudent は受講生を別のクラスへ移動し、講師参照を移動先クラスの講師に置き換える。
// 既に移動先クラスに正しい講師参照で所属している場合は書き込みを行わない。
func (s *Service) TransferStudent(ctx context.Context, studentID, newClassID string) (*model.Student, error) {
	student, err := s.findStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	class, err := s.findClass(ctx, newClassID)
	if err != nil {
		return nil, err
	}
	if student.MatchesClass(class) {
		return student, nil
	}

	from := ""
	if student.ClassID != nil {
		from = *student.ClassID
	}
	now := s.now()
	student.AssignClass(class, now)
	student.UpdatedAt = now
	if err := s.studentRepo.Update(ctx, student); err != nil {
		return nil, fmt.Errorf("受講生のクラス移動に失敗しました: %w", err)
	}

	s.metrics.RecordTransfer()
	slog.Info("受講生のクラスを移動しました",
		slog.String("student_id", student.ID),
		slog.String("from_class_id", from),
		slog.String("to_class_id", class.ID),
	)
	return student, nil
}

// UpdateStudentFields はクラス配下の受講生を部分更新する。
// 受講生が存在しない、または指定クラスに所属していない場合は書き込まずにNotFoundを返す。
func (s *Service) UpdateStudentFields(ctx context.Context, classID, studentID string, patch model.StudentPatch) (*model.Student, error) {
	if patch.IsEmpty() {
		return nil, model.NewEmptyPatchError()
	}
	student, err := s.findClassStudent(ctx, classID, studentID)
	if err != nil {
		return nil, err
	}

	ok := map[string]bool{}
	if patch.Name != nil {
		v, valid := security.CleanRequired(s.sanitizer, *patch.Name)
		student.Name, ok["name"] = v, valid
	}
	if patch.Nickname != nil {
		student.Nickname = s.sanitizer.Sanitize(*patch.Nickname)
	}
	if patch.Password != nil {
		ok["password"] = security.ValidPassword(*patch.Password)
	}
	if patch.Email != nil {
		email := security.NormalizeEmail(*patch.Email)
		ok["email"] = email != ""
		if email != "" && email != student.Email {
			other, err := s.studentRepo.FindByEmail(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("受講生の重複確認に失敗しました: %w", err)
			}
			if other != nil && other.ID != student.ID {
				return nil, s.duplicateEmail(email)
			}
		}
		student.Email = email
	}
	if invalid := model.InvalidFields(ok); len(invalid) > 0 {
		return nil, model.NewValidationFailedError(invalid)
	}
	if patch.Password != nil {
		hash, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, err
		}
		student.PasswordHash = hash
	}

	student.UpdatedAt = s.now()
	if err := s.studentRepo.Update(ctx, student); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, s.duplicateEmail(student.Email)
		}
		return nil, fmt.Errorf("受講生の更新に失敗しました: %w", err)
	}
	return student, nil
}

// RemoveStudent はクラス配下の受講生を削除する。
// 所属確認はUpdateStudentFieldsと同じ。
func (s *Service) RemoveStudent(ctx context.Context, classID, studentID string) error {
	student, err := s.findClassStudent(ctx, classID, studentID)
	if err != nil {
		return err
	}
	return s.delete(ctx, student)
}

// GetStudent は指定IDの受講生を返す。
func (s *Service) GetStudent(ctx context.Context, studentID string) (*model.Student, error) {
	return s.findStudent(ctx, studentID)
}

// ListStudents は受講生一覧を返す。
func (s *Service) ListStudents(ctx context.Context, page model.Page) ([]*model.Student, error) {
	students, err := s.studentRepo.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("受講生一覧の取得に失敗しました: %w", err)
	}
	return students, nil
}

// ListClassStudents はクラスの名簿を登録順で返す。
func (s *Service) ListClassStudents(ctx context.Context, classID string, page model.Page) ([]*model.Student, error) {
	class, err := s.findClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	students, err := s.studentRepo.ListByClassID(ctx, class.ID, page)
	if err != nil {
		return nil, fmt.Errorf("クラス名簿の取得に失敗しました: %w", err)
	}
	return students, nil
}

// DeleteStudent は所属クラスに関係なく受講生を削除する。
func (s *Service) DeleteStudent(ctx context.Context, studentID string) error {
	student, err := s.findStudent(ctx, studentID)
	if err != nil {
		return err
	}
	return s.delete(ctx, student)
}

// newStudent は入力を検証し、保存前の受講生を組み立てる。
// メールアドレスが既に使われている場合はConflictを返す。
func (s *Service) newStudent(ctx context.Context, in model.StudentInput) (*model.Student, error) {
	name, nameOK := security.CleanRequired(s.sanitizer, in.Name)
	email := security.NormalizeEmail(in.Email)
	invalid := model.InvalidFields(map[string]bool{
		"name":     nameOK,
		"email":    email != "",
		"password": security.ValidPassword(in.Password),
	})
	if len(invalid) > 0 {
		return nil, model.NewValidationFailedError(invalid)
	}

	existing, err := s.studentRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("受講生の重複確認に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, s.duplicateEmail(email)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	return &model.Student{
		ID:           model.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Nickname:     s.sanitizer.Sanitize(in.Nickname),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// create は受講生を保存する。一意インデックスで検出された重複はConflictに変換する。
func (s *Service) create(ctx context.Context, student *model.Student) error {
	if err := s.studentRepo.Create(ctx, student); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return s.duplicateEmail(student.Email)
		}
		return fmt.Errorf("受講生の作成に失敗しました: %w", err)
	}
	return nil
}

func (s *Service) delete(ctx context.Context, student *model.Student) error {
	deleted, err := s.studentRepo.Delete(ctx, student.ID)
	if err != nil {
		return fmt.Errorf("受講生の削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewStudentNotFoundError(student.ID)
	}
	slog.Info("受講生を削除しました", slog.String("student_id", student.ID))
	return nil
}

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

func (s *Service) findStudent(ctx context.Context, id string) (*model.Student, error) {
	if !model.IsValidID(id) {
		return nil, model.NewStudentNotFoundError(id)
	}
	student, err := s.studentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("受講生の取得に失敗しました: %w", err)
	}
	if student == nil {
		return nil, model.NewStudentNotFoundError(id)
	}
	return student, nil
}

// findClassStudent はクラスに所属する受講生を取得する。
// 別クラスの受講生は存在しないものとして扱う。
func (s *Service) findClassStudent(ctx context.Context, classID, studentID string) (*model.Student, error) {
	class, err := s.findClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	student, err := s.findStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !student.InClass(class.ID) {
		return nil, model.NewStudentNotFoundError(studentID)
	}
	return student, nil
}

func (s *Service) duplicateEmail(email string) error {
	s.metrics.RecordConflict(model.ErrCodeDuplicateStudentEmail)
	return model.NewDuplicateStudentEmailError(email)
}
