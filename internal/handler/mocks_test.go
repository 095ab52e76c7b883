package handler

import (
	"context"
	"time"

	"github.com/hitoshi/turmas/internal/model"
)

// --- モック定義 ---

type mockTutorService struct {
	createFn func(ctx context.Context, name, email, language string) (*model.Tutor, error)
	getFn    func(ctx context.Context, id string) (*model.Tutor, error)
	listFn   func(ctx context.Context, page model.Page) ([]*model.Tutor, error)
	updateFn func(ctx context.Context, id string, patch model.TutorPatch) (*model.Tutor, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockTutorService) Create(ctx context.Context, name, email, language string) (*model.Tutor, error) {
	if m.createFn != nil {
		return m.createFn(ctx, name, email, language)
	}
	return &model.Tutor{ID: "t-1", Name: name, Email: email, Language: language}, nil
}

func (m *mockTutorService) Get(ctx context.Context, id string) (*model.Tutor, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, model.NewTutorNotFoundError(id)
}

func (m *mockTutorService) List(ctx context.Context, page model.Page) ([]*model.Tutor, error) {
	if m.listFn != nil {
		return m.listFn(ctx, page)
	}
	return []*model.Tutor{}, nil
}

func (m *mockTutorService) Update(ctx context.Context, id string, patch model.TutorPatch) (*model.Tutor, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	return &model.Tutor{ID: id}, nil
}

func (m *mockTutorService) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockClassService struct {
	createFn func(ctx context.Context, name, level, tutorID string) (*model.Class, error)
	getFn    func(ctx context.Context, id string) (*model.ClassDetail, error)
	listFn   func(ctx context.Context, page model.Page) ([]*model.Class, error)
	updateFn func(ctx context.Context, id string, patch model.ClassPatch) (*model.Class, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockClassService) CreateClass(ctx context.Context, name, level, tutorID string) (*model.Class, error) {
	if m.createFn != nil {
		return m.createFn(ctx, name, level, tutorID)
	}
	return &model.Class{ID: "c-1", Name: name, Level: level, TutorID: tutorID}, nil
}

func (m *mockClassService) GetClass(ctx context.Context, id string) (*model.ClassDetail, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, model.NewClassNotFoundError(id)
}

func (m *mockClassService) ListClasses(ctx context.Context, page model.Page) ([]*model.Class, error) {
	if m.listFn != nil {
		return m.listFn(ctx, page)
	}
	return []*model.Class{}, nil
}

func (m *mockClassService) UpdateClass(ctx context.Context, id string, patch model.ClassPatch) (*model.Class, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	return &model.Class{ID: id}, nil
}

func (m *mockClassService) DeleteClass(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockStudentService struct {
	enrollFn      func(ctx context.Context, classID string, in model.StudentInput) (*model.Student, error)
	createFn      func(ctx context.Context, in model.StudentInput) (*model.Student, error)
	transferFn    func(ctx context.Context, studentID, newClassID string) (*model.Student, error)
	updateFn      func(ctx context.Context, classID, studentID string, patch model.StudentPatch) (*model.Student, error)
	removeFn      func(ctx context.Context, classID, studentID string) error
	getFn         func(ctx context.Context, studentID string) (*model.Student, error)
	listFn        func(ctx context.Context, page model.Page) ([]*model.Student, error)
	listByClassFn func(ctx context.Context, classID string, page model.Page) ([]*model.Student, error)
	deleteFn      func(ctx context.Context, studentID string) error
}

func (m *mockStudentService) EnrollStudent(ctx context.Context, classID string, in model.StudentInput) (*model.Student, error) {
	if m.enrollFn != nil {
		return m.enrollFn(ctx, classID, in)
	}
	return &model.Student{ID: "s-1", Name: in.Name, Email: in.Email, ClassID: &classID}, nil
}

func (m *mockStudentService) CreateStudent(ctx context.Context, in model.StudentInput) (*model.Student, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return &model.Student{ID: "s-1", Name: in.Name, Email: in.Email}, nil
}

func (m *mockStudentService) TransferStudent(ctx context.Context, studentID, newClassID string) (*model.Student, error) {
	if m.transferFn != nil {
		return m.transferFn(ctx, studentID, newClassID)
	}
	return &model.Student{ID: studentID, ClassID: &newClassID}, nil
}

func (m *mockStudentService) UpdateStudentFields(ctx context.Context, classID, studentID string, patch model.StudentPatch) (*model.Student, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, classID, studentID, patch)
	}
	return &model.Student{ID: studentID, ClassID: &classID}, nil
}

func (m *mockStudentService) RemoveStudent(ctx context.Context, classID, studentID string) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, classID, studentID)
	}
	return nil
}

func (m *mockStudentService) GetStudent(ctx context.Context, studentID string) (*model.Student, error) {
	if m.getFn != nil {
		return m.getFn(ctx, studentID)
	}
	return nil, model.NewStudentNotFoundError(studentID)
}

func (m *mockStudentService) ListStudents(ctx context.Context, page model.Page) ([]*model.Student, error) {
	if m.listFn != nil {
		return m.listFn(ctx, page)
	}
	return []*model.Student{}, nil
}

func (m *mockStudentService) ListClassStudents(ctx context.Context, classID string, page model.Page) ([]*model.Student, error) {
	if m.listByClassFn != nil {
		return m.listByClassFn(ctx, classID, page)
	}
	return []*model.Student{}, nil
}

func (m *mockStudentService) DeleteStudent(ctx context.Context, studentID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, studentID)
	}
	return nil
}

type mockConversationService struct {
	addFn    func(ctx context.Context, classID, name string, scheduledAt time.Time) (*model.ConversationSession, error)
	listFn   func(ctx context.Context, classID string) ([]model.ConversationSession, error)
	updateFn func(ctx context.Context, classID, sessionID string, patch model.SessionPatch) (*model.ConversationSession, error)
	deleteFn func(ctx context.Context, classID, sessionID string) error
}

func (m *mockConversationService) AddSession(ctx context.Context, classID, name string, scheduledAt time.Time) (*model.ConversationSession, error) {
	if m.addFn != nil {
		return m.addFn(ctx, classID, name, scheduledAt)
	}
	return &model.ConversationSession{ID: "cs-1", ClassID: classID, Name: name, ScheduledAt: scheduledAt}, nil
}

func (m *mockConversationService) ListSessions(ctx context.Context, classID string) ([]model.ConversationSession, error) {
	if m.listFn != nil {
		return m.listFn(ctx, classID)
	}
	return nil, nil
}

func (m *mockConversationService) UpdateSession(ctx context.Context, classID, sessionID string, patch model.SessionPatch) (*model.ConversationSession, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, classID, sessionID, patch)
	}
	return &model.ConversationSession{ID: sessionID, ClassID: classID}, nil
}

func (m *mockConversationService) DeleteSession(ctx context.Context, classID, sessionID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, classID, sessionID)
	}
	return nil
}

type mockRosterService struct {
	countFn    func(ctx context.Context) ([]model.ClassStudentCount, error)
	languageFn func(ctx context.Context) ([]model.ClassStudentCount, error)
	rangeFn    func(ctx context.Context, classID string, start, end time.Time) ([]model.ConversationSession, error)
	searchFn   func(ctx context.Context, pattern string, page model.Page) ([]*model.Student, error)
}

func (m *mockRosterService) CountStudentsByClass(ctx context.Context) ([]model.ClassStudentCount, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return []model.ClassStudentCount{}, nil
}

func (m *mockRosterService) CountStudentsByClassWithTutorLanguage(ctx context.Context) ([]model.ClassStudentCount, error) {
	if m.languageFn != nil {
		return m.languageFn(ctx)
	}
	return []model.ClassStudentCount{}, nil
}

func (m *mockRosterService) FindSessionsInRange(ctx context.Context, classID string, start, end time.Time) ([]model.ConversationSession, error) {
	if m.rangeFn != nil {
		return m.rangeFn(ctx, classID, start, end)
	}
	return []model.ConversationSession{}, nil
}

func (m *mockRosterService) SearchStudentsByName(ctx context.Context, pattern string, page model.Page) ([]*model.Student, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, pattern, page)
	}
	return []*model.Student{}, nil
}

type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error { return m.err }
