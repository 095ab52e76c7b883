// Package roster はクラス名簿の集計ビューを提供する。
// いずれの操作も読み取り専用で、書き込み系のサービスとは独立している。
package roster

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hitoshi/turmas/internal/metrics"
	"github.com/hitoshi/turmas/internal/model"
	"github.com/hitoshi/turmas/internal/repository"
)

// Service は名簿集計のサービス層。
type Service struct {
	rosterRepo repository.RosterRepository
	classRepo  repository.ClassRepository
	metrics    metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(rosterRepo repository.RosterRepository, classRepo repository.ClassRepository, m metrics.MetricsCollector) *Service {
	return &Service{
		rosterRepo: rosterRepo,
		classRepo:  classRepo,
		metrics:    m,
	}
}

// CountStudentsByClass はクラスごとの受講生数を返す。受講生のいないクラスは0件で含まれる。
func (s *Service) CountStudentsByClass(ctx context.Context) ([]model.ClassStudentCount, error) {
	defer s.observe(metrics.ViewByClass, time.Now())

	counts, err := s.rosterRepo.CountStudentsByClass(ctx)
	if err != nil {
		return nil, fmt.Errorf("クラス別受講生数の集計に失敗しました: %w", err)
	}
	return nonNil(counts), nil
}

// CountStudentsByClassWithTutorLanguage はクラスごとの受講生数を講師の言語付きで返す。
func (s *Service) CountStudentsByClassWithTutorLanguage(ctx context.Context) ([]model.ClassStudentCount, error) {
	defer s.observe(metrics.ViewByClassLanguage, time.Now())

	counts, err := s.rosterRepo.CountStudentsByClassWithTutorLanguage(ctx)
	if err != nil {
		return nil, fmt.Errorf("講師言語付き受講生数の集計に失敗しました: %w", err)
	}
	return nonNil(counts), nil
}

// FindSessionsInRange はクラスの会話セッションのうち[start, end]に予定されているものを返す。
// 該当がない場合は空のスライスを返す。
func (s *Service) FindSessionsInRange(ctx context.Context, classID string, start, end time.Time) ([]model.ConversationSession, error) {
	if start.After(end) {
		return nil, model.NewInvalidDateRangeError()
	}
	if !model.IsValidID(classID) {
		return nil, model.NewClassNotFoundError(classID)
	}
	defer s.observe(metrics.ViewSessionsInRange, time.Now())

	class, err := s.classRepo.FindByID(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("クラスの取得に失敗しました: %w", err)
	}
	if class == nil {
		return nil, model.NewClassNotFoundError(classID)
	}

	sessions, err := s.rosterRepo.FindSessionsInRange(ctx, class.ID, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("期間内の会話セッション取得に失敗しました: %w", err)
	}
	if sessions == nil {
		sessions = []model.ConversationSession{}
	}
	return sessions, nil
}

// SearchStudentsByName は名前に指定文字列を含む受講生を返す。
// 大文字小文字は区別せず、正規表現やワイルドカードとしては解釈しない。
func (s *Service) SearchStudentsByName(ctx context.Context, pattern string, page model.Page) ([]*model.Student, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil, model.NewValidationFailedError([]string{"nome"})
	}
	defer s.observe(metrics.ViewNameSearch, time.Now())

	students, err := s.rosterRepo.SearchStudentsByName(ctx, pattern, page)
	if err != nil {
		return nil, fmt.Errorf("受講生の検索に失敗しました: %w", err)
	}
	if students == nil {
		students = []*model.Student{}
	}
	return students, nil
}

func (s *Service) observe(view string, start time.Time) {
	s.metrics.RecordRosterQuery(view, time.Since(start))
}

func nonNil(counts []model.ClassStudentCount) []model.ClassStudentCount {
	if counts == nil {
		return []model.ClassStudentCount{}
	}
	return counts
}
