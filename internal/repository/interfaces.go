// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/turmas/internal/model"
)

// ErrDuplicateEmail はメールアドレスの一意制約違反を表す。
// ストア側の一意インデックスで検出された場合に返す。
var ErrDuplicateEmail = errors.New("duplicate email")

// TutorRepository は講師データの永続化インターフェース。
type TutorRepository interface {
	// FindByID は指定IDの講師を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Tutor, error)

	// FindByEmail はメールアドレスで講師を検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Tutor, error)

	// List は講師一覧を作成順で返す。
	List(ctx context.Context, page model.Page) ([]*model.Tutor, error)

	// Create は講師を作成する。メールアドレス重複時はErrDuplicateEmailを返す。
	Create(ctx context.Context, tutor *model.Tutor) error

	// Update は講師情報を更新する。メールアドレス重複時はErrDuplicateEmailを返す。
	Update(ctx context.Context, tutor *model.Tutor) error

	// Delete は指定IDの講師を削除する。削除した場合はtrueを返す。
	Delete(ctx context.Context, id string) (bool, error)
}

// ClassRepository はクラスデータの永続化インターフェース。
type ClassRepository interface {
	// FindByID は指定IDのクラスを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Class, error)

	// List はクラス一覧を作成順で返す。
	List(ctx context.Context, page model.Page) ([]*model.Class, error)

	// CountByTutorID は講師が担当するクラス数を返す。
	CountByTutorID(ctx context.Context, tutorID string) (int, error)

	// Create はクラスを作成する。
	Create(ctx context.Context, class *model.Class) error

	// Update はクラスの名前とレベルを更新する。講師参照は変更しない。
	Update(ctx context.Context, class *model.Class) error

	// Delete は指定IDのクラスと所属する会話セッションを削除する。削除した場合はtrueを返す。
	Delete(ctx context.Context, id string) (bool, error)
}

// StudentRepository は受講生データの永続化インターフェース。
type StudentRepository interface {
	// FindByID は指定IDの受講生を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Student, error)

	// FindByEmail はメールアドレスで受講生を検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Student, error)

	// List は受講生一覧を作成順で返す。
	List(ctx context.Context, page model.Page) ([]*model.Student, error)

	// ListByClassID はクラスの名簿を登録順で返す。
	ListByClassID(ctx context.Context, classID string, page model.Page) ([]*model.Student, error)

	// CountByClassID はクラスに所属する受講生数を返す。
	CountByClassID(ctx context.Context, classID string) (int, error)

	// Create は受講生を作成する。メールアドレス重複時はErrDuplicateEmailを返す。
	Create(ctx context.Context, student *model.Student) error

	// Update は受講生を上書き保存する。メールアドレス重複時はErrDuplicateEmailを返す。
	Update(ctx context.Context, student *model.Student) error

	// Delete は指定IDの受講生を削除する。削除した場合はtrueを返す。
	Delete(ctx context.Context, id string) (bool, error)
}

// ConversationRepository はクラスに属する会話セッションの永続化インターフェース。
type ConversationRepository interface {
	// Create はクラスにセッションを追加する。
	Create(ctx context.Context, session *model.ConversationSession) error

	// FindByID はクラス配下の指定セッションを取得する。
	// セッションが存在しないか別クラスに属する場合はnilを返す。
	FindByID(ctx context.Context, classID, sessionID string) (*model.ConversationSession, error)

	// ListByClassID はクラスのセッションを登録順で返す。
	ListByClassID(ctx context.Context, classID string) ([]model.ConversationSession, error)

	// Update はセッションの名前と予定日時を更新する。
	Update(ctx context.Context, session *model.ConversationSession) error

	// Delete はクラス配下の指定セッションを削除する。削除した場合はtrueを返す。
	Delete(ctx context.Context, classID, sessionID string) (bool, error)
}

// RosterRepository はクラス名簿の集計ビューを提供する読み取り専用インターフェース。
// いずれも1回のクエリ（集計パイプライン）で完結する。
type RosterRepository interface {
	// CountStudentsByClass は受講生をクラスごとに集計する。
	// 受講生のいないクラスも0件として含め、クラス名昇順・ID昇順で返す。
	CountStudentsByClass(ctx context.Context) ([]model.ClassStudentCount, error)

	// CountStudentsByClassWithTutorLanguage はCountStudentsByClassに講師の言語を結合する。
	// 講師を解決できないクラスは結果から除外する。
	CountStudentsByClassWithTutorLanguage(ctx context.Context) ([]model.ClassStudentCount, error)

	// FindSessionsInRange はクラスのセッションのうちscheduled_atが[start, end]に入るものを
	// scheduled_at昇順で返す。
	FindSessionsInRange(ctx context.Context, classID string, start, end time.Time) ([]model.ConversationSession, error)

	// SearchStudentsByName は名前に部分文字列を含む受講生を大文字小文字を区別せずに返す。
	SearchStudentsByName(ctx context.Context, pattern string, page model.Page) ([]*model.Student, error)
}

// RepairRepository は受講生・クラス・講師間の参照整合性を修復する操作のインターフェース。
type RepairRepository interface {
	// DetachOrphanedStudents は存在しないクラスを参照する受講生のクラス・講師参照を解除する。
	// 解除した件数を返す。
	DetachOrphanedStudents(ctx context.Context) (int64, error)

	// ResyncStudentTutors はクラスの講師と一致しない講師参照を持つ受講生を
	// クラスの講師に合わせて更新する。更新した件数を返す。
	ResyncStudentTutors(ctx context.Context) (int64, error)
}

// HealthChecker はストアへの疎通確認インターフェース。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}
