package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hitoshi/turmas/internal/model"
)

// setupMongo はテスト用のMongoDBデータベースを返す。
// TEST_MONGO_URIが未設定または接続できない場合はテストをスキップする。
func setupMongo(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URIが未設定のためスキップ")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("MongoDBへの接続に失敗: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		t.Skipf("テスト用MongoDBに接続できません（スキップ）: %v", err)
	}

	db := client.Database("turmas_test")
	if err := db.Drop(ctx); err != nil {
		t.Fatalf("テスト用データベースの初期化に失敗: %v", err)
	}
	if err := EnsureMongoIndexes(ctx, db); err != nil {
		t.Fatalf("EnsureMongoIndexes: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	return db
}

func TestMongoRepos_DuplicateEmail(t *testing.T) {
	db := setupMongo(t)
	ctx := context.Background()
	f := seed(t, ctx, NewMongoTutorRepo(db), NewMongoClassRepo(db), NewMongoStudentRepo(db))

	dup := *f.tutor
	dup.ID = model.NewID()
	if err := NewMongoTutorRepo(db).Create(ctx, &dup); !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("tutor Create duplicate = %v, want ErrDuplicateEmail", err)
	}
}

func TestMongoRosterRepo_Counts(t *testing.T) {
	db := setupMongo(t)
	ctx := context.Background()
	f := seed(t, ctx, NewMongoTutorRepo(db), NewMongoClassRepo(db), NewMongoStudentRepo(db))
	roster := NewMongoRosterRepo(db)

	counts, err := roster.CountStudentsByClass(ctx)
	if err != nil {
		t.Fatalf("CountStudentsByClass: %v", err)
	}
	if len(counts) != 2 || counts[0].ClassID != f.classA.ID || counts[0].StudentCount != 1 || counts[1].StudentCount != 0 {
		t.Errorf("counts = %+v", counts)
	}

	// 講師が解決できないクラスは言語付き集計から除外される
	orphan := bson.D{{Key: "_id", Value: model.NewID()}, {Key: "name", Value: "C1"}, {Key: "level", Value: "C1"}, {Key: "tutor_id", Value: model.NewID()}}
	if _, err := db.Collection(ClassCollection).InsertOne(ctx, orphan); err != nil {
		t.Fatalf("insert orphan class: %v", err)
	}
	withLang, err := roster.CountStudentsByClassWithTutorLanguage(ctx)
	if err != nil {
		t.Fatalf("CountStudentsByClassWithTutorLanguage: %v", err)
	}
	if len(withLang) != 2 {
		t.Errorf("len(withLang) = %d, want 2", len(withLang))
	}
}

func TestMongoConversationRepo_EmbeddedSessions(t *testing.T) {
	db := setupMongo(t)
	ctx := context.Background()
	f := seed(t, ctx, NewMongoTutorRepo(db), NewMongoClassRepo(db), NewMongoStudentRepo(db))
	conversations := NewMongoConversationRepo(db)

	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	cs := &model.ConversationSession{ID: model.NewID(), ClassID: f.classA.ID, Name: "conversa", ScheduledAt: at, CreatedAt: at}
	if err := conversations.Create(ctx, cs); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := conversations.FindByID(ctx, f.classA.ID, cs.ID)
	if err != nil || got == nil || got.Name != "conversa" {
		t.Fatalf("FindByID = %+v, %v", got, err)
	}
	// 別クラス配下としては見つからない
	if other, _ := conversations.FindByID(ctx, f.classB.ID, cs.ID); other != nil {
		t.Error("session should not be visible under another class")
	}

	inRange, err := NewMongoRosterRepo(db).FindSessionsInRange(ctx, f.classA.ID, at, at)
	if err != nil || len(inRange) != 1 {
		t.Errorf("FindSessionsInRange = %+v, %v", inRange, err)
	}

	deleted, err := conversations.Delete(ctx, f.classA.ID, cs.ID)
	if err != nil || !deleted {
		t.Errorf("Delete = %v, %v", deleted, err)
	}
	deleted, err = conversations.Delete(ctx, f.classA.ID, cs.ID)
	if err != nil || deleted {
		t.Errorf("second Delete = %v, %v; want false", deleted, err)
	}
}

func TestMongoRepairRepo(t *testing.T) {
	db := setupMongo(t)
	ctx := context.Background()
	students := NewMongoStudentRepo(db)
	f := seed(t, ctx, NewMongoTutorRepo(db), NewMongoClassRepo(db), students)
	repair := NewMongoRepairRepo(db)

	drift := model.NewID()
	f.student.TutorID = &drift
	if err := students.Update(ctx, f.student); err != nil {
		t.Fatalf("prepare drift: %v", err)
	}
	if n, err := repair.ResyncStudentTutors(ctx); err != nil || n != 1 {
		t.Errorf("ResyncStudentTutors = %d, %v; want 1", n, err)
	}

	if _, err := NewMongoClassRepo(db).Delete(ctx, f.classA.ID); err != nil {
		t.Fatalf("prepare orphan: %v", err)
	}
	if n, err := repair.DetachOrphanedStudents(ctx); err != nil || n != 1 {
		t.Errorf("DetachOrphanedStudents = %d, %v; want 1", n, err)
	}
	got, _ := students.FindByID(ctx, f.student.ID)
	if got == nil || got.ClassID != nil || got.TutorID != nil {
		t.Errorf("student not detached: %+v", got)
	}
}

// transferTo は受講生を別クラスへ移動した状態を保存する。
func transferTo(t *testing.T, ctx context.Context, students StudentRepository, s *model.Student, class *model.Class) {
	t.Helper()
	s.AssignClass(class, time.Now().UTC())
	if err := students.Update(ctx, s); err != nil {
		t.Fatalf("transfer: %v", err)
	}
}

// TestMongoRepairRepo_DetachSkipsTransferredStudent は検索後に有効なクラスへ移動した受講生の所属を解除しないことを検証する。
func TestMongoRepairRepo_DetachSkipsTransferredStudent(t *testing.T) {
	db := setupMongo(t)
	ctx := context.Background()
	students := NewMongoStudentRepo(db)
	f := seed(t, ctx, NewMongoTutorRepo(db), NewMongoClassRepo(db), students)
	repair := NewMongoRepairRepo(db)

	if _, err := NewMongoClassRepo(db).Delete(ctx, f.classA.ID); err != nil {
		t.Fatalf("prepare orphan: %v", err)
	}
	targets, err := repair.findOrphaned(ctx)
	if err != nil || len(targets) != 1 {
		t.Fatalf("findOrphaned = %+v, %v; want 1 target", targets, err)
	}

	// 検索と書き込みの間に移動が入る
	transferTo(t, ctx, students, f.student, f.classB)

	n, err := repair.detach(ctx, targets)
	if err != nil || n != 0 {
		t.Errorf("detach = %d, %v; want 0", n, err)
	}
	got, _ := students.FindByID(ctx, f.student.ID)
	if got == nil || !got.InClass(f.classB.ID) || got.TutorID == nil || *got.TutorID != f.classB.TutorID {
		t.Errorf("transferred student was modified: %+v", got)
	}
}

// TestMongoRepairRepo_ResyncSkipsTransferredStudent は検索後に移動した受講生へ旧クラスの講師を書き込まないことを検証する。
func TestMongoRepairRepo_ResyncSkipsTransferredStudent(t *testing.T) {
	db := setupMongo(t)
	ctx := context.Background()
	students := NewMongoStudentRepo(db)
	classes := NewMongoClassRepo(db)
	f := seed(t, ctx, NewMongoTutorRepo(db), classes, students)
	repair := NewMongoRepairRepo(db)

	now := time.Now().UTC().Truncate(time.Millisecond)
	classC := &model.Class{ID: model.NewID(), Name: "C1 tarde", Level: "C1", TutorID: model.NewID(), CreatedAt: now, UpdatedAt: now}
	if err := classes.Create(ctx, classC); err != nil {
		t.Fatalf("class Create: %v", err)
	}

	drift := model.NewID()
	f.student.TutorID = &drift
	if err := students.Update(ctx, f.student); err != nil {
		t.Fatalf("prepare drift: %v", err)
	}
	targets, err := repair.findDrifted(ctx)
	if err != nil || len(targets) != 1 || targets[0].TutorID != f.classA.TutorID {
		t.Fatalf("findDrifted = %+v, %v; want classA tutor", targets, err)
	}

	transferTo(t, ctx, students, f.student, classC)

	n, err := repair.resync(ctx, targets)
	if err != nil || n != 0 {
		t.Errorf("resync = %d, %v; want 0", n, err)
	}
	got, _ := students.FindByID(ctx, f.student.ID)
	if got == nil || got.TutorID == nil || *got.TutorID != classC.TutorID {
		t.Errorf("student = %+v, want tutor %s", got, classC.TutorID)
	}
}
