package repository

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hitoshi/turmas/internal/model"
)

// MongoRosterRepo はMongoDBの集計パイプラインで名簿ビューを提供する。
type MongoRosterRepo struct {
	classes  *mongo.Collection
	students *mongo.Collection
}

// NewMongoRosterRepo はMongoRosterRepoを生成する。
func NewMongoRosterRepo(db *mongo.Database) *MongoRosterRepo {
	return &MongoRosterRepo{
		classes:  db.Collection(ClassCollection),
		students: db.Collection(StudentCollection),
	}
}

var (
	lookupStudents = bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: StudentCollection},
		{Key: "localField", Value: "_id"},
		{Key: "foreignField", Value: "class_id"},
		{Key: "as", Value: "students"},
	}}}
	sortByClassName = bson.D{{Key: "$sort", Value: bson.D{
		{Key: "name", Value: 1},
		{Key: "_id", Value: 1},
	}}}
)

// CountStudentsByClassPipeline はクラス別受講生数の集計パイプラインを返す。
func CountStudentsByClassPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		lookupStudents,
		{{Key: "$project", Value: bson.D{
			{Key: "name", Value: 1},
			{Key: "level", Value: 1},
			{Key: "student_count", Value: bson.D{{Key: "$size", Value: "$students"}}},
		}}},
		sortByClassName,
	}
}

// CountStudentsByClassWithTutorLanguagePipeline は講師言語付きの集計パイプラインを返す。
// $unwindは空配列を出力しないため、講師を解決できないクラスは除外される。
func CountStudentsByClassWithTutorLanguagePipeline() mongo.Pipeline {
	return mongo.Pipeline{
		lookupStudents,
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: TutorCollection},
			{Key: "localField", Value: "tutor_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "tutor"},
		}}},
		{{Key: "$unwind", Value: "$tutor"}},
		{{Key: "$project", Value: bson.D{
			{Key: "name", Value: 1},
			{Key: "level", Value: 1},
			{Key: "tutor_language", Value: "$tutor.language"},
			{Key: "student_count", Value: bson.D{{Key: "$size", Value: "$students"}}},
		}}},
		sortByClassName,
	}
}

// SessionsInRangePipeline はクラスのセッションを期間で絞り込むパイプラインを返す。
func SessionsInRangePipeline(classID string, start, end time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "_id", Value: classID}}}},
		{{Key: "$unwind", Value: "$conversations"}},
		{{Key: "$match", Value: bson.D{{Key: "conversations.scheduled_at", Value: bson.D{
			{Key: "$gte", Value: start},
			{Key: "$lte", Value: end},
		}}}}},
		{{Key: "$replaceRoot", Value: bson.D{{Key: "newRoot", Value: "$conversations"}}}},
		{{Key: "$sort", Value: bson.D{{Key: "scheduled_at", Value: 1}, {Key: "_id", Value: 1}}}},
	}
}

// NameSearchFilter は名前の部分一致検索フィルタを返す。
// パターンは正規表現としてではなくリテラルとして扱う。
func NameSearchFilter(pattern string) bson.D {
	return bson.D{{Key: "name", Value: primitive.Regex{
		Pattern: regexp.QuoteMeta(pattern),
		Options: "i",
	}}}
}

func (r *MongoRosterRepo) aggregateCounts(ctx context.Context, pipeline mongo.Pipeline) ([]model.ClassStudentCount, error) {
	cur, err := r.classes.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var docs []classCountDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	counts := make([]model.ClassStudentCount, 0, len(docs))
	for _, d := range docs {
		counts = append(counts, d.toModel())
	}
	return counts, nil
}

// CountStudentsByClass は受講生をクラスごとに集計する。
func (r *MongoRosterRepo) CountStudentsByClass(ctx context.Context) ([]model.ClassStudentCount, error) {
	counts, err := r.aggregateCounts(ctx, CountStudentsByClassPipeline())
	if err != nil {
		return nil, fmt.Errorf("クラス別受講生数の集計に失敗しました: %w", err)
	}
	return counts, nil
}

// CountStudentsByClassWithTutorLanguage はクラス別受講生数に講師の言語を結合する。
func (r *MongoRosterRepo) CountStudentsByClassWithTutorLanguage(ctx context.Context) ([]model.ClassStudentCount, error) {
	counts, err := r.aggregateCounts(ctx, CountStudentsByClassWithTutorLanguagePipeline())
	if err != nil {
		return nil, fmt.Errorf("講師言語付きクラス別受講生数の集計に失敗しました: %w", err)
	}
	return counts, nil
}

// FindSessionsInRange はクラスのセッションのうち予定日時が[start, end]に入るものを返す。
func (r *MongoRosterRepo) FindSessionsInRange(ctx context.Context, classID string, start, end time.Time) ([]model.ConversationSession, error) {
	cur, err := r.classes.Aggregate(ctx, SessionsInRangePipeline(classID, start, end))
	if err != nil {
		return nil, fmt.Errorf("期間内の会話セッションの取得に失敗しました: %w", err)
	}
	var docs []sessionDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("期間内の会話セッションの読み込みに失敗しました: %w", err)
	}
	sessions := make([]model.ConversationSession, 0, len(docs))
	for _, d := range docs {
		sessions = append(sessions, d.toModel(classID))
	}
	return sessions, nil
}

// SearchStudentsByName は名前に部分文字列を含む受講生を返す。
func (r *MongoRosterRepo) SearchStudentsByName(ctx context.Context, pattern string, page model.Page) ([]*model.Student, error) {
	sort := bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}
	cur, err := r.students.Find(ctx, NameSearchFilter(pattern), pageOptions(page.Skip, page.Limit, sort))
	if err != nil {
		return nil, fmt.Errorf("受講生の名前検索に失敗しました: %w", err)
	}
	students, err := decodeStudents(ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("検索結果の読み込みに失敗しました: %w", err)
	}
	return students, nil
}

var _ RosterRepository = (*MongoRosterRepo)(nil)
