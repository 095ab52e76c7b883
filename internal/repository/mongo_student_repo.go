package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hitoshi/turmas/internal/model"
)

// MongoStudentRepo はMongoDBを使用した受講生リポジトリ。
type MongoStudentRepo struct {
	coll *mongo.Collection
}

// NewMongoStudentRepo はMongoStudentRepoを生成する。
func NewMongoStudentRepo(db *mongo.Database) *MongoStudentRepo {
	return &MongoStudentRepo{coll: db.Collection(StudentCollection)}
}

func (r *MongoStudentRepo) findOne(ctx context.Context, filter bson.D) (*model.Student, error) {
	var doc studentDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

func decodeStudents(ctx context.Context, cur *mongo.Cursor) ([]*model.Student, error) {
	var docs []studentDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	students := make([]*model.Student, 0, len(docs))
	for _, d := range docs {
		students = append(students, d.toModel())
	}
	return students, nil
}

// FindByID は指定IDの受講生を取得する。見つからない場合はnilを返す。
func (r *MongoStudentRepo) FindByID(ctx context.Context, id string) (*model.Student, error) {
	s, err := r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return nil, fmt.Errorf("受講生の取得に失敗しました: %w", err)
	}
	return s, nil
}

// FindByEmail はメールアドレスで受講生を検索する。見つからない場合はnilを返す。
func (r *MongoStudentRepo) FindByEmail(ctx context.Context, email string) (*model.Student, error) {
	s, err := r.findOne(ctx, bson.D{{Key: "email", Value: email}})
	if err != nil {
		return nil, fmt.Errorf("メールアドレスによる受講生の検索に失敗しました: %w", err)
	}
	return s, nil
}

// List は受講生一覧を作成順で返す。
func (r *MongoStudentRepo) List(ctx context.Context, page model.Page) ([]*model.Student, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, pageOptions(page.Skip, page.Limit, byCreation))
	if err != nil {
		return nil, fmt.Errorf("受講生一覧の取得に失敗しました: %w", err)
	}
	students, err := decodeStudents(ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("受講生一覧の読み込みに失敗しました: %w", err)
	}
	return students, nil
}

// ListByClassID はクラスの名簿を登録順で返す。
func (r *MongoStudentRepo) ListByClassID(ctx context.Context, classID string, page model.Page) ([]*model.Student, error) {
	sort := bson.D{{Key: "enrolled_at", Value: 1}, {Key: "_id", Value: 1}}
	cur, err := r.coll.Find(ctx, bson.D{{Key: "class_id", Value: classID}}, pageOptions(page.Skip, page.Limit, sort))
	if err != nil {
		return nil, fmt.Errorf("クラス名簿の取得に失敗しました: %w", err)
	}
	students, err := decodeStudents(ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("クラス名簿の読み込みに失敗しました: %w", err)
	}
	return students, nil
}

// CountByClassID はクラスに所属する受講生数を返す。
func (r *MongoStudentRepo) CountByClassID(ctx context.Context, classID string) (int, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{{Key: "class_id", Value: classID}})
	if err != nil {
		return 0, fmt.Errorf("所属受講生数の取得に失敗しました: %w", err)
	}
	return int(n), nil
}

// Create は受講生を作成する。
func (r *MongoStudentRepo) Create(ctx context.Context, student *model.Student) error {
	_, err := r.coll.InsertOne(ctx, newStudentDocument(student))
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("受講生の作成に失敗しました: %w", err)
	}
	return nil
}

// Update は受講生ドキュメントを置き換える。
// クラス参照と講師参照は単一ドキュメントの書き込みで同時に更新される。
func (r *MongoStudentRepo) Update(ctx context.Context, student *model.Student) error {
	_, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: student.ID}}, newStudentDocument(student))
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("受講生の更新に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDの受講生を削除する。
func (r *MongoStudentRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return false, fmt.Errorf("受講生の削除に失敗しました: %w", err)
	}
	return res.DeletedCount > 0, nil
}

var _ StudentRepository = (*MongoStudentRepo)(nil)
