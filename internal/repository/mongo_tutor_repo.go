package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hitoshi/turmas/internal/model"
)

// MongoTutorRepo はMongoDBを使用した講師リポジトリ。
type MongoTutorRepo struct {
	coll *mongo.Collection
}

// NewMongoTutorRepo はMongoTutorRepoを生成する。
func NewMongoTutorRepo(db *mongo.Database) *MongoTutorRepo {
	return &MongoTutorRepo{coll: db.Collection(TutorCollection)}
}

func (r *MongoTutorRepo) findOne(ctx context.Context, filter bson.D) (*model.Tutor, error) {
	var doc tutorDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

// FindByID は指定IDの講師を取得する。見つからない場合はnilを返す。
func (r *MongoTutorRepo) FindByID(ctx context.Context, id string) (*model.Tutor, error) {
	t, err := r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return nil, fmt.Errorf("講師の取得に失敗しました: %w", err)
	}
	return t, nil
}

// FindByEmail はメールアドレスで講師を検索する。見つからない場合はnilを返す。
func (r *MongoTutorRepo) FindByEmail(ctx context.Context, email string) (*model.Tutor, error) {
	t, err := r.findOne(ctx, bson.D{{Key: "email", Value: email}})
	if err != nil {
		return nil, fmt.Errorf("メールアドレスによる講師の検索に失敗しました: %w", err)
	}
	return t, nil
}

// List は講師一覧を作成順で返す。
func (r *MongoTutorRepo) List(ctx context.Context, page model.Page) ([]*model.Tutor, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, pageOptions(page.Skip, page.Limit, byCreation))
	if err != nil {
		return nil, fmt.Errorf("講師一覧の取得に失敗しました: %w", err)
	}
	var docs []tutorDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("講師一覧の読み込みに失敗しました: %w", err)
	}

	tutors := make([]*model.Tutor, 0, len(docs))
	for _, d := range docs {
		tutors = append(tutors, d.toModel())
	}
	return tutors, nil
}

// Create は講師を作成する。
func (r *MongoTutorRepo) Create(ctx context.Context, tutor *model.Tutor) error {
	_, err := r.coll.InsertOne(ctx, newTutorDocument(tutor))
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("講師の作成に失敗しました: %w", err)
	}
	return nil
}

// Update は講師情報を更新する。
func (r *MongoTutorRepo) Update(ctx context.Context, tutor *model.Tutor) error {
	_, err := r.coll.UpdateByID(ctx, tutor.ID, bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: tutor.Name},
		{Key: "email", Value: tutor.Email},
		{Key: "language", Value: tutor.Language},
		{Key: "updated_at", Value: tutor.UpdatedAt},
	}}})
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("講師の更新に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDの講師を削除する。
func (r *MongoTutorRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return false, fmt.Errorf("講師の削除に失敗しました: %w", err)
	}
	return res.DeletedCount > 0, nil
}

var _ TutorRepository = (*MongoTutorRepo)(nil)
