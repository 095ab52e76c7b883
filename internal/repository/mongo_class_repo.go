package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hitoshi/turmas/internal/model"
)

// MongoClassRepo はMongoDBを使用したクラスリポジトリ。
// 会話セッションはクラスドキュメントに埋め込まれるため、クラスの削除でまとめて消える。
type MongoClassRepo struct {
	coll *mongo.Collection
}

// NewMongoClassRepo はMongoClassRepoを生成する。
func NewMongoClassRepo(db *mongo.Database) *MongoClassRepo {
	return &MongoClassRepo{coll: db.Collection(ClassCollection)}
}

// 一覧や単体取得では埋め込みセッションを読み込まない。
var classProjection = bson.D{{Key: "conversations", Value: 0}}

// FindByID は指定IDのクラスを取得する。見つからない場合はnilを返す。
func (r *MongoClassRepo) FindByID(ctx context.Context, id string) (*model.Class, error) {
	var doc classDocument
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}},
		options.FindOne().SetProjection(classProjection),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("クラスの取得に失敗しました: %w", err)
	}
	return doc.toModel(), nil
}

// List はクラス一覧を作成順で返す。
func (r *MongoClassRepo) List(ctx context.Context, page model.Page) ([]*model.Class, error) {
	opts := pageOptions(page.Skip, page.Limit, byCreation).SetProjection(classProjection)
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("クラス一覧の取得に失敗しました: %w", err)
	}
	var docs []classDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("クラス一覧の読み込みに失敗しました: %w", err)
	}

	classes := make([]*model.Class, 0, len(docs))
	for _, d := range docs {
		classes = append(classes, d.toModel())
	}
	return classes, nil
}

// CountByTutorID は講師が担当するクラス数を返す。
func (r *MongoClassRepo) CountByTutorID(ctx context.Context, tutorID string) (int, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{{Key: "tutor_id", Value: tutorID}})
	if err != nil {
		return 0, fmt.Errorf("担当クラス数の取得に失敗しました: %w", err)
	}
	return int(n), nil
}

// Create はクラスを作成する。
func (r *MongoClassRepo) Create(ctx context.Context, class *model.Class) error {
	if _, err := r.coll.InsertOne(ctx, newClassDocument(class)); err != nil {
		return fmt.Errorf("クラスの作成に失敗しました: %w", err)
	}
	return nil
}

// Update はクラスの名前とレベルを更新する。
func (r *MongoClassRepo) Update(ctx context.Context, class *model.Class) error {
	_, err := r.coll.UpdateByID(ctx, class.ID, bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: class.Name},
		{Key: "level", Value: class.Level},
		{Key: "updated_at", Value: class.UpdatedAt},
	}}})
	if err != nil {
		return fmt.Errorf("クラスの更新に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDのクラスを削除する。
func (r *MongoClassRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return false, fmt.Errorf("クラスの削除に失敗しました: %w", err)
	}
	return res.DeletedCount > 0, nil
}

var _ ClassRepository = (*MongoClassRepo)(nil)
