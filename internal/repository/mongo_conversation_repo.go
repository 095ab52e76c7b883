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

// MongoConversationRepo はturma.conversationsに埋め込まれた会話セッションを操作する。
type MongoConversationRepo struct {
	coll *mongo.Collection
}

// NewMongoConversationRepo はMongoConversationRepoを生成する。
func NewMongoConversationRepo(db *mongo.Database) *MongoConversationRepo {
	return &MongoConversationRepo{coll: db.Collection(ClassCollection)}
}

// Create はクラスにセッションを追加する。
func (r *MongoConversationRepo) Create(ctx context.Context, session *model.ConversationSession) error {
	_, err := r.coll.UpdateByID(ctx, session.ClassID, bson.D{
		{Key: "$push", Value: bson.D{{Key: "conversations", Value: newSessionDocument(session)}}},
	})
	if err != nil {
		return fmt.Errorf("会話セッションの作成に失敗しました: %w", err)
	}
	return nil
}

// FindByID はクラス配下の指定セッションを取得する。見つからない場合はnilを返す。
func (r *MongoConversationRepo) FindByID(ctx context.Context, classID, sessionID string) (*model.ConversationSession, error) {
	var doc classDocument
	err := r.coll.FindOne(ctx,
		bson.D{{Key: "_id", Value: classID}, {Key: "conversations._id", Value: sessionID}},
		options.FindOne().SetProjection(bson.D{{Key: "conversations.$", Value: 1}}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("会話セッションの取得に失敗しました: %w", err)
	}
	if len(doc.Conversations) == 0 {
		return nil, nil
	}
	cs := doc.Conversations[0].toModel(classID)
	return &cs, nil
}

// ListByClassID はクラスのセッションを登録順で返す。
func (r *MongoConversationRepo) ListByClassID(ctx context.Context, classID string) ([]model.ConversationSession, error) {
	var doc classDocument
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: classID}},
		options.FindOne().SetProjection(bson.D{{Key: "conversations", Value: 1}}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []model.ConversationSession{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("会話セッション一覧の取得に失敗しました: %w", err)
	}

	sessions := make([]model.ConversationSession, 0, len(doc.Conversations))
	for _, d := range doc.Conversations {
		sessions = append(sessions, d.toModel(classID))
	}
	return sessions, nil
}

// Update はセッションの名前と予定日時を更新する。
func (r *MongoConversationRepo) Update(ctx context.Context, session *model.ConversationSession) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: session.ClassID}, {Key: "conversations._id", Value: session.ID}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "conversations.$.name", Value: session.Name},
			{Key: "conversations.$.scheduled_at", Value: session.ScheduledAt},
		}}},
	)
	if err != nil {
		return fmt.Errorf("会話セッションの更新に失敗しました: %w", err)
	}
	return nil
}

// Delete はクラス配下の指定セッションを削除する。
func (r *MongoConversationRepo) Delete(ctx context.Context, classID, sessionID string) (bool, error) {
	res, err := r.coll.UpdateByID(ctx, classID, bson.D{
		{Key: "$pull", Value: bson.D{{Key: "conversations", Value: bson.D{{Key: "_id", Value: sessionID}}}}},
	})
	if err != nil {
		return false, fmt.Errorf("会話セッションの削除に失敗しました: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

var _ ConversationRepository = (*MongoConversationRepo)(nil)
