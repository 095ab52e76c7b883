package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoRepairRepo はMongoDB上で参照整合性の修復を行う。
type MongoRepairRepo struct {
	students *mongo.Collection
}

// NewMongoRepairRepo はMongoRepairRepoを生成する。
func NewMongoRepairRepo(db *mongo.Database) *MongoRepairRepo {
	return &MongoRepairRepo{students: db.Collection(StudentCollection)}
}

// 所属クラスを結合した受講生を返すパイプラインの共通部分。
var enrolledWithClass = mongo.Pipeline{
	{{Key: "$match", Value: bson.D{{Key: "class_id", Value: bson.D{{Key: "$ne", Value: nil}}}}}},
	{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: ClassCollection},
		{Key: "localField", Value: "class_id"},
		{Key: "foreignField", Value: "_id"},
		{Key: "as", Value: "class"},
	}}},
}

// repairTarget は修復対象の受講生と、検索時点の所属クラス。
// 書き込み時のフィルタにClassIDを含め、検索後に移動した受講生を上書きしない。
type repairTarget struct {
	ID      string `bson:"_id"`
	ClassID string `bson:"class_id"`
	TutorID string `bson:"tutor_id"`
}

func (t repairTarget) filter() bson.D {
	return bson.D{{Key: "_id", Value: t.ID}, {Key: "class_id", Value: t.ClassID}}
}

func (r *MongoRepairRepo) findTargets(ctx context.Context, stages ...bson.D) ([]repairTarget, error) {
	pipeline := append(mongo.Pipeline{}, enrolledWithClass...)
	pipeline = append(pipeline, stages...)

	cur, err := r.students.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var targets []repairTarget
	if err := cur.All(ctx, &targets); err != nil {
		return nil, err
	}
	return targets, nil
}

// DetachOrphanedStudents は存在しないクラスを参照する受講生の参照を解除する。
func (r *MongoRepairRepo) DetachOrphanedStudents(ctx context.Context) (int64, error) {
	targets, err := r.findOrphaned(ctx)
	if err != nil {
		return 0, fmt.Errorf("孤立した受講生の検索に失敗しました: %w", err)
	}
	n, err := r.detach(ctx, targets)
	if err != nil {
		return 0, fmt.Errorf("孤立した受講生の参照解除に失敗しました: %w", err)
	}
	return n, nil
}

// ResyncStudentTutors はクラスの講師と一致しない講師参照を修正する。
func (r *MongoRepairRepo) ResyncStudentTutors(ctx context.Context) (int64, error) {
	targets, err := r.findDrifted(ctx)
	if err != nil {
		return 0, fmt.Errorf("講師参照がずれた受講生の検索に失敗しました: %w", err)
	}
	n, err := r.resync(ctx, targets)
	if err != nil {
		return 0, fmt.Errorf("受講生の講師参照の再同期に失敗しました: %w", err)
	}
	return n, nil
}

func (r *MongoRepairRepo) findOrphaned(ctx context.Context) ([]repairTarget, error) {
	return r.findTargets(ctx,
		bson.D{{Key: "$match", Value: bson.D{{Key: "class", Value: bson.D{{Key: "$size", Value: 0}}}}}},
		bson.D{{Key: "$project", Value: bson.D{{Key: "_id", Value: 1}, {Key: "class_id", Value: 1}}}},
	)
}

// findDrifted はTutorIDに所属クラスの講師を入れた修復対象を返す。
func (r *MongoRepairRepo) findDrifted(ctx context.Context) ([]repairTarget, error) {
	return r.findTargets(ctx,
		bson.D{{Key: "$unwind", Value: "$class"}},
		bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{
			{Key: "$ne", Value: bson.A{"$tutor_id", "$class.tutor_id"}},
		}}}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "class_id", Value: 1},
			{Key: "tutor_id", Value: "$class.tutor_id"},
		}}},
	)
}

// detach は検索時点と同じクラスに所属したままの受講生だけ参照を解除する。
func (r *MongoRepairRepo) detach(ctx context.Context, targets []repairTarget) (int64, error) {
	now := time.Now().UTC()
	return r.bulkUpdate(ctx, targets, func(repairTarget) bson.D {
		return bson.D{
			{Key: "class_id", Value: nil},
			{Key: "tutor_id", Value: nil},
			{Key: "enrolled_at", Value: nil},
			{Key: "updated_at", Value: now},
		}
	})
}

// resync は検索時点と同じクラスに所属したままの受講生だけ講師参照を書き換える。
func (r *MongoRepairRepo) resync(ctx context.Context, targets []repairTarget) (int64, error) {
	now := time.Now().UTC()
	return r.bulkUpdate(ctx, targets, func(t repairTarget) bson.D {
		return bson.D{
			{Key: "tutor_id", Value: t.TutorID},
			{Key: "updated_at", Value: now},
		}
	})
}

func (r *MongoRepairRepo) bulkUpdate(ctx context.Context, targets []repairTarget, set func(repairTarget) bson.D) (int64, error) {
	if len(targets) == 0 {
		return 0, nil
	}
	writes := make([]mongo.WriteModel, 0, len(targets))
	for _, t := range targets {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(t.filter()).
			SetUpdate(bson.D{{Key: "$set", Value: set(t)}}))
	}
	res, err := r.students.BulkWrite(ctx, writes)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

var _ RepairRepository = (*MongoRepairRepo)(nil)
