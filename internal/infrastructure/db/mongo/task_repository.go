package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskloop/task-api/internal/core/domain"
	"github.com/taskloop/task-api/internal/core/ports"
)

const (
	tasksCollection    = "tasks"
	countersCollection = "counters"
	taskCounterID      = "tasks"
)

type TaskRepository struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{
		coll:     db.Collection(tasksCollection),
		counters: db.Collection(countersCollection),
	}
}

type taskDoc struct {
	ID          int64     `bson:"_id"`
	OwnerID     string    `bson:"owner_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description,omitempty"`
	Completed   bool      `bson:"completed"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func toDomainTask(d taskDoc) *domain.Task {
	return &domain.Task{
		ID:          d.ID,
		OwnerID:     d.OwnerID,
		Title:       d.Title,
		Description: d.Description,
		Completed:   d.Completed,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

// ownerFilter scopes a query to one task of one owner. Every read and write
// in this repository goes through it, so a task belonging to someone else
// behaves exactly like a missing one.
func ownerFilter(ownerID string, taskID int64) bson.M {
	return bson.M{"_id": taskID, "owner_id": ownerID}
}

// nextID atomically increments and returns the task id sequence.
func (r *TaskRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": taskCounterID},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next task id: %w", err)
	}
	return counter.Seq, nil
}

// Create assigns the next id, stamps both timestamps, and inserts the task.
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	id, err := r.nextID(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := taskDoc{
		ID:          id,
		OwnerID:     task.OwnerID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return toDomainTask(doc), nil
}

// ListByOwner returns the owner's tasks in creation order (ids are assigned
// sequentially, so sorting by _id is creation order).
func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Task, error) {
	cursor, err := r.coll.Find(ctx,
		bson.M{"owner_id": ownerID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer cursor.Close(ctx)

	tasks := make([]*domain.Task, 0)
	for cursor.Next(ctx) {
		var d taskDoc
		if err := cursor.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode task: %w", err)
		}
		tasks = append(tasks, toDomainTask(d))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, ownerID string, taskID int64) (*domain.Task, error) {
	var d taskDoc
	if err := r.coll.FindOne(ctx, ownerFilter(ownerID, taskID)).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return toDomainTask(d), nil
}

// Update applies the non-nil fields of upd in a single atomic document
// update and returns the task as stored afterwards.
func (r *TaskRepository) Update(ctx context.Context, ownerID string, taskID int64, upd ports.TaskUpdate) (*domain.Task, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Completed != nil {
		set["completed"] = *upd.Completed
	}

	var d taskDoc
	err := r.coll.FindOneAndUpdate(ctx,
		ownerFilter(ownerID, taskID),
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return toDomainTask(d), nil
}

// Delete removes the owner's task. A repeated delete finds nothing and
// reports domain.ErrTaskNotFound.
func (r *TaskRepository) Delete(ctx context.Context, ownerID string, taskID int64) error {
	res, err := r.coll.DeleteOne(ctx, ownerFilter(ownerID, taskID))
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// ToggleCompleted flips the completed flag with an aggregation-pipeline
// update, so the negation happens server-side and concurrent toggles cannot
// lose a flip to a read-modify-write race.
func (r *TaskRepository) ToggleCompleted(ctx context.Context, ownerID string, taskID int64) (*domain.Task, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "completed", Value: bson.D{{Key: "$not", Value: "$completed"}}},
			{Key: "updated_at", Value: time.Now().UTC()},
		}}},
	}

	var d taskDoc
	err := r.coll.FindOneAndUpdate(ctx,
		ownerFilter(ownerID, taskID),
		pipeline,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("toggle task: %w", err)
	}
	return toDomainTask(d), nil
}

// EnsureIndexes creates the owner index used by every scoped query.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "_id", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
