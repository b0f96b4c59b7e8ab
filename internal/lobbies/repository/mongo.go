package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	lobbyerrors "huddle/internal/lobbies/errors"
	"huddle/pkg/config"
	mongotx "huddle/pkg/db/mongo"
	"huddle/pkg/model"
)

const (
	LobbiesCollection      = "Lobbies"
	ParticipantsCollection = "Participants"
	TimeBlocksCollection   = "Time_blocks"
)

type mongoRepository struct {
	cfg          *config.Config
	client       *mongo.Client
	lobbies      *mongo.Collection
	participants *mongo.Collection
	blocks       *mongo.Collection
	txManager    mongotx.TransactionManager
}

func NewMongoRepository(cfg *config.Config) Repository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRepository{
		cfg:          cfg,
		client:       cfg.Client.Mongo,
		lobbies:      db.Collection(LobbiesCollection),
		participants: db.Collection(ParticipantsCollection),
		blocks:       db.Collection(TimeBlocksCollection),
		txManager:    mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout leaves SessionContext alone; wrapping it would detach the
// operation from the transaction.
func (r *mongoRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	_, inTx := ctx.(mongo.SessionContext)
	return withTimeout(ctx, timeout, inTx)
}

func (r *mongoRepository) CreateLobby(ctx context.Context, lobby *model.Lobby) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.lobbies.InsertOne(ctx, lobby); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", lobbyerrors.ErrCodeTaken, lobby.Code)
		}
		return fmt.Errorf("failed to create lobby: %w", err)
	}
	return nil
}

func (r *mongoRepository) FindLobby(ctx context.Context, code string) (*model.Lobby, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var lobby model.Lobby
	if err := r.lobbies.FindOne(ctx, bson.M{"_id": code}).Decode(&lobby); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", lobbyerrors.ErrLobbyNotFound, code)
		}
		return nil, fmt.Errorf("failed to find lobby: %w", err)
	}
	return &lobby, nil
}

func (r *mongoRepository) UpsertParticipant(ctx context.Context, p *model.Participant) (*model.Participant, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"lobby_code": p.LobbyCode, "participant_id": p.ID}
	update := bson.M{
		"$set": bson.M{
			"name":         p.Name,
			"color":        p.Color,
			"is_active":    true,
			"last_seen_at": p.LastSeenAt,
		},
		"$setOnInsert": bson.M{
			"user_code": p.UserCode,
			"joined_at": p.JoinedAt,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored model.Participant
	if err := r.participants.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: %s", lobbyerrors.ErrUserCodeTaken, p.UserCode)
		}
		return nil, fmt.Errorf("failed to upsert participant: %w", err)
	}
	return &stored, nil
}

func (r *mongoRepository) FindParticipant(ctx context.Context, lobbyCode, id string) (*model.Participant, error) {
	return r.findParticipant(ctx, bson.M{"lobby_code": lobbyCode, "participant_id": id}, id)
}

func (r *mongoRepository) FindParticipantByUserCode(ctx context.Context, lobbyCode, userCode string) (*model.Participant, error) {
	return r.findParticipant(ctx, bson.M{"lobby_code": lobbyCode, "user_code": userCode}, userCode)
}

func (r *mongoRepository) findParticipant(ctx context.Context, filter bson.M, ref string) (*model.Participant, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var p model.Participant
	if err := r.participants.FindOne(ctx, filter).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", lobbyerrors.ErrParticipantNotFound, ref)
		}
		return nil, fmt.Errorf("failed to find participant: %w", err)
	}
	return &p, nil
}

func (r *mongoRepository) SetParticipantActive(ctx context.Context, lobbyCode, id string, active bool, seenAt time.Time) (*model.Participant, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"lobby_code": lobbyCode, "participant_id": id}
	update := bson.M{"$set": bson.M{"is_active": active, "last_seen_at": seenAt}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p model.Participant
	if err := r.participants.FindOneAndUpdate(ctx, filter, update, opts).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", lobbyerrors.ErrParticipantNotFound, id)
		}
		return nil, fmt.Errorf("failed to update participant: %w", err)
	}
	return &p, nil
}

func (r *mongoRepository) ListParticipants(ctx context.Context, lobbyCode string, activeOnly bool) ([]model.Participant, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"lobby_code": lobbyCode}
	if activeOnly {
		filter["is_active"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "joined_at", Value: 1}, {Key: "participant_id", Value: 1}})

	cursor, err := r.participants.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer cursor.Close(ctx)

	participants := []model.Participant{}
	if err := cursor.All(ctx, &participants); err != nil {
		return nil, fmt.Errorf("failed to decode participants: %w", err)
	}
	return participants, nil
}

func (r *mongoRepository) CreateBlock(ctx context.Context, block *model.TimeBlock) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.blocks.InsertOne(ctx, block); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", lobbyerrors.ErrBlockExists, block.ID)
		}
		return fmt.Errorf("failed to create time block: %w", err)
	}
	return nil
}

func (r *mongoRepository) FindBlock(ctx context.Context, lobbyCode, id string) (*model.TimeBlock, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var block model.TimeBlock
	if err := r.blocks.FindOne(ctx, bson.M{"_id": id, "lobby_code": lobbyCode}).Decode(&block); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", lobbyerrors.ErrBlockNotFound, id)
		}
		return nil, fmt.Errorf("failed to find time block: %w", err)
	}
	return &block, nil
}

func (r *mongoRepository) UpdateBlock(ctx context.Context, block *model.TimeBlock) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"_id": block.ID, "lobby_code": block.LobbyCode}
	update := bson.M{
		"$set": bson.M{
			"start":      block.Start,
			"end":        block.End,
			"block_type": block.BlockType,
			"all_day":    block.AllDay,
			"title":      block.Title,
			"note":       block.Note,
			"updated_at": block.UpdatedAt,
		},
	}

	result, err := r.blocks.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update time block: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", lobbyerrors.ErrBlockNotFound, block.ID)
	}
	return nil
}

func (r *mongoRepository) DeleteBlock(ctx context.Context, lobbyCode, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.blocks.DeleteOne(ctx, bson.M{"_id": id, "lobby_code": lobbyCode})
	if err != nil {
		return fmt.Errorf("failed to delete time block: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", lobbyerrors.ErrBlockNotFound, id)
	}
	return nil
}

func (r *mongoRepository) ListBlocks(ctx context.Context, lobbyCode string) ([]model.TimeBlock, error) {
	return r.findBlocks(ctx, bson.M{"lobby_code": lobbyCode})
}

func (r *mongoRepository) ListBlocksBetween(ctx context.Context, lobbyCode string, from, to time.Time) ([]model.TimeBlock, error) {
	return r.findBlocks(ctx, bson.M{
		"lobby_code": lobbyCode,
		"start":      bson.M{"$lt": to},
		"end":        bson.M{"$gt": from},
	})
}

func (r *mongoRepository) findBlocks(ctx context.Context, filter bson.M) ([]model.TimeBlock, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.blocks.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query time blocks: %w", err)
	}
	defer cursor.Close(ctx)

	blocks := []model.TimeBlock{}
	if err := cursor.All(ctx, &blocks); err != nil {
		return nil, fmt.Errorf("failed to decode time blocks: %w", err)
	}
	return blocks, nil
}

func (r *mongoRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.txManager.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		return fn(sessCtx)
	})
}

func (r *mongoRepository) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()
	return r.client.Ping(ctx, readpref.Primary())
}
