package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"huddle/internal/lobbies/repository"
	"huddle/internal/migrations/mongo/validators"
	"huddle/pkg/logger"
)

var (
	LobbiesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	}

	ParticipantsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "lobby_code", Value: 1}, {Key: "participant_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "lobby_code", Value: 1}, {Key: "user_code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "lobby_code", Value: 1}, {Key: "is_active", Value: 1}, {Key: "joined_at", Value: 1}}},
	}

	TimeBlocksIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "lobby_code", Value: 1}, {Key: "start", Value: 1}}},
		{Keys: bson.D{{Key: "lobby_code", Value: 1}, {Key: "owner_id", Value: 1}}},
	}
)

// RunMigration creates the lobby collections with their validators and
// indexes. It is safe to run repeatedly.
func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	collections := map[string]struct {
		Indexes   []mongo.IndexModel
		Validator bson.M
	}{
		repository.LobbiesCollection: {
			Indexes:   LobbiesIndexes,
			Validator: validators.LobbyValidator,
		},
		repository.ParticipantsCollection: {
			Indexes:   ParticipantsIndexes,
			Validator: validators.ParticipantValidator,
		},
		repository.TimeBlocksCollection: {
			Indexes:   TimeBlocksIndexes,
			Validator: validators.TimeBlockValidator,
		},
	}

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	log.Info("All Mongo migrations applied")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
