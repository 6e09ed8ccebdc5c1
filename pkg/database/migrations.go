package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Migration struct {
	Version     int
	Description string
	Up          func(*mongo.Database) error
	Down        func(*mongo.Database) error
}

type Migrator struct {
	db         *mongo.Database
	migrations []Migration
}

func NewMigrator(db *mongo.Database) *Migrator {
	return &Migrator{
		db:         db,
		migrations: getMigrations(),
	}
}

func (m *Migrator) Up() error {
	err := m.createMigrationsCollection()
	if err != nil {
		return err
	}

	currentVersion, err := m.getCurrentVersion()
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if migration.Version > currentVersion {
			log.Printf("Running migration %d: %s", migration.Version, migration.Description)

			err := migration.Up(m.db)
			if err != nil {
				return fmt.Errorf("migration %d failed: %w", migration.Version, err)
			}

			err = m.updateVersion(migration.Version)
			if err != nil {
				return fmt.Errorf("failed to update migration version: %w", err)
			}

			log.Printf("Migration %d completed successfully", migration.Version)
		}
	}

	return nil
}

func (m *Migrator) createMigrationsCollection() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collections, err := m.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return err
	}

	for _, name := range collections {
		if name == "migrations" {
			return nil
		}
	}

	return m.db.CreateCollection(ctx, "migrations")
}

func (m *Migrator) getCurrentVersion() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var result struct {
		Version int `bson:"version"`
	}

	err := m.db.Collection("migrations").FindOne(ctx, bson.D{}).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, nil
		}
		return 0, err
	}

	return result.Version, nil
}

func (m *Migrator) updateVersion(version int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := m.db.Collection("migrations").ReplaceOne(
		ctx,
		bson.D{},
		bson.D{{Key: "version", Value: version}, {Key: "updated_at", Value: time.Now()}},
		options.Replace().SetUpsert(true),
	)

	return err
}

func getMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create admins collection with indexes",
			Up: func(db *mongo.Database) error {
				return createIndexes(db, "admins", []mongo.IndexModel{
					{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
					{Keys: bson.D{{Key: "uid", Value: 1}}, Options: options.Index().SetSparse(true)},
					{Keys: bson.D{{Key: "branch_id", Value: 1}}},
				})
			},
			Down: func(db *mongo.Database) error {
				return db.Collection("admins").Drop(context.Background())
			},
		},
		{
			Version:     2,
			Description: "Create users collection with indexes",
			Up: func(db *mongo.Database) error {
				return createIndexes(db, "users", []mongo.IndexModel{
					{Keys: bson.D{{Key: "phone", Value: 1}}, Options: options.Index().SetUnique(true)},
					{Keys: bson.D{{Key: "branch_id", Value: 1}}},
					{Keys: bson.D{{Key: "status", Value: 1}}},
					{Keys: bson.D{{Key: "converted_from", Value: 1}}, Options: options.Index().SetSparse(true)},
				})
			},
			Down: func(db *mongo.Database) error {
				return db.Collection("users").Drop(context.Background())
			},
		},
		{
			Version:     3,
			Description: "Create prospects collection with indexes",
			Up: func(db *mongo.Database) error {
				return createIndexes(db, "prospects", []mongo.IndexModel{
					{Keys: bson.D{{Key: "phone", Value: 1}}},
					{Keys: bson.D{{Key: "email", Value: 1}}},
				})
			},
			Down: func(db *mongo.Database) error {
				return db.Collection("prospects").Drop(context.Background())
			},
		},
		{
			Version:     4,
			Description: "Create subscriptions collection with indexes",
			Up: func(db *mongo.Database) error {
				return createIndexes(db, "subscriptions", []mongo.IndexModel{
					{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "plan_id", Value: 1}}},
					{Keys: bson.D{{Key: "status", Value: 1}}},
				})
			},
			Down: func(db *mongo.Database) error {
				return db.Collection("subscriptions").Drop(context.Background())
			},
		},
		{
			Version:     5,
			Description: "Create transactions collection with indexes",
			Up: func(db *mongo.Database) error {
				return createIndexes(db, "transactions", []mongo.IndexModel{
					{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "plan_id", Value: 1}}},
					{Keys: bson.D{{Key: "status", Value: 1}}},
					{Keys: bson.D{{Key: "created_at", Value: -1}}},
				})
			},
			Down: func(db *mongo.Database) error {
				return db.Collection("transactions").Drop(context.Background())
			},
		},
		{
			Version:     6,
			Description: "Create roles and branches collections with indexes",
			Up: func(db *mongo.Database) error {
				if err := createIndexes(db, "roles", []mongo.IndexModel{
					{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
				}); err != nil {
					return err
				}
				return createIndexes(db, "branches", []mongo.IndexModel{
					{Keys: bson.D{{Key: "name", Value: 1}}},
				})
			},
			Down: func(db *mongo.Database) error {
				if err := db.Collection("roles").Drop(context.Background()); err != nil {
					return err
				}
				return db.Collection("branches").Drop(context.Background())
			},
		},
		{
			Version:     7,
			Description: "Create audit_logs collection with indexes",
			Up: func(db *mongo.Database) error {
				return createIndexes(db, "audit_logs", []mongo.IndexModel{
					{Keys: bson.D{{Key: "resource", Value: 1}, {Key: "resource_id", Value: 1}}},
					{Keys: bson.D{{Key: "created_at", Value: -1}}},
				})
			},
			Down: func(db *mongo.Database) error {
				return db.Collection("audit_logs").Drop(context.Background())
			},
		},
	}
}

func createIndexes(db *mongo.Database, collection string, indexes []mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := db.Collection(collection).Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create %s indexes: %w", collection, err)
	}

	return nil
}
