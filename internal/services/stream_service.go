package services

import (
	"context"
	"time"

	"coopsave/internal/utils"
	"coopsave/pkg/database"
	"coopsave/pkg/logger"
	"coopsave/pkg/websocket"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// watchedCollections are the ones dashboards subscribe to live.
var watchedCollections = []string{
	"users",
	"prospects",
	"subscriptions",
	"transactions",
	"broadcasts",
	"roles",
	"admins",
}

// cacheEviction maps a watched collection to the cache key prefix its
// documents are stored under. Changes that arrive through the stream also
// hit documents written outside this process, so eviction here keeps the
// permission snapshots honest.
var cacheEviction = map[string]string{
	"roles":  utils.CacheRolePrefix,
	"admins": utils.CacheAdminPrefix,
	"users":  utils.CacheUserPrefix,
}

// StreamService pumps MongoDB change streams into the websocket hub.
// Connected dashboards get row-level updates without polling; a dropped
// stream is reopened with backoff.
type StreamService interface {
	Start(ctx context.Context)
}

type streamService struct {
	db     *database.MongoDB
	hub    *websocket.Hub
	cache  CacheService
	logger *logger.Logger
}

func NewStreamService(db *database.MongoDB, hub *websocket.Hub, cache CacheService, logger *logger.Logger) StreamService {
	return &streamService{
		db:     db,
		hub:    hub,
		cache:  cache,
		logger: logger,
	}
}

func (s *streamService) Start(ctx context.Context) {
	for _, collection := range watchedCollections {
		go s.watchCollection(ctx, collection)
	}
}

func (s *streamService) watchCollection(ctx context.Context, collection string) {
	backoff := time.Second

	for {
		if ctx.Err() != nil {
			return
		}

		stream, err := s.db.Watch(ctx, collection, mongo.Pipeline{})
		if err != nil {
			s.logger.WithField("collection", collection).WithError(err).Error("failed to open change stream")

			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}

		backoff = time.Second
		s.logger.WithField("collection", collection).Info("change stream open")

		s.pump(ctx, collection, stream)
		stream.Close(ctx)
	}
}

func (s *streamService) pump(ctx context.Context, collection string, stream *mongo.ChangeStream) {
	for stream.Next(ctx) {
		var event struct {
			OperationType string `bson:"operationType"`
			DocumentKey   struct {
				ID primitive.ObjectID `bson:"_id"`
			} `bson:"documentKey"`
			FullDocument bson.M `bson:"fullDocument"`
		}

		if err := stream.Decode(&event); err != nil {
			s.logger.WithField("collection", collection).WithError(err).Warn("failed to decode change event")
			continue
		}

		docID := event.DocumentKey.ID.Hex()
		if prefix, ok := cacheEviction[collection]; ok && s.cache != nil {
			if err := s.cache.Delete(ctx, prefix+docID); err != nil {
				s.logger.WithField("collection", collection).WithError(err).Warn("cache eviction failed")
			}
		}

		s.hub.PublishChange(collection, event.OperationType, docID, event.FullDocument)
	}

	if err := stream.Err(); err != nil && ctx.Err() == nil {
		s.logger.WithField("collection", collection).WithError(err).Warn("change stream closed")
	}
}
