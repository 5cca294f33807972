package utils

import (
	"context"
	"time"

	"agrilink-storefront/storage"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectDB connects to MongoDB and checks the connection
func ConnectDB(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connect to MongoDB")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping MongoDB")
	}
	return client, nil
}

// ConnectRedis connects to Redis and checks the connection
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "invalid redis URL")
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "failed to connect to Redis")
	}
	return client, nil
}

// OpenStorage opens the durable local state backend selected by cfg
func OpenStorage(ctx context.Context, cfg StorageConfig) (storage.Store, error) {
	switch cfg.Driver {
	case StorageMemory:
		return storage.NewMemoryStore(), nil
	case StorageRedis:
		client, err := ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return storage.NewRedisStore(client, ""), nil
	case StorageMongo:
		client, err := ConnectDB(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		return storage.NewMongoStore(client, cfg.MongoDatabase), nil
	case StorageFile, "":
		return storage.NewFileStore(cfg.StateFile)
	default:
		return nil, errors.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
