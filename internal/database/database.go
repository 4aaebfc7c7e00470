package database

import (
	"context"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"storefront_back_end/internal/config"
)

// Clients regroupe les connexions ouvertes au démarrage.
// Elastic et MinIO sont nil quand ils ne sont pas configurés.
type Clients struct {
	Scylla  *gocql.Session
	Mongo   *mongo.Database
	Redis   *redis.Client
	Elastic *elasticsearch.Client
	MinIO   *minio.Client

	mongoClient *mongo.Client
}

// Connect ouvre toutes les connexions. ScyllaDB, MongoDB et Redis sont
// obligatoires, Elasticsearch et MinIO optionnels.
func Connect(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Clients, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	clients := &Clients{}

	session, err := ConnectScylla(cfg.Scylla)
	if err != nil {
		return nil, err
	}
	clients.Scylla = session
	log.Info("✅ Connected to ScyllaDB", zap.String("keyspace", cfg.Scylla.Keyspace))

	mongoClient, err := ConnectMongo(ctx, cfg.Mongo.URI)
	if err != nil {
		clients.Close()
		return nil, err
	}
	clients.mongoClient = mongoClient
	clients.Mongo = mongoClient.Database(cfg.Mongo.Database)
	log.Info("✅ Connected to MongoDB", zap.String("database", cfg.Mongo.Database))

	clients.Redis = redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Host,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})
	if err := clients.Redis.Ping(ctx).Err(); err != nil {
		clients.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info("✅ Connected to Redis", zap.String("addr", cfg.Redis.Host))

	if cfg.Elastic.Enabled() {
		es, err := connectElastic(cfg.Elastic)
		if err != nil {
			log.Warn("⚠️ Elasticsearch unavailable, search disabled", zap.Error(err))
		} else {
			clients.Elastic = es
			log.Info("✅ Connected to Elasticsearch")
		}
	}

	if cfg.MinIO.Enabled() {
		mc, err := connectMinIO(ctx, cfg.MinIO)
		if err != nil {
			log.Warn("⚠️ MinIO unavailable, images served as stored", zap.Error(err))
		} else {
			clients.MinIO = mc
			log.Info("✅ Connected to MinIO", zap.String("bucket", cfg.MinIO.Bucket))
		}
	}

	return clients, nil
}

// Close ferme ce qui a été ouvert.
func (c *Clients) Close() {
	if c.Scylla != nil {
		c.Scylla.Close()
	}
	if c.mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = c.mongoClient.Disconnect(ctx)
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}

// =============================================
// SCYLLA DB
// =============================================

// ConnectScylla crée la session sur le keyspace configuré.
func ConnectScylla(cfg config.ScyllaConfig) (*gocql.Session, error) {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Keyspace = cfg.Keyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = cfg.Timeout
	cluster.NumConns = cfg.NumConns
	cluster.MaxWaitSchemaAgreement = 30 * time.Second
	cluster.ReconnectInterval = 1 * time.Second
	if cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}
	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("scylla session for %s: %w", cfg.Keyspace, err)
	}
	return session, nil
}

// =============================================
// MONGODB
// =============================================

func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// =============================================
// ELASTICSEARCH
// =============================================

func connectElastic(cfg config.ElasticConfig) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch info: %s", res.Status())
	}
	return client, nil
}

// ConnectElastic est exposé pour les outils (cmd/reindex).
func ConnectElastic(cfg config.ElasticConfig) (*elasticsearch.Client, error) {
	return connectElastic(cfg)
}

// =============================================
// MINIO
// =============================================

func connectMinIO(ctx context.Context, cfg config.MinIOConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("minio bucket %q does not exist", cfg.Bucket)
	}
	return client, nil
}
