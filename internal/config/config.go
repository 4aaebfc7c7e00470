package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config regroupe toute la configuration du serveur.
type Config struct {
	App     AppConfig
	Log     LogConfig
	JWT     JWTConfig
	Scylla  ScyllaConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Elastic ElasticConfig
	MinIO   MinIOConfig
	Stripe  StripeConfig
	SMTP    SMTPConfig
	OAuth   OAuthConfig
	Cart    CartConfig
}

type AppConfig struct {
	Env         string
	Port        string
	BaseURL     string
	FrontendURL string
	CORSOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type ScyllaConfig struct {
	Hosts    []string
	Keyspace string
	Username string
	Password string
	Timeout  time.Duration
	NumConns int
}

type MongoConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type ElasticConfig struct {
	URL      string
	Username string
	Password string
	Index    string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type StripeConfig struct {
	SecretKey string
	Currency  string
}

type SMTPConfig struct {
	Host         string
	Port         int
	Username     string
	Password     string
	From         string
	ContactEmail string
}

type OAuthConfig struct {
	SessionSecret        string
	GoogleClientID       string
	GoogleClientSecret   string
	FacebookClientID     string
	FacebookClientSecret string
}

type CartConfig struct {
	TTL time.Duration
}

// Enabled indique si l'intégration a été configurée.
func (c ElasticConfig) Enabled() bool { return c.URL != "" }
func (c MinIOConfig) Enabled() bool   { return c.Endpoint != "" && c.Bucket != "" }
func (c StripeConfig) Enabled() bool  { return c.SecretKey != "" }
func (c SMTPConfig) Enabled() bool    { return c.Host != "" && c.From != "" }

func (c AppConfig) IsDevelopment() bool { return c.Env == "development" }

// Load charge .env puis les variables d'environnement.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	} else {
		log.Println("✅ .env file loaded")
	}

	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("app_env", "development")
	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("frontend_url", "http://localhost:5173")
	v.SetDefault("cors_origins", "http://localhost:5173")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("jwt_ttl", "24h")
	v.SetDefault("scylla_timeout", "5s")
	v.SetDefault("scylla_num_conns", 20)
	v.SetDefault("scylla_keyspace", "storefront")
	v.SetDefault("mongo_database", "storefront")
	v.SetDefault("redis_db", 0)
	v.SetDefault("elastic_index", "products")
	v.SetDefault("stripe_currency", "eur")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("cart_ttl", "720h")
	return v
}

// FromViper construit la configuration à partir d'une instance viper déjà
// alimentée (env, valeurs par défaut ou overrides de test).
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:         v.GetString("app_env"),
			Port:        v.GetString("port"),
			BaseURL:     v.GetString("base_url"),
			FrontendURL: v.GetString("frontend_url"),
			CORSOrigins: splitList(v.GetString("cors_origins")),
		},
		Log: LogConfig{
			Level:  v.GetString("log_level"),
			Format: v.GetString("log_format"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt_secret"),
			TTL:    v.GetDuration("jwt_ttl"),
		},
		Scylla: ScyllaConfig{
			Hosts:    splitList(v.GetString("scylla_hosts")),
			Keyspace: v.GetString("scylla_keyspace"),
			Username: v.GetString("scylla_username"),
			Password: v.GetString("scylla_password"),
			Timeout:  v.GetDuration("scylla_timeout"),
			NumConns: v.GetInt("scylla_num_conns"),
		},
		Mongo: MongoConfig{
			URI:      v.GetString("mongo_uri"),
			Database: v.GetString("mongo_database"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis_host"),
			Password: v.GetString("redis_password"),
			DB:       v.GetInt("redis_db"),
		},
		Elastic: ElasticConfig{
			URL:      v.GetString("elastic_url"),
			Username: v.GetString("elastic_user"),
			Password: v.GetString("elastic_password"),
			Index:    v.GetString("elastic_index"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("minio_endpoint"),
			AccessKey: v.GetString("minio_access_key"),
			SecretKey: v.GetString("minio_secret_key"),
			Bucket:    v.GetString("minio_bucket"),
			UseSSL:    v.GetBool("minio_use_ssl"),
		},
		Stripe: StripeConfig{
			SecretKey: v.GetString("stripe_secret_key"),
			Currency:  v.GetString("stripe_currency"),
		},
		SMTP: SMTPConfig{
			Host:         v.GetString("smtp_host"),
			Port:         v.GetInt("smtp_port"),
			Username:     v.GetString("smtp_username"),
			Password:     v.GetString("smtp_password"),
			From:         v.GetString("mail_from"),
			ContactEmail: v.GetString("contact_email"),
		},
		OAuth: OAuthConfig{
			SessionSecret:        v.GetString("session_secret"),
			GoogleClientID:       v.GetString("google_client_id"),
			GoogleClientSecret:   v.GetString("google_client_secret"),
			FacebookClientID:     v.GetString("facebook_client_id"),
			FacebookClientSecret: v.GetString("facebook_client_secret"),
		},
		Cart: CartConfig{
			TTL: v.GetDuration("cart_ttl"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		if !c.App.IsDevelopment() {
			return fmt.Errorf("JWT_SECRET is required when APP_ENV=%s", c.App.Env)
		}
		c.JWT.Secret = "dev_secret"
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if c.Cart.TTL <= 0 {
		return fmt.Errorf("CART_TTL must be positive")
	}
	if c.Mongo.URI == "" {
		c.Mongo.URI = "mongodb://localhost:27017"
	}
	if c.Redis.Host == "" {
		c.Redis.Host = "localhost:6379"
	}
	if len(c.Scylla.Hosts) == 0 {
		c.Scylla.Hosts = []string{"127.0.0.1"}
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
