package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"

	StorageDisk = "disk"
	StorageS3   = "s3"

	devSessionSecret = "yatube-dev-session-secret"
	devJWTSecret     = "yatube-dev-jwt-secret"
)

// Config holds every runtime setting of the service. Values come from, in
// increasing priority: defaults, the YAML settings file, the environment.
type Config struct {
	Env         string   `yaml:"ENV"`
	BindAddress string   `yaml:"BIND_ADDRESS"`
	TLSDomains  []string `yaml:"TLS_DOMAINS"` // autotls is used when non-empty
	DebugMode   bool     `yaml:"DEBUG_MODE"`

	DBDriver   string `yaml:"DB_DRIVER"`
	DBHost     string `yaml:"DB_HOST"`
	DBPort     string `yaml:"DB_PORT"`
	DBUser     string `yaml:"DB_USER"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBName     string `yaml:"DB_NAME"`
	DBSSLMode  string `yaml:"DB_SSLMODE"`
	MySQLDSN   string `yaml:"MYSQL_DSN"`
	SQLiteFile string `yaml:"SQLITE_FILE"`

	SessionSecret string        `yaml:"SESSION_SECRET"`
	JWTSecret     string        `yaml:"JWT_SECRET"`
	TokenTTL      time.Duration `yaml:"TOKEN_TTL"`

	RedisHost     string        `yaml:"REDIS_HOST"` // in-process cache when empty
	RedisPort     string        `yaml:"REDIS_PORT"`
	RedisPassword string        `yaml:"REDIS_PASSWD"`
	PageCacheTTL  time.Duration `yaml:"PAGE_CACHE_TTL"`
	PostsPerPage  int           `yaml:"POSTS_PER_PAGE"`

	StorageBackend string `yaml:"STORAGE_BACKEND"`
	MediaRoot      string `yaml:"MEDIA_ROOT"`
	S3Bucket       string `yaml:"S3_BUCKET"`
	S3Region       string `yaml:"S3_REGION"`
	S3Endpoint     string `yaml:"S3_ENDPOINT"`
	S3AccessKey    string `yaml:"S3_ACCESS_KEY"`
	S3SecretKey    string `yaml:"S3_SECRET_KEY"`
	S3Prefix       string `yaml:"S3_PREFIX"`

	LoginRateLimit int    `yaml:"LOGIN_RATE_LIMIT"` // attempts per minute per IP
	LogLevel       string `yaml:"LOG_LEVEL"`
	LogJSON        bool   `yaml:"LOG_JSON"`
}

// Default returns the settings used for local development.
func Default() *Config {
	return &Config{
		Env:            "dev",
		BindAddress:    "0.0.0.0:8080",
		DebugMode:      true,
		DBDriver:       DriverPostgres,
		DBHost:         "localhost",
		DBPort:         "5432",
		DBUser:         "yatube",
		DBName:         "yatube",
		DBSSLMode:      "disable",
		SessionSecret:  devSessionSecret,
		JWTSecret:      devJWTSecret,
		TokenTTL:       72 * time.Hour,
		RedisPort:      "6379",
		PageCacheTTL:   20 * time.Second,
		PostsPerPage:   10,
		StorageBackend: StorageDisk,
		MediaRoot:      "media",
		S3Region:       "us-east-1",
		LoginRateLimit: 60,
		LogLevel:       "info",
	}
}

// Load reads .env files, the optional YAML file named by YATUBE_CONFIG and the
// process environment. Production settings must carry their own secrets.
func Load() (*Config, error) {
	LoadDotEnvs("")

	cfg := Default()
	if path := os.Getenv("YATUBE_CONFIG"); path != "" {
		if err := cfg.MergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.readEnv()
	if err := cfg.checkSecrets(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) checkSecrets() error {
	if !c.IsProduction() {
		return nil
	}
	if c.SessionSecret == "" || c.SessionSecret == devSessionSecret {
		return errors.New("SESSION_SECRET must be set in production")
	}
	if c.JWTSecret == "" || c.JWTSecret == devJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	return nil
}

func (c *Config) readEnv() {
	readEnvString("YATUBE_ENV", &c.Env)
	readEnvString("BIND_ADDRESS", &c.BindAddress)
	if port := os.Getenv("PORT"); port != "" {
		c.BindAddress = "0.0.0.0:" + port
	}
	readEnvList("TLS_DOMAINS", &c.TLSDomains)
	readEnvBool("DEBUG_MODE", &c.DebugMode)

	readEnvString("DB_DRIVER", &c.DBDriver)
	readEnvString("DB_HOST", &c.DBHost)
	readEnvString("DB_PORT", &c.DBPort)
	readEnvString("DB_USER", &c.DBUser)
	readEnvString("DB_PASSWORD", &c.DBPassword)
	readEnvString("DB_NAME", &c.DBName)
	readEnvString("DB_SSLMODE", &c.DBSSLMode)
	readEnvString("MYSQL_DSN", &c.MySQLDSN)
	readEnvString("SQLITE_FILE", &c.SQLiteFile)

	readEnvString("SESSION_SECRET", &c.SessionSecret)
	readEnvString("JWT_SECRET", &c.JWTSecret)
	readEnvDuration("TOKEN_TTL", &c.TokenTTL)

	readEnvString("REDIS_HOST", &c.RedisHost)
	readEnvString("REDIS_PORT", &c.RedisPort)
	readEnvString("REDIS_PASSWD", &c.RedisPassword)
	readEnvDuration("PAGE_CACHE_TTL", &c.PageCacheTTL)
	readEnvInt("POSTS_PER_PAGE", &c.PostsPerPage)

	readEnvString("STORAGE_BACKEND", &c.StorageBackend)
	readEnvString("MEDIA_ROOT", &c.MediaRoot)
	readEnvString("S3_BUCKET", &c.S3Bucket)
	readEnvString("S3_REGION", &c.S3Region)
	readEnvString("S3_ENDPOINT", &c.S3Endpoint)
	readEnvString("S3_ACCESS_KEY", &c.S3AccessKey)
	readEnvString("S3_SECRET_KEY", &c.S3SecretKey)
	readEnvString("S3_PREFIX", &c.S3Prefix)

	readEnvInt("LOGIN_RATE_LIMIT", &c.LoginRateLimit)
	readEnvString("LOG_LEVEL", &c.LogLevel)
	readEnvBool("LOG_JSON", &c.LogJSON)
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == ProdEnv
}

func readEnvString(name string, value *string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	*value = v
}

func readEnvList(name string, value *[]string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	var items []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	*value = items
}

func readEnvBool(name string, value *bool) {
	v := strings.ToLower(os.Getenv(name))
	if v == "true" || v == "1" || v == "yes" || v == "on" {
		*value = true
	} else if v == "false" || v == "0" || v == "no" || v == "off" {
		*value = false
	}
}

func readEnvInt(name string, value *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*value = i
}

// readEnvDuration accepts Go durations ("20s") and plain seconds ("20").
func readEnvDuration(name string, value *time.Duration) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*value = d
		return
	}
	if secs, err := strconv.Atoi(v); err == nil {
		*value = time.Duration(secs) * time.Second
	}
}
