package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/shankarium/plm/internal/db"
	"github.com/shankarium/plm/internal/models"
)

// DevSecretKey signs sessions when no SECRET_KEY is configured. Never use it outside development.
const DevSecretKey = "dev-secret"

// Upload backends
const (
	UploadBackendLocal = "local"
	UploadBackendS3    = "s3"
)

// Config is the process configuration
type Config struct {
	Port      string
	GinMode   string
	LogLevel  string
	SecretKey string
	// InsecureSecret is true when SecretKey fell back to DevSecretKey
	InsecureSecret bool

	Database db.Config

	UploadBackend    string
	UploadDir        string
	UploadURLPrefix  string
	UploadsBucket    string
	AssetsCDNBaseURL string

	AWSRegion       string
	SecretARN       string
	SESFromEmail    string
	NotifyTopicARN  string
	MetricNamespace string

	AllowedOrigins []string
	SecureCookies  bool

	SeedPassword string
	Users        UsersFile

	// EnvFile is the .env file merged into the environment, empty when none was found
	EnvFile string
}

// SeedUser is a user created at startup when the users table is empty
type SeedUser struct {
	Username string          `yaml:"username"`
	Password string          `yaml:"password"`
	Role     models.UserRole `yaml:"role"`
}

// UsersFile is the YAML document named by USERS_FILE
type UsersFile struct {
	Users  []SeedUser                   `yaml:"users"`
	Notify map[models.UserRole][]string `yaml:"notify"`
}

// SecretGetter is the Secrets Manager call used to resolve SECRET_ARN
type SecretGetter interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

type secretPayload struct {
	SecretKey   string `json:"SECRET_KEY"`
	DatabaseURL string `json:"DATABASE_URL"`
}

// Load reads configuration from the environment, after merging an optional .env file
// from the working directory. When SECRET_ARN is set the secret payload overrides
// SECRET_KEY and DATABASE_URL.
func Load(ctx context.Context) (*Config, error) {
	envFile := loadEnvFile(".env")
	cfg, err := load(ctx, os.Getenv, func(ctx context.Context, region string) (SecretGetter, error) {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return secretsmanager.NewFromConfig(awsCfg), nil
	})
	if err != nil {
		return nil, err
	}
	cfg.EnvFile = envFile
	return cfg, nil
}

// loadEnvFile exports the first readable file into the process environment so the AWS
// SDK sees it too. Variables that are already set are not overridden.
func loadEnvFile(paths ...string) string {
	for _, p := range paths {
		if err := godotenv.Load(p); err == nil {
			return p
		}
	}
	return ""
}

func load(ctx context.Context, getenv func(string) string, secrets func(context.Context, string) (SecretGetter, error)) (*Config, error) {
	env := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		Port:      env("PORT", "8080"),
		GinMode:   getenv("GIN_MODE"),
		LogLevel:  env("LOG_LEVEL", "info"),
		SecretKey: env("SECRET_KEY", getenv("JWT_SECRET")),
		Database: db.Config{
			Driver:   db.ParseDialect(getenv("DB_DRIVER")),
			Path:     env("DB_PATH", "plm.db"),
			URL:      getenv("DATABASE_URL"),
			Host:     getenv("DB_HOST"),
			Port:     getenv("DB_PORT"),
			User:     getenv("DB_USER"),
			Password: getenv("DB_PASSWORD"),
			Name:     getenv("DB_NAME"),
			SSLMode:  getenv("DB_SSLMODE"),
		},
		UploadBackend:    strings.ToLower(env("UPLOAD_BACKEND", UploadBackendLocal)),
		UploadDir:        env("UPLOAD_DIR", "static/uploads"),
		UploadURLPrefix:  env("UPLOAD_URL_PREFIX", "/static/uploads"),
		UploadsBucket:    getenv("UPLOADS_S3_BUCKET"),
		AssetsCDNBaseURL: getenv("ASSETS_CDN_BASE_URL"),
		AWSRegion:        env("AWS_REGION", env("AWS_DEFAULT_REGION", "eu-central-1")),
		SecretARN:        getenv("SECRET_ARN"),
		SESFromEmail:     getenv("SES_FROM_EMAIL"),
		NotifyTopicARN:   getenv("NOTIFY_TOPIC_ARN"),
		MetricNamespace:  getenv("METRIC_NAMESPACE"),
		SeedPassword:     env("SEED_PASSWORD", "changeme"),
		SecureCookies:    strings.EqualFold(getenv("COOKIE_SECURE"), "true"),
	}
	for _, origin := range strings.Split(getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	switch cfg.UploadBackend {
	case UploadBackendLocal:
	case UploadBackendS3:
		if cfg.UploadsBucket == "" {
			return nil, fmt.Errorf("UPLOAD_BACKEND=s3 requires UPLOADS_S3_BUCKET")
		}
	default:
		return nil, fmt.Errorf("unknown UPLOAD_BACKEND %q", cfg.UploadBackend)
	}

	if cfg.SecretARN != "" {
		client, err := secrets(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		payload, err := fetchSecret(ctx, client, cfg.SecretARN)
		if err != nil {
			return nil, err
		}
		if payload.SecretKey != "" {
			cfg.SecretKey = payload.SecretKey
		}
		if payload.DatabaseURL != "" {
			cfg.Database.URL = payload.DatabaseURL
		}
	}

	if cfg.SecretKey == "" {
		cfg.SecretKey = DevSecretKey
		cfg.InsecureSecret = true
	}

	if path := getenv("USERS_FILE"); path != "" {
		users, err := ReadUsersFile(path)
		if err != nil {
			return nil, err
		}
		cfg.Users = *users
	}
	return cfg, nil
}

func fetchSecret(ctx context.Context, client SecretGetter, arn string) (*secretPayload, error) {
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: &arn})
	if err != nil {
		return nil, fmt.Errorf("get secret: %w", err)
	}
	if out.SecretString == nil {
		return nil, fmt.Errorf("secret %s has no string value", arn)
	}
	var payload secretPayload
	if err := json.Unmarshal([]byte(*out.SecretString), &payload); err != nil {
		return nil, fmt.Errorf("parse secret json: %w", err)
	}
	return &payload, nil
}

// ReadUsersFile parses a USERS_FILE document and validates its roles
func ReadUsersFile(path string) (*UsersFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read users file: %w", err)
	}
	var f UsersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse users file %s: %w", path, err)
	}
	for _, u := range f.Users {
		if u.Username == "" || u.Password == "" {
			return nil, fmt.Errorf("users file %s: every user needs a username and password", path)
		}
		if !u.Role.IsValid() {
			return nil, fmt.Errorf("users file %s: user %q has unknown role %q", path, u.Username, u.Role)
		}
	}
	for role := range f.Notify {
		if !role.IsValid() {
			return nil, fmt.Errorf("users file %s: notify entry for unknown role %q", path, role)
		}
	}
	return &f, nil
}

// SeedUsers returns the users to create on first start: the users file when it lists
// any, otherwise one account per role sharing SeedPassword.
func (c *Config) SeedUsers() []SeedUser {
	if len(c.Users.Users) > 0 {
		return c.Users.Users
	}
	return []SeedUser{
		{Username: "admin", Password: c.SeedPassword, Role: models.RoleAdmin},
		{Username: "pm", Password: c.SeedPassword, Role: models.RolePM},
		{Username: "npd", Password: c.SeedPassword, Role: models.RoleNPD},
		{Username: "pmfinal", Password: c.SeedPassword, Role: models.RolePMFinal},
		{Username: "sales", Password: c.SeedPassword, Role: models.RoleSales},
	}
}
