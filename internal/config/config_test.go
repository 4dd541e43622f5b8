package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shankarium/plm/internal/db"
	"github.com/shankarium/plm/internal/models"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func noSecrets(context.Context, string) (SecretGetter, error) {
	return nil, errors.New("secrets manager should not be used")
}

type fakeSecrets struct {
	arn   string
	value string
}

func (f *fakeSecrets) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.arn = aws.ToString(in.SecretId)
	return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(f.value)}, nil
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(context.Background(), envMap(nil), noSecrets)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, db.DialectSQLite, cfg.Database.Driver)
	assert.Equal(t, "plm.db", cfg.Database.Path)
	assert.Equal(t, UploadBackendLocal, cfg.UploadBackend)
	assert.Equal(t, "/static/uploads", cfg.UploadURLPrefix)
	assert.Equal(t, DevSecretKey, cfg.SecretKey)
	assert.True(t, cfg.InsecureSecret)
	assert.False(t, cfg.SecureCookies)
	assert.Empty(t, cfg.AllowedOrigins)

	seeds := cfg.SeedUsers()
	require.Len(t, seeds, 5)
	for _, s := range seeds {
		assert.Equal(t, "changeme", s.Password)
		assert.True(t, s.Role.IsValid())
	}
}

func TestLoadSecretAliases(t *testing.T) {
	cfg, err := load(context.Background(), envMap(map[string]string{"JWT_SECRET": "from-jwt"}), noSecrets)
	require.NoError(t, err)
	assert.Equal(t, "from-jwt", cfg.SecretKey)
	assert.False(t, cfg.InsecureSecret)

	cfg, err = load(context.Background(), envMap(map[string]string{"JWT_SECRET": "from-jwt", "SECRET_KEY": "primary"}), noSecrets)
	require.NoError(t, err)
	assert.Equal(t, "primary", cfg.SecretKey)
}

func TestLoadFromSecretsManager(t *testing.T) {
	sm := &fakeSecrets{value: `{"SECRET_KEY":"vaulted","DATABASE_URL":"postgres://plm@db/plm"}`}
	cfg, err := load(context.Background(), envMap(map[string]string{
		"SECRET_ARN": "arn:aws:secretsmanager:eu-central-1:1:secret:plm",
		"SECRET_KEY": "local",
		"DB_DRIVER":  "postgres",
	}), func(context.Context, string) (SecretGetter, error) { return sm, nil })
	require.NoError(t, err)

	assert.Equal(t, "arn:aws:secretsmanager:eu-central-1:1:secret:plm", sm.arn)
	assert.Equal(t, "vaulted", cfg.SecretKey)
	assert.Equal(t, db.DialectPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://plm@db/plm", cfg.Database.URL)
}

func TestLoadOrigins(t *testing.T) {
	cfg, err := load(context.Background(), envMap(map[string]string{
		"CORS_ALLOWED_ORIGINS": "https://plm.example.com, https://admin.example.com,",
		"COOKIE_SECURE":        "true",
	}), noSecrets)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://plm.example.com", "https://admin.example.com"}, cfg.AllowedOrigins)
	assert.True(t, cfg.SecureCookies)
}

func TestLoadRejectsBadUploadBackend(t *testing.T) {
	_, err := load(context.Background(), envMap(map[string]string{"UPLOAD_BACKEND": "s3"}), noSecrets)
	assert.Error(t, err)

	_, err = load(context.Background(), envMap(map[string]string{"UPLOAD_BACKEND": "ftp"}), noSecrets)
	assert.Error(t, err)
}

func TestUsersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
users:
  - username: asha
    password: s3cret
    role: PM
  - username: ravi
    password: s3cret
    role: PM-Final
notify:
  NPD: [npd-team@example.com]
  Sales: [sales@example.com]
`), 0o600))

	cfg, err := load(context.Background(), envMap(map[string]string{"USERS_FILE": path}), noSecrets)
	require.NoError(t, err)

	seeds := cfg.SeedUsers()
	require.Len(t, seeds, 2)
	assert.Equal(t, SeedUser{Username: "ravi", Password: "s3cret", Role: models.RolePMFinal}, seeds[1])
	assert.Equal(t, []string{"npd-team@example.com"}, cfg.Users.Notify[models.RoleNPD])

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("users:\n  - username: x\n    password: y\n    role: Owner\n"), 0o600))
	_, err = ReadUsersFile(bad)
	assert.Error(t, err)
}

func TestLoadEnvFileKeepsProcessEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PLM_TEST_FROM_FILE=file\nPLM_TEST_PRESET=file\n"), 0o600))
	t.Setenv("PLM_TEST_PRESET", "process")
	t.Cleanup(func() { os.Unsetenv("PLM_TEST_FROM_FILE") })

	assert.Equal(t, "", loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, path, loadEnvFile(filepath.Join(t.TempDir(), "missing.env"), path))
	assert.Equal(t, "file", os.Getenv("PLM_TEST_FROM_FILE"))
	assert.Equal(t, "process", os.Getenv("PLM_TEST_PRESET"))
}
