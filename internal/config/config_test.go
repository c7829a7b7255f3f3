package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Вспомогательные хелперы.
func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

// unsetEnv убирает переменную на время теста и восстанавливает её после.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

// Полный корректный YAML с заданными значениями (не зависящими от дефолтов).
const sampleYAML = `
env: "prod"
auth:
  secret: "super-secret"
  token_ttl: "30m"
  issuer: "issuerX"
  audience: ["web", "mobile"]
latency:
  disabled: true
  min: "10ms"
  max: "20ms"
registry:
  backend: "redis"
  redis_url: "redis://localhost:6379/0"
  prefix: "x:"
  janitor_period: "1m"
form:
  destination: "/home"
  submit_timeout: "3s"
`

// Минимально валидный YAML (только обязательные поля).
const minimalYAML = `
auth:
  secret: "min-secret"
`

// Некорректный YAML — для проверки ошибок парсинга.
const brokenYAML = `
auth:
  secret: [unclosed
`

func TestLoad_WithExplicitPath_OK(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", sampleYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, "super-secret", cfg.Auth.Secret)
	require.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	require.Equal(t, "issuerX", cfg.Auth.Issuer)
	require.ElementsMatch(t, []string{"web", "mobile"}, cfg.Auth.Audience)

	require.True(t, cfg.Latency.Disabled)
	require.Equal(t, 10*time.Millisecond, cfg.Latency.Min)
	require.Equal(t, 20*time.Millisecond, cfg.Latency.Max)

	require.Equal(t, RegistryRedis, cfg.Registry.Backend)
	require.Equal(t, "redis://localhost:6379/0", cfg.Registry.RedisURL)
	require.Equal(t, "x:", cfg.Registry.Prefix)
	require.Equal(t, time.Minute, cfg.Registry.JanitorPeriod)

	require.Equal(t, "/home", cfg.Form.Destination)
	require.Equal(t, 3*time.Second, cfg.Form.SubmitTimeout)
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfgPath := writeFile(t, t.TempDir(), "min.yaml", minimalYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "local", cfg.Env)
	require.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	require.Equal(t, "auth-flow", cfg.Auth.Issuer)
	require.Equal(t, []string{"web"}, cfg.Auth.Audience)
	require.False(t, cfg.Latency.Disabled)
	require.Equal(t, time.Second, cfg.Latency.Min)
	require.Equal(t, 1500*time.Millisecond, cfg.Latency.Max)
	require.Equal(t, RegistryMemory, cfg.Registry.Backend)
	require.Equal(t, 30*time.Minute, cfg.Registry.JanitorPeriod)
	require.Equal(t, "/dashboard", cfg.Form.Destination)
	require.Equal(t, 5*time.Second, cfg.Form.SubmitTimeout)
}

func TestLoad_WithExplicitPath_FileDoesNotExist(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "stat failed")
}

func TestLoad_WithExplicitPath_BrokenYAML(t *testing.T) {
	t.Parallel()

	cfgPath := writeFile(t, t.TempDir(), "broken.yaml", brokenYAML)

	_, err := Load(cfgPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_InvalidCombinations(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"redis without url": `
auth:
  secret: "s"
registry:
  backend: "redis"
`,
		"unknown backend": `
auth:
  secret: "s"
registry:
  backend: "etcd"
`,
		"latency max below min": `
auth:
  secret: "s"
latency:
  min: "2s"
  max: "1s"
`,
		"non-positive ttl": `
auth:
  secret: "s"
  token_ttl: "-1s"
`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfgPath := writeFile(t, t.TempDir(), "c.yaml", body)
			_, err := Load(cfgPath)
			require.Error(t, err)
		})
	}
}

func TestLoad_WithCONFIG_PATH_OK(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "from_env_path.yaml", minimalYAML)

	t.Setenv("CONFIG_PATH", cfgPath)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "min-secret", cfg.Auth.Secret)
}

func TestLoad_EnvOverlaysYAML(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "c.yaml", sampleYAML)

	t.Setenv("AUTH_SECRET", "from-env")
	t.Setenv("FORM_DESTINATION", "/welcome")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.Auth.Secret)
	require.Equal(t, "/welcome", cfg.Form.Destination)
}

func TestLoad_WithLocalYAML_OK(t *testing.T) {
	chdir(t, t.TempDir())
	writeFile(t, ".", "local.yaml", sampleYAML)

	unsetEnv(t, "CONFIG_PATH")
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, "super-secret", cfg.Auth.Secret)
}

func TestLoad_EnvOnly_OK(t *testing.T) {
	chdir(t, t.TempDir())
	unsetEnv(t, "CONFIG_PATH")
	t.Setenv("AUTH_SECRET", "env-secret")
	t.Setenv("TOKEN_TTL", "2h")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "env-secret", cfg.Auth.Secret)
	require.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
}

func TestLoad_EnvOnly_NoSecret_ReturnsDescriptiveError(t *testing.T) {
	chdir(t, t.TempDir())
	unsetEnv(t, "CONFIG_PATH")
	unsetEnv(t, "AUTH_SECRET")

	_, err := Load("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "config not found: provide --config, CONFIG_PATH, local.yaml or env vars")
}

func TestMustLoad_OK(t *testing.T) {
	t.Parallel()

	cfgPath := writeFile(t, t.TempDir(), "ok.yaml", minimalYAML)

	cfg := MustLoad(cfgPath)
	require.NotNil(t, cfg)
	require.Equal(t, "min-secret", cfg.Auth.Secret)
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		_ = MustLoad(filepath.Join(t.TempDir(), "nope.yaml"))
	})
}
