package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helper function tests
// ---------------------------------------------------------------------------

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string // nil = don't set; pointer to distinguish "" from unset
		fallback string
		want     string
	}{
		{name: "returns fallback when unset", key: "BOARDLIVE_TEST_GETENV_UNSET", setVal: nil, fallback: "default", want: "default"},
		{name: "returns env value when set", key: "BOARDLIVE_TEST_GETENV_SET", setVal: strPtr("custom"), fallback: "default", want: "custom"},
		{name: "returns fallback when empty string", key: "BOARDLIVE_TEST_GETENV_EMPTY", setVal: strPtr(""), fallback: "default", want: "default"},
		{name: "preserves whitespace", key: "BOARDLIVE_TEST_GETENV_WS", setVal: strPtr("  spaced  "), fallback: "x", want: "  spaced  "},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got := getEnv(tc.key, tc.fallback)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback int
		want     int
		wantErr  bool
	}{
		{name: "returns fallback when unset", key: "BOARDLIVE_TEST_INT_UNSET", setVal: nil, fallback: 42, want: 42},
		{name: "parses valid int", key: "BOARDLIVE_TEST_INT_VALID", setVal: strPtr("8080"), fallback: 0, want: 8080},
		{name: "parses negative int", key: "BOARDLIVE_TEST_INT_NEG", setVal: strPtr("-1"), fallback: 0, want: -1},
		{name: "parses zero", key: "BOARDLIVE_TEST_INT_ZERO", setVal: strPtr("0"), fallback: 99, want: 0},
		{name: "returns fallback for empty string", key: "BOARDLIVE_TEST_INT_EMPTY", setVal: strPtr(""), fallback: 25, want: 25},
		{name: "errors on non-numeric", key: "BOARDLIVE_TEST_INT_NAN", setVal: strPtr("abc"), fallback: 0, wantErr: true},
		{name: "errors on float", key: "BOARDLIVE_TEST_INT_FLOAT", setVal: strPtr("3.14"), fallback: 0, wantErr: true},
		{name: "errors on hex", key: "BOARDLIVE_TEST_INT_HEX", setVal: strPtr("0xFF"), fallback: 0, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got, err := getEnvInt(tc.key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback bool
		want     bool
		wantErr  bool
	}{
		{name: "returns fallback when unset", key: "BOARDLIVE_TEST_BOOL_UNSET", setVal: nil, fallback: false, want: false},
		{name: "fallback true when unset", key: "BOARDLIVE_TEST_BOOL_UNSETTRUE", setVal: nil, fallback: true, want: true},
		{name: "parses true", key: "BOARDLIVE_TEST_BOOL_TRUE", setVal: strPtr("true"), fallback: false, want: true},
		{name: "parses false", key: "BOARDLIVE_TEST_BOOL_FALSE", setVal: strPtr("false"), fallback: true, want: false},
		{name: "parses 1", key: "BOARDLIVE_TEST_BOOL_ONE", setVal: strPtr("1"), fallback: false, want: true},
		{name: "parses 0", key: "BOARDLIVE_TEST_BOOL_ZERO", setVal: strPtr("0"), fallback: true, want: false},
		{name: "parses TRUE uppercase", key: "BOARDLIVE_TEST_BOOL_UPPER", setVal: strPtr("TRUE"), fallback: false, want: true},
		{name: "parses t", key: "BOARDLIVE_TEST_BOOL_T", setVal: strPtr("t"), fallback: false, want: true},
		{name: "errors on invalid", key: "BOARDLIVE_TEST_BOOL_INV", setVal: strPtr("yes"), fallback: false, wantErr: true},
		{name: "errors on numeric non-bool", key: "BOARDLIVE_TEST_BOOL_NUM", setVal: strPtr("2"), fallback: false, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got, err := getEnvBool(tc.key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback time.Duration
		want     time.Duration
		wantErr  bool
	}{
		{name: "returns fallback when unset", key: "BOARDLIVE_TEST_DUR_UNSET", setVal: nil, fallback: 5 * time.Second, want: 5 * time.Second},
		{name: "parses seconds", key: "BOARDLIVE_TEST_DUR_SEC", setVal: strPtr("30s"), fallback: 0, want: 30 * time.Second},
		{name: "parses minutes", key: "BOARDLIVE_TEST_DUR_MIN", setVal: strPtr("15m"), fallback: 0, want: 15 * time.Minute},
		{name: "parses hours", key: "BOARDLIVE_TEST_DUR_HR", setVal: strPtr("2h"), fallback: 0, want: 2 * time.Hour},
		{name: "parses composite", key: "BOARDLIVE_TEST_DUR_COMP", setVal: strPtr("1h30m"), fallback: 0, want: 90 * time.Minute},
		{name: "parses nanosecond", key: "BOARDLIVE_TEST_DUR_NS", setVal: strPtr("1ns"), fallback: 0, want: time.Nanosecond},
		{name: "parses zero", key: "BOARDLIVE_TEST_DUR_ZERO", setVal: strPtr("0s"), fallback: 5 * time.Second, want: 0},
		{name: "errors on invalid", key: "BOARDLIVE_TEST_DUR_INV", setVal: strPtr("notaduration"), fallback: 0, wantErr: true},
		{name: "errors on bare number", key: "BOARDLIVE_TEST_DUR_BARE", setVal: strPtr("30"), fallback: 0, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got, err := getEnvDuration(tc.key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// ---------------------------------------------------------------------------
// Load() error cases
// ---------------------------------------------------------------------------

const testSecret = "test-secret-that-is-at-least-32ch"

func TestLoad_MissingJWTSecret(t *testing.T) {
	// All defaults apply; JWT secret is empty => must fail.
	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "BOARDLIVE_JWT_SECRET")
}

func TestLoad_InvalidEnvVars(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		errMsg string
	}{
		// DB_PORT parse errors
		{name: "DB_PORT not a number", envKey: "BOARDLIVE_DB_PORT", envVal: "abc", errMsg: "BOARDLIVE_DB_PORT"},
		{name: "DB_PORT float", envKey: "BOARDLIVE_DB_PORT", envVal: "3.14", errMsg: "BOARDLIVE_DB_PORT"},

		// DB_PORT validation errors (parses fine, fails bounds)
		{name: "DB_PORT zero", envKey: "BOARDLIVE_DB_PORT", envVal: "0", errMsg: "BOARDLIVE_DB_PORT"},
		{name: "DB_PORT too high", envKey: "BOARDLIVE_DB_PORT", envVal: "65536", errMsg: "BOARDLIVE_DB_PORT"},

		// DB_MAX_CONNS
		{name: "DB_MAX_CONNS zero", envKey: "BOARDLIVE_DB_MAX_CONNS", envVal: "0", errMsg: "BOARDLIVE_DB_MAX_CONNS"},
		{name: "DB_MAX_CONNS not a number", envKey: "BOARDLIVE_DB_MAX_CONNS", envVal: "many", errMsg: "BOARDLIVE_DB_MAX_CONNS"},

		// Realtime
		{name: "HUB_QUEUE_SIZE zero", envKey: "BOARDLIVE_HUB_QUEUE_SIZE", envVal: "0", errMsg: "BOARDLIVE_HUB_QUEUE_SIZE"},
		{name: "HUB_QUEUE_SIZE not a number", envKey: "BOARDLIVE_HUB_QUEUE_SIZE", envVal: "lots", errMsg: "BOARDLIVE_HUB_QUEUE_SIZE"},
		{name: "BRIDGE_MAX_BACKOFF invalid", envKey: "BOARDLIVE_BRIDGE_MAX_BACKOFF", envVal: "soon", errMsg: "BOARDLIVE_BRIDGE_MAX_BACKOFF"},
		{name: "BRIDGE_MAX_BACKOFF zero", envKey: "BOARDLIVE_BRIDGE_MAX_BACKOFF", envVal: "0s", errMsg: "BOARDLIVE_BRIDGE_MAX_BACKOFF"},
		{name: "BRIDGE_HEALTH_INTERVAL invalid", envKey: "BOARDLIVE_BRIDGE_HEALTH_INTERVAL", envVal: "often", errMsg: "BOARDLIVE_BRIDGE_HEALTH_INTERVAL"},
		{name: "BRIDGE_HEALTH_INTERVAL negative", envKey: "BOARDLIVE_BRIDGE_HEALTH_INTERVAL", envVal: "-1s", errMsg: "BOARDLIVE_BRIDGE_HEALTH_INTERVAL"},
		{name: "WS_MAX_WATCHERS zero", envKey: "BOARDLIVE_WS_MAX_WATCHERS", envVal: "0", errMsg: "BOARDLIVE_WS_MAX_WATCHERS"},
		{name: "WS_MAX_WATCHERS not a number", envKey: "BOARDLIVE_WS_MAX_WATCHERS", envVal: "all", errMsg: "BOARDLIVE_WS_MAX_WATCHERS"},

		// Redis
		{name: "REDIS_URL wrong scheme", envKey: "BOARDLIVE_REDIS_URL", envVal: "http://localhost:6379", errMsg: "BOARDLIVE_REDIS_URL"},
		{name: "REDIS_URL bare host", envKey: "BOARDLIVE_REDIS_URL", envVal: "localhost:6379", errMsg: "BOARDLIVE_REDIS_URL"},

		// JWT
		{name: "JWT_ACCESS_TTL invalid", envKey: "BOARDLIVE_JWT_ACCESS_TTL", envVal: "badval", errMsg: "BOARDLIVE_JWT_ACCESS_TTL"},
		{name: "JWT_ACCESS_TTL negative", envKey: "BOARDLIVE_JWT_ACCESS_TTL", envVal: "-5m", errMsg: "BOARDLIVE_JWT_ACCESS_TTL"},

		// Server timeouts
		{name: "SERVER_READ_TIMEOUT invalid", envKey: "BOARDLIVE_SERVER_READ_TIMEOUT", envVal: "notduration", errMsg: "BOARDLIVE_SERVER_READ_TIMEOUT"},
		{name: "SERVER_WRITE_TIMEOUT zero", envKey: "BOARDLIVE_SERVER_WRITE_TIMEOUT", envVal: "0s", errMsg: "BOARDLIVE_SERVER_WRITE_TIMEOUT"},

		// Self-hosted
		{name: "SELF_HOSTED not a bool", envKey: "BOARDLIVE_SELF_HOSTED", envVal: "yes", errMsg: "BOARDLIVE_SELF_HOSTED"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Always set JWT secret so failures are from the var under test.
			t.Setenv("BOARDLIVE_JWT_SECRET", testSecret)
			t.Setenv(tc.envKey, tc.envVal)

			cfg, err := Load()
			require.Error(t, err, "expected error for %s=%q", tc.envKey, tc.envVal)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestLoad_ShortJWTSecret(t *testing.T) {
	t.Setenv("BOARDLIVE_JWT_SECRET", "too-short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 characters")
}

// ---------------------------------------------------------------------------
// Load() happy paths
// ---------------------------------------------------------------------------

func TestLoad_Defaults(t *testing.T) {
	// Only the required JWT secret is set; everything else uses defaults.
	t.Setenv("BOARDLIVE_JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Database defaults.
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "boardlive", cfg.Database.User)
	assert.Empty(t, cfg.Database.Password)
	assert.Equal(t, "boardlive_dev", cfg.Database.DBName)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 25, cfg.Database.MaxConns)

	// Broker and fan-out defaults.
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, 64, cfg.Realtime.QueueSize)
	assert.Equal(t, 30*time.Second, cfg.Realtime.MaxBackoff)
	assert.Equal(t, 5*time.Second, cfg.Realtime.HealthInterval)
	assert.Equal(t, 256, cfg.Realtime.MaxWatchers)

	// JWT defaults.
	assert.Equal(t, testSecret, cfg.JWT.Secret)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)

	// Server defaults.
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORSOrigins)

	assert.False(t, cfg.SelfHosted)
}

func TestLoad_AllCustomValues(t *testing.T) {
	envs := map[string]string{
		"BOARDLIVE_JWT_SECRET":             "production-secret-with-enough-length!",
		"BOARDLIVE_JWT_ACCESS_TTL":         "1h",
		"BOARDLIVE_DB_HOST":                "db.internal",
		"BOARDLIVE_DB_PORT":                "6543",
		"BOARDLIVE_DB_USER":                "kanban",
		"BOARDLIVE_DB_PASSWORD":            "hunter2",
		"BOARDLIVE_DB_NAME":                "boards",
		"BOARDLIVE_DB_SSLMODE":             "require",
		"BOARDLIVE_DB_MAX_CONNS":           "50",
		"BOARDLIVE_REDIS_URL":              "rediss://:pw@cache.internal:6380/2",
		"BOARDLIVE_HUB_QUEUE_SIZE":         "256",
		"BOARDLIVE_BRIDGE_MAX_BACKOFF":     "5s",
		"BOARDLIVE_BRIDGE_HEALTH_INTERVAL": "2s",
		"BOARDLIVE_WS_MAX_WATCHERS":        "32",
		"BOARDLIVE_SERVER_ADDR":            "0.0.0.0:9000",
		"BOARDLIVE_SERVER_READ_TIMEOUT":    "5s",
		"BOARDLIVE_SERVER_WRITE_TIMEOUT":   "1m",
		"BOARDLIVE_CORS_ORIGINS":           "https://a.example.com, https://b.example.com,",
		"BOARDLIVE_SELF_HOSTED":            "true",
	}
	for k, v := range envs {
		t.Setenv(k, v)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DatabaseConfig{
		Host: "db.internal", Port: 6543, User: "kanban", Password: "hunter2",
		DBName: "boards", SSLMode: "require", MaxConns: 50,
	}, cfg.Database)
	assert.Equal(t, "rediss://:pw@cache.internal:6380/2", cfg.Redis.URL)
	assert.Equal(t, RealtimeConfig{
		QueueSize: 256, MaxBackoff: 5 * time.Second, HealthInterval: 2 * time.Second, MaxWatchers: 32,
	}, cfg.Realtime)
	assert.Equal(t, time.Hour, cfg.JWT.AccessTTL)
	assert.Equal(t, ServerConfig{
		Addr:         "0.0.0.0:9000",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: time.Minute,
		CORSOrigins:  []string{"https://a.example.com", "https://b.example.com"},
	}, cfg.Server)
	assert.True(t, cfg.SelfHosted)
}

// ---------------------------------------------------------------------------
// DSN() output format
// ---------------------------------------------------------------------------

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "default dev values",
			cfg: DatabaseConfig{
				Host: "localhost", Port: 5432, User: "boardlive",
				Password: "", DBName: "boardlive_dev", SSLMode: "disable",
			},
			want: "host=localhost port=5432 user=boardlive password= dbname=boardlive_dev sslmode=disable",
		},
		{
			name: "special characters in password",
			cfg: DatabaseConfig{
				Host: "h", Port: 1, User: "u",
				Password: "p=a&b c", DBName: "d", SSLMode: "s",
			},
			want: "host=h port=1 user=u password=p=a&b c dbname=d sslmode=s",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.cfg.DSN())
		})
	}
}

// ---------------------------------------------------------------------------
// validate() direct tests
// ---------------------------------------------------------------------------

func TestValidate(t *testing.T) {
	t.Parallel()

	// validBase returns a Config that passes validation.
	validBase := func() *Config {
		return &Config{
			Database: DatabaseConfig{Port: 5432, MaxConns: 25},
			Redis:    RedisConfig{URL: "redis://localhost:6379/0"},
			Realtime: RealtimeConfig{QueueSize: 64, MaxBackoff: 30 * time.Second, HealthInterval: 5 * time.Second, MaxWatchers: 256},
			JWT:      JWTConfig{Secret: testSecret, AccessTTL: 15 * time.Minute},
			Server: ServerConfig{
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 30 * time.Second,
			},
			SelfHosted: true,
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{name: "valid config passes", mutate: func(*Config) {}},
		{name: "secret exactly 32 chars", mutate: func(c *Config) { c.JWT.Secret = strings.Repeat("x", 32) }},
		{name: "queue size 1", mutate: func(c *Config) { c.Realtime.QueueSize = 1 }},
		{name: "empty JWT secret", mutate: func(c *Config) { c.JWT.Secret = "" }, errMsg: "BOARDLIVE_JWT_SECRET"},
		{name: "secret 31 chars", mutate: func(c *Config) { c.JWT.Secret = strings.Repeat("x", 31) }, errMsg: "at least 32"},
		{name: "negative queue size", mutate: func(c *Config) { c.Realtime.QueueSize = -1 }, errMsg: "BOARDLIVE_HUB_QUEUE_SIZE"},
		{name: "negative backoff", mutate: func(c *Config) { c.Realtime.MaxBackoff = -time.Second }, errMsg: "BOARDLIVE_BRIDGE_MAX_BACKOFF"},
		{name: "zero health interval", mutate: func(c *Config) { c.Realtime.HealthInterval = 0 }, errMsg: "BOARDLIVE_BRIDGE_HEALTH_INTERVAL"},
		{name: "zero watcher cap", mutate: func(c *Config) { c.Realtime.MaxWatchers = 0 }, errMsg: "BOARDLIVE_WS_MAX_WATCHERS"},
		{name: "empty redis url", mutate: func(c *Config) { c.Redis.URL = "" }, errMsg: "BOARDLIVE_REDIS_URL"},
		{name: "port above range", mutate: func(c *Config) { c.Database.Port = 70000 }, errMsg: "BOARDLIVE_DB_PORT"},
		{name: "zero read timeout", mutate: func(c *Config) { c.Server.ReadTimeout = 0 }, errMsg: "BOARDLIVE_SERVER_READ_TIMEOUT"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := validBase()
			tc.mutate(c)
			err := c.validate()
			if tc.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.errMsg)
		})
	}
}

// ---------------------------------------------------------------------------
// Test helper
// ---------------------------------------------------------------------------

func strPtr(s string) *string {
	return &s
}
