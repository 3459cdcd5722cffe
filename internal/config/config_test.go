package config

import (
	"github.com/stretchr/testify/assert"
	"testing"
	"time"
)

func Test_Config_EnvironmentOverrideWorksCorrect(t *testing.T) {
	t.Setenv("CONFIG_PATH", "../../configs/config.yaml")

	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_CONNECTION_STRING", "postgres://portal@localhost/portal")
	t.Setenv("AUTH_JWT_SECRET", "overrideSecret")
	t.Setenv("AUTH_ADMIN_EMAILS", "board@club.org,chair@club.org")
	t.Setenv("MAINTENANCE_EXEMPT_PREFIXES", "/api/admin, /status")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg := Get()

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, ":9090", cfg.HTTP.Addr())
	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "postgres://portal@localhost/portal", cfg.DB.ConnectionString)
	assert.Equal(t, "overrideSecret", cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"board@club.org", "chair@club.org"}, cfg.Auth.AdminEmails)
	assert.Equal(t, []string{"/api/admin", "/status"}, cfg.Maintenance.Prefixes())
	assert.Equal(t, "localhost:6379", cfg.RateLimit.RedisAddr)
	assert.Equal(t, LevelDebug, cfg.Logger.LogLevel)
}

func Test_Config_FileValuesAreLoaded(t *testing.T) {
	cfg, err := loadConfig("../../configs/config.yaml")

	assert.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, 60*time.Second, cfg.HTTP.RequestTimeout)
	assert.Equal(t, 5*time.Second, cfg.Maintenance.CacheTTL)
	assert.Equal(t, "/maintenance", cfg.Maintenance.RedirectPath)
	assert.Contains(t, cfg.Maintenance.Prefixes(), "/health")
	assert.Equal(t, 5, cfg.RateLimit.ApplicationsPerMinute)
}

func Test_Config_WhenDriverUnknown_ShouldFailValidation(t *testing.T) {
	cfg := DBConfig{Driver: "oracle", ConnectionString: "x"}
	assert.Error(t, cfg.validate())
}

func Test_MaintenanceConfig_Prefixes_SkipsBlanks(t *testing.T) {
	cfg := MaintenanceConfig{ExemptPrefixes: " /a, ,/b ,"}
	assert.Equal(t, []string{"/a", "/b"}, cfg.Prefixes())
	assert.Empty(t, MaintenanceConfig{}.Prefixes())
}

func Test_HTTPConfig_WhenTrustedProxyInvalid_ShouldFailValidation(t *testing.T) {
	cfg := HTTPConfig{Port: 8080, RequestTimeout: time.Second, TrustedProxies: []string{"10.0.0.0/8", "127.0.0.1"}}
	assert.NoError(t, cfg.validate())

	cfg.TrustedProxies = append(cfg.TrustedProxies, "proxy.local")
	assert.Error(t, cfg.validate())
}
