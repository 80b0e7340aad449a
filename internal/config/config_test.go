package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("does-not-exist.yaml")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != "5000" {
		t.Errorf("port = %q, want 5000", cfg.Server.Port)
	}
	if cfg.Store.Driver != DriverSQLite || cfg.Store.Collection != "students" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Path != "/metrics" {
		t.Errorf("metrics = %+v", cfg.Metrics)
	}
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, `
server:
  port: "9000"
store:
  driver: redis
redis:
  addr: "cache:6379"
  db: 2
logging:
  level: debug
`)
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != "9100" {
		t.Errorf("env should override file: port = %q", cfg.Server.Port)
	}
	if cfg.Store.Driver != DriverRedis || cfg.Redis.Addr != "cache:6379" || cfg.Redis.DB != 3 {
		t.Errorf("unexpected redis config %+v / %+v", cfg.Store, cfg.Redis)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q", cfg.Logging.Level)
	}
	if cfg.Metrics.Enabled {
		t.Error("METRICS_ENABLED=false was ignored")
	}
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("STORE_COLLECTION=pupils\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("STORE_COLLECTION") })

	cfg, err := LoadConfig("missing.yaml")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Store.Collection != "pupils" {
		t.Errorf("collection = %q, want pupils", cfg.Store.Collection)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())

	cases := map[string]struct {
		env  map[string]string
		want string
	}{
		"unknown driver": {map[string]string{"STORE_DRIVER": "mongo"}, "unsupported store driver"},
		"bad timeout":    {map[string]string{"SERVER_READ_TIMEOUT": "soon"}, "read timeout"},
		"bad int":        {map[string]string{"REDIS_DB": "two"}, "REDIS_DB"},
		"metrics path":   {map[string]string{"METRICS_PATH": "metrics"}, "metrics path"},
		"no collection":  {map[string]string{"STORE_COLLECTION": ""}, "collection"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig("missing.yaml")
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	c := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: "5432", DBName: "d"}
	if got := c.ConnectionString(); got != "postgres://u:p@h:5432/d?sslmode=disable" {
		t.Errorf("ConnectionString = %q", got)
	}

	c.URL = "postgres://elsewhere/db"
	if got := c.ConnectionString(); got != c.URL {
		t.Errorf("URL should win, got %q", got)
	}
}
