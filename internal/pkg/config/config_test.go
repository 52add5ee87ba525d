package config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("agrobot-test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Storage.Driver != StoragePostgres {
		t.Errorf("expected postgres driver, got %q", cfg.Storage.Driver)
	}
	if cfg.Telemetry.ServiceName != "agrobot-test" {
		t.Errorf("expected service name from argument, got %q", cfg.Telemetry.ServiceName)
	}
	if !cfg.Detection.DemoFallback {
		t.Error("expected demo fallback on by default")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("AGROBOT_STORAGE_DRIVER", "memory")
	t.Setenv("AGROBOT_SERVER_PORT", "9090")

	cfg, err := Load("agrobot-test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Driver != StorageMemory || cfg.Server.Port != 9090 {
		t.Errorf("env not applied: %+v %+v", cfg.Storage, cfg.Server)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{
		Server:    ServerConfig{Port: 0, ReadTimeout: 1, WriteTimeout: 1},
		Storage:   StorageConfig{Driver: "mongo"},
		Detection: DetectionConfig{URL: "", Timeout: 0},
		Session:   SessionConfig{OpTimeout: 1},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "storage.driver", "detection.url", "detection.timeout"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}

func TestValidate_SQLiteNeedsNoDatabase(t *testing.T) {
	cfg := &Config{
		Server:    ServerConfig{Port: 8080, ReadTimeout: 1, WriteTimeout: 1},
		Storage:   StorageConfig{Driver: StorageSQLite, SQLitePath: "x.db"},
		Detection: DetectionConfig{URL: "http://d", Timeout: 5},
		Session:   SessionConfig{OpTimeout: 5},
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
