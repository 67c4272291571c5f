package database_test

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/corretora/pkg/database"
)

func TestConfig_Finalize_Defaults(t *testing.T) {
	cfg := &database.Config{Name: "corretora", User: "corretora"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if cfg.Host != "localhost" || cfg.Port != 5432 || cfg.SSLMode != "disable" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.ConnMaxLifetimeDuration() != 15*time.Minute {
		t.Errorf("ConnMaxLifetimeDuration() = %v", cfg.ConnMaxLifetimeDuration())
	}
	if cfg.ConnTimeoutDuration() != 5*time.Second {
		t.Errorf("ConnTimeoutDuration() = %v", cfg.ConnTimeoutDuration())
	}
}

func TestConfig_Finalize_Env(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "db.interno")
	t.Setenv("TEST_DB_PORT", "6543")
	t.Setenv("TEST_DB_AUTO_MIGRATE", "true")

	cfg := &database.Config{Name: "corretora", User: "corretora"}
	env := &database.Env{Host: "TEST_DB_HOST", Port: "TEST_DB_PORT", AutoMigrate: "TEST_DB_AUTO_MIGRATE"}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if cfg.Host != "db.interno" || cfg.Port != 6543 || !cfg.AutoMigrate {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  database.Config
	}{
		{"missing name", database.Config{User: "u"}},
		{"missing user", database.Config{Name: "n"}},
		{"bad lifetime", database.Config{Name: "n", User: "u", ConnMaxLifetime: "forever"}},
		{"bad timeout", database.Config{Name: "n", User: "u", ConnTimeout: "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			if err := cfg.Finalize(nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestConfig_ConnectionStrings(t *testing.T) {
	cfg := &database.Config{
		Host:     "localhost",
		Port:     5432,
		Name:     "corretora",
		User:     "app",
		Password: "p@ss word",
		SSLMode:  "require",
	}

	if dsn := cfg.Dsn(); !strings.Contains(dsn, "dbname=corretora") || !strings.Contains(dsn, "sslmode=require") {
		t.Errorf("Dsn() = %q", dsn)
	}

	u, err := url.Parse(cfg.URL())
	if err != nil {
		t.Fatalf("URL() not parseable: %v", err)
	}
	if pw, _ := u.User.Password(); pw != "p@ss word" {
		t.Errorf("password = %q", pw)
	}
	if u.Host != "localhost:5432" || u.Path != "/corretora" || u.Query().Get("sslmode") != "require" {
		t.Errorf("URL() = %q", cfg.URL())
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := &database.Config{Host: "localhost", Port: 5432, Name: "corretora"}
	cfg.Merge(&database.Config{Host: "prod-db", AutoMigrate: true})

	if cfg.Host != "prod-db" || cfg.Port != 5432 || cfg.Name != "corretora" || !cfg.AutoMigrate {
		t.Errorf("cfg = %+v", cfg)
	}
}
