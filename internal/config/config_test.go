// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"testing"
)

const testSecret = "test-secret-key-32-bytes-long!!!"

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	setEnv(t, "CHARITY_SESSION_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.StorageDriver != "file" {
		t.Errorf("StorageDriver = %q, want %q", cfg.StorageDriver, "file")
	}
	if cfg.StorageKey != "jati_foundation_db" {
		t.Errorf("StorageKey = %q, want %q", cfg.StorageKey, "jati_foundation_db")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.AdminUser != "admin" || cfg.AdminPassword != DefaultAdminPassword {
		t.Errorf("admin credentials = %q/%q, want admin/%s", cfg.AdminUser, cfg.AdminPassword, DefaultAdminPassword)
	}
	if cfg.AIEnabled() {
		t.Error("AIEnabled() = true, want false by default")
	}
	if !cfg.BackupsEnabled() {
		t.Error("BackupsEnabled() = false, want true by default")
	}
	if cfg.BackupKeep != 7 {
		t.Errorf("BackupKeep = %d, want 7", cfg.BackupKeep)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	setEnv(t, "CHARITY_SESSION_SECRET", testSecret)
	setEnv(t, "CHARITY_ENV", "production")
	setEnv(t, "CHARITY_SERVER_HOST", "0.0.0.0")
	setEnv(t, "CHARITY_SERVER_PORT", "3000")
	setEnv(t, "CHARITY_STORAGE_DRIVER", "postgres")
	setEnv(t, "CHARITY_STORAGE_DSN", "postgres://localhost/charity")
	setEnv(t, "CHARITY_ADMIN_PASSWORD", "a-much-better-password")
	setEnv(t, "CHARITY_AI_PROVIDER", "gemini")
	setEnv(t, "CHARITY_AI_API_KEY", "key")
	setEnv(t, "CHARITY_BACKUP_SCHEDULE", "off")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.ServerAddr() != "0.0.0.0:3000" {
		t.Errorf("ServerAddr() = %q", cfg.ServerAddr())
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true for production")
	}
	if !cfg.AIEnabled() {
		t.Error("AIEnabled() = false, want true")
	}
	if cfg.BackupsEnabled() {
		t.Error("BackupsEnabled() = true with schedule off")
	}
	sc := cfg.Storage(nil)
	if sc.Driver != "postgres" || sc.DSN != "postgres://localhost/charity" {
		t.Errorf("Storage() = %+v", sc)
	}
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing session secret",
			env:  map[string]string{},
		},
		{
			name: "short session secret",
			env:  map[string]string{"CHARITY_SESSION_SECRET": "1234567890123456789012345678901"},
		},
		{
			name: "known weak secret",
			env:  map[string]string{"CHARITY_SESSION_SECRET": "change-me-to-32-byte-secret-key!"},
		},
		{
			name: "unknown storage driver",
			env:  map[string]string{"CHARITY_SESSION_SECRET": testSecret, "CHARITY_STORAGE_DRIVER": "etcd"},
		},
		{
			name: "mysql without dsn",
			env:  map[string]string{"CHARITY_SESSION_SECRET": testSecret, "CHARITY_STORAGE_DRIVER": "mysql"},
		},
		{
			name: "redis without url",
			env:  map[string]string{"CHARITY_SESSION_SECRET": testSecret, "CHARITY_STORAGE_DRIVER": "redis"},
		},
		{
			name: "s3 without bucket",
			env:  map[string]string{"CHARITY_SESSION_SECRET": testSecret, "CHARITY_STORAGE_DRIVER": "s3"},
		},
		{
			name: "unknown ai provider",
			env:  map[string]string{"CHARITY_SESSION_SECRET": testSecret, "CHARITY_AI_PROVIDER": "llama"},
		},
		{
			name: "ai provider without key",
			env:  map[string]string{"CHARITY_SESSION_SECRET": testSecret, "CHARITY_AI_PROVIDER": "openai"},
		},
		{
			name: "default admin password in production",
			env:  map[string]string{"CHARITY_SESSION_SECRET": testSecret, "CHARITY_ENV": "production"},
		},
		{
			name: "zero backups kept",
			env:  map[string]string{"CHARITY_SESSION_SECRET": testSecret, "CHARITY_BACKUP_KEEP": "0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.env {
				setEnv(t, k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("Load() expected error")
			}
		})
	}
}

func TestLoad_ProductionWithPasswordHash(t *testing.T) {
	os.Clearenv()
	setEnv(t, "CHARITY_SESSION_SECRET", testSecret)
	setEnv(t, "CHARITY_ENV", "production")
	setEnv(t, "CHARITY_ADMIN_PASSWORD_HASH", "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA")

	if _, err := Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	tests := []struct {
		secret string
		want   bool
	}{
		{"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", false},
		{"abcdefABCDEF", false},
		{"abcABC123", true},
		{"abc-123-xyz", true},
	}
	for _, tt := range tests {
		if got := hasMinimumEntropy(tt.secret); got != tt.want {
			t.Errorf("hasMinimumEntropy(%q) = %v, want %v", tt.secret, got, tt.want)
		}
	}
}

func TestLoadStorage_IgnoresServerSettings(t *testing.T) {
	os.Clearenv()
	setEnv(t, "CHARITY_ENV", "production")
	setEnv(t, "CHARITY_STORAGE_DRIVER", "sqlite")

	cfg, err := LoadStorage()
	if err != nil {
		t.Fatalf("LoadStorage() error: %v", err)
	}
	if cfg.StorageDriver != "sqlite" {
		t.Errorf("StorageDriver = %q", cfg.StorageDriver)
	}

	setEnv(t, "CHARITY_STORAGE_DRIVER", "postgres")
	if _, err := LoadStorage(); err == nil {
		t.Fatal("LoadStorage() expected error for postgres without dsn")
	}
}
