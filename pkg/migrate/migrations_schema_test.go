package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/youscore/youscore-backend/pkg/migrate"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestUsersMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_users.sql")

	checks := []string{
		"CREATE TYPE user_role AS ENUM ('user', 'admin')",
		"CREATE TYPE subscription_plan AS ENUM ('none', 'weekly', 'monthly')",
		"CREATE TYPE subscription_status AS ENUM ('inactive', 'pending', 'active', 'expired')",
		"CREATE TABLE IF NOT EXISTS users",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (lower(email))",
		"DROP TABLE IF EXISTS users",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestDevicesMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_user_devices.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS user_devices",
		"FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_user_devices_user_device ON user_devices (user_id, device_id)",
		"DROP TABLE IF EXISTS user_devices",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPredictionsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_predictions.sql")

	checks := []string{
		"CREATE TYPE prediction_result AS ENUM ('Pending', 'Won', 'Loss', 'Return')",
		"CREATE TABLE IF NOT EXISTS predictions",
		"odds NUMERIC(8,4) NOT NULL",
		"CHECK (odds > 0)",
		"CREATE INDEX IF NOT EXISTS idx_predictions_match_date ON predictions (match_date)",
		"DROP TABLE IF EXISTS predictions",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestSettingsMigrationSeedsSingleton(t *testing.T) {
	content := readMigration(t, "*_create_app_settings.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS app_settings",
		"INSERT INTO app_settings (id)",
		"ON CONFLICT (id) DO NOTHING",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateMigrationsDir(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir failed validation: %v", err)
	}
}
