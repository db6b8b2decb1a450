package auth

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/drerries/wantedboard/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.APIKey{}, &models.WhitelistedUser{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return conn
}

func TestGenerateAndValidateAPIKey(t *testing.T) {
	db := openTestDB(t)

	plaintext, key, err := GenerateAPIKey("admin-1", "drerries-bot", 30*24*time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.HasPrefix(plaintext, APIKeyPrefix) {
		t.Errorf("plaintext %q missing %q prefix", plaintext, APIKeyPrefix)
	}
	if key.KeyHash == plaintext {
		t.Error("stored hash must not equal the plaintext")
	}
	if err := db.Create(key).Error; err != nil {
		t.Fatalf("store key: %v", err)
	}

	claims, err := ValidateAPIKey(db, plaintext)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Role != RoleBot || claims.Username != "drerries-bot" {
		t.Errorf("claims = %+v, want bot role with key name", claims)
	}
}

func TestValidateAPIKeyUnknown(t *testing.T) {
	db := openTestDB(t)
	_, err := ValidateAPIKey(db, "dw_deadbeef")
	if !errors.Is(err, ErrAPIKeyNotFound) {
		t.Fatalf("err = %v, want ErrAPIKeyNotFound", err)
	}
}

func TestValidateAPIKeyExpired(t *testing.T) {
	db := openTestDB(t)

	plaintext, key, err := GenerateAPIKey("admin-1", "old-bot", -time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := db.Create(key).Error; err != nil {
		t.Fatalf("store key: %v", err)
	}

	_, err = ValidateAPIKey(db, plaintext)
	if !errors.Is(err, ErrAPIKeyExpired) {
		t.Fatalf("err = %v, want ErrAPIKeyExpired", err)
	}
}

func TestRevokeAPIKey(t *testing.T) {
	db := openTestDB(t)

	plaintext, key, err := GenerateAPIKey("admin-1", "bot", 24*time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := db.Create(key).Error; err != nil {
		t.Fatalf("store key: %v", err)
	}

	if err := RevokeAPIKey(db, key.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := ValidateAPIKey(db, plaintext); !errors.Is(err, ErrAPIKeyRevoked) {
		t.Fatalf("err = %v, want ErrAPIKeyRevoked", err)
	}
	if err := RevokeAPIKey(db, key.ID); !errors.Is(err, ErrAPIKeyNotFound) {
		t.Fatalf("second revoke err = %v, want ErrAPIKeyNotFound", err)
	}
}

func TestWhitelistAddRemove(t *testing.T) {
	db := openTestDB(t)

	entry, err := AddToWhitelist(db, "42", "alice", "admin-1", "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if entry.UserID != "42" {
		t.Errorf("entry = %+v, want user 42", entry)
	}

	if _, err := AddToWhitelist(db, "42", "alice", "admin-1", ""); !errors.Is(err, ErrAlreadyWhitelisted) {
		t.Fatalf("duplicate add err = %v, want ErrAlreadyWhitelisted", err)
	}

	entries, err := ListWhitelist(db)
	if err != nil || len(entries) != 1 {
		t.Fatalf("list = %v, %v; want one entry", entries, err)
	}

	if err := RemoveFromWhitelist(db, "42"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := RemoveFromWhitelist(db, "42"); !errors.Is(err, ErrWhitelistEntryNotFound) {
		t.Fatalf("second remove err = %v, want ErrWhitelistEntryNotFound", err)
	}
}
