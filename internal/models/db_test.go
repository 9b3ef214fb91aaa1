package models

import (
	"strings"
	"testing"
)

func TestWithSQLitePragmas(t *testing.T) {
	got := withSQLitePragmas("sugar.db")
	if got != "sugar.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)" {
		t.Fatalf("unexpected dsn %s", got)
	}
	got = withSQLitePragmas("file:forum?mode=memory&_pragma=busy_timeout(100)")
	if strings.Count(got, "busy_timeout") != 1 || !strings.HasSuffix(got, "&_pragma=journal_mode(WAL)") {
		t.Fatalf("explicit pragma should be kept, got %s", got)
	}
}

func TestInitDBRejectsUnknownDriver(t *testing.T) {
	if err := InitDB("mysql", "", "silent", DBPoolConfig{}); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
}

func TestInitDBMigratesSQLite(t *testing.T) {
	previous := DB
	t.Cleanup(func() { DB = previous })

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	if err := InitDB("sqlite", dsn, "silent", DBPoolConfig{MaxOpenConns: 1, MaxIdleConns: 1}); err != nil {
		t.Fatalf("init sqlite failed: %v", err)
	}
	if err := AutoMigrate(); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !DB.Migrator().HasTable(&Discussion{}) {
		t.Fatalf("discussions table should exist")
	}
	var timeout int
	if err := DB.Raw("PRAGMA busy_timeout").Scan(&timeout).Error; err != nil || timeout != 5000 {
		t.Fatalf("busy timeout should be applied, got %d err=%v", timeout, err)
	}
}
