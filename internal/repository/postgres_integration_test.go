//go:build integration
// +build integration

package repository

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fith/sugar/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.Post{},
		&models.Discussion{},
		&models.Category{},
		&models.User{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresFindPaginatedAndTrust(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	poster := createTestUser(t, db, "pg-poster")
	category := createTestCategory(t, db, "Postgres", true)
	for i := 0; i < 45; i++ {
		createTestDiscussion(t, db, category, poster, fmt.Sprintf("pg %d", i), time.Now().Add(time.Duration(i)*time.Second))
	}

	repo := NewDiscussionRepository(db)
	page, err := repo.FindPaginated(DiscussionListFilter{Page: 4, Limit: 20})
	if err != nil {
		t.Fatalf("find paginated failed: %v", err)
	}
	if page.CurrentPage != 3 || len(page.Items) != 5 {
		t.Fatalf("unexpected clamped page: current=%d rows=%d", page.CurrentPage, len(page.Items))
	}

	if err := NewCategoryRepository(db).SetTrusted(category.ID, false); err != nil {
		t.Fatalf("set trusted failed: %v", err)
	}
	untrusted, err := repo.FindPaginated(DiscussionListFilter{OnlyUntrusted: true})
	if err != nil {
		t.Fatalf("find untrusted failed: %v", err)
	}
	if untrusted.TotalCount != 45 {
		t.Fatalf("untrusted count want 45 got %d", untrusted.TotalCount)
	}
}

func TestPostgresUserKeywordSearchIgnoresCase(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	createTestUser(t, db, "MixedCase")

	users, total, err := NewUserRepository(db).List(UserListFilter{Keyword: "mixedcase"})
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	if total != 1 || len(users) != 1 {
		t.Fatalf("ILIKE search want 1 got total=%d len=%d", total, len(users))
	}
}
