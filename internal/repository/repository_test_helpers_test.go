package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/fith/sugar/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupRepositoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate forum tables failed: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, DisplayName: username}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func createTestCategory(t *testing.T, db *gorm.DB, name string, trusted bool) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, Trusted: trusted}
	if err := NewCategoryRepository(db).Create(category); err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	return category
}

func createTestDiscussion(t *testing.T, db *gorm.DB, category *models.Category, poster *models.User, title string, lastPostAt time.Time) *models.Discussion {
	t.Helper()
	discussion := &models.Discussion{
		Title:      title,
		CategoryID: category.ID,
		UserID:     poster.ID,
		Trusted:    category.Trusted,
		LastPostAt: lastPostAt,
	}
	if err := NewDiscussionRepository(db).Create(discussion); err != nil {
		t.Fatalf("create discussion failed: %v", err)
	}
	return discussion
}

func createTestPost(t *testing.T, db *gorm.DB, discussion *models.Discussion, author *models.User, body string) *models.Post {
	t.Helper()
	post := &models.Post{
		DiscussionID: discussion.ID,
		UserID:       author.ID,
		Body:         body,
		Trusted:      discussion.Trusted,
	}
	if err := NewPostRepository(db).Create(post); err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	return post
}
