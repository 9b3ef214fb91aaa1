package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/fith/sugar/internal/models"
	"github.com/fith/sugar/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type forumTestEnv struct {
	db          *gorm.DB
	categories  *CategoryService
	discussions *DiscussionService
	posts       *PostService
	users       *UserService
}

func newForumTestEnv(t *testing.T) *forumTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate forum tables failed: %v", err)
	}

	categoryRepo := repository.NewCategoryRepository(db)
	discussionRepo := repository.NewDiscussionRepository(db)
	postRepo := repository.NewPostRepository(db)
	userRepo := repository.NewUserRepository(db)
	recounter := NewRecounter(nil, discussionRepo, categoryRepo, userRepo)

	return &forumTestEnv{
		db:          db,
		categories:  NewCategoryService(categoryRepo, 0),
		discussions: NewDiscussionService(discussionRepo, categoryRepo, postRepo, recounter, 20),
		posts:       NewPostService(postRepo, discussionRepo, recounter, 50),
		users:       NewUserService(userRepo),
	}
}

func (env *forumTestEnv) user(t *testing.T, username string, mutate func(*models.User)) *models.User {
	t.Helper()
	user := &models.User{Username: username, DisplayName: username}
	if mutate != nil {
		mutate(user)
	}
	if err := env.db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func (env *forumTestEnv) category(t *testing.T, name string, trusted bool) *models.Category {
	t.Helper()
	category, err := env.categories.Create(CategoryInput{Name: name, Trusted: &trusted})
	if err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	return category
}

func (env *forumTestEnv) discussion(t *testing.T, poster *models.User, category *models.Category, title, body string) *models.Discussion {
	t.Helper()
	discussion, err := env.discussions.Create(poster, CreateDiscussionInput{
		Title:      title,
		CategoryID: category.ID,
		Body:       body,
	})
	if err != nil {
		t.Fatalf("create discussion failed: %v", err)
	}
	return discussion
}

func (env *forumTestEnv) reload(t *testing.T, dest interface{}, id uint) {
	t.Helper()
	if err := env.db.First(dest, id).Error; err != nil {
		t.Fatalf("reload %T failed: %v", dest, err)
	}
}

func markAdmin(u *models.User) { u.Admin = true }
func markTrusted(u *models.User) { u.Trusted = true }
func markBanned(u *models.User) { u.Banned = true }
