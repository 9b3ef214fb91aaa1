package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/fith/sugar/internal/models"
)

func TestFindPaginatedClampsPages(t *testing.T) {
	db := setupRepositoryTestDB(t)
	poster := createTestUser(t, db, "poster")
	category := createTestCategory(t, db, "General", false)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 45; i++ {
		createTestDiscussion(t, db, category, poster, fmt.Sprintf("Discussion %d", i), base.Add(time.Duration(i)*time.Second))
	}

	repo := NewDiscussionRepository(db)
	first, err := repo.FindPaginated(DiscussionListFilter{Page: 1, Limit: 20})
	if err != nil {
		t.Fatalf("find first page failed: %v", err)
	}
	if len(first.Items) != 20 {
		t.Fatalf("first page rows want 20 got %d", len(first.Items))
	}
	if first.TotalPages != 3 {
		t.Fatalf("total pages want 3 got %d", first.TotalPages)
	}
	if first.TotalCount != 45 {
		t.Fatalf("total count want 45 got %d", first.TotalCount)
	}

	clamped, err := repo.FindPaginated(DiscussionListFilter{Page: 4, Limit: 20})
	if err != nil {
		t.Fatalf("find out of range page failed: %v", err)
	}
	if clamped.CurrentPage != 3 {
		t.Fatalf("current page want 3 got %d", clamped.CurrentPage)
	}
	if len(clamped.Items) != 5 {
		t.Fatalf("last page rows want 5 got %d", len(clamped.Items))
	}
	if clamped.Offset != 40 {
		t.Fatalf("offset want 40 got %d", clamped.Offset)
	}
	if clamped.Items[0].Poster == nil || clamped.Items[0].Category == nil || clamped.Items[0].LastPoster == nil {
		t.Fatalf("expected poster, last poster and category to be preloaded")
	}
}

func TestFindPaginatedOrdersStickyThenActivity(t *testing.T) {
	db := setupRepositoryTestDB(t)
	poster := createTestUser(t, db, "poster")
	category := createTestCategory(t, db, "General", false)

	now := time.Now()
	old := createTestDiscussion(t, db, category, poster, "old sticky", now.Add(-48*time.Hour))
	if err := db.Model(old).UpdateColumn("sticky", true).Error; err != nil {
		t.Fatalf("mark sticky failed: %v", err)
	}
	stale := createTestDiscussion(t, db, category, poster, "stale", now.Add(-2*time.Hour))
	fresh := createTestDiscussion(t, db, category, poster, "fresh", now.Add(-time.Minute))

	page, err := NewDiscussionRepository(db).FindPaginated(DiscussionListFilter{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("find paginated failed: %v", err)
	}
	want := []uint{old.ID, fresh.ID, stale.ID}
	if len(page.Items) != len(want) {
		t.Fatalf("rows want %d got %d", len(want), len(page.Items))
	}
	for i, id := range want {
		if page.Items[i].ID != id {
			t.Fatalf("position %d want discussion %d got %d", i, id, page.Items[i].ID)
		}
	}
}

func TestFindPaginatedFilters(t *testing.T) {
	db := setupRepositoryTestDB(t)
	poster := createTestUser(t, db, "poster")
	open := createTestCategory(t, db, "Open", false)
	secret := createTestCategory(t, db, "Secret", true)
	now := time.Now()
	createTestDiscussion(t, db, open, poster, "a", now)
	createTestDiscussion(t, db, open, poster, "b", now)
	createTestDiscussion(t, db, secret, poster, "c", now)

	repo := NewDiscussionRepository(db)
	byCategory, err := repo.FindPaginated(DiscussionListFilter{CategoryID: open.ID})
	if err != nil {
		t.Fatalf("filter by category failed: %v", err)
	}
	if byCategory.TotalCount != 2 {
		t.Fatalf("category count want 2 got %d", byCategory.TotalCount)
	}

	untrusted, err := repo.FindPaginated(DiscussionListFilter{OnlyUntrusted: true})
	if err != nil {
		t.Fatalf("filter untrusted failed: %v", err)
	}
	for _, item := range untrusted.Items {
		if item.Trusted {
			t.Fatalf("trusted discussion %d leaked into untrusted listing", item.ID)
		}
	}
	if untrusted.TotalCount != 2 {
		t.Fatalf("untrusted count want 2 got %d", untrusted.TotalCount)
	}
}

func TestFindPaginatedEmpty(t *testing.T) {
	db := setupRepositoryTestDB(t)
	page, err := NewDiscussionRepository(db).FindPaginated(DiscussionListFilter{Page: 5, Limit: 20})
	if err != nil {
		t.Fatalf("find empty failed: %v", err)
	}
	if page.TotalPages != 0 || page.CurrentPage != 1 || page.Offset != 0 || len(page.Items) != 0 {
		t.Fatalf("unexpected empty page: %+v", page)
	}
}

func TestDiscussionCreateMaintainsCounters(t *testing.T) {
	db := setupRepositoryTestDB(t)
	poster := createTestUser(t, db, "poster")
	category := createTestCategory(t, db, "General", false)
	discussion := createTestDiscussion(t, db, category, poster, "hello", time.Time{})

	if discussion.LastPosterID != poster.ID {
		t.Fatalf("last poster want %d got %d", poster.ID, discussion.LastPosterID)
	}
	if discussion.LastPostAt.IsZero() {
		t.Fatalf("last post at should default to now")
	}

	var reloadedCategory models.Category
	if err := db.First(&reloadedCategory, category.ID).Error; err != nil {
		t.Fatalf("reload category failed: %v", err)
	}
	if reloadedCategory.DiscussionsCount != 1 {
		t.Fatalf("category discussions count want 1 got %d", reloadedCategory.DiscussionsCount)
	}
	var reloadedUser models.User
	if err := db.First(&reloadedUser, poster.ID).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if reloadedUser.DiscussionsCount != 1 {
		t.Fatalf("user discussions count want 1 got %d", reloadedUser.DiscussionsCount)
	}
}

func TestFirstPostAndRecount(t *testing.T) {
	db := setupRepositoryTestDB(t)
	poster := createTestUser(t, db, "poster")
	replier := createTestUser(t, db, "replier")
	category := createTestCategory(t, db, "General", false)
	discussion := createTestDiscussion(t, db, category, poster, "hello", time.Now())

	repo := NewDiscussionRepository(db)
	if post, err := repo.FirstPost(discussion.ID); err != nil || post != nil {
		t.Fatalf("expected no first post yet, got %v err=%v", post, err)
	}

	first := createTestPost(t, db, discussion, poster, "first")
	createTestPost(t, db, discussion, replier, "second")

	got, err := repo.FirstPost(discussion.ID)
	if err != nil {
		t.Fatalf("first post failed: %v", err)
	}
	if got == nil || got.ID != first.ID {
		t.Fatalf("first post want %d got %+v", first.ID, got)
	}

	reloaded, err := repo.GetByID(discussion.ID, true)
	if err != nil || reloaded == nil {
		t.Fatalf("reload discussion failed: %v", err)
	}
	if reloaded.PostsCount != 2 {
		t.Fatalf("posts count want 2 got %d", reloaded.PostsCount)
	}
	if reloaded.LastPosterID != replier.ID {
		t.Fatalf("last poster want %d got %d", replier.ID, reloaded.LastPosterID)
	}
	if len(reloaded.Posts) != 2 || reloaded.Posts[0].ID != first.ID {
		t.Fatalf("posts should be ordered by creation time: %+v", reloaded.Posts)
	}

	if err := db.Model(&models.Discussion{}).Where("id = ?", discussion.ID).UpdateColumn("posts_count", 99).Error; err != nil {
		t.Fatalf("corrupt counter failed: %v", err)
	}
	if err := repo.RecountPosts(discussion.ID); err != nil {
		t.Fatalf("recount failed: %v", err)
	}
	recounted, _ := repo.GetByID(discussion.ID, false)
	if recounted.PostsCount != 2 {
		t.Fatalf("recounted posts want 2 got %d", recounted.PostsCount)
	}
}

func TestDiscussionDeleteRemovesPosts(t *testing.T) {
	db := setupRepositoryTestDB(t)
	poster := createTestUser(t, db, "poster")
	category := createTestCategory(t, db, "General", false)
	discussion := createTestDiscussion(t, db, category, poster, "bye", time.Now())
	createTestPost(t, db, discussion, poster, "body")

	repo := NewDiscussionRepository(db)
	if err := repo.Delete(discussion.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if got, err := repo.GetByID(discussion.ID, false); err != nil || got != nil {
		t.Fatalf("discussion should be gone, got %v err=%v", got, err)
	}
	var posts int64
	db.Model(&models.Post{}).Where("discussion_id = ?", discussion.ID).Count(&posts)
	if posts != 0 {
		t.Fatalf("posts should be deleted, got %d", posts)
	}
	var reloaded models.Category
	db.First(&reloaded, category.ID)
	if reloaded.DiscussionsCount != 0 {
		t.Fatalf("category counter want 0 got %d", reloaded.DiscussionsCount)
	}
}
