package public

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fith/sugar/internal/cache"
	"github.com/fith/sugar/internal/config"
	handlershared "github.com/fith/sugar/internal/http/handlers/shared"
	"github.com/fith/sugar/internal/models"
	"github.com/fith/sugar/internal/provider"
	"github.com/fith/sugar/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupPublicHandlerTest(t *testing.T, workSafe bool) (*Handler, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cache.UseClient(nil, "")

	dsn := fmt.Sprintf("file:public_handler_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
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
	cfg := &config.Config{}
	cfg.Forum.DiscussionsPerPage = 20
	cfg.Forum.PostsPerPage = 50
	cfg.Forum.WorkSafeURLs = workSafe
	return New(provider.Build(cfg, db, nil)), db
}

type categoryListResponse struct {
	StatusCode int            `json:"status_code"`
	Data       []CategoryView `json:"data"`
}

func serveListCategories(h *Handler, viewer *models.User) categoryListResponse {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
	if viewer != nil {
		c.Set(handlershared.ContextKeyCurrentUser, viewer)
	}
	h.ListCategories(c)

	var resp categoryListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func TestListCategoriesHidesTrustedFromGuests(t *testing.T) {
	h, _ := setupPublicHandlerTest(t, false)
	trusted := true
	if _, err := h.CategoryService.Create(service.CategoryInput{Name: "General"}); err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	if _, err := h.CategoryService.Create(service.CategoryInput{Name: "Staff Room", Trusted: &trusted}); err != nil {
		t.Fatalf("create trusted category failed: %v", err)
	}

	guest := serveListCategories(h, nil)
	if guest.StatusCode != 0 || len(guest.Data) != 1 || guest.Data[0].Name != "General" {
		t.Fatalf("guest should only see General, got %+v", guest)
	}

	member := serveListCategories(h, &models.User{ID: 5, Trusted: true})
	if len(member.Data) != 2 {
		t.Fatalf("trusted member should see both categories, got %+v", member)
	}
	if want := fmt.Sprintf("%d;Staff-Room", member.Data[1].ID); member.Data[1].Param != want {
		t.Fatalf("param want %q got %q", want, member.Data[1].Param)
	}
}

func TestCategoryParamFollowsWorkSafeSetting(t *testing.T) {
	h, _ := setupPublicHandlerTest(t, true)
	category, err := h.CategoryService.Create(service.CategoryInput{Name: "General Talk"})
	if err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	resp := serveListCategories(h, nil)
	if len(resp.Data) != 1 {
		t.Fatalf("want one category, got %+v", resp)
	}
	if want := category.Param(true); resp.Data[0].Param != want {
		t.Fatalf("param want %q got %q", want, resp.Data[0].Param)
	}
	if resp.Data[0].Param == category.Param(false) {
		t.Fatalf("work-safe param should differ from the default one")
	}
}

func TestGetDiscussionRejectsBadID(t *testing.T) {
	h, _ := setupPublicHandlerTest(t, false)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/discussions/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	h.GetDiscussion(c)
	if !strings.Contains(w.Body.String(), `"status_code":400`) {
		t.Fatalf("non-numeric id want 400, got %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/discussions/99-missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "99-missing"}}
	h.GetDiscussion(c)
	if !strings.Contains(w.Body.String(), `"status_code":404`) {
		t.Fatalf("unknown discussion want 404, got %s", w.Body.String())
	}
}

func TestDiscussionAndPostResponsesExposeOnlyPublicUserFields(t *testing.T) {
	h, db := setupPublicHandlerTest(t, false)
	poster := &models.User{Username: "alice", DisplayName: "Alice"}
	if err := db.Create(poster).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	category, err := h.CategoryService.Create(service.CategoryInput{Name: "General"})
	if err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	discussion, err := h.DiscussionService.Create(poster, service.CreateDiscussionInput{
		Title:      "Hello",
		CategoryID: category.ID,
		Body:       "first body",
	})
	if err != nil {
		t.Fatalf("create discussion failed: %v", err)
	}

	for _, tc := range []struct {
		name    string
		handler gin.HandlerFunc
	}{
		{name: "discussion", handler: h.GetDiscussion},
		{name: "posts", handler: h.ListPosts},
	} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(discussion.ID)}}
		tc.handler(c)

		body := w.Body.String()
		if !strings.Contains(body, `"status_code":0`) || !strings.Contains(body, `"username":"alice"`) {
			t.Fatalf("%s response should include the poster, got %s", tc.name, body)
		}
		for _, private := range []string{`"banned"`, `"last_active_at"`, `"display_name"`} {
			if strings.Contains(body, private) {
				t.Fatalf("%s response leaks %s: %s", tc.name, private, body)
			}
		}
	}
}
