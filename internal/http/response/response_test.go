package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestAppErrorWriteAttachesRequestID(t *testing.T) {
	c, w := newTestContext()
	c.Set("request_id", "req-1")
	WrapError(CodeNotFound, "missing", nil).Write(c)

	if w.Code != http.StatusOK {
		t.Fatalf("envelope should always use http 200, got %d", w.Code)
	}
	var body struct {
		StatusCode int               `json:"status_code"`
		Msg        string            `json:"msg"`
		Data       map[string]string `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if body.StatusCode != CodeNotFound || body.Msg != "missing" || body.Data["request_id"] != "req-1" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestValidationFailedRendersFields(t *testing.T) {
	c, w := newTestContext()
	ValidationFailed(c, "invalid", map[string]string{"title": "required"})

	var body struct {
		StatusCode int `json:"status_code"`
		Data       struct {
			Fields map[string]string `json:"fields"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if body.StatusCode != CodeBadRequest || body.Data.Fields["title"] != "required" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("db down")
	err := WrapError(CodeInternal, "internal", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("wrapped error should unwrap to its cause")
	}
	if err.Error() != "internal: db down" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(3, 20, 41)
	if p.TotalPage != 3 || p.Offset != 40 || p.Total != 41 {
		t.Fatalf("unexpected pagination %+v", p)
	}
	empty := NewPagination(1, 20, 0)
	if empty.TotalPage != 0 || empty.Offset != 0 {
		t.Fatalf("unexpected empty pagination %+v", empty)
	}
	if NewPagination(1, 0, 5).TotalPage != 0 {
		t.Fatalf("zero page size should not divide")
	}
}
