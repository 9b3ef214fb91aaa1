package service

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/fith/sugar/internal/models"
)

func TestAsUint(t *testing.T) {
	accepted := map[string]struct {
		raw  interface{}
		want uint
	}{
		"float":       {float64(12), 12},
		"float bound": {float64(math.MaxUint32), math.MaxUint32},
		"int":         {7, 7},
		"number":      {json.Number("42"), 42},
		"string":      {" 9 ", 9},
	}
	for name, tc := range accepted {
		got, ok := asUint(tc.raw)
		if !ok || got != tc.want {
			t.Fatalf("%s: asUint(%v) = %d, %v; want %d", name, tc.raw, got, ok, tc.want)
		}
	}

	for name, raw := range map[string]interface{}{
		"huge float": 1e20,
		"above u32":  float64(math.MaxUint32) + 1,
		"fraction":   1.5,
		"negative":   float64(-1),
		"nan":        math.NaN(),
		"inf":        math.Inf(1),
		"bad number": json.Number("1e3"),
		"overflow":   "18446744073709551616",
		"bool":       true,
	} {
		if got, ok := asUint(raw); ok {
			t.Fatalf("%s: asUint(%v) should fail, got %d", name, raw, got)
		}
	}
}

func TestApplyUpdateRejectsOversizedCategoryID(t *testing.T) {
	env := newForumTestEnv(t)
	poster := env.user(t, "alice", nil)
	category := env.category(t, "General", false)
	discussion := env.discussion(t, poster, category, "Hello", "body")

	_, err := env.discussions.ApplyUpdate(poster, discussion.ID, map[string]interface{}{"category_id": 1e20})
	var errs models.ValidationErrors
	if !errors.As(err, &errs) || !errs.Has("category_id") {
		t.Fatalf("oversized category id should be a field error, got %v", err)
	}
}
