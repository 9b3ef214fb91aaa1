package service

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/fith/sugar/internal/models"
)

func asString(raw interface{}) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case nil:
		return "", true
	default:
		return "", false
	}
}

func asBool(raw interface{}) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, false
		}
		return parsed, true
	default:
		return false, false
	}
}

// maxFloatID float64 形式的 ID 上限，超出后不做截断转换
const maxFloatID = math.MaxUint32

// asUint JSON 数字默认解码为 float64
func asUint(raw interface{}) (uint, bool) {
	switch v := raw.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	case float64:
		if v < 0 || v > maxFloatID || v != math.Trunc(v) {
			return 0, false
		}
		return uint(v), true
	case json.Number:
		parsed, err := strconv.ParseUint(v.String(), 10, strconv.IntSize)
		if err != nil {
			return 0, false
		}
		return uint(parsed), true
	case string:
		parsed, err := strconv.ParseUint(strings.TrimSpace(v), 10, strconv.IntSize)
		if err != nil {
			return 0, false
		}
		return uint(parsed), true
	default:
		return 0, false
	}
}

// hasContent 只含空白的正文视为未提供，更新时不覆盖首帖
func hasContent(raw string) bool {
	return strings.TrimSpace(raw) != ""
}

func invalidField(field string) error {
	var errs models.ValidationErrors
	errs.Add(field, "invalid")
	return errs
}
