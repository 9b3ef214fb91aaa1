package i18n

import (
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// 支持的语言
const (
	LocaleZH = "zh-CN"
	LocaleTW = "zh-TW"
	LocaleEN = "en-US"
)

// LangParam 指定语言的查询参数
const LangParam = "lang"

// DefaultLocale 默认语言
const DefaultLocale = LocaleZH

var (
	supportedLocales = []string{LocaleZH, LocaleTW, LocaleEN}
	supportedTags    = []language.Tag{
		language.SimplifiedChinese,
		language.TraditionalChinese,
		language.AmericanEnglish,
	}
	matcher = language.NewMatcher(supportedTags)
)

func init() {
	for locale, messages := range catalog {
		tag := language.MustParse(locale)
		for key, text := range messages {
			if err := message.SetString(tag, key, text); err != nil {
				panic(err)
			}
		}
	}
}

// ResolveLocale 按 查询参数 > Accept-Language > 默认 的顺序解析请求语言
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return DefaultLocale
	}
	if raw := strings.TrimSpace(c.Query(LangParam)); raw != "" {
		if locale, ok := NormalizeLocale(raw); ok {
			return locale
		}
	}
	if accept := strings.TrimSpace(c.GetHeader("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			_, index, confidence := matcher.Match(tags...)
			if confidence != language.No {
				return supportedLocales[index]
			}
		}
	}
	return DefaultLocale
}

// NormalizeLocale 将任意语言标记归一到支持的语言
func NormalizeLocale(raw string) (string, bool) {
	tag, err := language.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return "", false
	}
	return supportedLocales[index], true
}

// T 翻译消息键，缺失时返回键本身
func T(locale, key string) string {
	return printer(locale).Sprintf(key)
}

// Sprintf 翻译并格式化消息
func Sprintf(locale, key string, args ...interface{}) string {
	return printer(locale).Sprintf(key, args...)
}

func printer(locale string) *message.Printer {
	normalized, ok := NormalizeLocale(locale)
	if !ok {
		normalized = DefaultLocale
	}
	return message.NewPrinter(language.MustParse(normalized))
}
