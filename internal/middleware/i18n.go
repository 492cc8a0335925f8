// internal/middleware/i18n.go
package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

var (
	supportedTags = []language.Tag{language.English, language.Spanish}
	langMatcher   = language.NewMatcher(supportedTags)
)

// I18nMiddleware resolves Accept-Language against the bundled locales and
// stores the base language ("en", "es") under "lang".
func I18nMiddleware(defaultLang string) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := defaultLang

		if header := c.GetHeader("Accept-Language"); header != "" {
			tags, _, err := language.ParseAcceptLanguage(header)
			if err == nil && len(tags) > 0 {
				_, index, confidence := langMatcher.Match(tags...)
				if confidence != language.No {
					base, _ := supportedTags[index].Base()
					lang = base.String()
				}
			}
		}

		c.Set("lang", lang)
		c.Next()
	}
}
