package i18n

import (
	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

// LocalizerKey is the gin.Context key holding the request Localizer.
const LocalizerKey = "localizer"

// Middleware resolves a Localizer from the Accept-Language header.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(LocalizerKey, GetLocalizer(c.GetHeader("Accept-Language")))
		c.Next()
	}
}

// GetLocalizerFromContext gets the Localizer from gin.Context.
func GetLocalizerFromContext(c *gin.Context) *i18n.Localizer {
	if localizer, exists := c.Get(LocalizerKey); exists {
		if l, ok := localizer.(*i18n.Localizer); ok {
			return l
		}
	}
	return GetLocalizer("ru-RU")
}

// Message translates a message for the current request.
func Message(c *gin.Context, msgID string, templateData ...map[string]any) string {
	return T(GetLocalizerFromContext(c), msgID, templateData...)
}
