package router

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"

	"onec-gateway/internal/handler"
	"onec-gateway/internal/i18n"
	"onec-gateway/internal/middleware"
	"onec-gateway/internal/types"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type embedFileSystem struct {
	http.FileSystem
}

func (e embedFileSystem) Exists(prefix string, path string) bool {
	_, err := e.Open(path)
	return err == nil
}

func EmbedFolder(fsEmbed embed.FS, targetPath string) static.ServeFileSystem {
	efs, err := fs.Sub(fsEmbed, targetPath)
	if err != nil {
		panic(err)
	}
	return embedFileSystem{
		FileSystem: http.FS(efs),
	}
}

func NewRouter(
	commonHandler *handler.CommonHandler,
	chatHandler *handler.ChatHandler,
	openaiHandler *handler.OpenAIHandler,
	mcpHandler *handler.MCPHandler,
	configManager types.ConfigManager,
	webFS embed.FS,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Register global middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(configManager.GetCORSConfig()))
	router.Use(middleware.SecurityHeaders())
	router.Use(i18n.Middleware())

	registerSystemRoutes(router, commonHandler)
	registerChatRoutes(router, chatHandler)
	registerOpenAIRoutes(router, openaiHandler, configManager)
	registerMCPRoutes(router, mcpHandler)
	registerFrontendRoutes(router, webFS)

	return router
}

// registerSystemRoutes registers system-level routes
func registerSystemRoutes(router *gin.Engine, commonHandler *handler.CommonHandler) {
	router.GET("/health", commonHandler.Health)
}

// registerChatRoutes registers the browser chat API
func registerChatRoutes(router *gin.Engine, chatHandler *handler.ChatHandler) {
	api := router.Group("/chat/api")
	{
		api.GET("/config", chatHandler.Config)
		api.POST("/send", chatHandler.Send)
		api.POST("/stream", chatHandler.Stream)
		api.POST("/feedback", chatHandler.Feedback)
	}
}

// registerOpenAIRoutes registers the OpenAI-compatible API. The surface is
// disabled entirely when no AUTH_KEY is configured.
func registerOpenAIRoutes(router *gin.Engine, openaiHandler *handler.OpenAIHandler, configManager types.ConfigManager) {
	authConfig := configManager.GetAuthConfig()
	if authConfig.Key == "" {
		logrus.Warn("AUTH_KEY is not set, /v1 API is disabled")
		return
	}

	v1 := router.Group("/v1")
	v1.Use(middleware.Auth(authConfig))
	{
		v1.GET("/models", openaiHandler.ListModels)
		v1.POST("/chat/completions", openaiHandler.ChatCompletions)
	}
}

// registerMCPRoutes registers the MCP JSON-RPC endpoint. MCP clients carry
// their own session ids, so the endpoint is open like the chat API.
func registerMCPRoutes(router *gin.Engine, mcpHandler *handler.MCPHandler) {
	router.GET("/mcp", mcpHandler.Info)
	router.POST("/mcp", mcpHandler.Endpoint)
}

// registerFrontendRoutes serves the embedded chat page
func registerFrontendRoutes(router *gin.Engine, webFS embed.FS) {
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/chat/api/stream", "/v1/chat/completions", "/mcp"})))
	router.Use(static.Serve("/chat", EmbedFolder(webFS, "web/chat")))

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/chat/")
	})
	router.NoRoute(func(c *gin.Context) {
		uri := c.Request.RequestURI
		if strings.HasPrefix(uri, "/chat/api") || strings.HasPrefix(uri, "/v1") || strings.HasPrefix(uri, "/mcp") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
			return
		}
		c.Redirect(http.StatusFound, "/chat/")
	})
}
