package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"freebie/internal/infra/config"
	"freebie/internal/infra/obs"
)

// Handlers collects the HTTP handler groups. Nil groups are skipped, which
// keeps test servers minimal.
type Handlers struct {
	Auth           AuthHTTP
	Item           ItemHTTP
	Chat           ChatHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
		api.DELETE("/auth/me", h.Auth.DeleteAccount)
	}
	if h.Item != nil {
		api.GET("/items", h.Item.Search)
		api.POST("/items", h.Item.Create)
		api.GET("/items/:id", h.Item.Get)
		api.DELETE("/items/:id", h.Item.Delete)
	}
	if h.Chat != nil {
		api.POST("/items/:id/chat", h.Chat.StartForItem)
		api.GET("/chats", h.Chat.ListMine)
		api.GET("/chats/:id/messages", h.Chat.ListMessages)
		api.POST("/chats/:id/messages", h.Chat.SendMessage)
		api.POST("/chats/:id/touch", h.Chat.Touch)
		api.DELETE("/chats/:id", h.Chat.Delete)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
