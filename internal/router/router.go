package router

import (
	"net/http"
	"strings"

	"github.com/contentgallery/internal/handler"
	"github.com/contentgallery/internal/middleware"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Options configures the HTTP engine.
type Options struct {
	SessionSecret string
	// UploadDir is served under UploadURLPath when non-empty (local storage backend).
	UploadDir      string
	UploadURLPath  string
	MaxUploadBytes int64
	Logger         *zap.Logger
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(logger))
	if opts.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = opts.MaxUploadBytes
	}

	// 配置会话中间件
	secret := opts.SessionSecret
	if strings.TrimSpace(secret) == "" {
		secret = "contentgallery-dev-secret"
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode, MaxAge: 86400 * 7})
	r.Use(sessions.Sessions("contentgallery_session", store))

	if opts.UploadDir != "" {
		urlPath := strings.TrimRight(opts.UploadURLPath, "/")
		if urlPath == "" {
			urlPath = "/media"
		}
		r.Static(urlPath, opts.UploadDir)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// 图集异步接口，仅接受 XMLHttpRequest
	gallery := r.Group("/gallery", middleware.AjaxRequired())
	{
		gallery.GET("/choices/:content_type_id/", api.Choices)
		gallery.GET("/gallery-data/:app_label/:content_type/:object_id/", api.GalleryData)
	}

	// 后台管理路由
	admin := r.Group("/admin")
	{
		admin.POST("/login", api.Login)
		admin.POST("/logout", api.Logout)

		// 需要认证的后台路由
		auth := admin.Group("/api")
		auth.Use(handler.AuthRequired())
		{
			auth.GET("/content-types", api.ListContentTypes)

			auth.GET("/images", api.ListImages)
			auth.POST("/images", api.UploadImage)
			auth.PUT("/images/reorder", api.ReorderImages)
			auth.PUT("/images/:id", api.UpdateImagePosition)
			auth.DELETE("/images/:id", api.DeleteImage)

			auth.GET("/cats", api.ListCats)
			auth.POST("/cats", api.CreateCat)
			auth.DELETE("/cats/:id", api.DeleteCat)
		}
	}

	return r
}
