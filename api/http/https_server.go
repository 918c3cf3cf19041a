package http

import (
	"fmt"
	"net/http"

	"QuillLink/internal/config"
	"QuillLink/internal/metrics"
	"QuillLink/internal/middleware/accesslog"
	"QuillLink/internal/middleware/requestid"
	rewriteHandler "QuillLink/internal/modules/rewrite/interface/http"
	"QuillLink/pkg/back"
	"QuillLink/pkg/ssl"
	"QuillLink/pkg/xerr"

	cors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewEngine 组装中间件和路由
//
// exporter 为 nil 时不挂载 /metrics。
func NewEngine(conf *config.Config, h *rewriteHandler.RewriteHandler, exporter *metrics.Exporter) (*gin.Engine, error) {
	corsConfig, err := buildCorsConfig(conf)
	if err != nil {
		return nil, err
	}

	GE := gin.New()
	GE.HandleMethodNotAllowed = true
	GE.Use(requestid.RequestID())
	GE.Use(accesslog.AccessLog())
	GE.Use(accesslog.Recovery())
	GE.Use(ssl.TlsHandler(conf.MainConfig.SSLHost, conf.MainConfig.SSLRedirect, gin.Mode() != gin.ReleaseMode))
	GE.Use(cors.New(corsConfig))

	GE.GET("/healthz", h.Healthz)
	GE.GET("/presets", h.Presets)
	GE.POST("/rewrite", h.Rewrite)
	if exporter != nil {
		GE.GET("/metrics", gin.WrapH(exporter.Handler()))
	}

	// 未知路由与不支持的方法同样返回 {"detail": ...}
	GE.NoRoute(func(c *gin.Context) {
		back.Error(c, xerr.ErrNotFound.Code, xerr.ErrNotFound.Message)
	})
	GE.NoMethod(func(c *gin.Context) {
		back.Error(c, xerr.ErrMethod.Code, xerr.ErrMethod.Message)
	})

	return GE, nil
}

func buildCorsConfig(conf *config.Config) (cors.Config, error) {
	corsConfig := cors.Config{
		AllowMethods:           []string{http.MethodPost, http.MethodGet, http.MethodOptions},
		AllowHeaders:           []string{"*"},
		ExposeHeaders:          []string{requestid.Header},
		AllowCredentials:       false,
		AllowBrowserExtensions: true,
	}
	if conf.AllowAllOrigins() {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = conf.CorsConfig.AllowedOrigins
	}

	if err := corsConfig.Validate(); err != nil {
		return cors.Config{}, fmt.Errorf("invalid cors config: %w", err)
	}
	return corsConfig, nil
}
