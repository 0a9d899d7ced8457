package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter 註冊所有路由
//
//	GET  /health
//	GET  /accounts
//	GET  /accounts/:id
//	POST /accounts/create
//	POST /transfer
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	// "/accounts/" 之類的尾斜線會被導向 "/accounts"
	router.RedirectTrailingSlash = true
	router.Use(requestLogger(h.logger), recovery(h.logger))

	router.GET("/health", h.Health)

	accounts := router.Group("/accounts")
	{
		accounts.GET("", h.ListAccounts)
		accounts.GET("/:id", h.GetAccount)
		accounts.POST("/create", h.CreateAccount)
	}
	router.POST("/transfer", h.TransferFunds)

	router.NoRoute(func(c *gin.Context) {
		respondMessage(c, http.StatusNotFound, msgUnknownMethod)
	})
	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// recovery 非預期的 panic 屬於程式錯誤，記錄後回傳 500
func recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic while handling request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
		)
		respondMessage(c, http.StatusInternalServerError, msgServiceError)
	})
}
