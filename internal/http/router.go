package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthCheck comprueba las dependencias del servicio.
type HealthCheck func(ctx context.Context) error

// NewRouter configura el router de Gin con middlewares y rutas base.
func NewRouter(logger *zap.Logger, chatH *ChatHandler, health HealthCheck) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/healthz", healthHandler(logger, health))

	r.POST("/chat", chatH.CreateChat)
	r.GET("/allchats", chatH.ListChats)
	r.GET("/chat/:chatId", chatH.GetChat)
	r.POST("/chat/:chatId", chatH.PostMessage)
	r.DELETE("/chat/:chatId", chatH.DeleteChat)
	r.GET("/chathistory/:chatId", chatH.History)
	r.POST("/addfile/:chatId", chatH.AddFile)
	r.GET("/chatfiles/:chatId", chatH.ListFiles)

	return r
}

func healthHandler(logger *zap.Logger, health HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		if health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := health(ctx); err != nil {
				logger.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json salvo en
// respuestas sin cuerpo. gin envia los headers al terminar la cadena si el
// handler no escribio nada, asi que aun se pueden quitar aqui.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
		if c.Writer.Status() == http.StatusNoContent && !c.Writer.Written() {
			c.Writer.Header().Del("Content-Type")
		}
	}
}
