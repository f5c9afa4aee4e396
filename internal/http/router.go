package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mindcare-llm/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtServ *service.JWTService,
	userH *UserHandler,
	chatH *ChatHandler,
	profileH *ProfileHandler,
	careH *CareHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	users := r.Group("/users")
	users.POST("", userH.CreateUser)

	auth := r.Group("/auth")
	auth.POST("/login", userH.Login)
	auth.POST("/otp/request", userH.RequestOTP)
	auth.POST("/otp/verify", userH.VerifyOTP)
	auth.POST("/refresh", userH.RefreshToken)
	auth.POST("/logout", userH.Logout)

	// Recursos de crisis publicos: tienen que ser alcanzables sin login.
	r.GET("/care/resources", careH.Resources)
	r.GET("/contexts", profileH.ListContexts)

	authed := r.Group("", JWTAuthMiddleware(jwtServ))
	authed.PUT("/profile", profileH.PutProfile)
	authed.GET("/profile", profileH.GetProfile)
	authed.POST("/sessions", chatH.CreateSession)
	authed.GET("/sessions/:id/messages", chatH.ListMessages)
	authed.POST("/sessions/:id/consolidate", chatH.ConsolidateSession)
	authed.POST("/chat", chatH.PostMessage)
	authed.POST("/chat/tts", chatH.Speak)
	authed.GET("/care/trend", careH.Trend)
	authed.GET("/care/report", careH.TherapistReport)
	authed.POST("/care/analyze", careH.Analyze)
	authed.GET("/care/insights", careH.Insights)
	authed.POST("/care/activity", careH.Activity)
	authed.GET("/checkin/questions", careH.CheckinQuestions)
	authed.POST("/checkin", careH.SubmitCheckin)

	return r
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

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
