package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"mindcare-llm/internal/config"
	"mindcare-llm/internal/db"
	"mindcare-llm/internal/email"
	apihttp "mindcare-llm/internal/http"
	"mindcare-llm/internal/llm"
	"mindcare-llm/internal/repository"
	"mindcare-llm/internal/service"
	"mindcare-llm/internal/tts"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	profileRepo := repository.NewPgProfileRepository(pool)
	sessionRepo := repository.NewPgSessionRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)
	emotionRepo := repository.NewPgEmotionRepository(pool)
	memoryRepo := repository.NewPgMemoryRepository(pool)

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.EmbeddingModel, zap.NewStdLog(logger))

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var (
		otpLimiter    service.RateLimiter
		chatLimiter   service.RateLimiter
		tokenStore    service.RefreshTokenStore
		cooldownStore service.InterventionCooldownStore
		redisClient   *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			otpLimiter = service.NewRedisOTPRateLimiter(redisClient, 10*time.Minute, 3)
			chatLimiter = service.NewRedisChatRateLimiter(redisClient, time.Minute, 20)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
			cooldownStore = service.NewRedisCooldownStore(redisClient)
		}
		cancel()
	}
	if chatLimiter == nil {
		chatLimiter = service.NewOTPRateLimiter(time.Minute, 20)
	}
	if cooldownStore == nil {
		cooldownStore = service.NewMemoryCooldownStore()
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	// Estado de cuidado en memoria, con snapshot periodico a disco.
	careStore := repository.NewMemoryCareStateStore()
	if cfg.CareSnapshotPath != "" {
		if err := careStore.Restore(cfg.CareSnapshotPath); err != nil {
			logger.Warn("care snapshot restore failed", zap.Error(err))
		}
		interval := time.Duration(cfg.CareSnapshotIntervalSeconds) * time.Second
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for range ticker.C {
				if err := careStore.Snapshot(cfg.CareSnapshotPath); err != nil {
					logger.Warn("care snapshot failed", zap.Error(err))
				}
			}
		}()
	}

	trends := service.NewRiskTrendTracker(careStore)
	cooldownWindow := time.Duration(cfg.InterventionCooldownSeconds) * time.Second
	policy := service.NewInterventionPolicy(logger, careStore, cooldownStore, cooldownWindow)
	careSvc := service.NewCareService(logger, llmClient, careStore, policy, trends)

	classifier := service.NewLLMCrisisClassifier(llmClient)
	assessor := service.NewCrisisAssessor(logger, classifier)
	emotionSvc := service.NewEmotionService(logger, llmClient, emotionRepo)
	contextSvc := service.NewBasicContextService(messageRepo)
	supportSvc := service.NewSupportService(
		logger, llmClient, llmClient,
		messageRepo, profileRepo, memoryRepo, emotionRepo,
		emotionSvc, assessor, careSvc, trends, contextSvc,
	)
	onboardingSvc := service.NewOnboardingService(logger, profileRepo)
	checkinSvc := service.NewCheckinService(logger, emotionSvc)
	userSvc := service.NewUserService(logger, userRepo, emailSender, otpLimiter)

	synthesizer := tts.NewDisabledSynthesizer()
	if cfg.MurfAPIKey != "" {
		synthesizer = tts.NewMurfClient(cfg.MurfBaseURL, cfg.MurfAPIKey, cfg.MurfVoiceID)
	}

	userHandler := apihttp.NewUserHandler(logger, userSvc, jwtSvc)
	chatHandler := apihttp.NewChatHandler(logger, sessionRepo, messageRepo, supportSvc, synthesizer, cfg.MurfVoiceID, chatLimiter)
	profileHandler := apihttp.NewProfileHandler(logger, onboardingSvc)
	careHandler := apihttp.NewCareHandler(logger, careSvc, trends, assessor, checkinSvc, messageRepo, emotionRepo)
	router := apihttp.NewRouter(logger, jwtSvc, userHandler, chatHandler, profileHandler, careHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
