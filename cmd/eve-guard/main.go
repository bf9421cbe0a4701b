package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/Haneenelmetwallly76/EVE-Guard/internal/actuator"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/collaborator"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/config"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/consumer"
	httpapi "github.com/Haneenelmetwallly76/EVE-Guard/internal/http"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/hub"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/ingest"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/lexicon"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/logger"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/models"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/repository"
	"github.com/Haneenelmetwallly76/EVE-Guard/internal/service"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "eve-guard")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	// 3. 创建上下文（支持优雅关闭）
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 4. 构建词库（数据库启用时从 lexicon_terms 加载，失败回退内置词库）
	store, err := buildLexiconStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to build lexicon store", zap.Error(err))
	}
	scanner := lexicon.NewScanner(store, log)

	// 5. 连接 Redis（可选：遥测流消费 + 最新心率缓存）
	var redisClient *redis.Client
	var cacheManager *consumer.CacheManager
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()

		cacheManager = consumer.NewCacheManager(cfg, redisClient, log)
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr))
	}

	// 6. 创建协作方客户端与联动触发器
	collaboratorTimeout := time.Duration(cfg.Collaborators.Timeout) * time.Second
	transcriber := collaborator.NewWhisperClient(cfg.Collaborators.TranscriberURL, cfg.Collaborators.TranscriberToken, collaboratorTimeout, log)
	sentiment := collaborator.NewSentimentClient(cfg.Collaborators.SentimentURL, collaboratorTimeout, log)
	features := collaborator.NewFeatureClient(cfg.Collaborators.AudioFeaturesURL, collaboratorTimeout, log)
	emotion := collaborator.NewHeuristicEstimator(features, log)

	trigger := actuator.NewTrigger(
		cfg.Actuator.URL,
		cfg.Actuator.Threshold,
		time.Duration(cfg.Actuator.Timeout)*time.Second,
		log,
	)

	// 7. 创建通知中心与服务层
	notifyHub := hub.NewHub(log)
	assessmentService := service.NewAssessmentService(scanner, sentiment, emotion, transcriber, notifyHub, trigger, log)
	heartRateService := service.NewHeartRateService(cacheManager, notifyHub, trigger, log)

	// 8. 启动遥测链路（Redis 启用时）
	if cfg.Redis.Enabled {
		streamConsumer := consumer.NewStreamConsumer(cfg, redisClient, heartRateService, log)
		go func() {
			if err := streamConsumer.Start(ctx); err != nil {
				log.Error("Telemetry stream consumer exited", zap.Error(err))
			}
		}()

		if cfg.MQTT.Enabled {
			bridge, err := ingest.NewMQTTBridge(cfg, redisClient, log)
			if err != nil {
				log.Fatal("Failed to create MQTT bridge", zap.Error(err))
			}
			if err := bridge.Start(); err != nil {
				log.Fatal("Failed to start MQTT bridge", zap.Error(err))
			}
			defer bridge.Stop()
		}
	}

	// 9. 注册路由并启动 HTTP 服务
	router := httpapi.NewRouter(log)
	guardianHandler := httpapi.NewGuardianHandler(assessmentService, heartRateService, cacheManager, log)
	wsHandler := httpapi.NewWSHandler(notifyHub, log)
	router.RegisterGuardianRoutes(guardianHandler, wsHandler)

	server := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: router,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("HTTP server started", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	// 10. 等待信号（优雅关闭）
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErrChan:
		log.Fatal("HTTP server error", zap.Error(err))
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown error", zap.Error(err))
	}

	log.Info("eve-guard stopped")
}

// buildLexiconStore 构建词库
// 数据库加载失败不是致命错误：告警后回退到内置词库
func buildLexiconStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*lexicon.Store, error) {
	entries := lexicon.DefaultEntries()
	version := "builtin"

	if cfg.Database.Enabled {
		loaded, err := loadLexiconFromDB(ctx, cfg, log)
		if err != nil {
			log.Warn("Failed to load lexicon from database, falling back to builtin entries",
				zap.Error(err),
			)
		} else {
			entries = loaded
			version = fmt.Sprintf("db-%s", time.Now().Format("20060102150405"))
		}
	}

	return lexicon.NewStore(entries, version, log)
}

// loadLexiconFromDB 连接数据库并读取词库（仅启动时调用一次）
func loadLexiconFromDB(ctx context.Context, cfg *config.Config, log *zap.Logger) ([]models.LexiconEntry, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := repository.NewLexiconRepository(db, log)
	return repo.LoadEntries(ctx)
}
