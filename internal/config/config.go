package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config eve-guard 服务配置
type Config struct {
	HTTP struct {
		Addr string
	}

	// 词库数据库（仅启动时读取一次 term-tier 表；未启用时使用内置词库）
	Database struct {
		Enabled  bool
		Host     string
		Port     int
		User     string
		Password string
		Database string
		SSLMode  string
	}

	Redis struct {
		Enabled  bool
		Addr     string
		Password string
		DB       int
	}

	// MQTT 接入（可穿戴设备心率遥测）
	MQTT struct {
		Enabled  bool
		Broker   string
		ClientID string
		Username string
		Password string
		QoS      byte
		Topic    string
	}

	// 遥测流与最新心率缓存配置
	Telemetry struct {
		Stream         string
		ConsumerGroup  string
		ConsumerName   string
		BatchSize      int64
		CacheKeyPrefix string
		CacheSuffix    string
		CacheTTL       int // 秒
	}

	// 外部协作服务
	Collaborators struct {
		TranscriberURL   string
		TranscriberToken string
		SentimentURL     string
		AudioFeaturesURL string
		Timeout          int // 秒
	}

	// 摄像头联动触发器
	Actuator struct {
		URL       string
		Threshold float64
		Timeout   int // 秒
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置（从环境变量，带默认值）
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Database.Enabled = getEnvBool("DB_ENABLED", false)
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "eveguard")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Redis.Enabled = getEnvBool("REDIS_ENABLED", false)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.MQTT.Enabled = getEnvBool("MQTT_ENABLED", false)
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "eve-guard")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.QoS = byte(getEnvInt("MQTT_QOS", 1))
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", "guardian/wearable/+/heartrate")

	cfg.Telemetry.Stream = getEnv("TELEMETRY_STREAM", "guardian:heartrate:stream")
	cfg.Telemetry.ConsumerGroup = getEnv("TELEMETRY_CONSUMER_GROUP", "eve-guard")
	cfg.Telemetry.ConsumerName = getEnv("TELEMETRY_CONSUMER_NAME", "eve-guard-1")
	cfg.Telemetry.BatchSize = int64(getEnvInt("TELEMETRY_BATCH_SIZE", 10))
	cfg.Telemetry.CacheKeyPrefix = getEnv("CACHE_HEARTRATE_PREFIX", "guardian:device:")
	cfg.Telemetry.CacheSuffix = ":heartrate"
	cfg.Telemetry.CacheTTL = getEnvInt("CACHE_HEARTRATE_TTL", 300)

	cfg.Collaborators.TranscriberURL = getEnv("TRANSCRIBER_URL", "http://localhost:8000")
	cfg.Collaborators.TranscriberToken = getEnv("TRANSCRIBER_TOKEN", "")
	cfg.Collaborators.SentimentURL = getEnv("SENTIMENT_URL", "http://localhost:8001")
	cfg.Collaborators.AudioFeaturesURL = getEnv("AUDIO_FEATURES_URL", "http://localhost:8002")
	cfg.Collaborators.Timeout = getEnvInt("COLLABORATOR_TIMEOUT", 30)

	cfg.Actuator.URL = getEnv("ACTUATOR_URL", "")
	cfg.Actuator.Threshold = 0.5 // 固定阈值：融合分数 >= 0.5 触发摄像头
	cfg.Actuator.Timeout = getEnvInt("ACTUATOR_TIMEOUT", 5)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

// GetDSN 构建数据库连接字符串
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
