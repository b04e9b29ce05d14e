package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// 运行环境
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// 对话服务提供方
const (
	ProviderOpenRouter = "openrouter"
	ProviderArk        = "ark"
)

// ErrRemoteRequired 表示要求远程数据库但未配置连接串。
var ErrRemoteRequired = errors.New("DATABASE_URL is required when PERSISTENCE_REQUIRE_REMOTE=true")

// Config 聚合整个服务的配置项。
type Config struct {
	Env         string
	Server      ServerConfig
	Chat        ChatConfig
	Persistence PersistenceConfig
	Log         LogConfig
}

// IsProduction 表示是否运行在生产环境。
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	env, err := loadEnv()
	if err != nil {
		return nil, err
	}

	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	persistence, err := loadPersistenceConfig(env)
	if err != nil {
		return nil, err
	}

	return &Config{
		Env:         env,
		Server:      server,
		Chat:        chat,
		Persistence: persistence,
		Log:         loadLogConfig(env),
	}, nil
}

func loadEnv() (string, error) {
	env := strings.ToLower(getEnvOrDefault("APP_ENV", EnvDevelopment))
	switch env {
	case EnvDevelopment, EnvProduction:
		return env, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV value: %q", env)
	}
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// ChatConfig 描述对话中转相关配置。
type ChatConfig struct {
	Provider string
	APIKey   string
	BaseURL  string
	SiteURL  string
	Model    string
	Timeout  time.Duration
	Ark      ArkConfig
}

// Configured 表示所选提供方的凭证是否齐全。
func (c ChatConfig) Configured() bool {
	if c.Provider == ProviderArk {
		return c.Ark.Enabled()
	}
	return c.APIKey != ""
}

// ArkConfig 描述火山方舟模型配置，仅在 CHAT_PROVIDER=ark 时使用。
type ArkConfig struct {
	APIKey    string
	AccessKey string
	SecretKey string
	Model     string
	BaseURL   string
	Region    string
}

// Enabled 表示是否提供了必需的密钥。
func (c ArkConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例，采样参数与 OpenRouter 保持一致。
func (c ArkConfig) NewChatModel(ctx context.Context, temperature, topP float32, maxTokens int) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + Model 或 AK/SK 组合")
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
		TopP:        &topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadChatConfig() (ChatConfig, error) {
	provider := strings.ToLower(getEnvOrDefault("CHAT_PROVIDER", ProviderOpenRouter))
	if provider != ProviderOpenRouter && provider != ProviderArk {
		return ChatConfig{}, fmt.Errorf("invalid CHAT_PROVIDER value: %q", provider)
	}

	timeoutSeconds := 30
	if override, err := parseOptionalIntEnv("CHAT_TIMEOUT_SECONDS"); err != nil {
		return ChatConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return ChatConfig{}, fmt.Errorf("invalid CHAT_TIMEOUT_SECONDS value: %d", *override)
		}
		timeoutSeconds = *override
	}

	return ChatConfig{
		Provider: provider,
		APIKey:   strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY")),
		BaseURL:  getEnvOrDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		SiteURL:  getEnvOrDefault("SITE_URL", "http://localhost:3000"),
		Model:    getEnvOrDefault("CHAT_MODEL", "gryphe/mythomax-l2-13b"),
		Timeout:  time.Duration(timeoutSeconds) * time.Second,
		Ark: ArkConfig{
			APIKey:    strings.TrimSpace(os.Getenv("ARK_API_KEY")),
			AccessKey: strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
			SecretKey: strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
			Model:     strings.TrimSpace(os.Getenv("Model")),
			BaseURL:   getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
			Region:    getEnvOrDefault("ARK_REGION", "cn-beijing"),
		},
	}, nil
}

// PersistenceConfig 描述心情日志的持久化策略。
type PersistenceConfig struct {
	DatabaseURL string
	Driver      string
	// RequireRemote 为 true 时数据库不可用直接返回 503，而不是让客户端回退到本地存储。
	RequireRemote bool
	Timeout       time.Duration
}

func loadPersistenceConfig(env string) (PersistenceConfig, error) {
	requireRemote, err := parseBoolEnv("PERSISTENCE_REQUIRE_REMOTE", false)
	if err != nil {
		return PersistenceConfig{}, err
	}

	timeoutMs := 3000
	if override, err := parseOptionalIntEnv("DATABASE_TIMEOUT_MS"); err != nil {
		return PersistenceConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return PersistenceConfig{}, fmt.Errorf("invalid DATABASE_TIMEOUT_MS value: %d", *override)
		}
		timeoutMs = *override
	}

	// 开发环境默认使用本地 SQLite 文件，生产环境不做任何假设。
	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" && env == EnvDevelopment {
		databaseURL = "file:./dev.db"
	}

	if requireRemote && databaseURL == "" {
		return PersistenceConfig{}, ErrRemoteRequired
	}

	return PersistenceConfig{
		DatabaseURL:   databaseURL,
		Driver:        strings.ToLower(strings.TrimSpace(os.Getenv("DATABASE_DRIVER"))),
		RequireRemote: requireRemote,
		Timeout:       time.Duration(timeoutMs) * time.Millisecond,
	}, nil
}

// LogConfig 描述日志输出。
type LogConfig struct {
	Level string
	File  string
	JSON  bool
}

func loadLogConfig(env string) LogConfig {
	level := "info"
	if env == EnvDevelopment {
		level = "debug"
	}
	return LogConfig{
		Level: strings.ToLower(getEnvOrDefault("LOG_LEVEL", level)),
		File:  strings.TrimSpace(os.Getenv("LOG_FILE")),
		JSON:  env == EnvProduction,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
