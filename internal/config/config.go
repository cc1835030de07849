package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
)

const (
	GLOBAL_LANGUAGE        = "global.interface_language"
	GLOBAL_MAX_TURNS       = "global.max_conversation_turns"
	TELEGRAM_TOKEN         = "telegram.token"
	TELEGRAM_ALLOWED_USERS = "telegram.allowed_users"
	TELEGRAM_ALLOWED_CHATS = "telegram.allowed_chats"
	DATABASE_DSN           = "database.dsn"
	LOGGING_LEVEL          = "logging.level"
	LOGGING_WRITE_IN_FILE  = "logging.write_in_file"
	LOGGING_FILE_PATH      = "logging.file_path"
	AI_SYSTEM_PROMPT       = "ai.system_prompt"
	AI_DEFAULT_MODEL       = "ai.default_model"
	AI_MAX_TOKENS          = "ai.max_tokens"
	AI_RESERVE_TOKENS      = "ai.reserve_tokens"
	AI_PROVIDERS           = "ai.providers"
	BILLING_ENABLED        = "billing.enabled"
	BILLING_INITIAL_COINS  = "billing.initial_coins"
	BILLING_COINS_PER_1K   = "billing.coins_per_1k_tokens"
)

var defaultSQLiteParams = map[string]string{
	"_journal":      "WAL",
	"_busy_timeout": "10000",
	"_synchronous":  "NORMAL",
	"_cache":        "shared",
}

type Config struct {
	k *koanf.Koanf
}

var configPath string

func init() {
	flag.StringVar(&configPath, "config", "", "Path to config file")
}

func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]any{
		GLOBAL_LANGUAGE:          "en",
		GLOBAL_MAX_TURNS:         40,
		TELEGRAM_TOKEN:           "",
		DATABASE_DSN:             "bot.db?_journal=WAL&_busy_timeout=5000&_synchronous=NORMAL&_cache=shared",
		LOGGING_LEVEL:            "info",
		LOGGING_WRITE_IN_FILE:    false,
		AI_SYSTEM_PROMPT:         "",
		AI_DEFAULT_MODEL:         "openai:gpt-4o-mini",
		AI_MAX_TOKENS:            850,
		AI_RESERVE_TOKENS:        1000,
		BILLING_ENABLED:          true,
		BILLING_INITIAL_COINS:    100,
		BILLING_COINS_PER_1K:     1,
		"commands.start.enabled":   true,
		"commands.ask.enabled":     true,
		"commands.reset.enabled":   true,
		"commands.balance.enabled": true,
		"commands.model.enabled":   true,
	}
	k.Load(confmap.Provider(defaults, "."), nil)

	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("error loading config %s: %v", path, err)
			}
			break
		}
	}

	k.Load(env.Provider("CHATSCRIBE_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "CHATSCRIBE_")),
			"_", ".",
		)
	}), nil)

	if k.Get(TELEGRAM_TOKEN) == "" {
		return nil, fmt.Errorf("telegram token is required")
	}

	return &Config{k: k}, nil
}

// NewFromMap builds a Config from raw key/value pairs, bypassing file
// and environment lookup. Used in tests.
func NewFromMap(values map[string]any) *Config {
	k := koanf.New(".")
	k.Load(confmap.Provider(values, "."), nil)
	return &Config{k: k}
}

func (c *Config) Telegram() TelegramConfig {
	var cfg TelegramConfig
	if err := c.k.Unmarshal("telegram", &cfg); err != nil {
		log.Fatalf("telegramConfig unmarshal error: %v", err)
		return TelegramConfig{}
	}
	return cfg
}

func (c *Config) AI() AIConfig {
	var cfg AIConfig
	if err := c.k.Unmarshal("ai", &cfg); err != nil {
		log.Fatalf("aiConfig unmarshal error: %v", err)
		return AIConfig{}
	}
	return cfg
}

func (c *Config) Billing() BillingConfig {
	return BillingConfig{
		Enabled:          c.k.Bool(BILLING_ENABLED),
		InitialCoins:     c.k.Int64(BILLING_INITIAL_COINS),
		CoinsPer1KTokens: c.k.Int64(BILLING_COINS_PER_1K),
	}
}

func (c *Config) Log() LoggingConfig {
	return LoggingConfig{
		LogLevel:    c.k.String(LOGGING_LEVEL),
		WriteInFile: c.k.Bool(LOGGING_WRITE_IN_FILE),
		FilePath:    c.k.String(LOGGING_FILE_PATH),
	}
}

func (c *Config) Global() GlobalConfig {
	return GlobalConfig{
		InterfaceLanguage:    c.k.String(GLOBAL_LANGUAGE),
		MaxConversationTurns: c.k.Int(GLOBAL_MAX_TURNS),
	}
}

func (c *Config) GetCommandConfig(name string) CommandConfig {
	return CommandConfig{
		Enabled: c.k.Bool(fmt.Sprintf("commands.%s.enabled", name)),
	}
}

func (c *Config) GetDatabaseDSN() string {
	dsn := c.k.String(DATABASE_DSN)
	parts := strings.Split(dsn, "?")
	path := parts[0]

	params := make(map[string]string)
	if len(parts) > 1 {
		for param := range strings.SplitSeq(parts[1], "&") {
			if kv := strings.Split(param, "="); len(kv) == 2 {
				params[kv[0]] = kv[1]
			}
		}
	}

	for k, v := range defaultSQLiteParams {
		if _, exists := params[k]; !exists {
			params[k] = v
		}
	}

	var queryParams []string
	for k, v := range params {
		queryParams = append(queryParams, k+"="+v)
	}
	sort.Strings(queryParams)

	if len(queryParams) > 0 {
		return path + "?" + strings.Join(queryParams, "&")
	}
	return path
}

func getConfigPaths() []string {
	if configPath != "" {
		return []string{configPath}
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		home, _ := os.UserHomeDir()
		xdgConfig = filepath.Join(home, ".config")
	}

	return []string{
		"chatscribe.toml",
		"config.toml",
		filepath.Join(xdgConfig, "chatscribe", "config.toml"),
		"/etc/chatscribe/config.toml",
	}
}
