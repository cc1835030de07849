package config

import "slices"

type GlobalConfig struct {
	InterfaceLanguage    string
	MaxConversationTurns int
}

type LoggingConfig struct {
	LogLevel    string `koanf:"level"`
	WriteInFile bool   `koanf:"write_in_file"`
	FilePath    string `koanf:"file_path"`
}

func (c *LoggingConfig) Level() string {
	return c.LogLevel
}

type TelegramConfig struct {
	Token        string  `koanf:"token"`
	AllowedUsers []int64 `koanf:"allowed_users"`
	AllowedChats []int64 `koanf:"allowed_chats"`
}

// IsAllowed reports whether the user or chat may talk to the bot.
// Empty allow lists mean the bot is open to everyone.
func (c TelegramConfig) IsAllowed(userID, chatID int64) bool {
	if len(c.AllowedUsers) == 0 && len(c.AllowedChats) == 0 {
		return true
	}
	return slices.Contains(c.AllowedUsers, userID) ||
		slices.Contains(c.AllowedChats, chatID)
}

type ProviderConfig struct {
	Name         string `koanf:"name"`
	BaseURL      string `koanf:"base_url"`
	APIKey       string `koanf:"api_key"`
	APIKeyFile   string `koanf:"api_key_file"`
	DefaultModel string `koanf:"default_model"`
}

type ModelProfileConfig struct {
	Name          string `koanf:"name"`
	ContextWindow int    `koanf:"context_window"`
	Strategy      string `koanf:"counting_strategy"`
	ImageModel    bool   `koanf:"image_model"`
}

type AIConfig struct {
	SystemPrompt  string               `koanf:"system_prompt"`
	DefaultModel  string               `koanf:"default_model"`
	MaxTokens     int                  `koanf:"max_tokens"`
	ReserveTokens int                  `koanf:"reserve_tokens"`
	Providers     []ProviderConfig     `koanf:"providers"`
	Models        []ModelProfileConfig `koanf:"models"`
}

type BillingConfig struct {
	Enabled          bool
	InitialCoins     int64
	CoinsPer1KTokens int64
}

type CommandConfig struct {
	Enabled bool
}
