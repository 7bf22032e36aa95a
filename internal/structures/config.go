package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	FilePath string `yaml:"filePath" validate:"required"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode"`
	Dir   string `yaml:"dir"`
}

type FetchConfig struct {
	Timeout     time.Duration `yaml:"timeout" validate:"required|min:1"`
	MaxRetries  int           `yaml:"maxRetries" validate:"required|min:1"`
	BackoffBase float64       `yaml:"backoffBase" validate:"required|min:1"`
	Jitter      bool          `yaml:"jitter"`
	// per-host pacing, 0 disables it
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
}

type CollectorConfig struct {
	Parallelism         int           `yaml:"parallelism" validate:"required|min:1"`
	MaxVideos           int           `yaml:"maxVideos" validate:"required|min:1|max:50"`
	RunTimeout          time.Duration `yaml:"runTimeout"`
	VKAPIVersion        string        `yaml:"vkApiVersion" validate:"required"`
	InstagramAPIVersion string        `yaml:"instagramApiVersion" validate:"required"`
}

type ScheduleConfig struct {
	Interval time.Duration `yaml:"interval"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Textfile string `yaml:"textfile"`
}

// Credentials are opaque platform secrets. Any of them may be empty.
type Credentials struct {
	YoutubeAPIKey      string `yaml:"youtubeApiKey"`
	YoutubeChannelID   string `yaml:"youtubeChannelId"`
	TwitchClientID     string `yaml:"twitchClientId"`
	TwitchClientSecret string `yaml:"twitchClientSecret"`
	TwitchUsername     string `yaml:"twitchUsername"`
	VKGroupToken       string `yaml:"vkGroupToken"`
	VKGroupID          string `yaml:"vkGroupId"`
	VKUserToken        string `yaml:"vkUserToken"`
	VKUserID           string `yaml:"vkUserId"`
	TelegramBotToken   string `yaml:"telegramBotToken"`
	TelegramChatID     string `yaml:"telegramChatId"`
	InstagramAccountID string `yaml:"instagramAccountId"`
	InstagramToken     string `yaml:"instagramToken"`
	XBearerToken       string `yaml:"xBearerToken"`
	XUserID            string `yaml:"xUserId"`
	TikAPIKey          string `yaml:"tikapiKey"`
	TiktokUsername     string `yaml:"tiktokUsername"`
}

type Config struct {
	AppName     string
	Debug       bool
	Daemon      bool
	Path        string
	WebServer   Server          `yaml:"webServer"`
	Persistence Persistence     `yaml:"persistence"`
	Logger      LoggerConfig    `yaml:"logger"`
	Fetch       FetchConfig     `yaml:"fetch"`
	Collector   CollectorConfig `yaml:"collector"`
	Schedule    ScheduleConfig  `yaml:"schedule"`
	Cache       CacheConfig     `yaml:"cache"`
	Metrics     MetricsConfig   `yaml:"metrics"`
	Credentials Credentials     `yaml:"credentials"`
}
