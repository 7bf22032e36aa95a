package providers

import (
	"errors"
	"fmt"
	"path/filepath"
	"socialstats/internal/structures"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// credentialEnv maps credential config keys to the environment variables
// the scheduled job exports them under.
var credentialEnv = map[string]string{
	"credentials.youtubeApiKey":      "YOUTUBE_API_KEY",
	"credentials.youtubeChannelId":   "YOUR_YOUTUBE_CHANNEL_ID",
	"credentials.twitchClientId":     "TWITCH_CLIENT_ID",
	"credentials.twitchClientSecret": "TWITCH_CLIENT_SECRET",
	"credentials.twitchUsername":     "YOUR_TWITCH_USERNAME",
	"credentials.vkGroupToken":       "VK_GROUP_ACCESS_TOKEN",
	"credentials.vkGroupId":          "YOUR_VK_GROUP_ID",
	"credentials.vkUserToken":        "VK_USER_ACCESS_TOKEN",
	"credentials.vkUserId":           "YOUR_VK_USER_ID",
	"credentials.telegramBotToken":   "TELEGRAM_BOT_TOKEN",
	"credentials.telegramChatId":     "TELEGRAM_CHANNEL_CHAT_ID",
	"credentials.instagramAccountId": "INSTAGRAM_BUSINESS_ACCOUNT_ID",
	"credentials.instagramToken":     "INSTAGRAM_ACCESS_TOKEN",
	"credentials.xBearerToken":       "X_BEARER_TOKEN",
	"credentials.xUserId":            "YOUR_X_USER_ID",
	"credentials.tikapiKey":          "TIKAPI_IO_API_KEY",
	"credentials.tiktokUsername":     "YOUR_TIKTOK_USERNAME",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("webServer.host", "127.0.0.1")
	v.SetDefault("webServer.port", 8090)
	v.SetDefault("persistence.filePath", "data.json")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("fetch.timeout", 10*time.Second)
	v.SetDefault("fetch.maxRetries", 3)
	v.SetDefault("fetch.backoffBase", 2.0)
	v.SetDefault("fetch.jitter", true)
	v.SetDefault("fetch.requestsPerSecond", 5.0)
	v.SetDefault("collector.parallelism", 4)
	v.SetDefault("collector.maxVideos", 20)
	v.SetDefault("collector.vkApiVersion", "5.199")
	v.SetDefault("collector.instagramApiVersion", "v19.0")
	v.SetDefault("schedule.interval", 15*time.Minute)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.size", 16)
	v.SetDefault("metrics.enabled", true)
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config
	v := viper.New()
	setDefaults(v)

	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	v.BindEnv("logger.level", "SOCIALSTATS_LOG_LEVEL")
	v.BindEnv("persistence.filePath", "SOCIALSTATS_DATA_FILE")
	v.BindEnv("fetch.maxRetries", "SOCIALSTATS_MAX_RETRIES")
	v.BindEnv("fetch.timeout", "SOCIALSTATS_FETCH_TIMEOUT")
	v.BindEnv("collector.parallelism", "SOCIALSTATS_PARALLELISM")
	v.BindEnv("schedule.interval", "SOCIALSTATS_INTERVAL")
	for key, env := range credentialEnv {
		v.BindEnv(key, env)
	}

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	conf.AppName = "SocialStats"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode
	conf.Daemon = flags.DaemonMode

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	return &conf, nil
}
