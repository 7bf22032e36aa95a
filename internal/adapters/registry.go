package adapters

import (
	"socialstats/internal/fetch"
	"socialstats/internal/providers"
	"socialstats/internal/structures"
)

// NewAdapters builds every platform adapter from the configured credentials.
// The order is the order in which diagnostics are aggregated.
func NewAdapters(conf *structures.Config, fetcher fetch.Fetcher, cache providers.CacheProviderInterface) []Adapter {
	c := conf.Credentials
	return []Adapter{
		NewYoutubeAdapter(fetcher, c.YoutubeAPIKey, c.YoutubeChannelID, conf.Collector.MaxVideos),
		NewTelegramAdapter(fetcher, c.TelegramBotToken, c.TelegramChatID),
		NewInstagramAdapter(fetcher, conf.Collector.InstagramAPIVersion, c.InstagramAccountID, c.InstagramToken),
		NewXAdapter(fetcher, c.XBearerToken, c.XUserID),
		NewTwitchAdapter(fetcher, cache, c.TwitchClientID, c.TwitchClientSecret, c.TwitchUsername),
		NewTiktokAdapter(fetcher, c.TikAPIKey, c.TiktokUsername),
		NewVKGroupAdapter(fetcher, conf.Collector.VKAPIVersion, c.VKGroupToken, c.VKGroupID),
		NewVKPersonalAdapter(fetcher, cache, conf.Collector.VKAPIVersion, c.VKUserToken, c.VKUserID),
	}
}
