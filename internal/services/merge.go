package services

import (
	"socialstats/internal/adapters"
	"socialstats/internal/models"
	"time"
)

// Arbitrate picks the single live record to publish. YouTube wins over Twitch;
// when both are live the Twitch stream rides along as TwitchLive.
// A nil argument counts as not live.
func Arbitrate(yt, tw *models.LiveStatus) models.LiveStatus {
	twitchLive := tw != nil && tw.Type == models.LiveTwitch

	if yt != nil && yt.Type == models.LiveYoutube {
		out := *yt
		out.TwitchLive = nil
		if twitchLive {
			nested := *tw
			nested.TwitchLive = nil
			out.TwitchLive = &nested
		}
		return out
	}
	if twitchLive {
		out := *tw
		out.TwitchLive = nil
		return out
	}
	return models.NoLive()
}

// Merge folds one run's adapter results into the previous snapshot.
//
// Values an adapter did not produce keep their previous value, so a failed or
// unconfigured platform never erases data. Diagnostics are replaced wholesale.
func Merge(prev *models.Snapshot, results []adapters.Result, now time.Time) *models.Snapshot {
	if prev == nil {
		prev = models.DefaultSnapshot()
	}

	next := &models.Snapshot{
		FollowerCounts: models.NewFollowerCounts(),
		YoutubeVideos:  prev.YoutubeVideos,
		LiveStream:     prev.LiveStream,
		LastUpdated:    now.UTC().Truncate(time.Second),
		DebugInfo:      models.Diagnostics{},
	}
	for platform, n := range prev.FollowerCounts {
		if models.IsPlatform(platform) {
			next.FollowerCounts[platform] = n
		}
	}

	var ytLive, twLive *models.LiveStatus
	for _, res := range results {
		for platform, n := range res.Followers {
			if models.IsPlatform(platform) {
				next.FollowerCounts[platform] = n
			}
		}
		if res.Videos != nil {
			next.YoutubeVideos = *res.Videos
		}
		switch res.Adapter {
		case models.PlatformYoutube:
			ytLive = res.Live
		case models.PlatformTwitch:
			twLive = res.Live
		}
		for key, msg := range res.Diagnostics {
			next.DebugInfo[key] = msg
		}
	}

	if ytLive != nil || twLive != nil {
		next.LiveStream = Arbitrate(ytLive, twLive)
	}
	if next.YoutubeVideos == nil {
		next.YoutubeVideos = []models.VideoSummary{}
	}
	return next
}
