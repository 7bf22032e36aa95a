package adapters

import (
	"context"
	"errors"
	"net/url"
	"socialstats/internal/fetch"
	"socialstats/internal/models"
	"strconv"
)

const youtubeBaseURL = "https://www.googleapis.com/youtube/v3"

const (
	diagYoutubeSubs   = "youtube_subs_error"
	diagYoutubeVideos = "youtube_videos_error"
	diagYoutubeLive   = "youtube_live_error"
)

type YoutubeAdapter struct {
	fetcher   fetch.Fetcher
	baseURL   string
	apiKey    string
	channelID string
	maxVideos int
}

func NewYoutubeAdapter(fetcher fetch.Fetcher, apiKey, channelID string, maxVideos int) *YoutubeAdapter {
	if maxVideos <= 0 {
		maxVideos = models.DefaultMaxVideos
	}
	return &YoutubeAdapter{
		fetcher:   fetcher,
		baseURL:   youtubeBaseURL,
		apiKey:    apiKey,
		channelID: channelID,
		maxVideos: maxVideos,
	}
}

func (a *YoutubeAdapter) Name() string { return "youtube" }

func (a *YoutubeAdapter) Collect(ctx context.Context) Result {
	res := newResult(a.Name())

	if msg := a.missing(); msg != "" {
		res.fail(diagYoutubeSubs, "%s", msg)
		res.fail(diagYoutubeVideos, "%s Recent videos not updated.", msg)
		res.fail(diagYoutubeLive, "%s Live status not checked.", msg)
		return res
	}

	if subs, err := a.subscribers(ctx); err != nil {
		res.fail(diagYoutubeSubs, "Error fetching YouTube subscribers: %s", err)
	} else {
		res.setFollowers(models.PlatformYoutube, subs)
	}

	if videos, err := a.recentVideos(ctx); err != nil {
		res.fail(diagYoutubeVideos, "Error fetching YouTube videos: %s", err)
	} else {
		res.setVideos(videos)
	}

	if live, err := a.liveStatus(ctx); err != nil {
		res.fail(diagYoutubeLive, "Error fetching YouTube live status: %s", err)
	} else {
		res.setLive(live)
	}

	return res
}

func (a *YoutubeAdapter) missing() string {
	switch {
	case a.channelID == "":
		return "YouTube channel ID missing."
	case a.apiKey == "":
		return "YouTube API key missing."
	}
	return ""
}

func (a *YoutubeAdapter) get(ctx context.Context, name, path string, query url.Values) (fetch.Body, error) {
	query.Set("key", a.apiKey)
	return a.fetcher.FetchJSON(ctx, fetch.Request{
		Name:  "youtube " + name,
		URL:   a.baseURL + path,
		Query: query,
	})
}

func (a *YoutubeAdapter) subscribers(ctx context.Context) (int, error) {
	body, err := a.get(ctx, "channels", "/channels", url.Values{
		"part": {"statistics"},
		"id":   {a.channelID},
	})
	if err != nil {
		return 0, err
	}
	if len(body.Get("items").Array()) == 0 {
		return 0, errors.New("no YouTube channel data found")
	}
	n, ok := body.Int("items.0.statistics.subscriberCount")
	if !ok {
		return 0, errors.New("subscriberCount missing (hidden subscriber count?)")
	}
	return n, nil
}

// recentVideos resolves the channel's uploads playlist, then lists it.
func (a *YoutubeAdapter) recentVideos(ctx context.Context) ([]models.VideoSummary, error) {
	channel, err := a.get(ctx, "channels", "/channels", url.Values{
		"part": {"contentDetails"},
		"id":   {a.channelID},
	})
	if err != nil {
		return nil, err
	}
	uploads := channel.Get("items.0.contentDetails.relatedPlaylists.uploads").String()
	if uploads == "" {
		return nil, errors.New("no YouTube channel contentDetails found")
	}

	playlist, err := a.get(ctx, "playlistItems", "/playlistItems", url.Values{
		"part":       {"snippet"},
		"playlistId": {uploads},
		"maxResults": {strconv.Itoa(a.maxVideos)},
	})
	if err != nil {
		return nil, err
	}

	items := playlist.Get("items").Array()
	videos := make([]models.VideoSummary, 0, len(items))
	for _, item := range items {
		snippet := item.Get("snippet")
		id := snippet.Get("resourceId.videoId").String()
		if id == "" {
			continue
		}
		videos = append(videos, models.VideoSummary{
			ID:           id,
			Title:        snippet.Get("title").String(),
			ThumbnailURL: BestThumbnail(snippet.Get("thumbnails")),
		})
		if len(videos) == a.maxVideos {
			break
		}
	}
	return videos, nil
}

func (a *YoutubeAdapter) liveStatus(ctx context.Context) (models.LiveStatus, error) {
	body, err := a.get(ctx, "search", "/search", url.Values{
		"part":      {"snippet"},
		"channelId": {a.channelID},
		"eventType": {"live"},
		"type":      {"video"},
	})
	if err != nil {
		return models.LiveStatus{}, err
	}
	items := body.Get("items").Array()
	if len(items) == 0 {
		return models.NoLive(), nil
	}
	id := items[0].Get("id.videoId").String()
	if id == "" {
		return models.LiveStatus{}, errors.New("live search result without videoId")
	}
	return models.YoutubeLive(id, items[0].Get("snippet.title").String(), a.channelID), nil
}
