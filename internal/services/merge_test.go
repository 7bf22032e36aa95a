package services

import (
	"socialstats/internal/adapters"
	"socialstats/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func livePtr(l models.LiveStatus) *models.LiveStatus { return &l }

func TestArbitrate(t *testing.T) {
	yt := models.YoutubeLive("Y", "yt title", "UC1")
	tw := models.TwitchLive("T", "tw title", "chan")
	none := models.NoLive()

	tests := []struct {
		name string
		yt   *models.LiveStatus
		tw   *models.LiveStatus
		want models.LiveStatus
	}{
		{name: "both live", yt: &yt, tw: &tw, want: models.LiveStatus{
			Type: models.LiveYoutube, ID: "Y", Title: "yt title", YoutubeChannelID: "UC1", TwitchLive: &tw,
		}},
		{name: "only twitch", yt: &none, tw: &tw, want: tw},
		{name: "only youtube", yt: &yt, tw: &none, want: yt},
		{name: "neither", yt: &none, tw: &none, want: none},
		{name: "youtube absent", yt: nil, tw: &tw, want: tw},
		{name: "both absent", want: none},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Arbitrate(tt.yt, tt.tw))
		})
	}
}

func TestArbitrate_TwitchRecordHasNoNestedField(t *testing.T) {
	tw := models.TwitchLive("T", "", "chan")
	tw.TwitchLive = livePtr(models.TwitchLive("X", "", "other"))

	got := Arbitrate(nil, &tw)
	assert.Nil(t, got.TwitchLive)
}

func previousSnapshot() *models.Snapshot {
	thumb := "https://i.ytimg.com/vi/old/mq.jpg"
	snap := models.DefaultSnapshot()
	snap.FollowerCounts[models.PlatformYoutube] = 100
	snap.FollowerCounts[models.PlatformTelegram] = 50
	snap.YoutubeVideos = []models.VideoSummary{{ID: "old", Title: "Old", ThumbnailURL: &thumb}}
	snap.LiveStream = models.TwitchLive("T0", "earlier", "chan")
	snap.DebugInfo = models.Diagnostics{"stale_error": "from last run"}
	return snap
}

func TestMerge_KeepsPreviousValuesOnFailure(t *testing.T) {
	prev := previousSnapshot()
	now := time.Date(2025, 3, 1, 12, 30, 45, 999, time.FixedZone("X", 3600))

	results := []adapters.Result{
		{Adapter: "youtube", Followers: map[string]int{}, Diagnostics: models.Diagnostics{"youtube_subs_error": "boom"}},
		{Adapter: "telegram", Followers: map[string]int{}, Diagnostics: models.Diagnostics{"telegram_error": "down"}},
	}
	next := Merge(prev, results, now)

	assert.Equal(t, prev.FollowerCounts, next.FollowerCounts)
	assert.Equal(t, prev.YoutubeVideos, next.YoutubeVideos)
	assert.Equal(t, prev.LiveStream, next.LiveStream)
	assert.Equal(t, time.Date(2025, 3, 1, 11, 30, 45, 0, time.UTC), next.LastUpdated)
	assert.Equal(t, models.Diagnostics{"youtube_subs_error": "boom", "telegram_error": "down"}, next.DebugInfo)
}

func TestMerge_ResetsDebugInfoOnSuccess(t *testing.T) {
	prev := previousSnapshot()
	results := []adapters.Result{
		{Adapter: "telegram", Followers: map[string]int{models.PlatformTelegram: 60}, Diagnostics: models.Diagnostics{}},
	}
	next := Merge(prev, results, time.Now())

	assert.Empty(t, next.DebugInfo)
	assert.NotNil(t, next.DebugInfo)
	assert.Equal(t, 60, next.FollowerCounts[models.PlatformTelegram])
	assert.Equal(t, 100, next.FollowerCounts[models.PlatformYoutube])
}

func TestMerge_EmptyVideoListReplaces(t *testing.T) {
	prev := previousSnapshot()
	empty := []models.VideoSummary{}
	results := []adapters.Result{{Adapter: "youtube", Videos: &empty, Live: livePtr(models.NoLive())}}

	next := Merge(prev, results, time.Now())
	assert.NotNil(t, next.YoutubeVideos)
	assert.Empty(t, next.YoutubeVideos)
	assert.Equal(t, models.NoLive(), next.LiveStream)
}

func TestMerge_ArbitratesLive(t *testing.T) {
	results := []adapters.Result{
		{Adapter: "youtube", Live: livePtr(models.YoutubeLive("Y", "", "UC"))},
		{Adapter: "twitch", Live: livePtr(models.TwitchLive("T", "", "chan"))},
	}
	next := Merge(models.DefaultSnapshot(), results, time.Now())

	assert.Equal(t, models.LiveYoutube, next.LiveStream.Type)
	require.NotNil(t, next.LiveStream.TwitchLive)
	assert.Equal(t, "T", next.LiveStream.TwitchLive.ID)
}

func TestMerge_OneLiveAdapterFailed(t *testing.T) {
	prev := previousSnapshot()
	results := []adapters.Result{
		{Adapter: "youtube", Live: livePtr(models.NoLive())},
		{Adapter: "twitch", Diagnostics: models.Diagnostics{"twitch_live_error": "x"}},
	}
	next := Merge(prev, results, time.Now())
	assert.Equal(t, models.NoLive(), next.LiveStream)
}

func TestMerge_NilPreviousAndUnknownPlatform(t *testing.T) {
	results := []adapters.Result{
		{Adapter: "x", Followers: map[string]int{models.PlatformX: 7, "myspace": 3}},
	}
	next := Merge(nil, results, time.Now())

	assert.Len(t, next.FollowerCounts, len(models.Platforms))
	assert.Equal(t, 7, next.FollowerCounts[models.PlatformX])
	assert.NotContains(t, next.FollowerCounts, "myspace")
	assert.NotNil(t, next.YoutubeVideos)
}

func TestMerge_Idempotent(t *testing.T) {
	prev := previousSnapshot()
	failing := []adapters.Result{
		{Adapter: "instagram", Diagnostics: models.Diagnostics{"instagram_error": "token expired"}},
	}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	once := Merge(prev, failing, now)
	twice := Merge(once, failing, now)
	assert.Equal(t, once, twice)
}
