package models

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveStatus_MarshalVariants(t *testing.T) {
	tests := []struct {
		name     string
		live     LiveStatus
		expected string
	}{
		{"none", NoLive(), `{"type":"none"}`},
		{"zero value", LiveStatus{}, `{"type":"none"}`},
		{
			"twitch",
			TwitchLive("42", "Speedrun", "streamer"),
			`{"type":"twitch","id":"42","title":"Speedrun","twitchChannelName":"streamer"}`,
		},
		{
			"youtube",
			YoutubeLive("abc", "Live now", "UC1"),
			`{"type":"youtube","id":"abc","title":"Live now","youtubeChannelId":"UC1"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.live)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))
		})
	}
}

func TestLiveStatus_MarshalYoutubeWithTwitch(t *testing.T) {
	live := YoutubeLive("abc", "Live now", "UC1")
	tw := TwitchLive("42", "Speedrun", "streamer")
	live.TwitchLive = &tw

	data, err := json.Marshal(live)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type":"youtube","id":"abc","title":"Live now","youtubeChannelId":"UC1",
		"twitchLive":{"type":"twitch","id":"42","title":"Speedrun","twitchChannelName":"streamer"}
	}`, string(data))
}

func TestLiveStatus_UnmarshalDropsForeignFields(t *testing.T) {
	var live LiveStatus
	err := json.Unmarshal([]byte(`{"type":"twitch","id":"1","title":"t","twitchChannelName":"c","youtubeChannelId":"UC"}`), &live)
	require.NoError(t, err)

	assert.Equal(t, TwitchLive("1", "t", "c"), live)
	assert.True(t, live.IsLive())
}

func TestLiveStatus_UnmarshalNestedTwitchOnlyOnYoutube(t *testing.T) {
	var live LiveStatus
	err := json.Unmarshal([]byte(`{"type":"youtube","id":"v","title":"t","youtubeChannelId":"UC",
		"twitchLive":{"type":"twitch","id":"1","title":"tw","twitchChannelName":"c"}}`), &live)
	require.NoError(t, err)
	require.NotNil(t, live.TwitchLive)
	assert.Equal(t, "c", live.TwitchLive.TwitchChannelName)

	// a nested record that is not a twitch stream is discarded
	err = json.Unmarshal([]byte(`{"type":"youtube","id":"v","title":"t","youtubeChannelId":"UC",
		"twitchLive":{"type":"none"}}`), &live)
	require.NoError(t, err)
	assert.Nil(t, live.TwitchLive)
}

func TestLiveStatus_UnmarshalMissingTypeIsNone(t *testing.T) {
	var live LiveStatus
	require.NoError(t, json.Unmarshal([]byte(`{}`), &live))
	assert.Equal(t, NoLive(), live)
	assert.False(t, live.IsLive())
}

func TestLiveStatus_UnmarshalUnknownType(t *testing.T) {
	var live LiveStatus
	err := json.Unmarshal([]byte(`{"type":"kick"}`), &live)
	assert.Error(t, err)
}
