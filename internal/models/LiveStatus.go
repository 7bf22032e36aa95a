package models

import (
	"fmt"

	json "github.com/goccy/go-json"
)

type LiveType string

const (
	LiveNone    LiveType = "none"
	LiveYoutube LiveType = "youtube"
	LiveTwitch  LiveType = "twitch"
)

// LiveStatus is a tagged union keyed by Type. Only the fields of the active
// variant are serialized.
type LiveStatus struct {
	Type              LiveType
	ID                string
	Title             string
	YoutubeChannelID  string
	TwitchChannelName string
	// TwitchLive is set only on a youtube record when Twitch is live at the same time.
	TwitchLive *LiveStatus
}

func NoLive() LiveStatus {
	return LiveStatus{Type: LiveNone}
}

func YoutubeLive(id, title, channelID string) LiveStatus {
	return LiveStatus{Type: LiveYoutube, ID: id, Title: title, YoutubeChannelID: channelID}
}

func TwitchLive(id, title, channelName string) LiveStatus {
	return LiveStatus{Type: LiveTwitch, ID: id, Title: title, TwitchChannelName: channelName}
}

func (l LiveStatus) IsLive() bool {
	return l.Type == LiveYoutube || l.Type == LiveTwitch
}

type youtubeLiveJSON struct {
	Type             LiveType    `json:"type"`
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	YoutubeChannelID string      `json:"youtubeChannelId"`
	TwitchLive       *LiveStatus `json:"twitchLive,omitempty"`
}

type twitchLiveJSON struct {
	Type              LiveType `json:"type"`
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	TwitchChannelName string   `json:"twitchChannelName"`
}

type noneLiveJSON struct {
	Type LiveType `json:"type"`
}

func (l LiveStatus) MarshalJSON() ([]byte, error) {
	switch l.Type {
	case LiveYoutube:
		return json.Marshal(youtubeLiveJSON{
			Type:             l.Type,
			ID:               l.ID,
			Title:            l.Title,
			YoutubeChannelID: l.YoutubeChannelID,
			TwitchLive:       l.TwitchLive,
		})
	case LiveTwitch:
		return json.Marshal(twitchLiveJSON{
			Type:              l.Type,
			ID:                l.ID,
			Title:             l.Title,
			TwitchChannelName: l.TwitchChannelName,
		})
	default:
		return json.Marshal(noneLiveJSON{Type: LiveNone})
	}
}

func (l *LiveStatus) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type              LiveType    `json:"type"`
		ID                string      `json:"id"`
		Title             string      `json:"title"`
		YoutubeChannelID  string      `json:"youtubeChannelId"`
		TwitchChannelName string      `json:"twitchChannelName"`
		TwitchLive        *LiveStatus `json:"twitchLive"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch raw.Type {
	case LiveYoutube:
		*l = YoutubeLive(raw.ID, raw.Title, raw.YoutubeChannelID)
		if raw.TwitchLive != nil && raw.TwitchLive.Type == LiveTwitch {
			nested := *raw.TwitchLive
			l.TwitchLive = &nested
		}
	case LiveTwitch:
		*l = TwitchLive(raw.ID, raw.Title, raw.TwitchChannelName)
	case LiveNone, "":
		*l = NoLive()
	default:
		return fmt.Errorf("unknown live stream type %q", raw.Type)
	}
	return nil
}
