package models

import (
	"bytes"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// Platform keys of followerCounts. The set is fixed and always fully present.
const (
	PlatformYoutube    = "youtube"
	PlatformTelegram   = "telegram"
	PlatformInstagram  = "instagram"
	PlatformX          = "x"
	PlatformTwitch     = "twitch"
	PlatformTiktok     = "tiktok"
	PlatformVKGroup    = "vk_group"
	PlatformVKPersonal = "vk_personal"
)

var Platforms = []string{
	PlatformYoutube,
	PlatformTelegram,
	PlatformInstagram,
	PlatformX,
	PlatformTwitch,
	PlatformTiktok,
	PlatformVKGroup,
	PlatformVKPersonal,
}

const DefaultMaxVideos = 20

type FollowerCounts map[string]int

// NewFollowerCounts returns the fixed key set with every value at zero.
func NewFollowerCounts() FollowerCounts {
	fc := make(FollowerCounts, len(Platforms))
	for _, p := range Platforms {
		fc[p] = 0
	}
	return fc
}

func IsPlatform(key string) bool {
	for _, p := range Platforms {
		if p == key {
			return true
		}
	}
	return false
}

type VideoSummary struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	ThumbnailURL *string `json:"thumbnailUrl"`
}

// Diagnostics maps a diagnostic key such as "youtube_subs_error" to a
// human-readable message.
type Diagnostics map[string]string

type Snapshot struct {
	FollowerCounts FollowerCounts `json:"followerCounts"`
	YoutubeVideos  []VideoSummary `json:"youtubeVideos"`
	LiveStream     LiveStatus     `json:"liveStream"`
	LastUpdated    time.Time      `json:"lastUpdated"`
	DebugInfo      Diagnostics    `json:"debugInfo"`
}

func DefaultSnapshot() *Snapshot {
	return &Snapshot{
		FollowerCounts: NewFollowerCounts(),
		YoutubeVideos:  []VideoSummary{},
		LiveStream:     NoLive(),
		DebugInfo:      Diagnostics{},
	}
}

type ParseError struct {
	Section string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Section == "" {
		return fmt.Sprintf("snapshot: %s", e.Err)
	}
	return fmt.Sprintf("snapshot: %s: %s", e.Section, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseSnapshot decodes a persisted snapshot. Absent sections keep their
// defaults; a section of the wrong shape fails the whole document.
// Follower values that are not non-negative integers are read as zero and
// unknown platform keys are dropped.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, &ParseError{Err: err}
	}
	if root == nil {
		return nil, &ParseError{Err: fmt.Errorf("root is not an object")}
	}

	snap := DefaultSnapshot()

	if raw, ok := root["followerCounts"]; ok && !isNull(raw) {
		var counts map[string]json.RawMessage
		if err := json.Unmarshal(raw, &counts); err != nil {
			return nil, &ParseError{Section: "followerCounts", Err: err}
		}
		for key, value := range counts {
			if !IsPlatform(key) {
				continue
			}
			var n int
			if err := json.Unmarshal(value, &n); err == nil && n > 0 {
				snap.FollowerCounts[key] = n
			}
		}
	}

	if raw, ok := root["youtubeVideos"]; ok && !isNull(raw) {
		var videos []VideoSummary
		if err := json.Unmarshal(raw, &videos); err != nil {
			return nil, &ParseError{Section: "youtubeVideos", Err: err}
		}
		snap.YoutubeVideos = videos
	}

	if raw, ok := root["liveStream"]; ok && !isNull(raw) {
		var live LiveStatus
		if err := json.Unmarshal(raw, &live); err != nil {
			return nil, &ParseError{Section: "liveStream", Err: err}
		}
		snap.LiveStream = live
	}

	if raw, ok := root["lastUpdated"]; ok && !isNull(raw) {
		var ts string
		if err := json.Unmarshal(raw, &ts); err == nil {
			snap.LastUpdated = parseTimestamp(ts)
		}
	}

	// debugInfo is replaced on every run, so a malformed one is not worth failing over.
	if raw, ok := root["debugInfo"]; ok && !isNull(raw) {
		var diag Diagnostics
		if err := json.Unmarshal(raw, &diag); err == nil && diag != nil {
			snap.DebugInfo = diag
		}
	}

	return snap, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// parseTimestamp accepts RFC 3339 and the offset-less ISO form older
// snapshots were written with.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Encode renders the snapshot as indented UTF-8 JSON without HTML escaping.
func (s *Snapshot) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
