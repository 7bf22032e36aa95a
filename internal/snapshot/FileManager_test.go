package snapshot

import (
	"os"
	"path/filepath"
	"socialstats/internal/models"
	"socialstats/internal/testutil"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileManager() (*FileManager, *testutil.MockLogger, *testutil.MockMetrics) {
	logger := &testutil.MockLogger{}
	metrics := &testutil.MockMetrics{}
	return NewFileManager(logger, metrics).(*FileManager), logger, metrics
}

func sampleSnapshot() *models.Snapshot {
	thumb := "https://i.ytimg.com/vi/abc/hq.jpg"
	snap := models.DefaultSnapshot()
	snap.FollowerCounts[models.PlatformYoutube] = 1200
	snap.YoutubeVideos = []models.VideoSummary{{ID: "abc", Title: "Tom & Jerry <live>", ThumbnailURL: &thumb}}
	snap.LiveStream = models.YoutubeLive("abc", "Now", "UC1")
	snap.LastUpdated = time.Date(2025, 5, 4, 3, 2, 1, 0, time.UTC)
	snap.DebugInfo = models.Diagnostics{"x_error": "X bearer token missing."}
	return snap
}

func TestFileManager_Save_CreatesFileAndDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "data.json")
	fm, _, metrics := newTestFileManager()

	require.NoError(t, fm.Save(path, sampleSnapshot()))

	_, err := os.Stat(path)
	assert.NoError(t, err)
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, 1, metrics.Persisted)
}

func TestFileManager_Save_Format(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	fm, _, _ := newTestFileManager()
	require.NoError(t, fm.Save(path, sampleSnapshot()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.True(t, strings.HasPrefix(text, "{\n  \"followerCounts\": {"))
	assert.Contains(t, text, "Tom & Jerry <live>")
	assert.Contains(t, text, `"lastUpdated": "2025-05-04T03:02:01Z"`)
	assert.Contains(t, text, `"type": "youtube"`)
}

func TestFileManager_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	fm, logger, _ := newTestFileManager()
	snap := sampleSnapshot()

	require.NoError(t, fm.Save(path, snap))
	loaded := fm.Load(path)

	assert.Equal(t, snap, loaded)
	assert.Empty(t, logger.Logs)
}

func TestFileManager_Save_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	fm, _, _ := newTestFileManager()
	require.NoError(t, os.WriteFile(path, []byte("old garbage"), 0644))

	require.NoError(t, fm.Save(path, sampleSnapshot()))
	assert.Equal(t, 1200, fm.Load(path).FollowerCounts[models.PlatformYoutube])
}

func TestFileManager_Save_FailureLeavesNoTmp(t *testing.T) {
	dir := t.TempDir()
	fm, _, _ := newTestFileManager()

	err := fm.Save(dir, sampleSnapshot())
	assert.Error(t, err)
	_, statErr := os.Stat(dir + ".tmp")
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileManager_Load_Missing(t *testing.T) {
	fm, logger, _ := newTestFileManager()
	snap := fm.Load(filepath.Join(t.TempDir(), "absent.json"))

	assert.Equal(t, models.DefaultSnapshot(), snap)
	assert.Empty(t, logger.Logs)
}

func TestFileManager_Load_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "not json at all"},
		{name: "root array", content: "[1,2,3]"},
		{name: "videos wrong type", content: `{"youtubeVideos": {"id": "x"}}`},
		{name: "live unknown type", content: `{"liveStream": {"type": "kick"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "data.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			fm, logger, _ := newTestFileManager()

			snap := fm.Load(path)
			assert.Equal(t, models.DefaultSnapshot(), snap)
			assert.Equal(t, 1, logger.Count("warn"))
		})
	}
}

func TestFileManager_Load_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	content := `{"followerCounts": {"youtube": 5, "telegram": "12", "myspace": 9, "x": -3}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	fm, _, _ := newTestFileManager()

	snap := fm.Load(path)
	assert.Equal(t, 5, snap.FollowerCounts[models.PlatformYoutube])
	assert.Equal(t, 0, snap.FollowerCounts[models.PlatformTelegram])
	assert.Equal(t, 0, snap.FollowerCounts[models.PlatformX])
	assert.NotContains(t, snap.FollowerCounts, "myspace")
	assert.Equal(t, []models.VideoSummary{}, snap.YoutubeVideos)
	assert.Equal(t, models.NoLive(), snap.LiveStream)
}
