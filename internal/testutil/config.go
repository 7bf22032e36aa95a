package testutil

import (
	"socialstats/internal/structures"
	"time"
)

// NewConfig returns a valid configuration with the same defaults the config
// provider applies and no credentials.
func NewConfig() *structures.Config {
	return &structures.Config{
		AppName:     "SocialStats",
		WebServer:   structures.Server{Host: "127.0.0.1", Port: 8090},
		Persistence: structures.Persistence{FilePath: "data.json"},
		Logger:      structures.LoggerConfig{Level: "info", Mode: 0644},
		Fetch: structures.FetchConfig{
			Timeout:     time.Second,
			MaxRetries:  3,
			BackoffBase: 2,
		},
		Collector: structures.CollectorConfig{
			Parallelism:         4,
			MaxVideos:           20,
			VKAPIVersion:        "5.199",
			InstagramAPIVersion: "v19.0",
		},
		Schedule: structures.ScheduleConfig{Interval: 15 * time.Minute},
		Cache:    structures.CacheConfig{Enabled: true, Size: 16},
	}
}
