package adapters

import (
	"context"
	"net/url"
	"socialstats/internal/fetch"
	"socialstats/internal/models"
	"strings"
)

const tiktokBaseURL = "https://api.tikapi.io"

const diagTiktok = "tiktok_error"

// TikAPI has returned the profile under several envelopes over time.
var tiktokStrategies = []Strategy{
	{Name: "userInfo", Path: "userInfo.stats.followerCount"},
	{Name: "data", Path: "data.stats.followerCount"},
	{Name: "user", Path: "user.stats.followerCount"},
}

type TiktokAdapter struct {
	fetcher  fetch.Fetcher
	baseURL  string
	apiKey   string
	username string
}

func NewTiktokAdapter(fetcher fetch.Fetcher, apiKey, username string) *TiktokAdapter {
	return &TiktokAdapter{
		fetcher:  fetcher,
		baseURL:  tiktokBaseURL,
		apiKey:   apiKey,
		username: strings.TrimPrefix(strings.TrimSpace(username), "@"),
	}
}

func (a *TiktokAdapter) Name() string { return "tiktok" }

func (a *TiktokAdapter) Collect(ctx context.Context) Result {
	res := newResult(a.Name())

	switch {
	case a.apiKey == "":
		res.fail(diagTiktok, "TikAPI key missing.")
		return res
	case a.username == "":
		res.fail(diagTiktok, "TikTok username missing.")
		return res
	}

	body, err := a.fetcher.FetchJSON(ctx, fetch.Request{
		Name:    "tiktok public/check",
		URL:     a.baseURL + "/public/check",
		Headers: map[string]string{"X-API-KEY": a.apiKey},
		Query:   url.Values{"username": {a.username}},
	})
	if err != nil {
		res.fail(diagTiktok, "Error fetching TikTok followers: %s", err)
		return res
	}

	n, _, ok := FirstCount(body, tiktokStrategies)
	if !ok {
		res.fail(diagTiktok, "Could not find TikTok follower count in response: %s", abbreviate(body))
		return res
	}
	res.setFollowers(models.PlatformTiktok, n)
	return res
}
