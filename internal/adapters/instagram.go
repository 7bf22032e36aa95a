package adapters

import (
	"context"
	"net/url"
	"socialstats/internal/fetch"
	"socialstats/internal/models"
)

const instagramBaseURL = "https://graph.facebook.com"

const diagInstagram = "instagram_error"

var instagramStrategies = []Strategy{
	{Name: "field", Path: "followers_count"},
	{Name: "insights", Path: "data.0.values.0.value"},
}

type InstagramAdapter struct {
	fetcher   fetch.Fetcher
	baseURL   string
	version   string
	accountID string
	token     string
}

func NewInstagramAdapter(fetcher fetch.Fetcher, version, accountID, token string) *InstagramAdapter {
	return &InstagramAdapter{
		fetcher:   fetcher,
		baseURL:   instagramBaseURL,
		version:   version,
		accountID: accountID,
		token:     token,
	}
}

func (a *InstagramAdapter) Name() string { return "instagram" }

func (a *InstagramAdapter) Collect(ctx context.Context) Result {
	res := newResult(a.Name())

	switch {
	case a.token == "":
		res.fail(diagInstagram, "Instagram access token missing.")
		return res
	case a.accountID == "":
		res.fail(diagInstagram, "Instagram business account ID missing.")
		return res
	}

	body, err := a.fetcher.FetchJSON(ctx, fetch.Request{
		Name: "instagram account",
		URL:  a.baseURL + "/" + a.version + "/" + url.PathEscape(a.accountID),
		Query: url.Values{
			"fields":       {"followers_count"},
			"access_token": {a.token},
		},
	})
	if err != nil {
		res.fail(diagInstagram, "Error fetching Instagram followers: %s", err)
		return res
	}

	n, _, ok := FirstCount(body, instagramStrategies)
	if !ok {
		res.fail(diagInstagram, "Instagram response has no follower count: %s", abbreviate(body))
		return res
	}
	res.setFollowers(models.PlatformInstagram, n)
	return res
}
