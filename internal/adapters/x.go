package adapters

import (
	"context"
	"net/url"
	"socialstats/internal/fetch"
	"socialstats/internal/models"
)

const xBaseURL = "https://api.twitter.com/2"

const diagX = "x_error"

type XAdapter struct {
	fetcher fetch.Fetcher
	baseURL string
	bearer  string
	userID  string
}

func NewXAdapter(fetcher fetch.Fetcher, bearer, userID string) *XAdapter {
	return &XAdapter{fetcher: fetcher, baseURL: xBaseURL, bearer: bearer, userID: userID}
}

func (a *XAdapter) Name() string { return "x" }

func (a *XAdapter) Collect(ctx context.Context) Result {
	res := newResult(a.Name())

	switch {
	case a.bearer == "":
		res.fail(diagX, "X bearer token missing.")
		return res
	case a.userID == "":
		res.fail(diagX, "X user ID missing.")
		return res
	}

	body, err := a.fetcher.FetchJSON(ctx, fetch.Request{
		Name:    "x users",
		URL:     a.baseURL + "/users/" + url.PathEscape(a.userID),
		Headers: map[string]string{"Authorization": "Bearer " + a.bearer},
		Query:   url.Values{"user.fields": {"public_metrics"}},
	})
	if err != nil {
		res.fail(diagX, "Error fetching X followers: %s", err)
		return res
	}

	n, ok := body.Int("data.public_metrics.followers_count")
	if !ok {
		if msg := body.Get("errors.0.detail").String(); msg != "" {
			res.fail(diagX, "X API error: %s", msg)
			return res
		}
		res.fail(diagX, "X response has no follower count: %s", abbreviate(body))
		return res
	}
	res.setFollowers(models.PlatformX, n)
	return res
}
