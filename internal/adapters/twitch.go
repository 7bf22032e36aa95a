package adapters

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"socialstats/internal/fetch"
	"socialstats/internal/models"
	"socialstats/internal/providers"
	"time"
)

const (
	twitchAuthURL = "https://id.twitch.tv/oauth2/token"
	twitchAPIURL  = "https://api.twitch.tv/helix"
)

const (
	diagTwitchToken     = "twitch_token_error"
	diagTwitchUser      = "twitch_user_error"
	diagTwitchFollowers = "twitch_followers_error"
	diagTwitchLive      = "twitch_live_error"
	diagTwitchGeneral   = "twitch_general_error"
)

// tokens are refreshed this long before Twitch says they expire
const twitchTokenSlack = time.Minute

type twitchStage int

const (
	stageNoToken twitchStage = iota
	stageTokenAcquired
	stageUserResolved
	stageDataFetched
)

func (s twitchStage) String() string {
	switch s {
	case stageTokenAcquired:
		return "TokenAcquired"
	case stageUserResolved:
		return "UserResolved"
	case stageDataFetched:
		return "DataFetched"
	default:
		return "NoToken"
	}
}

type TwitchAdapter struct {
	fetcher      fetch.Fetcher
	cache        providers.CacheProviderInterface
	authURL      string
	apiURL       string
	clientID     string
	clientSecret string
	login        string
}

func NewTwitchAdapter(fetcher fetch.Fetcher, cache providers.CacheProviderInterface, clientID, clientSecret, login string) *TwitchAdapter {
	return &TwitchAdapter{
		fetcher:      fetcher,
		cache:        cache,
		authURL:      twitchAuthURL,
		apiURL:       twitchAPIURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		login:        login,
	}
}

func (a *TwitchAdapter) Name() string { return "twitch" }

func (a *TwitchAdapter) GeneralDiagnostic() string { return diagTwitchGeneral }

// twitchPipeline walks NoToken -> TokenAcquired -> UserResolved -> DataFetched.
// A failing token or user stage stops the walk with a single diagnostic.
// A token helix rejects with 401 is evicted; the user stage then goes back
// to NoToken once.
type twitchPipeline struct {
	adapter   *TwitchAdapter
	stage     twitchStage
	token     string
	userID    string
	refreshed bool
	res       *Result
}

func (a *TwitchAdapter) Collect(ctx context.Context) Result {
	res := newResult(a.Name())

	switch {
	case a.clientID == "":
		res.fail(diagTwitchToken, "Twitch client ID missing; skipping Twitch followers and live status.")
		return res
	case a.clientSecret == "":
		res.fail(diagTwitchToken, "Twitch client secret missing; skipping Twitch followers and live status.")
		return res
	case a.login == "":
		res.fail(diagTwitchUser, "Twitch username missing; skipping Twitch followers and live status.")
		return res
	}

	p := &twitchPipeline{adapter: a, stage: stageNoToken, res: &res}
	p.run(ctx)
	return res
}

func (p *twitchPipeline) run(ctx context.Context) {
	for p.stage != stageDataFetched {
		var err error
		switch p.stage {
		case stageNoToken:
			p.token, err = p.adapter.accessToken(ctx)
			if err != nil {
				p.res.fail(diagTwitchToken, "Error getting Twitch access token: %s; skipping Twitch followers and live status.", err)
				return
			}
			p.stage = stageTokenAcquired
		case stageTokenAcquired:
			p.userID, err = p.adapter.userID(ctx, p.token)
			if unauthorized(err) {
				p.adapter.dropToken()
				if !p.refreshed {
					p.refreshed = true
					p.stage = stageNoToken
					continue
				}
			}
			if err != nil {
				p.res.fail(diagTwitchUser, "Error fetching Twitch user ID for %s: %s; skipping Twitch followers and live status.", p.adapter.login, err)
				return
			}
			p.stage = stageUserResolved
		case stageUserResolved:
			p.fetchData(ctx)
			p.stage = stageDataFetched
		}
	}
}

// fetchData runs the two independent data calls; each failure is reported on its own.
func (p *twitchPipeline) fetchData(ctx context.Context) {
	n, err := p.adapter.followers(ctx, p.token, p.userID)
	if unauthorized(err) {
		p.adapter.dropToken()
	}
	if err != nil {
		p.res.fail(diagTwitchFollowers, "Error fetching Twitch followers for %s: %s", p.userID, err)
	} else {
		p.res.setFollowers(models.PlatformTwitch, n)
	}

	live, err := p.adapter.liveStatus(ctx, p.token)
	if unauthorized(err) {
		p.adapter.dropToken()
	}
	if err != nil {
		p.res.fail(diagTwitchLive, "Error fetching Twitch live status for %s: %s", p.adapter.login, err)
	} else {
		p.res.setLive(live)
	}
}

func (a *TwitchAdapter) tokenCacheKey() string {
	return "twitch:token:" + a.clientID
}

// dropToken forgets a token helix no longer accepts, so the next attempt
// requests a fresh one instead of reusing it until its TTL runs out.
func (a *TwitchAdapter) dropToken() {
	a.cache.Del(a.tokenCacheKey())
}

func unauthorized(err error) bool {
	var ferr *fetch.Error
	return errors.As(err, &ferr) && ferr.StatusCode == http.StatusUnauthorized
}

func (a *TwitchAdapter) accessToken(ctx context.Context) (string, error) {
	if cached, ok := a.cache.Get(a.tokenCacheKey()); ok && len(cached) > 0 {
		return string(cached), nil
	}

	body, err := a.fetcher.FetchJSON(ctx, fetch.Request{
		Name:   "twitch oauth2/token",
		Method: http.MethodPost,
		URL:    a.authURL,
		Query: url.Values{
			"client_id":     {a.clientID},
			"client_secret": {a.clientSecret},
			"grant_type":    {"client_credentials"},
		},
	})
	if err != nil {
		return "", err
	}
	token := body.Get("access_token").String()
	if token == "" {
		return "", errors.New("access_token missing in response")
	}
	if expires, ok := body.Int("expires_in"); ok {
		a.cache.SetWithTTL(a.tokenCacheKey(), []byte(token), time.Duration(expires)*time.Second-twitchTokenSlack)
	}
	return token, nil
}

func (a *TwitchAdapter) helix(ctx context.Context, token, path string, query url.Values) (fetch.Body, error) {
	return a.fetcher.FetchJSON(ctx, fetch.Request{
		Name: "twitch helix" + path,
		URL:  a.apiURL + path,
		Headers: map[string]string{
			"Client-ID":     a.clientID,
			"Authorization": "Bearer " + token,
		},
		Query: query,
	})
}

func (a *TwitchAdapter) userID(ctx context.Context, token string) (string, error) {
	body, err := a.helix(ctx, token, "/users", url.Values{"login": {a.login}})
	if err != nil {
		return "", err
	}
	id := body.Get("data.0.id").String()
	if id == "" {
		return "", fmt.Errorf("no Twitch user found for %s", a.login)
	}
	return id, nil
}

func (a *TwitchAdapter) followers(ctx context.Context, token, userID string) (int, error) {
	body, err := a.helix(ctx, token, "/channels/followers", url.Values{"broadcaster_id": {userID}})
	if err != nil {
		return 0, err
	}
	n, ok := body.Int("total")
	if !ok {
		return 0, errors.New("follower total missing in response")
	}
	return n, nil
}

func (a *TwitchAdapter) liveStatus(ctx context.Context, token string) (models.LiveStatus, error) {
	body, err := a.helix(ctx, token, "/streams", url.Values{"user_login": {a.login}})
	if err != nil {
		return models.LiveStatus{}, err
	}
	stream := body.Get("data.0")
	if !stream.Exists() {
		return models.NoLive(), nil
	}
	id := stream.Get("id").String()
	if id == "" {
		return models.LiveStatus{}, errors.New("stream record without id")
	}
	return models.TwitchLive(id, stream.Get("title").String(), a.login), nil
}
