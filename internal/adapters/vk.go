package adapters

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"socialstats/internal/fetch"
	"socialstats/internal/models"
	"socialstats/internal/providers"
	"strings"
	"time"
)

const vkBaseURL = "https://api.vk.com/method"

const (
	diagVKGroup           = "vk_group_error"
	diagVKPersonal        = "vk_personal_error"
	diagVKPersonalResolve = "vk_personal_resolve_warning"
)

// VK reports throttling as HTTP 200 with these error codes:
// 6 is "too many requests per second", 29 is "rate limit reached".
var vkRateLimitCodes = []int{6, 29}

// resolved screen names rarely change; keep them for a day
const vkResolveTTL = 24 * time.Hour

// vkAPI is shared by both VK adapters.
type vkAPI struct {
	fetcher fetch.Fetcher
	baseURL string
	version string
}

func (v vkAPI) call(ctx context.Context, method, token string, params url.Values) (fetch.Body, error) {
	params.Set("access_token", token)
	params.Set("v", v.version)
	body, err := v.fetcher.FetchJSON(ctx, fetch.Request{
		Name:           "vk " + method,
		URL:            v.baseURL + "/" + method,
		Query:          params,
		RateLimitCodes: vkRateLimitCodes,
	})
	if err != nil {
		return nil, err
	}
	if e := body.Get("error"); e.Exists() {
		return nil, fmt.Errorf("VK API error %d: %s", e.Get("error_code").Int(), e.Get("error_msg").String())
	}
	return body, nil
}

// withFallback runs primary and, when it fails for any reason, fallback.
// If both fail the returned error carries both messages.
func withFallback(primary, fallback func() (int, error)) (int, error) {
	n, perr := primary()
	if perr == nil {
		return n, nil
	}
	n, ferr := fallback()
	if ferr == nil {
		return n, nil
	}
	return 0, fmt.Errorf("primary: %s; fallback: %s", perr, ferr)
}

type VKGroupAdapter struct {
	api     vkAPI
	token   string
	groupID string
}

func NewVKGroupAdapter(fetcher fetch.Fetcher, version, token, groupID string) *VKGroupAdapter {
	return &VKGroupAdapter{
		api:     vkAPI{fetcher: fetcher, baseURL: vkBaseURL, version: version},
		token:   token,
		groupID: normalizeGroupID(groupID),
	}
}

// normalizeGroupID accepts the "-123" owner-id form as well as "123".
func normalizeGroupID(id string) string {
	return strings.TrimPrefix(strings.TrimSpace(id), "-")
}

func (a *VKGroupAdapter) Name() string { return "vk_group" }

func (a *VKGroupAdapter) Collect(ctx context.Context) Result {
	res := newResult(a.Name())

	switch {
	case a.token == "":
		res.fail(diagVKGroup, "VK group access token missing.")
		return res
	case a.groupID == "":
		res.fail(diagVKGroup, "VK group ID missing.")
		return res
	}

	n, err := withFallback(
		func() (int, error) { return a.members(ctx) },
		func() (int, error) { return a.membersCount(ctx) },
	)
	if err != nil {
		res.fail(diagVKGroup, "Error fetching VK group members: %s", err)
		return res
	}
	res.setFollowers(models.PlatformVKGroup, n)
	return res
}

func (a *VKGroupAdapter) members(ctx context.Context) (int, error) {
	body, err := a.api.call(ctx, "groups.getMembers", a.token, url.Values{
		"group_id": {a.groupID},
		"count":    {"0"},
	})
	if err != nil {
		return 0, err
	}
	n, ok := body.Int("response.count")
	if !ok {
		return 0, fmt.Errorf("unexpected groups.getMembers response: %s", abbreviate(body))
	}
	return n, nil
}

var vkGroupCountStrategies = []Strategy{
	{Name: "list", Path: "response.0.members_count"},
	{Name: "groups", Path: "response.groups.0.members_count"},
}

func (a *VKGroupAdapter) membersCount(ctx context.Context) (int, error) {
	body, err := a.api.call(ctx, "groups.getById", a.token, url.Values{
		"group_id": {a.groupID},
		"fields":   {"members_count"},
	})
	if err != nil {
		return 0, err
	}
	n, _, ok := FirstCount(body, vkGroupCountStrategies)
	if !ok {
		return 0, fmt.Errorf("unexpected groups.getById response: %s", abbreviate(body))
	}
	return n, nil
}

type VKPersonalAdapter struct {
	api    vkAPI
	cache  providers.CacheProviderInterface
	token  string
	userID string
}

func NewVKPersonalAdapter(fetcher fetch.Fetcher, cache providers.CacheProviderInterface, version, token, userID string) *VKPersonalAdapter {
	return &VKPersonalAdapter{
		api:    vkAPI{fetcher: fetcher, baseURL: vkBaseURL, version: version},
		cache:  cache,
		token:  token,
		userID: strings.TrimSpace(userID),
	}
}

func (a *VKPersonalAdapter) Name() string { return "vk_personal" }

func (a *VKPersonalAdapter) Collect(ctx context.Context) Result {
	res := newResult(a.Name())

	switch {
	case a.token == "":
		res.fail(diagVKPersonal, "VK user access token missing.")
		return res
	case a.userID == "":
		res.fail(diagVKPersonal, "VK user ID missing.")
		return res
	}

	userID := a.userID
	if !isNumeric(userID) {
		id, warning, err := a.resolve(ctx, userID)
		if err != nil {
			res.fail(diagVKPersonal, "Error resolving VK screen name %q: %s", userID, err)
			return res
		}
		if warning != "" {
			res.Diagnostics[diagVKPersonalResolve] = warning
		}
		userID = id
	}

	n, err := withFallback(
		func() (int, error) { return a.followers(ctx, userID) },
		func() (int, error) { return a.followersCount(ctx, userID) },
	)
	if err != nil {
		res.fail(diagVKPersonal, "Error fetching VK followers: %s", err)
		return res
	}
	res.setFollowers(models.PlatformVKPersonal, n)
	return res
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var errScreenNameNotFound = errors.New("screen name not found")

// resolve maps a screen name to a numeric user id. Names that resolve to
// something other than a user are passed through unchanged with a warning.
func (a *VKPersonalAdapter) resolve(ctx context.Context, name string) (id, warning string, err error) {
	key := "vk:resolve:" + name
	if cached, ok := a.cache.Get(key); ok && len(cached) > 0 {
		return string(cached), "", nil
	}

	body, err := a.api.call(ctx, "utils.resolveScreenName", a.token, url.Values{"screen_name": {name}})
	if err != nil {
		return "", "", err
	}
	resp := body.Get("response")
	// VK answers an unknown name with an empty list instead of an object.
	if !resp.IsObject() || !resp.Get("object_id").Exists() {
		return "", "", errScreenNameNotFound
	}
	if kind := resp.Get("type").String(); kind != "user" {
		return name, fmt.Sprintf("VK screen name %q resolves to a %s, not a user; using it as is.", name, kind), nil
	}
	id = resp.Get("object_id").String()
	a.cache.SetWithTTL(key, []byte(id), vkResolveTTL)
	return id, "", nil
}

func (a *VKPersonalAdapter) followers(ctx context.Context, userID string) (int, error) {
	body, err := a.api.call(ctx, "users.getFollowers", a.token, url.Values{
		"user_id": {userID},
		"count":   {"0"},
	})
	if err != nil {
		return 0, err
	}
	n, ok := body.Int("response.count")
	if !ok {
		return 0, fmt.Errorf("unexpected users.getFollowers response: %s", abbreviate(body))
	}
	return n, nil
}

func (a *VKPersonalAdapter) followersCount(ctx context.Context, userID string) (int, error) {
	body, err := a.api.call(ctx, "users.get", a.token, url.Values{
		"user_ids": {userID},
		"fields":   {"followers_count"},
	})
	if err != nil {
		return 0, err
	}
	n, ok := body.Int("response.0.followers_count")
	if !ok {
		return 0, fmt.Errorf("unexpected users.get response: %s", abbreviate(body))
	}
	return n, nil
}
