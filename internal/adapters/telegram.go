package adapters

import (
	"context"
	"net/url"
	"socialstats/internal/fetch"
	"socialstats/internal/models"
)

const telegramBaseURL = "https://api.telegram.org"

const diagTelegram = "telegram_error"

type TelegramAdapter struct {
	fetcher  fetch.Fetcher
	baseURL  string
	botToken string
	chatID   string
}

func NewTelegramAdapter(fetcher fetch.Fetcher, botToken, chatID string) *TelegramAdapter {
	return &TelegramAdapter{fetcher: fetcher, baseURL: telegramBaseURL, botToken: botToken, chatID: chatID}
}

func (a *TelegramAdapter) Name() string { return "telegram" }

func (a *TelegramAdapter) Collect(ctx context.Context) Result {
	res := newResult(a.Name())

	switch {
	case a.botToken == "":
		res.fail(diagTelegram, "Telegram bot token missing.")
		return res
	case a.chatID == "":
		res.fail(diagTelegram, "Telegram channel chat ID missing.")
		return res
	}

	body, err := a.fetcher.FetchJSON(ctx, fetch.Request{
		Name:  "telegram getChatMemberCount",
		URL:   a.baseURL + "/bot" + a.botToken + "/getChatMemberCount",
		Query: url.Values{"chat_id": {a.chatID}},
	})
	if err != nil {
		res.fail(diagTelegram, "Error fetching Telegram channel members: %s", err)
		return res
	}

	if !body.Get("ok").Bool() {
		desc := body.Get("description").String()
		if desc == "" {
			desc = "Unknown error"
		}
		res.fail(diagTelegram, "Telegram API error: %s", desc)
		return res
	}
	n, ok := body.Int("result")
	if !ok {
		res.fail(diagTelegram, "Telegram response has no member count: %s", abbreviate(body))
		return res
	}
	res.setFollowers(models.PlatformTelegram, n)
	return res
}
