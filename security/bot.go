package security

import "strings"

// Known automated user agents, grouped by allow-list category. Agents in no
// category are plain bots and are denied whenever bot detection is live.
var (
	searchEngineAgents = []string{
		"googlebot",
		"bingbot",
		"duckduckbot",
		"yandexbot",
		"baiduspider",
	}
	previewAgents = []string{
		"slackbot",
		"twitterbot",
		"facebookexternalhit",
		"discordbot",
		"telegrambot",
		"whatsapp",
	}
	genericBotMarkers = []string{
		"bot",
		"crawler",
		"spider",
		"scraper",
		"curl/",
		"wget/",
		"python-requests",
		"go-http-client",
		"headlesschrome",
		"phantomjs",
	}
)

// classifyAgent reports whether the user agent looks automated and, if so,
// which allow-list category it belongs to ("" for uncategorized bots).
func classifyAgent(userAgent string) (bot bool, category string) {
	ua := strings.ToLower(strings.TrimSpace(userAgent))
	if ua == "" {
		return true, ""
	}
	for _, agent := range searchEngineAgents {
		if strings.Contains(ua, agent) {
			return true, CategorySearchEngine
		}
	}
	for _, agent := range previewAgents {
		if strings.Contains(ua, agent) {
			return true, CategoryPreview
		}
	}
	for _, marker := range genericBotMarkers {
		if strings.Contains(ua, marker) {
			return true, ""
		}
	}
	return false, ""
}

// matchBot evaluates the bot rule against a user agent. A true result means
// the request should be denied.
func matchBot(rule *BotRule, userAgent string) bool {
	if rule == nil {
		return false
	}
	bot, category := classifyAgent(userAgent)
	if !bot {
		return false
	}
	for _, allowed := range rule.Allow {
		if category != "" && category == allowed {
			return false
		}
	}
	return true
}
