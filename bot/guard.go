package bot

import (
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// memberGetter is the slice of the Telegram API the guard needs.
type memberGetter interface {
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

// Guard gates bot features behind membership in a channel. An empty
// channel name disables the check.
type Guard struct {
	API     memberGetter
	Channel string // e.g. "@paperpilot_news"
	Logger  *slog.Logger
}

// Allow reports whether the user may use the bot. API failures fail
// open: a broken membership lookup must not lock everyone out.
func (g *Guard) Allow(userID int64) bool {
	if g == nil || g.Channel == "" {
		return true
	}
	channel := g.Channel
	if !strings.HasPrefix(channel, "@") {
		channel = "@" + channel
	}
	member, err := g.API.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			SuperGroupUsername: channel,
			UserID:             userID,
		},
	})
	if err != nil {
		if g.Logger != nil {
			g.Logger.Warn("guard_lookup_failed", "user_id", userID, "error", err.Error())
		}
		return true
	}
	switch member.Status {
	case "creator", "administrator", "member":
		return true
	default:
		return false
	}
}

// DenialMessage tells the user how to get access.
func (g *Guard) DenialMessage() string {
	return fmt.Sprintf("Please join %s to use this bot, then try again.", g.Channel)
}
