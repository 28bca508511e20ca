package providers

import (
	"fmt"
	"replyguy/internal/structures"

	"github.com/bwmarrin/discordgo"
)

// NewSessionProvider builds the Discord gateway session. The session is
// not opened here; the bot opens it once all handlers are attached.
func NewSessionProvider(conf *structures.Config) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + conf.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentMessageContent

	return session, nil
}
