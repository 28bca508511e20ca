package bot

import (
	"errors"
	"fmt"
	"replyguy/internal/models"
	"replyguy/internal/providers"
	"replyguy/internal/services"
	"time"

	"github.com/bwmarrin/discordgo"
)

// onMessageCreate routes inbound messages: link collection for active
// members in their own channel, the setup flow for everyone else still
// pending in their channel.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	entry, tracked := b.registry.Get(m.Author.ID)
	if tracked && entry.Status == models.StatusActive {
		if m.ChannelID == entry.ChannelID {
			b.handleLinks(m, entry)
		}
		return
	}

	// Setup messages are only accepted in the author's own channel.
	ownerID, _, found := b.registry.FindByChannel(m.ChannelID)
	if !found || ownerID != m.Author.ID {
		return
	}
	b.handleSetup(m)
}

func (b *Bot) handleSetup(m *discordgo.MessageCreate) {
	res, err := b.tracker.Activate(m.Author.ID, m.ChannelID, m.Content)
	switch {
	case err == nil:
		b.send(m.ChannelID, fmt.Sprintf(
			"✅ Setup complete for **%s**.\nTracking from **%s → %s** with **%d replies/day**.",
			res.Username, res.StartDate.Format("2006-01-02"), res.EndDate.Format("2006-01-02"), res.Target))
	case errors.Is(err, services.ErrMalformedSetup):
		b.send(m.ChannelID, "⚠️ Invalid format! Please use: `username, targetReplies, YYYY-MM-DD`")
	case errors.Is(err, services.ErrNameCollision):
		b.send(m.ChannelID, "⚠️ That username is already taken by another tracked member. Please pick a different one.")
	default:
		b.send(m.ChannelID, "⚠️ Something went wrong. The admins have been notified.")
		b.logger.Errorf(providers.TypeTrack, "Setup failed for %s: %s", m.Author.ID, err)
		b.notifier.Notify(fmt.Sprintf("⚠️ Setup failed for <@%s>: %s", m.Author.ID, err))
	}
}

func (b *Bot) handleLinks(m *discordgo.MessageCreate, entry models.Entry) {
	n, err := b.tracker.CollectLinks(m.Author.ID, entry, m.Content)
	if err != nil {
		b.react(m, "⚠️")
		b.logger.Errorf(providers.TypeTrack, "Failed to record links for %s: %s", m.Author.ID, err)
		b.notifier.Notify(fmt.Sprintf("⚠️ Error recording links for <@%s>: %s", m.Author.ID, err))
		return
	}
	if n == 0 {
		return
	}

	b.react(m, "✅")
	b.notifier.Notify(fmt.Sprintf("📝 <@%s> logged **%d** link(s) on %s.",
		m.Author.ID, n, time.Now().UTC().Format("2006-01-02")))
}

func (b *Bot) send(channelID, content string) {
	if _, err := b.session.ChannelMessageSend(channelID, content); err != nil {
		b.logger.Warnf(providers.TypeBot, "Failed to send message to %s: %s", channelID, err)
	}
}

func (b *Bot) react(m *discordgo.MessageCreate, emoji string) {
	if err := b.session.MessageReactionAdd(m.ChannelID, m.ID, emoji); err != nil {
		b.logger.Warnf(providers.TypeBot, "Failed to react in %s: %s", m.ChannelID, err)
	}
}
