package bot

import (
	"fmt"
	"replyguy/internal/models"
	"replyguy/internal/providers"

	"github.com/bwmarrin/discordgo"
)

func channelName(member *discordgo.Member) string {
	return member.User.Username + "-replies"
}

// createUserChannel creates the member's private channel under the
// configured category: hidden from @everyone, visible to the member,
// the bot and the admin role.
func (b *Bot) createUserChannel(member *discordgo.Member) (*discordgo.Channel, error) {
	allowMember := int64(discordgo.PermissionViewChannel |
		discordgo.PermissionSendMessages |
		discordgo.PermissionReadMessageHistory)
	allowStaff := int64(discordgo.PermissionViewChannel | discordgo.PermissionSendMessages)
	denyAll := int64(discordgo.PermissionViewChannel)

	overwrites := []*discordgo.PermissionOverwrite{
		// The @everyone role id equals the guild id.
		{ID: b.conf.Discord.GuildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: denyAll},
		{ID: member.User.ID, Type: discordgo.PermissionOverwriteTypeMember, Allow: allowMember},
		{ID: b.session.State.User.ID, Type: discordgo.PermissionOverwriteTypeMember, Allow: allowStaff},
		{ID: b.conf.Discord.AdminRoleID, Type: discordgo.PermissionOverwriteTypeRole, Allow: allowStaff},
	}

	channel, err := b.session.GuildChannelCreateComplex(b.conf.Discord.GuildID, discordgo.GuildChannelCreateData{
		Name:                 channelName(member),
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             b.conf.Discord.CategoryID,
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create channel for %s: %w", member.User.ID, err)
	}
	return channel, nil
}

// findUserChannel returns an existing `<name>-replies` channel, if any.
func (b *Bot) findUserChannel(member *discordgo.Member) (*discordgo.Channel, error) {
	channels, err := b.session.GuildChannels(b.conf.Discord.GuildID)
	if err != nil {
		return nil, err
	}
	name := channelName(member)
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildText && ch.Name == name {
			return ch, nil
		}
	}
	return nil, nil
}

// provisionMember ensures a channel and a pending registry entry exist
// for the member, then greets them. greeting must contain one %s verb
// for the member mention.
func (b *Bot) provisionMember(member *discordgo.Member, greeting string) error {
	channel, err := b.findUserChannel(member)
	if err != nil {
		return err
	}
	if channel == nil {
		if channel, err = b.createUserChannel(member); err != nil {
			return err
		}
	}

	err = b.registry.Upsert(member.User.ID, channel.ID, displayName(member), 0, models.StatusPending, "")
	if err != nil {
		return err
	}

	_, err = b.session.ChannelMessageSend(channel.ID, fmt.Sprintf(greeting, member.Mention()))
	return err
}

// reconcile provisions members who already hold the tracked role but
// have no usable registry entry, reusing a leftover channel when the
// name matches.
func (b *Bot) reconcile() error {
	members, err := b.trackedMembers()
	if err != nil {
		return err
	}

	for _, member := range members {
		entry, tracked := b.registry.Get(member.User.ID)
		channel, err := b.findUserChannel(member)
		if err != nil {
			return err
		}
		if tracked && channel != nil && entry.ChannelID == channel.ID {
			continue
		}

		err = b.provisionMember(member, "👋 Hi %s, we set you up automatically.\n"+setupHint)
		if err != nil {
			b.logger.Errorf(providers.TypeBot, "Failed to reconcile %s: %s", member.User.ID, err)
		}
	}
	return nil
}

// trackedMembers pages through the guild member list and keeps the
// holders of the tracked role.
func (b *Bot) trackedMembers() ([]*discordgo.Member, error) {
	var out []*discordgo.Member
	after := ""
	for {
		page, err := b.session.GuildMembers(b.conf.Discord.GuildID, after, 1000)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			return out, nil
		}
		for _, member := range page {
			if hasRole(member, b.conf.Discord.TrackedRoleID) {
				out = append(out, member)
			}
		}
		after = page[len(page)-1].User.ID
	}
}
