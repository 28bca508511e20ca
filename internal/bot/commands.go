package bot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"replyguy/internal/ledger"
	"replyguy/internal/models"
	"replyguy/internal/providers"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

const defaultSetupTarget = 5

var adminOnly = int64(discordgo.PermissionAdministrator)

func commandDefinitions() []*discordgo.ApplicationCommand {
	minTarget := float64(1)
	return []*discordgo.ApplicationCommand{
		{Name: "myreport", Description: "Download your current tracking report"},
		{Name: "pause", Description: "Pause your tracking (vacation mode)"},
		{Name: "resume", Description: "Resume your tracking"},
		{
			Name:        "settarget",
			Description: "Change your daily replies target",
			Options: []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "replies_per_day",
				Description: "New replies per day (must be > 0)",
				Required:    true,
				MinValue:    &minTarget,
			}},
		},
		{Name: "stop", Description: "Stop tracking permanently (archives your report)"},
		{
			Name:                     "setupuser",
			Description:              "Admin: manually set up a user if the bot missed them",
			DefaultMemberPermissions: &adminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "member",
					Description: "Member to set up",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "target",
					Description: "Daily replies target",
					MinValue:    &minTarget,
				},
			},
		},
		{
			Name:                     "deleteuser",
			Description:              "Admin: remove a user and archive their report",
			DefaultMemberPermissions: &adminOnly,
			Options: []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "member",
				Description: "Member to remove",
				Required:    true,
			}},
		},
		{
			Name:                     "getall",
			Description:              "Admin: compile all reports into one master workbook",
			DefaultMemberPermissions: &adminOnly,
		},
		{
			Name:                     "dashboard",
			Description:              "Admin: show quick stats (total users, links, top 5)",
			DefaultMemberPermissions: &adminOnly,
		},
		{
			Name:                     "trackinginfo",
			Description:              "Admin: show the tracking mapping for a user",
			DefaultMemberPermissions: &adminOnly,
			Options: []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "member",
				Description: "Member to query",
			}},
		},
		{
			Name:                     "sweepnow",
			Description:              "Admin: run the membership sweep immediately",
			DefaultMemberPermissions: &adminOnly,
		},
		{
			Name:                     "resync",
			Description:              "Admin: force re-registration of slash commands",
			DefaultMemberPermissions: &adminOnly,
		},
	}
}

func (b *Bot) registerCommands() error {
	defs := commandDefinitions()
	_, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.conf.Discord.GuildID, defs)
	if err != nil {
		return err
	}
	b.logger.Infof(providers.TypeBot, "Registered %d commands for guild %s", len(defs), b.conf.Discord.GuildID)
	return nil
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand || i.Member == nil {
		return
	}

	name := i.ApplicationCommandData().Name
	b.metrics.IncCommandsTotal(name)

	handlers := map[string]func(*discordgo.InteractionCreate) error{
		"myreport":     b.cmdMyReport,
		"pause":        b.cmdPause,
		"resume":       b.cmdResume,
		"settarget":    b.cmdSetTarget,
		"stop":         b.cmdStop,
		"setupuser":    b.cmdSetupUser,
		"deleteuser":   b.cmdDeleteUser,
		"getall":       b.cmdGetAll,
		"dashboard":    b.cmdDashboard,
		"trackinginfo": b.cmdTrackingInfo,
		"sweepnow":     b.cmdSweepNow,
		"resync":       b.cmdResync,
	}
	handler, ok := handlers[name]
	if !ok {
		return
	}

	if err := handler(i); err != nil {
		b.logger.Errorf(providers.TypeBot, "Command /%s failed: %s", name, err)
		b.notifier.Notify(fmt.Sprintf("⚠️ Error in `/%s` from <@%s>: %s", name, i.Member.User.ID, err))
		b.apologize(i)
	}
}

// ---- user commands ----

func (b *Bot) cmdMyReport(i *discordgo.InteractionCreate) error {
	if err := b.deferReply(i); err != nil {
		return err
	}

	entry, ok := b.registry.Get(i.Member.User.ID)
	if !ok {
		return b.followup(i, "⚠️ You are not set up for tracking.")
	}

	path, found := b.ledgers.Resolve(entry.Username)
	if !found {
		return b.followup(i, "⚠️ Your report file was not found.")
	}

	if err := b.followupFile(i, "📄 Your current report.", path); err != nil {
		return err
	}
	b.notifier.Notify(fmt.Sprintf("📥 <@%s> requested their report (%s).", i.Member.User.ID, entry.Username))
	return nil
}

func (b *Bot) cmdPause(i *discordgo.InteractionCreate) error {
	return b.setStatus(i, models.StatusPaused,
		"⏸️ Your tracking has been paused. Use `/resume` to continue.", "⏸️ <@%s> paused tracking for `%s`.")
}

func (b *Bot) cmdResume(i *discordgo.InteractionCreate) error {
	return b.setStatus(i, models.StatusActive,
		"▶️ Your tracking has been resumed.", "▶️ <@%s> resumed tracking for `%s`.")
}

func (b *Bot) setStatus(i *discordgo.InteractionCreate, status models.Status, reply, note string) error {
	id := i.Member.User.ID
	entry, ok := b.registry.Get(id)
	if !ok {
		return b.respond(i, "⚠️ You are not set up for tracking.")
	}

	if err := b.registry.MergeUpdate(id, models.EntryPatch{Status: &status}); err != nil {
		return err
	}
	if err := b.respond(i, reply); err != nil {
		return err
	}
	b.notifier.Notify(fmt.Sprintf(note, id, entry.Username))
	return nil
}

func (b *Bot) cmdSetTarget(i *discordgo.InteractionCreate) error {
	id := i.Member.User.ID
	target := int(optInt(i.ApplicationCommandData(), "replies_per_day", 0))
	if target <= 0 {
		return b.respond(i, "⚠️ Replies per day must be a positive integer.")
	}

	entry, ok := b.registry.Get(id)
	if !ok {
		return b.respond(i, "⚠️ You are not set up for tracking.")
	}

	if err := b.registry.SetTarget(id, target); err != nil {
		return err
	}
	if err := b.respond(i, fmt.Sprintf("✅ Your target is now set to **%d** replies/day.", target)); err != nil {
		return err
	}
	b.notifier.Notify(fmt.Sprintf("🔁 <@%s> changed target for `%s`: %d -> %d.",
		id, entry.Username, entry.RepliesPerDay, target))
	return nil
}

func (b *Bot) cmdStop(i *discordgo.InteractionCreate) error {
	id := i.Member.User.ID
	entry, ok := b.registry.Get(id)
	if !ok {
		return b.respond(i, "⚠️ You are not set up for tracking.")
	}

	archived := ""
	dest, err := b.ledgers.Archive(entry.Username, true)
	switch {
	case err == nil:
		archived = dest
	case errors.Is(err, ledger.ErrNotFound):
		// No report yet, nothing to archive.
	default:
		b.notifier.Notify(fmt.Sprintf("⚠️ Failed to archive report for <@%s> (%s): %s", id, entry.Username, err))
	}

	if err := b.registry.Remove(id); err != nil {
		return err
	}
	if err := b.respond(i, "🛑 You have been removed from tracking. Your final report has been archived."); err != nil {
		return err
	}

	note := fmt.Sprintf("🛑 <@%s> stopped tracking for `%s`.", id, entry.Username)
	if archived != "" {
		b.notifier.NotifyFile(note+" Final report attached.", archived)
	} else {
		b.notifier.Notify(note)
	}
	return nil
}

// ---- admin commands ----

func (b *Bot) cmdSetupUser(i *discordgo.InteractionCreate) error {
	data := i.ApplicationCommandData()
	user := optUser(b.session, data, "member")
	if user == nil {
		return b.respond(i, "⚠️ Member option missing.")
	}
	target := int(optInt(data, "target", defaultSetupTarget))

	member, err := b.session.GuildMember(b.conf.Discord.GuildID, user.ID)
	if err != nil {
		return err
	}
	if !hasRole(member, b.conf.Discord.TrackedRoleID) {
		return b.respond(i, "⚠️ That user doesn't have the tracked role.")
	}

	channel, err := b.findUserChannel(member)
	if err != nil {
		return err
	}
	if channel == nil {
		if channel, err = b.createUserChannel(member); err != nil {
			return err
		}
	}

	name := displayName(member)
	start := time.Now().UTC()
	err = b.registry.Upsert(user.ID, channel.ID, name, target, models.StatusActive, "")
	if err != nil {
		return err
	}
	end := start.AddDate(0, 0, b.conf.Reports.WindowDays)
	if _, err := b.ledgers.Create(name, start, end, target); err != nil {
		return err
	}

	b.send(channel.ID, fmt.Sprintf(
		"👋 Hi %s, you've been manually set up by an admin.\n"+
			"Reply with `username, targetReplies, YYYY-MM-DD` if you want a different username or start date.",
		member.Mention()))
	return b.respond(i, fmt.Sprintf("✅ Channel ready for %s → <#%s>", member.Mention(), channel.ID))
}

func (b *Bot) cmdDeleteUser(i *discordgo.InteractionCreate) error {
	user := optUser(b.session, i.ApplicationCommandData(), "member")
	if user == nil {
		return b.respond(i, "⚠️ Member option missing.")
	}

	entry, ok := b.registry.Get(user.ID)
	if !ok {
		return b.respond(i, "⚠️ User not tracked.")
	}

	if _, err := b.ledgers.Archive(entry.Username, false); err != nil && !errors.Is(err, ledger.ErrNotFound) {
		b.notifier.Notify(fmt.Sprintf("⚠️ Failed to archive report for <@%s>: %s", user.ID, err))
	}

	if entry.ChannelID != "" {
		if _, err := b.session.ChannelDelete(entry.ChannelID); err != nil {
			b.logger.Warnf(providers.TypeBot, "Failed to delete channel %s: %s", entry.ChannelID, err)
		}
	}

	if err := b.registry.Remove(user.ID); err != nil {
		return err
	}
	return b.respond(i, fmt.Sprintf("🗑️ Removed %s, report archived.", user.Mention()))
}

func (b *Bot) cmdGetAll(i *discordgo.InteractionCreate) error {
	if err := b.deferReply(i); err != nil {
		return err
	}

	path, err := b.ledgers.CompileMaster()
	if err != nil {
		return err
	}
	return b.followupFile(i, "📚 Master report compiled.", path)
}

func (b *Bot) cmdDashboard(i *discordgo.InteractionCreate) error {
	if err := b.deferReply(i); err != nil {
		return err
	}

	stats, err := b.reports.Dashboard()
	if err != nil {
		return err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 **Dashboard**\n")
	fmt.Fprintf(&sb, "Tracked users: **%d**\n", stats.TotalUsers)
	fmt.Fprintf(&sb, "Links recorded: **%d**\n", stats.TotalLinks)
	fmt.Fprintf(&sb, "Average per user: **%.2f**\n", stats.AvgLinks)
	if len(stats.Top) == 0 {
		sb.WriteString("No data yet.")
	} else {
		sb.WriteString("Top members:\n")
		for _, uc := range stats.Top {
			fmt.Fprintf(&sb, "• **%s** — %d\n", uc.Username, uc.Links)
		}
	}
	return b.followup(i, sb.String())
}

func (b *Bot) cmdTrackingInfo(i *discordgo.InteractionCreate) error {
	user := optUser(b.session, i.ApplicationCommandData(), "member")
	if user == nil {
		return b.respond(i, fmt.Sprintf("Total tracked users: %d (pass a member to query one).", b.reports.TrackedUsers()))
	}

	entry, ok := b.registry.Get(user.ID)
	if !ok {
		return b.respond(i, fmt.Sprintf("No mapping for %s.", user.Mention()))
	}
	return b.respond(i, fmt.Sprintf(
		"%s: username=%s, channel=<#%s>, replies/day=%d, start=%s, status=%s",
		user.Mention(), entry.Username, entry.ChannelID, entry.RepliesPerDay, entry.StartDate, entry.Status))
}

func (b *Bot) cmdSweepNow(i *discordgo.InteractionCreate) error {
	if err := b.deferReply(i); err != nil {
		return err
	}

	evicted, err := b.sweeper.RunOnce()
	if err != nil {
		return err
	}
	return b.followup(i, fmt.Sprintf("🧹 Sweep complete, %d member(s) evicted.", evicted))
}

func (b *Bot) cmdResync(i *discordgo.InteractionCreate) error {
	if err := b.registerCommands(); err != nil {
		return err
	}
	return b.respond(i, fmt.Sprintf("✅ Resynced %d commands to guild %s.", len(commandDefinitions()), b.conf.Discord.GuildID))
}

// ---- interaction helpers ----

func (b *Bot) respond(i *discordgo.InteractionCreate, content string) error {
	return b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func (b *Bot) deferReply(i *discordgo.InteractionCreate) error {
	return b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
}

func (b *Bot) followup(i *discordgo.InteractionCreate, content string) error {
	_, err := b.session.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	return err
}

func (b *Bot) followupFile(i *discordgo.InteractionCreate, content, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = b.session.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
		Files: []*discordgo.File{{
			Name:   filepath.Base(path),
			Reader: file,
		}},
	})
	return err
}

// apologize sends a generic failure notice on whichever channel the
// interaction still accepts.
func (b *Bot) apologize(i *discordgo.InteractionCreate) {
	if err := b.respond(i, "⚠️ Something went wrong. The admins have been notified."); err != nil {
		_ = b.followup(i, "⚠️ Something went wrong. The admins have been notified.")
	}
}

func optUser(s *discordgo.Session, data discordgo.ApplicationCommandInteractionData, name string) *discordgo.User {
	for _, opt := range data.Options {
		if opt.Name == name {
			return opt.UserValue(s)
		}
	}
	return nil
}

func optInt(data discordgo.ApplicationCommandInteractionData, name string, def int64) int64 {
	for _, opt := range data.Options {
		if opt.Name == name {
			return opt.IntValue()
		}
	}
	return def
}
