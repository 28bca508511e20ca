package bot

import (
	"fmt"
	"replyguy/internal/ledger"
	"replyguy/internal/providers"
	"replyguy/internal/registry"
	"replyguy/internal/services"
	"replyguy/internal/structures"
	"replyguy/internal/sweep/interfaces"

	"github.com/bwmarrin/discordgo"
)

const setupHint = "Please provide: `username, targetReplies, YYYY-MM-DD`\n" +
	"Example: `elonmusk, 5, 2025-06-08`\n" +
	"Drop your links immediately."

// Bot wires the Discord gateway events to the tracker: channel
// provisioning on role grant, setup messages, link collection and the
// slash-command surface.
type Bot struct {
	session  *discordgo.Session
	conf     *structures.Config
	logger   providers.Logger
	registry *registry.Registry
	ledgers  *ledger.Store
	tracker  services.TrackerServiceInterface
	reports  services.ReportServiceInterface
	notifier providers.NotifierInterface
	sweeper  interfaces.SchedulerInterface
	metrics  providers.MetricsProviderInterface
}

func NewBot(session *discordgo.Session, conf *structures.Config, logger providers.Logger, reg *registry.Registry, ledgers *ledger.Store, tracker services.TrackerServiceInterface, reports services.ReportServiceInterface, notifier providers.NotifierInterface, sweeper interfaces.SchedulerInterface, metrics providers.MetricsProviderInterface) *Bot {
	return &Bot{
		session:  session,
		conf:     conf,
		logger:   logger,
		registry: reg,
		ledgers:  ledgers,
		tracker:  tracker,
		reports:  reports,
		notifier: notifier,
		sweeper:  sweeper,
		metrics:  metrics,
	}
}

// Start attaches the gateway handlers and opens the session.
func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onGuildMemberUpdate)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onInteractionCreate)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	return nil
}

func (b *Bot) Stop() error {
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Infof(providers.TypeBot, "Logged in as %s#%s (ID %s)", r.User.Username, r.User.Discriminator, r.User.ID)

	if err := b.registerCommands(); err != nil {
		b.logger.Errorf(providers.TypeBot, "Failed to register commands: %s", err)
	}

	b.notifier.Notify(fmt.Sprintf("✅ Bot online as **%s**", r.User.Username))

	if err := b.reconcile(); err != nil {
		b.logger.Errorf(providers.TypeBot, "Startup reconcile failed: %s", err)
		b.notifier.Notify(fmt.Sprintf("⚠️ Startup reconcile failed: %s", err))
	}
}

// onGuildMemberUpdate provisions a private channel when a member gains
// the tracked role. Checking the live role set instead of diffing the
// update also recovers members missed while the bot was down.
func (b *Bot) onGuildMemberUpdate(s *discordgo.Session, e *discordgo.GuildMemberUpdate) {
	if e.GuildID != b.conf.Discord.GuildID || e.User == nil {
		return
	}
	if !hasRole(e.Member, b.conf.Discord.TrackedRoleID) {
		return
	}
	if _, ok := b.registry.Get(e.User.ID); ok {
		return
	}

	if err := b.provisionMember(e.Member, "👋 Hi %s, welcome!\n"+setupHint); err != nil {
		b.logger.Errorf(providers.TypeBot, "Failed to provision %s: %s", e.User.ID, err)
		b.notifier.Notify(fmt.Sprintf("⚠️ Failed to provision <@%s>: %s", e.User.ID, err))
	}
}

func hasRole(member *discordgo.Member, roleID string) bool {
	for _, id := range member.Roles {
		if id == roleID {
			return true
		}
	}
	return false
}

func displayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}
