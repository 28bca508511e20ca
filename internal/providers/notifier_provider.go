package providers

import (
	"os"
	"path/filepath"
	"replyguy/internal/structures"

	"github.com/bwmarrin/discordgo"
)

type NotifierInterface interface {
	Notify(msg string)
	NotifyFile(msg string, path string)
}

// AdminNotifier forwards operational events to the configured admin log
// channel. Delivery is best-effort: a failed send is logged, never
// bubbled up to the caller.
type AdminNotifier struct {
	session   *discordgo.Session
	channelID string
	logger    Logger
}

func NewNotifierProvider(session *discordgo.Session, conf *structures.Config, logger Logger) NotifierInterface {
	return &AdminNotifier{
		session:   session,
		channelID: conf.Discord.AdminChannelID,
		logger:    logger,
	}
}

func (an *AdminNotifier) Notify(msg string) {
	if _, err := an.session.ChannelMessageSend(an.channelID, msg); err != nil {
		an.logger.Warnf(TypeBot, "Failed to notify admin channel: %s", err)
	}
}

func (an *AdminNotifier) NotifyFile(msg string, path string) {
	file, err := os.Open(path)
	if err != nil {
		an.logger.Warnf(TypeBot, "Failed to open attachment %s: %s", path, err)
		an.Notify(msg)
		return
	}
	defer file.Close()

	_, err = an.session.ChannelMessageSendComplex(an.channelID, &discordgo.MessageSend{
		Content: msg,
		Files: []*discordgo.File{{
			Name:   filepath.Base(path),
			Reader: file,
		}},
	})
	if err != nil {
		an.logger.Warnf(TypeBot, "Failed to send attachment to admin channel: %s", err)
	}
}
