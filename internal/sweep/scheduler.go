package sweep

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"replyguy/internal/ledger"
	"replyguy/internal/models"
	"replyguy/internal/providers"
	"replyguy/internal/registry"
	"replyguy/internal/structures"
	"replyguy/internal/sweep/interfaces"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/roylee0704/gron"
)

// Scheduler runs the periodic membership sweep: registry entries whose
// member left the guild or lost the tracked role get their report
// archived, their channel deleted and their entry removed. A failure on
// one member never aborts the rest of the sweep.
type Scheduler struct {
	config     *structures.Config
	logger     providers.Logger
	session    *discordgo.Session
	registry   *registry.Registry
	ledgers    *ledger.Store
	notifier   providers.NotifierInterface
	metrics    providers.MetricsProviderInterface
	compressor interfaces.CompressorInterface
	cron       *gron.Cron
	opsMu      sync.Mutex
}

func NewScheduler(config *structures.Config, logger providers.Logger, session *discordgo.Session, reg *registry.Registry, ledgers *ledger.Store, notifier providers.NotifierInterface, metrics providers.MetricsProviderInterface, compressor interfaces.CompressorInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:     config,
		logger:     logger,
		session:    session,
		registry:   reg,
		ledgers:    ledgers,
		notifier:   notifier,
		metrics:    metrics,
		compressor: compressor,
	}
}

func (s *Scheduler) Init() {
	s.cron = gron.New()
	s.cron.AddFunc(gron.Every(s.config.Sweep.Interval), func() {
		if _, err := s.RunOnce(); err != nil {
			s.logger.Errorf(providers.TypeSweep, "Sweep failed: %s", err)
		}
	})
	s.cron.Start()
	s.logger.Infof(providers.TypeSweep, "Sweep scheduled every %s", s.config.Sweep.Interval)
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// RunOnce performs a single sweep and returns the number of evicted
// members.
func (s *Scheduler) RunOnce() (int, error) {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.metrics.IncSweepRuns()
	rows := s.registry.List()

	var stale []models.UserRow
	for _, row := range rows {
		gone, err := s.memberGone(row.ID)
		if err != nil {
			s.logger.Warnf(providers.TypeSweep, "Skipping %s, membership check failed: %s", row.ID, err)
			continue
		}
		if gone {
			stale = append(stale, row)
		}
	}
	if len(stale) == 0 {
		s.logger.Infof(providers.TypeSweep, "Sweep finished, nothing to evict (%d tracked)", len(rows))
		return 0, nil
	}

	if err := s.backupRegistry(); err != nil {
		s.logger.Warnf(providers.TypeSweep, "Registry backup failed: %s", err)
	}

	evicted := 0
	for _, row := range stale {
		s.evict(row)
		evicted++
		s.metrics.IncSweepEvictions()
	}

	s.notifier.Notify(fmt.Sprintf("🧹 Sweep removed %d member(s).", evicted))
	s.logger.Infof(providers.TypeSweep, "Sweep evicted %d of %d tracked members", evicted, len(rows))
	return evicted, nil
}

// memberGone reports whether the member left the guild or lost the
// tracked role. Transport errors are returned so a flaky gateway never
// mass-evicts the registry.
func (s *Scheduler) memberGone(id string) (bool, error) {
	member, err := s.session.GuildMember(s.config.Discord.GuildID, id)
	if err != nil {
		var restErr *discordgo.RESTError
		if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
			return true, nil
		}
		return false, err
	}

	for _, roleID := range member.Roles {
		if roleID == s.config.Discord.TrackedRoleID {
			return false, nil
		}
	}
	return true, nil
}

// evict archives the member's report, deletes the private channel and
// removes the registry entry. Each step is best-effort.
func (s *Scheduler) evict(row models.UserRow) {
	dest, err := s.ledgers.Archive(row.Entry.Username, false)
	switch {
	case err == nil:
		s.notifier.NotifyFile(fmt.Sprintf("📤 Archived final report for <@%s> (lost role / left).", row.ID), dest)
	case errors.Is(err, ledger.ErrNotFound):
		// Never produced a report, nothing to archive.
	default:
		s.logger.Errorf(providers.TypeSweep, "Failed to archive report for %s: %s", row.ID, err)
		s.notifier.Notify(fmt.Sprintf("⚠️ Failed to archive report for <@%s>: %s", row.ID, err))
	}

	if row.Entry.ChannelID != "" {
		if _, err := s.session.ChannelDelete(row.Entry.ChannelID); err != nil {
			s.logger.Warnf(providers.TypeSweep, "Failed to delete channel %s for %s: %s", row.Entry.ChannelID, row.ID, err)
		}
	}

	if err := s.registry.Remove(row.ID); err != nil {
		s.logger.Errorf(providers.TypeSweep, "Failed to remove registry entry for %s: %s", row.ID, err)
	}
}

// backupRegistry writes a snapshot of the registry document to the
// archive dir before an eviction batch mutates it.
func (s *Scheduler) backupRegistry() error {
	data, err := s.registry.Snapshot()
	if err != nil {
		return err
	}

	name := "registry-" + time.Now().UTC().Format("20060102T150405Z") + ".json"
	if s.config.Sweep.CompressBackups {
		if data, err = s.compressor.Compress(data); err != nil {
			return err
		}
		name += ".zst"
	}
	return os.WriteFile(filepath.Join(s.config.Reports.ArchiveDir, name), data, 0o644)
}
