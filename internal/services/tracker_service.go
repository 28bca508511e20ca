package services

import (
	"errors"
	"fmt"
	"regexp"
	"replyguy/internal/ledger"
	"replyguy/internal/models"
	"replyguy/internal/providers"
	"replyguy/internal/registry"
	"replyguy/internal/structures"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMalformedSetup = errors.New("setup message does not match `username, targetReplies, YYYY-MM-DD`")
	ErrNameCollision  = errors.New("username collides with an already tracked report")
)

// linkPattern matches X/Twitter status links.
var linkPattern = regexp.MustCompile(`https?://(?:www\.)?(?:twitter|x)\.com/[A-Za-z0-9_]+/status/[0-9]+`)

type SetupRequest struct {
	Username  string
	Target    int
	StartDate time.Time
}

type SetupResult struct {
	Username  string
	Target    int
	StartDate time.Time
	EndDate   time.Time
}

type TrackerServiceInterface interface {
	ParseSetup(content string) (*SetupRequest, error)
	Activate(id, channelID, content string) (*SetupResult, error)
	CollectLinks(id string, entry models.Entry, content string) (int, error)
	ExtractLinks(content string) []string
}

// TrackerService owns the setup and link-collection flows on top of the
// registry and the ledger store.
type TrackerService struct {
	registry *registry.Registry
	ledgers  *ledger.Store
	conf     *structures.Config
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
}

func NewTrackerService(reg *registry.Registry, ledgers *ledger.Store, conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) TrackerServiceInterface {
	return &TrackerService{
		registry: reg,
		ledgers:  ledgers,
		conf:     conf,
		logger:   logger,
		metrics:  metrics,
	}
}

// ParseSetup parses a `username, targetReplies, YYYY-MM-DD` message.
func (ts *TrackerService) ParseSetup(content string) (*SetupRequest, error) {
	parts := strings.Split(content, ",")
	if len(parts) != 3 {
		return nil, ErrMalformedSetup
	}

	username := strings.TrimSpace(parts[0])
	if username == "" {
		return nil, ErrMalformedSetup
	}

	target, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || target < 0 {
		return nil, ErrMalformedSetup
	}

	startDate, err := time.Parse(ledger.DateLayout, strings.TrimSpace(parts[2]))
	if err != nil {
		return nil, ErrMalformedSetup
	}

	return &SetupRequest{Username: username, Target: target, StartDate: startDate}, nil
}

// Activate turns a pending entry active from its setup message: parses
// the message, rejects sanitized-name collisions, rewrites the entry and
// provisions a fresh ledger spanning the tracking window.
func (ts *TrackerService) Activate(id, channelID, content string) (*SetupResult, error) {
	req, err := ts.ParseSetup(content)
	if err != nil {
		return nil, err
	}

	key := ledger.Sanitize(req.Username)
	for _, row := range ts.registry.List() {
		if row.ID != id && ledger.Sanitize(row.Entry.Username) == key {
			return nil, fmt.Errorf("%w: %s", ErrNameCollision, req.Username)
		}
	}

	startDate := req.StartDate.Format(ledger.DateLayout)
	status := models.StatusActive
	err = ts.registry.MergeUpdate(id, models.EntryPatch{
		ChannelID:     &channelID,
		Username:      &req.Username,
		RepliesPerDay: &req.Target,
		StartDate:     &startDate,
		Status:        &status,
	})
	if err != nil {
		return nil, err
	}

	endDate := req.StartDate.AddDate(0, 0, ts.conf.Reports.WindowDays)
	if _, err := ts.ledgers.Create(req.Username, req.StartDate, endDate, req.Target); err != nil {
		return nil, err
	}

	ts.logger.Infof(providers.TypeTrack, "Activated tracking for %s (%s, target %d)", id, req.Username, req.Target)
	return &SetupResult{
		Username:  req.Username,
		Target:    req.Target,
		StartDate: req.StartDate,
		EndDate:   endDate,
	}, nil
}

// CollectLinks records the links found in content under today's date
// column. A missing workbook is recreated on the fly with a window
// starting today.
func (ts *TrackerService) CollectLinks(id string, entry models.Entry, content string) (int, error) {
	links := ts.ExtractLinks(content)
	if len(links) == 0 {
		return 0, nil
	}

	username := entry.Username
	if username == "" {
		username = "user_" + id
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if _, ok := ts.ledgers.Resolve(username); !ok {
		end := today.AddDate(0, 0, ts.conf.Reports.WindowDays)
		if _, err := ts.ledgers.Create(username, today, end, entry.RepliesPerDay); err != nil {
			return 0, err
		}
	}

	n, err := ts.ledgers.RecordLinks(username, today, links)
	if err != nil {
		return 0, err
	}
	ts.metrics.AddLinksRecorded(n)
	return n, nil
}

func (ts *TrackerService) ExtractLinks(content string) []string {
	return linkPattern.FindAllString(content, -1)
}
