package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"replyguy/internal/models"
	"replyguy/internal/providers"
	"replyguy/internal/structures"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

// Registry is the durable member-to-tracking-state mapping. Every
// mutation is a whole-document read-modify-write; the mutex serializes
// those cycles because discordgo dispatches handlers on separate
// goroutines.
type Registry struct {
	path   string
	mu     sync.Mutex
	logger providers.Logger
}

func NewRegistry(conf *structures.Config, logger providers.Logger) (*Registry, error) {
	path := conf.Registry.FilePath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create registry dir: %w", err)
	}

	r := &Registry{path: path, logger: logger}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := r.write(map[string]models.Entry{}); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// read loads the full registry document. A missing or corrupt file
// degrades to an empty registry; callers cannot tell the two apart.
func (r *Registry) read() map[string]models.Entry {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Warnf(providers.TypeApp, "Registry unreadable, treating as empty: %s", err)
		}
		return map[string]models.Entry{}
	}

	var entries map[string]models.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		r.logger.Warnf(providers.TypeApp, "Registry corrupt, treating as empty: %s", err)
		return map[string]models.Entry{}
	}
	if entries == nil {
		return map[string]models.Entry{}
	}
	return entries
}

func (r *Registry) write(entries map[string]models.Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	tmpFile := r.path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}
	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}
	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, r.path)
}

// Snapshot returns the raw serialized registry document, used by the
// sweeper for pre-eviction backups.
func (r *Registry) Snapshot() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return json.Marshal(r.read())
}

// Upsert inserts or fully overwrites the entry for id. An empty
// startDate defaults to the current UTC date.
func (r *Registry) Upsert(id, channelID, username string, repliesPerDay int, status models.Status, startDate string) error {
	if startDate == "" {
		startDate = time.Now().UTC().Format("2006-01-02")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.read()
	entries[id] = models.Entry{
		ChannelID:     channelID,
		Username:      username,
		RepliesPerDay: repliesPerDay,
		StartDate:     startDate,
		Status:        status,
	}
	return r.write(entries)
}

// MergeUpdate applies the non-nil fields of patch to the entry for id,
// materializing a default pending entry first when id is absent. The
// entry always ends up with all five attributes populated.
func (r *Registry) MergeUpdate(id string, patch models.EntryPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.read()
	entry, ok := entries[id]
	if !ok {
		entry = models.Entry{
			ChannelID:     "",
			Username:      "user_" + id,
			RepliesPerDay: 0,
			StartDate:     time.Now().UTC().Format("2006-01-02"),
			Status:        models.StatusPending,
		}
	}

	if patch.ChannelID != nil {
		entry.ChannelID = *patch.ChannelID
	}
	if patch.Username != nil {
		entry.Username = *patch.Username
	}
	if patch.RepliesPerDay != nil {
		entry.RepliesPerDay = *patch.RepliesPerDay
	}
	if patch.StartDate != nil {
		entry.StartDate = *patch.StartDate
	}
	if patch.Status != nil {
		entry.Status = *patch.Status
	}

	entries[id] = entry
	return r.write(entries)
}

func (r *Registry) Get(id string) (models.Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.read()[id]
	return entry, ok
}

// Remove deletes the entry for id. Removing an absent id is a no-op.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.read()
	if _, ok := entries[id]; !ok {
		return nil
	}
	delete(entries, id)
	return r.write(entries)
}

// SetTarget sets replies_per_day leaving every other field untouched.
// A no-op when id is absent.
func (r *Registry) SetTarget(id string, repliesPerDay int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.read()
	entry, ok := entries[id]
	if !ok {
		return nil
	}
	entry.RepliesPerDay = repliesPerDay
	entries[id] = entry
	return r.write(entries)
}

// List returns a snapshot of all entries. Order is not stable across
// writes.
func (r *Registry) List() []models.UserRow {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.read()
	rows := make([]models.UserRow, 0, len(entries))
	for id, entry := range entries {
		rows = append(rows, models.UserRow{ID: id, Entry: entry})
	}
	return rows
}

// FindByChannel returns the first entry whose channel matches.
func (r *Registry) FindByChannel(channelID string) (string, models.Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, entry := range r.read() {
		if entry.ChannelID == channelID {
			return id, entry, true
		}
	}
	return "", models.Entry{}, false
}
