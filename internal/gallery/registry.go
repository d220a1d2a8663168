// Package gallery holds the registry of record types that may own images.
package gallery

import (
	"context"
	"sort"
	"sync"

	"github.com/contentgallery/internal/db"
	"gorm.io/gorm"
)

// Capability describes how a registered type takes part in galleries.
// Listable types can own images; Visible types also appear in choice listings.
type Capability struct {
	Listable bool `json:"listable"`
	Visible  bool `json:"visible"`
}

// Choice is one candidate owner as shown by the admin widget.
type Choice struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Owner resolves records of one registered type.
type Owner interface {
	Choices(ctx context.Context) ([]Choice, error)
	Exists(ctx context.Context, id uint) (bool, error)
	IDs(ctx context.Context) ([]uint, error)
}

// Entry is a registered type together with its content type id once synced.
type Entry struct {
	AppLabel      string
	Model         string
	ContentTypeID uint
	Capability
	Owner Owner
}

// Key returns the dotted "app_label.model" form.
func (e Entry) Key() string {
	return e.AppLabel + "." + e.Model
}

// Registry maps (app_label, model) to a capability and an Owner.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds or replaces the entry for appLabel/model.
func (r *Registry) Register(appLabel, model string, caps Capability, owner Owner) {
	entry := Entry{
		AppLabel:   db.NormalizeModelName(appLabel),
		Model:      db.NormalizeModelName(model),
		Capability: caps,
		Owner:      owner,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.entries[entry.Key()]; ok {
		entry.ContentTypeID = existing.ContentTypeID
	}
	r.entries[entry.Key()] = entry
}

// Lookup returns the entry for appLabel/model.
func (r *Registry) Lookup(appLabel, model string) (Entry, bool) {
	key := db.NormalizeModelName(appLabel) + "." + db.NormalizeModelName(model)

	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[key]
	return entry, ok
}

// Entries returns all entries sorted by key.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	entries := make([]Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, entry)
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key() < entries[j].Key()
	})
	return entries
}

// Sync makes sure every registered type has a content type row and records its id.
func (r *Registry) Sync(ctx context.Context, gdb *gorm.DB) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := gdb.WithContext(ctx)
	for key, entry := range r.entries {
		ct, err := db.EnsureContentType(tx, entry.AppLabel, entry.Model)
		if err != nil {
			return err
		}
		entry.ContentTypeID = ct.ID
		r.entries[key] = entry
	}
	return nil
}
