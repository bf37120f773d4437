package dashboard

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/linkfolio/linkfolio-backend/models"
	"go.uber.org/zap"
)

// EntryState tracks an entry's position in the optimistic lifecycle.
type EntryState int

const (
	// StateSettled matches last known server truth.
	StateSettled EntryState = iota
	// StatePendingCreate is a locally synthesized entry with a temporary
	// id, awaiting the server's row.
	StatePendingCreate
	// StatePendingUpdate has speculatively overwritten fields; the
	// pre-mutation snapshot is held for rollback.
	StatePendingUpdate
)

// Entry is a link plus the transient coordination flags. The flags never
// reach storage; they live only for the duration of an in-flight request.
type Entry struct {
	Link models.Link
	// Revision increments on every server-confirmed change, so views can
	// cheaply detect what to re-render.
	Revision uint64
	State    EntryState

	// original holds the pre-mutation field snapshot while an update is
	// in flight.
	original *models.Link
}

// Notifier receives the user-facing outcomes: toasts plus the reopened
// add-link form after a failed create. The draft is handed back so the
// form can be pre-filled with what the user typed.
type Notifier interface {
	Success(message string)
	Error(message string)
	ReopenForm(draft models.CreateLinkRequest)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Success(string)                      {}
func (NopNotifier) Error(string)                        {}
func (NopNotifier) ReopenForm(models.CreateLinkRequest) {}

// Coordinator keeps the dashboard's ordered link list consistent with
// server truth while reflecting every mutation immediately. The design
// assumes at most one in-flight request per entry; concurrent edits to
// the same entry from two triggers are not serialized here, exactly as
// in the UI it models.
type Coordinator struct {
	mu      sync.Mutex
	client  APIClient
	notify  Notifier
	logger  *zap.Logger
	entries []*Entry
}

func NewCoordinator(client APIClient, notify Notifier, logger *zap.Logger) *Coordinator {
	if notify == nil {
		notify = NopNotifier{}
	}
	return &Coordinator{client: client, notify: notify, logger: logger}
}

// Links returns the visible list in display order.
func (co *Coordinator) Links() []models.Link {
	co.mu.Lock()
	defer co.mu.Unlock()

	links := make([]models.Link, len(co.entries))
	for i, e := range co.entries {
		links[i] = e.Link
	}
	return links
}

// Entry returns a copy of the entry for id, if present.
func (co *Coordinator) Entry(id uuid.UUID) (Entry, bool) {
	co.mu.Lock()
	defer co.mu.Unlock()

	if e := co.find(id); e != nil {
		return *e, true
	}
	return Entry{}, false
}

func (co *Coordinator) find(id uuid.UUID) *Entry {
	for _, e := range co.entries {
		if e.Link.ID == id {
			return e
		}
	}
	return nil
}

// visibleEqual compares the fields the dashboard renders. Reconciliation
// uses structural comparison, never serialized-string diffing.
func visibleEqual(a, b models.Link) bool {
	return a.ID == b.ID &&
		a.Title == b.Title &&
		a.URL == b.URL &&
		a.Icon == b.Icon &&
		a.EmbedType == b.EmbedType &&
		a.Order == b.Order &&
		a.Active == b.Active
}

// Load replaces the list with server truth.
func (co *Coordinator) Load(ctx context.Context) error {
	links, err := co.client.ListLinks(ctx)
	if err != nil {
		return err
	}

	co.mu.Lock()
	defer co.mu.Unlock()
	co.entries = make([]*Entry, len(links))
	for i, link := range links {
		co.entries[i] = &Entry{Link: link, Revision: 1}
	}
	return nil
}

// Reconcile merges a fresh server list into the local one. Settled entries
// adopt server truth (bumping their revision only when something visible
// changed); pending entries the server lists keep their local fields.
// Pending creates the server doesn't know about yet survive; an entry with
// an in-flight update that the server no longer lists is dropped, and the
// update later settles as a no-op.
func (co *Coordinator) Reconcile(serverLinks []models.Link) {
	co.mu.Lock()
	defer co.mu.Unlock()

	byID := make(map[uuid.UUID]*Entry, len(co.entries))
	for _, e := range co.entries {
		byID[e.Link.ID] = e
	}

	merged := make([]*Entry, 0, len(serverLinks))
	for _, link := range serverLinks {
		if existing, ok := byID[link.ID]; ok {
			if existing.State == StateSettled && !visibleEqual(existing.Link, link) {
				existing.Link = link
				existing.Revision++
			}
			merged = append(merged, existing)
			delete(byID, link.ID)
			continue
		}
		merged = append(merged, &Entry{Link: link, Revision: 1})
	}

	// Keep local pending creates the server doesn't know about yet.
	for _, e := range co.entries {
		if e.State == StatePendingCreate {
			if _, stillLocal := byID[e.Link.ID]; stillLocal {
				merged = append(merged, e)
			}
		}
	}

	co.entries = merged
}

// Create appends a temporary entry immediately and swaps in the server's
// row on success, preserving the temporary entry's position. On failure
// the temporary entry is removed and the form is reopened with the
// user's draft intact.
func (co *Coordinator) Create(ctx context.Context, draft models.CreateLinkRequest) error {
	tempID := uuid.New()

	co.mu.Lock()
	temp := &Entry{
		Link: models.Link{
			ID:     tempID,
			Title:  draft.Title,
			URL:    draft.URL,
			Icon:   draft.Icon,
			Order:  len(co.entries),
			Active: true,
		},
		State: StatePendingCreate,
	}
	co.entries = append(co.entries, temp)
	co.mu.Unlock()

	co.notify.Success("Link added")

	created, err := co.client.CreateLink(ctx, draft)

	co.mu.Lock()
	defer co.mu.Unlock()

	if err != nil {
		co.removeLocked(tempID)
		co.notify.Error("Failed to add link")
		co.notify.ReopenForm(draft)
		return err
	}

	// Swap in place so the entry keeps its visual position.
	if e := co.find(tempID); e != nil {
		e.Link = *created
		e.State = StateSettled
		e.Revision++
		e.original = nil
	}
	return nil
}

// Update overwrites the entry's fields speculatively and rolls back to
// the exact pre-mutation snapshot if the server rejects the change.
func (co *Coordinator) Update(ctx context.Context, id uuid.UUID, patch models.LinkFieldPatch) error {
	co.mu.Lock()
	entry := co.find(id)
	if entry == nil {
		co.mu.Unlock()
		return ErrEntryNotFound
	}

	snapshot := entry.Link
	entry.original = &snapshot
	entry.State = StatePendingUpdate
	applyPatch(&entry.Link, patch)
	co.mu.Unlock()

	updated, err := co.client.UpdateLink(ctx, id, patch)

	co.mu.Lock()
	defer co.mu.Unlock()

	entry = co.find(id)
	if entry == nil {
		// Entry vanished while in flight (e.g. reconciled away); nothing
		// left to settle or roll back.
		return err
	}

	if err != nil {
		entry.Link = *entry.original
		entry.original = nil
		entry.State = StateSettled
		co.notify.Error("Failed to update link")
		return err
	}

	entry.Link = *updated
	entry.original = nil
	entry.State = StateSettled
	entry.Revision++
	co.notify.Success("Link updated")
	return nil
}

// Delete removes the entry from the visible list before confirmation.
// The full prior list, not a per-entry snapshot, is held for restoration.
func (co *Coordinator) Delete(ctx context.Context, id uuid.UUID) error {
	co.mu.Lock()
	if co.find(id) == nil {
		co.mu.Unlock()
		return ErrEntryNotFound
	}
	prior := co.snapshotLocked()
	co.removeLocked(id)
	co.mu.Unlock()

	co.notify.Success("Link deleted")

	if err := co.client.DeleteLink(ctx, id); err != nil {
		co.mu.Lock()
		co.entries = prior
		co.mu.Unlock()
		co.notify.Error("Failed to delete link")
		return err
	}
	return nil
}

// Reorder recomputes a dense zero-based order for the new visual sequence,
// applies it immediately, and restores the entire prior list on failure.
func (co *Coordinator) Reorder(ctx context.Context, ids []uuid.UUID) error {
	co.mu.Lock()
	if len(ids) != len(co.entries) {
		co.mu.Unlock()
		return ErrReorderMismatch
	}

	// Snapshot before any order value is touched: the loop mutates entries
	// in place, so a later copy would capture the new permutation.
	prior := co.snapshotLocked()

	seen := make(map[uuid.UUID]struct{}, len(ids))
	reordered := make([]*Entry, 0, len(ids))
	for position, id := range ids {
		entry := co.find(id)
		if _, dup := seen[id]; entry == nil || dup {
			co.entries = prior
			co.mu.Unlock()
			return ErrReorderMismatch
		}
		seen[id] = struct{}{}
		entry.Link.Order = position
		reordered = append(reordered, entry)
	}
	co.entries = reordered
	co.mu.Unlock()

	if err := co.client.ReorderLinks(ctx, ids); err != nil {
		co.mu.Lock()
		co.entries = prior
		co.mu.Unlock()
		co.notify.Error("Failed to reorder links")
		return err
	}
	return nil
}

// ToggleActive flips visibility immediately and flips back on failure.
func (co *Coordinator) ToggleActive(ctx context.Context, id uuid.UUID) error {
	co.mu.Lock()
	entry := co.find(id)
	if entry == nil {
		co.mu.Unlock()
		return ErrEntryNotFound
	}
	entry.Link.Active = !entry.Link.Active
	next := entry.Link.Active
	co.mu.Unlock()

	updated, err := co.client.UpdateLink(ctx, id, models.LinkFieldPatch{Active: &next})

	co.mu.Lock()
	defer co.mu.Unlock()

	entry = co.find(id)
	if entry == nil {
		return err
	}

	if err != nil {
		entry.Link.Active = !next
		co.notify.Error("Failed to update link")
		return err
	}

	entry.Link = *updated
	entry.Revision++
	co.notify.Success("Link updated")
	return nil
}

// snapshotLocked deep-copies the list for whole-list rollback. Pointer
// identity is deliberately not preserved: the restored copies must not
// alias entries a later settle could mutate.
func (co *Coordinator) snapshotLocked() []*Entry {
	prior := make([]*Entry, len(co.entries))
	for i, e := range co.entries {
		copied := *e
		if e.original != nil {
			orig := *e.original
			copied.original = &orig
		}
		prior[i] = &copied
	}
	return prior
}

func (co *Coordinator) removeLocked(id uuid.UUID) {
	for i, e := range co.entries {
		if e.Link.ID == id {
			co.entries = append(co.entries[:i], co.entries[i+1:]...)
			return
		}
	}
}

func applyPatch(link *models.Link, patch models.LinkFieldPatch) {
	if patch.Title != nil {
		link.Title = *patch.Title
	}
	if patch.URL != nil {
		link.URL = *patch.URL
	}
	if patch.Icon != nil {
		link.Icon = *patch.Icon
	}
	if patch.Active != nil {
		link.Active = *patch.Active
	}
	if patch.EmbedType != nil {
		link.EmbedType = *patch.EmbedType
	}
}
