// Package deck drives the ticket cache: it runs searches against the
// tracker, keeps the local store and the in-memory list in agreement, and
// reports pages to a view.
package deck

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lotas/ticketdeck/internal/applog"
	"github.com/lotas/ticketdeck/internal/config"
	"github.com/lotas/ticketdeck/internal/governor"
	"github.com/lotas/ticketdeck/internal/jira"
	"github.com/lotas/ticketdeck/internal/pager"
	"github.com/lotas/ticketdeck/internal/storage"
	"github.com/lotas/ticketdeck/internal/tickets"
	"github.com/lotas/ticketdeck/internal/types"
)

// ErrBusy is returned when the search run counter is at the thread budget.
var ErrBusy = errors.New("too many searches running")

// ErrLoading is returned by Hydrate while the same key is already being
// fetched.
var ErrLoading = errors.New("ticket is already loading")

// Store is the persistent ticket cache.
type Store interface {
	UpsertTickets(tickets []types.Ticket) (int, error)
	ListTickets() ([]types.Ticket, error)
	ListTicketKeys() ([]string, error)
	DeleteTicket(key string) error
	SaveTicketFields(key string, fields map[string]any) error
	ReplaceFieldMeta(key string, metas []types.FieldMeta) error
	ListFieldMeta(key string) ([]types.FieldMeta, error)
}

// ViewSink receives results. Calls arrive from whichever goroutine ran the
// command and are never made while the deck lock is held.
type ViewSink interface {
	OnPageReady(page int, tickets []types.Ticket)
	OnError(msg string)
	OnSearchProgress(runCount int)
}

// Fetcher is the remote side of the tracker.
type Fetcher interface {
	Search(ctx context.Context, jql string, workers int) ([]types.Ticket, error)
	Issue(ctx context.Context, key string) (types.Ticket, error)
	EditMeta(ctx context.Context, key string, current map[string]any) ([]types.FieldMeta, error)
}

// FetcherFunc builds a Fetcher for a validated request context.
type FetcherFunc func(rc *jira.RequestContext, gov *governor.Governor) Fetcher

// NewJiraFetcher is the production FetcherFunc.
func NewJiraFetcher(rc *jira.RequestContext, gov *governor.Governor) Fetcher {
	return jira.NewClient(rc, gov)
}

// Card is the retained view handle for one ticket row.
type Card struct {
	Key       string
	Summary   string
	Status    string
	Assignee  string
	IssueType string
	Stub      bool
}

// CardFor builds the row handle for t.
func CardFor(t types.Ticket) Card {
	return Card{
		Key:       t.Key,
		Summary:   t.Summary(),
		Status:    t.Status(),
		Assignee:  t.Assignee(),
		IssueType: t.IssueType(),
		Stub:      t.IsStub(),
	}
}

// Options configures a Deck. Store and Sink are required.
type Options struct {
	Config     config.Config
	ConfigPath string // empty disables Configure persistence
	Store      Store
	Sink       ViewSink
	Governor   *governor.Governor
	NewFetcher FetcherFunc
}

// Deck owns the in-memory ticket list, the pager, the card retainer and the
// selection set. Mutations of those happen under mu.
type Deck struct {
	store      Store
	sink       ViewSink
	gov        *governor.Governor
	newFetcher FetcherFunc
	cfgPath    string
	runs       governor.RunCounter

	mu        sync.Mutex
	cfg       config.Config
	tickets   []types.Ticket
	pager     *pager.Pager
	cards     *tickets.Retainer[Card]
	selection *tickets.Selection
	hydrating *tickets.Retainer[struct{}]

	stopMu  sync.Mutex
	cancels map[int]context.CancelFunc
	nextID  int
}

func New(opts Options) *Deck {
	d := &Deck{
		store:      opts.Store,
		sink:       opts.Sink,
		gov:        opts.Governor,
		newFetcher: opts.NewFetcher,
		cfgPath:    opts.ConfigPath,
		cfg:        opts.Config,
		pager:      pager.New(nil),
		cards:      tickets.NewRetainer[Card](),
		selection:  tickets.NewSelection(),
		hydrating:  tickets.NewRetainer[struct{}](),
		cancels:    make(map[int]context.CancelFunc),
	}
	if d.gov == nil {
		d.gov = governor.Default()
	}
	if d.newFetcher == nil {
		d.newFetcher = NewJiraFetcher
	}
	return d
}

// track derives a context that Stop cancels.
func (d *Deck) track(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	d.stopMu.Lock()
	id := d.nextID
	d.nextID++
	d.cancels[id] = cancel
	d.stopMu.Unlock()
	return ctx, func() {
		d.stopMu.Lock()
		delete(d.cancels, id)
		d.stopMu.Unlock()
		cancel()
	}
}

// Stop cancels every running search, hydration and bulk delete. They
// notice between units of work; a request already on the wire finishes.
func (d *Deck) Stop() {
	d.stopMu.Lock()
	defer d.stopMu.Unlock()
	for id, cancel := range d.cancels {
		cancel()
		delete(d.cancels, id)
	}
	applog.Info("deck.stop")
}

// Config returns the active configuration.
func (d *Deck) Config() config.Config {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg
}

// RunCount returns the number of searches in flight.
func (d *Deck) RunCount() int { return d.runs.Count() }

// Governor returns the admission gate shared with the fetch pipeline.
func (d *Deck) Governor() *governor.Governor { return d.gov }

func (d *Deck) fetcher() (Fetcher, error) {
	rc, err := jira.BuildRequestContext(d.Config())
	if err != nil {
		return nil, err
	}
	return d.newFetcher(rc, d.gov), nil
}

func (d *Deck) fail(event string, err error, kv ...any) {
	applog.Error(event, err, kv...)
	d.sink.OnError(jira.UserMessage(err))
}

// publishLocked refreshes the retained cards for the visible page and
// returns what should be sent to the sink once mu is released.
func (d *Deck) publishLocked() types.Page {
	page := d.pager.Snapshot()
	for _, t := range page.Tickets {
		d.cards.Replace(t.Key, CardFor(t))
	}
	return page
}

func (d *Deck) emit(page types.Page) {
	d.sink.OnPageReady(page.Number, page.Tickets)
}

// setTicketsLocked replaces the list and drops retained cards and
// selections whose key disappeared.
func (d *Deck) setTicketsLocked(ts []types.Ticket) {
	d.tickets = ts
	d.pager.Set(ts)
	present := tickets.KeysOf(ts)
	for _, k := range d.cards.Keys() {
		if !present.Has(k) {
			d.cards.Drop(k)
		}
	}
	for _, k := range d.selection.Keys() {
		if !present.Has(k) {
			d.selection.Unselect(k)
		}
	}
}

// Load fills the in-memory list from the store and shows the first page.
func (d *Deck) Load() error {
	ts, err := d.store.ListTickets()
	if err != nil {
		d.fail("deck.load", err)
		return fmt.Errorf("load tickets: %w", err)
	}
	d.mu.Lock()
	d.setTicketsLocked(ts)
	d.pager.Goto(1)
	page := d.publishLocked()
	d.mu.Unlock()

	applog.Info("deck.load", "tickets", len(ts))
	d.emit(page)
	return nil
}

// SearchResult summarizes one completed search.
type SearchResult struct {
	Fetched int // issues returned by the tracker
	Added   int // keys new to the store
	Total   int // tickets in memory afterwards
}

// Search runs jql against the tracker, stores the results and refreshes
// the view. At most ThreadBudget searches run at once; beyond that ErrBusy
// is returned and nothing changes.
func (d *Deck) Search(ctx context.Context, jql string) (SearchResult, error) {
	cfg := d.Config()
	budget := cfg.ThreadBudget(d.gov.Capacity())
	if !d.runs.TryStart(budget) {
		applog.Warn("deck.search.busy", ErrBusy, "runs", d.runs.Count(), "budget", budget)
		d.sink.OnError(ErrBusy.Error())
		return SearchResult{}, ErrBusy
	}
	d.sink.OnSearchProgress(d.runs.Count())
	defer func() {
		d.runs.Done()
		d.sink.OnSearchProgress(d.runs.Count())
	}()

	f, err := d.fetcher()
	if err != nil {
		d.fail("deck.search.config", err)
		return SearchResult{}, err
	}

	ctx, done := d.track(ctx)
	defer done()

	fetched, err := f.Search(ctx, jql, budget)
	if err != nil {
		d.fail("deck.search", err, "jql", jql)
		return SearchResult{}, err
	}

	added, err := d.store.UpsertTickets(fetched)
	if err != nil {
		d.fail("deck.search.store", err)
	}
	keys, keysErr := d.store.ListTicketKeys()
	if keysErr != nil {
		applog.Error("deck.search.keys", keysErr)
	}

	d.mu.Lock()
	merged, _ := tickets.Merge(d.tickets, fetched)
	if keysErr == nil {
		merged = tickets.Reconcile(merged, keys)
	}
	d.setTicketsLocked(merged)
	page := d.publishLocked()
	total := len(d.tickets)
	d.mu.Unlock()

	applog.Info("deck.search", "jql", jql, "fetched", len(fetched), "added", added, "total", total)
	d.emit(page)
	return SearchResult{Fetched: len(fetched), Added: added, Total: total}, nil
}

// Refresh reconciles the in-memory list with the store without a network
// round trip.
func (d *Deck) Refresh() error {
	keys, err := d.store.ListTicketKeys()
	if err != nil {
		d.fail("deck.refresh", err)
		return err
	}
	d.mu.Lock()
	d.setTicketsLocked(tickets.Reconcile(d.tickets, keys))
	page := d.publishLocked()
	d.mu.Unlock()
	d.emit(page)
	return nil
}

func (d *Deck) navigate(move func(p *pager.Pager)) types.Page {
	d.mu.Lock()
	move(d.pager)
	page := d.publishLocked()
	d.mu.Unlock()
	d.emit(page)
	return page
}

func (d *Deck) Next() types.Page { return d.navigate(func(p *pager.Pager) { p.Next() }) }
func (d *Deck) Prev() types.Page { return d.navigate(func(p *pager.Pager) { p.Prev() }) }

// Goto moves to page, clamped into range.
func (d *Deck) Goto(page int) types.Page {
	return d.navigate(func(p *pager.Pager) { p.Goto(page) })
}

// Jump moves to an explicit page and reports out-of-range input to the
// sink without moving.
func (d *Deck) Jump(page int) (types.Page, error) {
	d.mu.Lock()
	_, err := d.pager.Jump(page)
	snap := d.publishLocked()
	d.mu.Unlock()
	if err != nil {
		d.sink.OnError(err.Error())
		return snap, err
	}
	d.emit(snap)
	return snap, nil
}

// Page returns the current page without notifying the sink.
func (d *Deck) Page() types.Page {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pager.Snapshot()
}

// Tickets returns a copy of the in-memory list.
func (d *Deck) Tickets() []types.Ticket {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]types.Ticket(nil), d.tickets...)
}

// Card returns the retained handle for key.
func (d *Deck) Card(key string) (Card, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cards.Get(key)
}

// Delete removes key from the store, the in-memory list, the card retainer
// and the selection set in one critical section. A key already gone from
// the store is still dropped from memory.
func (d *Deck) Delete(key string) error {
	d.mu.Lock()
	err := d.store.DeleteTicket(key)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		d.mu.Unlock()
		d.fail("deck.delete", err, "key", key)
		return fmt.Errorf("delete %s: %w", key, err)
	}
	d.tickets = tickets.Remove(d.tickets, key)
	d.cards.Drop(key)
	d.selection.Unselect(key)
	d.pager.Remove(key)
	page := d.publishLocked()
	d.mu.Unlock()

	applog.Info("deck.delete", "key", key)
	d.emit(page)
	return nil
}

func (d *Deck) Select(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selection.Select(key)
}

func (d *Deck) Unselect(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selection.Unselect(key)
}

// ToggleSelect flips key and reports whether it is now selected.
func (d *Deck) ToggleSelect(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.selection.Toggle(key)
}

func (d *Deck) IsSelected(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.selection.Has(key)
}

// ClearSelection unselects everything and returns how many keys were
// selected.
func (d *Deck) ClearSelection() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := d.selection.Len()
	d.selection.Clear()
	if n > 0 {
		applog.Info("deck.selection.clear", "keys", n)
	}
	return n
}

// Selected returns the selected keys in display order.
func (d *Deck) Selected() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.selection.Keys()
}

// BulkDelete deletes every selected ticket, one governor slot per delete.
// Stop or ctx cancellation ends it between deletes. Returns how many were
// deleted.
func (d *Deck) BulkDelete(ctx context.Context) (int, error) {
	keys := d.Selected()
	if len(keys) == 0 {
		return 0, nil
	}
	ctx, done := d.track(ctx)
	defer done()

	deleted := 0
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			applog.Info("deck.bulk_delete.stopped", "deleted", deleted, "remaining", len(keys)-deleted)
			return deleted, err
		}
		if err := d.gov.Do(ctx, func() error { return d.Delete(key) }); err != nil {
			return deleted, err
		}
		deleted++
	}
	applog.Info("deck.bulk_delete", "deleted", deleted)
	return deleted, nil
}

// Hydrate loads the fields of a stub ticket from the tracker and caches
// them. A ticket that already has fields is returned as is. Only one fetch
// per key runs at a time; a second caller gets ErrLoading. A ticket deleted
// while its fetch was running stays deleted.
func (d *Deck) Hydrate(ctx context.Context, key string) (types.Ticket, error) {
	d.mu.Lock()
	var cur types.Ticket
	found := false
	for _, t := range d.tickets {
		if t.Key == key {
			cur, found = t, true
			break
		}
	}
	if found && !cur.IsStub() {
		d.mu.Unlock()
		return cur, nil
	}
	if !d.hydrating.Retain(key, struct{}{}) {
		d.mu.Unlock()
		return types.Ticket{}, ErrLoading
	}
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.hydrating.Drop(key)
		d.mu.Unlock()
	}()

	f, err := d.fetcher()
	if err != nil {
		d.fail("deck.hydrate.config", err)
		return types.Ticket{}, err
	}
	ctx, done := d.track(ctx)
	defer done()

	t, err := f.Issue(ctx, key)
	if err != nil {
		d.fail("deck.hydrate", err, "key", key)
		return types.Ticket{}, err
	}
	if err := d.store.SaveTicketFields(key, t.Fields); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			applog.Info("deck.hydrate.gone", "key", key)
			return t, nil
		}
		applog.Error("deck.hydrate.store", err, "key", key)
	}

	d.mu.Lock()
	visible := false
	for i := range d.tickets {
		if d.tickets[i].Key == key {
			d.tickets[i].Fields = t.Fields
		}
	}
	d.pager.Set(d.tickets)
	page := d.publishLocked()
	for _, v := range page.Tickets {
		if v.Key == key {
			visible = true
		}
	}
	d.mu.Unlock()

	if visible {
		d.emit(page)
	}
	return t, nil
}

// EditMeta fetches the editable-field metadata for key and caches it. When
// the tracker cannot be reached a previously cached copy is returned.
func (d *Deck) EditMeta(ctx context.Context, key string) ([]types.FieldMeta, error) {
	var current map[string]any
	d.mu.Lock()
	for _, t := range d.tickets {
		if t.Key == key {
			current = t.Fields
			break
		}
	}
	d.mu.Unlock()

	metas, err := d.fetchEditMeta(ctx, key, current)
	if err == nil {
		switch serr := d.store.ReplaceFieldMeta(key, metas); {
		case errors.Is(serr, storage.ErrNotFound):
			applog.Info("deck.editmeta.gone", "key", key)
		case serr != nil:
			applog.Error("deck.editmeta.store", serr, "key", key)
		}
		return metas, nil
	}

	var cfgErr *jira.ConfigError
	if !errors.As(err, &cfgErr) {
		if cached, cerr := d.store.ListFieldMeta(key); cerr == nil && len(cached) > 0 {
			applog.Warn("deck.editmeta.cached", err, "key", key, "fields", len(cached))
			return cached, nil
		}
	}
	d.fail("deck.editmeta", err, "key", key)
	return nil, err
}

func (d *Deck) fetchEditMeta(ctx context.Context, key string, current map[string]any) ([]types.FieldMeta, error) {
	f, err := d.fetcher()
	if err != nil {
		return nil, err
	}
	ctx, done := d.track(ctx)
	defer done()
	return f.EditMeta(ctx, key, current)
}

// Configure replaces the active configuration and persists it when the
// deck has a config path.
func (d *Deck) Configure(cfg config.Config) error {
	if d.cfgPath != "" {
		if err := config.Save(d.cfgPath, cfg); err != nil {
			d.fail("deck.configure", err)
			return err
		}
	}
	d.mu.Lock()
	d.cfg = cfg
	d.mu.Unlock()
	applog.Info("deck.configure", "auth_type", string(cfg.AuthType), "threads", cfg.ThreadCount.String(), "theme", string(cfg.Theme))
	return nil
}
