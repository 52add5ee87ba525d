package usecases_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/samirrijal/agrobot/internal/core/domain"
)

// --- Render surface ---

type surfaceOp struct {
	Kind string // add | remove | invalidate
	Key  string
}

type fakeSurface struct {
	mu        sync.Mutex
	ops       []surfaceOp
	failAdd   map[string]bool
	failRemov map[string]bool
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{failAdd: map[string]bool{}, failRemov: map[string]bool{}}
}

func (f *fakeSurface) AddMarker(m domain.Marker) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAdd[m.Key()] {
		return errors.New("surface add failed")
	}
	f.ops = append(f.ops, surfaceOp{Kind: "add", Key: m.Key()})
	return nil
}

func (f *fakeSurface) RemoveMarker(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRemov[key] {
		return errors.New("surface remove failed")
	}
	f.ops = append(f.ops, surfaceOp{Kind: "remove", Key: key})
	return nil
}

func (f *fakeSurface) Invalidate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, surfaceOp{Kind: "invalidate"})
	return nil
}

func (f *fakeSurface) Ops() []surfaceOp {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]surfaceOp(nil), f.ops...)
}

func (f *fakeSurface) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = nil
}

func (f *fakeSurface) count(kind string) int {
	n := 0
	for _, op := range f.Ops() {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// --- Notifier ---

type fakeNotifier struct {
	mu          sync.Mutex
	notices     []domain.Notice
	snapshots   [][]domain.Marker
	formCleared int
}

func (n *fakeNotifier) Notify(notice domain.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *fakeNotifier) MarkersChanged(markers []domain.Marker) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.snapshots = append(n.snapshots, markers)
}

func (n *fakeNotifier) FormCleared() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.formCleared++
}

func (n *fakeNotifier) Notices() []domain.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Notice(nil), n.notices...)
}

func (n *fakeNotifier) Snapshots() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.snapshots)
}

func (n *fakeNotifier) Cleared() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.formCleared
}

func (n *fakeNotifier) hasMessage(msg string) bool {
	for _, notice := range n.Notices() {
		if notice.Message == msg {
			return true
		}
	}
	return false
}

// --- Marker repository ---

type memRepo struct {
	mu    sync.Mutex
	docs  map[string]domain.MarkerDocument
	gets  int
	puts  int
	getFn func(ctx context.Context, userID string) (*domain.MarkerDocument, error)
	putFn func(ctx context.Context, doc *domain.MarkerDocument) error
}

func newMemRepo() *memRepo {
	return &memRepo{docs: map[string]domain.MarkerDocument{}}
}

func (r *memRepo) Get(ctx context.Context, userID string) (*domain.MarkerDocument, error) {
	r.mu.Lock()
	r.gets++
	r.mu.Unlock()
	if r.getFn != nil {
		return r.getFn(ctx, userID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc.Markers = append([]domain.Marker{}, doc.Markers...)
	return &doc, nil
}

func (r *memRepo) Put(ctx context.Context, doc *domain.MarkerDocument) error {
	r.mu.Lock()
	r.puts++
	r.mu.Unlock()
	if r.putFn != nil {
		return r.putFn(ctx, doc)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc.UpdatedAt = time.Now()
	stored := *doc
	stored.Markers = append([]domain.Marker{}, doc.Markers...)
	r.docs[doc.UserID] = stored
	return nil
}

func (r *memRepo) calls() (gets, puts int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gets, r.puts
}

// --- Cache ---

type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deletes []string
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return v, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.deletes = append(c.deletes, key)
	return nil
}

// --- Publisher ---

type fakePublisher struct {
	mu     sync.Mutex
	events []domain.MarkersSavedEvent
	err    error
}

func (p *fakePublisher) PublishMarkersSaved(ctx context.Context, event *domain.MarkersSavedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *event)
	return p.err
}

// --- Gateway (for sessions) ---

type fakeGateway struct {
	loadFn func(ctx context.Context, userID string) ([]domain.Marker, error)
	saveFn func(ctx context.Context, userID, sessionID string, markers []domain.Marker) error
}

func (g *fakeGateway) Load(ctx context.Context, userID string) ([]domain.Marker, error) {
	if g.loadFn != nil {
		return g.loadFn(ctx, userID)
	}
	return []domain.Marker{}, domain.ErrNotFound
}

func (g *fakeGateway) SaveFromSession(ctx context.Context, userID, sessionID string, markers []domain.Marker) error {
	if g.saveFn != nil {
		return g.saveFn(ctx, userID, sessionID, markers)
	}
	return nil
}
