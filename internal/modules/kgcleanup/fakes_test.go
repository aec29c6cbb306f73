package kgcleanup

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"github.com/md-ibu786/AURA-PROTO-sub001/internal/data/graph"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/data/storeerr"
	domain "github.com/md-ibu786/AURA-PROTO-sub001/internal/domain/notes"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/dbctx"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/logger"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/realtime"
)

func observedLogger(t *testing.T) (*logger.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return logger.NewWithCore(core), logs
}

func criticalCount(logs *observer.ObservedLogs) int {
	n := 0
	for _, e := range logs.All() {
		if e.Level != zapcore.ErrorLevel {
			continue
		}
		if v, ok := e.ContextMap()["severity"]; ok && v == logger.SeverityCritical {
			n++
		}
	}
	return n
}

// fakeGraph models a graph where documents reference entities and entities
// may be referenced by documents outside any batch.
type fakeGraph struct {
	mu sync.Mutex

	// docs maps a note id to the entity ids its Document/chunks reference.
	docs map[string][]string
	// external counts references from nodes the tests never delete.
	external map[string]int64
	entities map[string]bool

	deleteErr map[string]error
	countErr  map[string]error
	entityErr error
	// afterCount runs after each CountLiveReferences, outside the lock.
	afterCount func(entityID string)

	deleteCalls []string
	countCalls  []string
	entityCalls [][]string
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{
		docs:      map[string][]string{},
		external:  map[string]int64{},
		entities:  map[string]bool{},
		deleteErr: map[string]error{},
		countErr:  map[string]error{},
	}
}

func (g *fakeGraph) addDoc(noteID string, entityIDs ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.docs[noteID] = entityIDs
	for _, id := range entityIDs {
		g.entities[id] = true
	}
}

func (g *fakeGraph) addExternalRef(entityID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.external[entityID]++
	g.entities[entityID] = true
}

func (g *fakeGraph) DeleteDocumentSubgraph(ctx context.Context, noteID string) (graph.DocumentDeletion, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deleteCalls = append(g.deleteCalls, noteID)
	if err := g.deleteErr[noteID]; err != nil {
		return graph.DocumentDeletion{}, err
	}
	ents, ok := g.docs[noteID]
	if !ok {
		return graph.DocumentDeletion{Found: false}, nil
	}
	delete(g.docs, noteID)
	return graph.DocumentDeletion{Found: true, ChunksDeleted: 2, EntityIDs: append([]string(nil), ents...)}, nil
}

func (g *fakeGraph) CountLiveReferences(ctx context.Context, entityID string) (int64, error) {
	g.mu.Lock()
	g.countCalls = append(g.countCalls, entityID)
	err := g.countErr[entityID]
	refs := g.refsLocked(entityID)
	hook := g.afterCount
	g.mu.Unlock()

	if hook != nil {
		hook(entityID)
	}
	if err != nil {
		return 0, err
	}
	return refs, nil
}

func (g *fakeGraph) refsLocked(entityID string) int64 {
	refs := g.external[entityID]
	for _, ents := range g.docs {
		for _, id := range ents {
			if id == entityID {
				refs++
			}
		}
	}
	return refs
}

func (g *fakeGraph) DeleteEntities(ctx context.Context, entityIDs []string) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.entityCalls = append(g.entityCalls, append([]string(nil), entityIDs...))
	if g.entityErr != nil {
		return 0, g.entityErr
	}
	var n int64
	for _, id := range entityIDs {
		if g.entities[id] && g.refsLocked(id) == 0 {
			delete(g.entities, id)
			n++
		}
	}
	return n, nil
}

func (g *fakeGraph) hasEntity(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.entities[id]
}

type fakeNotes struct {
	mu sync.Mutex

	notes  map[string]*domain.Note
	getErr map[string]error
	// updateErrs is consumed one error per UpdateKGStatus call for the note;
	// once exhausted, updates succeed.
	updateErrs map[string][]error
	alwaysFail error

	getCalls    []string
	updateCalls []string
}

func newFakeNotes(notes ...*domain.Note) *fakeNotes {
	f := &fakeNotes{
		notes:      map[string]*domain.Note{},
		getErr:     map[string]error{},
		updateErrs: map[string][]error{},
	}
	for _, n := range notes {
		f.notes[n.ID] = n
	}
	return f
}

func (f *fakeNotes) GetByID(dbc dbctx.Context, id string) (*domain.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls = append(f.getCalls, id)
	if err := f.getErr[id]; err != nil {
		return nil, err
	}
	n, ok := f.notes[id]
	if !ok {
		return nil, nil
	}
	cp := *n
	return &cp, nil
}

func (f *fakeNotes) UpdateKGStatus(dbc dbctx.Context, id string, status domain.KGStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls = append(f.updateCalls, id)
	if f.alwaysFail != nil {
		return f.alwaysFail
	}
	if errs := f.updateErrs[id]; len(errs) > 0 {
		f.updateErrs[id] = errs[1:]
		if errs[0] != nil {
			return errs[0]
		}
	}
	n, ok := f.notes[id]
	if !ok {
		return storeerr.Wrap("notes.update_kg_status", gorm.ErrRecordNotFound)
	}
	n.KGStatus = status
	return nil
}

func (f *fakeNotes) status(id string) domain.KGStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n, ok := f.notes[id]; ok {
		return n.KGStatus
	}
	return ""
}

func (f *fakeNotes) updates(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.updateCalls {
		if c == id {
			n++
		}
	}
	return n
}

func note(id, moduleID string, status domain.KGStatus) *domain.Note {
	return &domain.Note{ID: id, ModuleID: moduleID, KGStatus: status}
}

// recordingSleep records requested durations without waiting.
type recordingSleep struct {
	mu     sync.Mutex
	delays []time.Duration
	err    error
}

func (r *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return r.err
}

func (r *recordingSleep) recorded() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delays...)
}

type fakeMetrics struct {
	mu         sync.Mutex
	batches    int
	failed     map[string]int
	reconciled map[string]int
	orphans    int64
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{failed: map[string]int{}, reconciled: map[string]int{}}
}

func (m *fakeMetrics) BatchCompleted(deleted, failed int, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches++
}

func (m *fakeMetrics) NoteFailed(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed[reason]++
}

func (m *fakeMetrics) StatusReconciled(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reconciled[outcome]++
}

func (m *fakeMetrics) OrphansDeleted(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orphans += n
}

type fakePublisher struct {
	mu     sync.Mutex
	events []realtime.Event
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, ev realtime.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func entitySetOf(ids ...string) EntitySet {
	var s EntitySet
	s.Add(ids...)
	return s
}
