// Package memory is an in-process storage backend used for development and
// tests. It keeps the whole ledger in maps guarded by one mutex.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"gagyebu/internal/core"
	"gagyebu/internal/storage"
)

type state struct {
	assets     map[int64]core.Asset
	categories map[int64]core.Category
	cards      map[int64]core.Card
	entries    map[int64]core.Entry
	templates  map[int64]core.RecurringTemplate
	budgets    map[int64]core.Budget
	nextID     int64
}

func newState() *state {
	return &state{
		assets:     map[int64]core.Asset{},
		categories: map[int64]core.Category{},
		cards:      map[int64]core.Card{},
		entries:    map[int64]core.Entry{},
		templates:  map[int64]core.RecurringTemplate{},
		budgets:    map[int64]core.Budget{},
	}
}

// clone copies the maps. Values hold only immutable pointees, so a shallow
// copy per map is enough.
func (s *state) clone() *state {
	return &state{
		assets:     maps.Clone(s.assets),
		categories: maps.Clone(s.categories),
		cards:      maps.Clone(s.cards),
		entries:    maps.Clone(s.entries),
		templates:  maps.Clone(s.templates),
		budgets:    maps.Clone(s.budgets),
		nextID:     s.nextID,
	}
}

func (s *state) id() int64 {
	s.nextID++
	return s.nextID
}

// Store implements storage.UnitOfWork. A unit of work runs against a copy of
// the state that replaces the live one only when fn succeeds.
type Store struct {
	mu sync.Mutex
	st *state
}

var _ storage.UnitOfWork = (*Store)(nil)

func New() *Store {
	return &Store{st: newState()}
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	if err := fn(&memTx{st: work}); err != nil {
		return err
	}
	s.st = work
	return nil
}

func (s *Store) Close() error { return nil }

type memTx struct {
	st *state
}

func sortedValues[V any](m map[int64]V) []V {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]V, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}

func clonePtr(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneEntry(e core.Entry) core.Entry {
	e.CardID = clonePtr(e.CardID)
	e.SourceAssetID = clonePtr(e.SourceAssetID)
	e.DestAssetID = clonePtr(e.DestAssetID)
	e.RecurringTemplateID = clonePtr(e.RecurringTemplateID)
	return e
}

func cloneTemplate(rt core.RecurringTemplate) core.RecurringTemplate {
	rt.CardID = clonePtr(rt.CardID)
	rt.SourceAssetID = clonePtr(rt.SourceAssetID)
	rt.DestAssetID = clonePtr(rt.DestAssetID)
	return rt
}

func isRef(p *int64, id int64) bool { return p != nil && *p == id }

// Assets

func (t *memTx) GetAsset(_ context.Context, id int64) (core.Asset, error) {
	a, ok := t.st.assets[id]
	if !ok {
		return core.Asset{}, core.NotFound("asset", id)
	}
	return a, nil
}

func (t *memTx) ListAssets(context.Context) ([]core.Asset, error) {
	return sortedValues(t.st.assets), nil
}

func (t *memTx) DefaultAsset(context.Context) (*core.Asset, error) {
	for _, a := range sortedValues(t.st.assets) {
		if a.IsDefault {
			return &a, nil
		}
	}
	return nil, nil
}

func (t *memTx) CreateAsset(_ context.Context, a *core.Asset) error {
	a.ID = t.st.id()
	t.st.assets[a.ID] = *a
	return nil
}

func (t *memTx) UpdateAsset(_ context.Context, a core.Asset) error {
	if _, ok := t.st.assets[a.ID]; !ok {
		return core.NotFound("asset", a.ID)
	}
	t.st.assets[a.ID] = a
	return nil
}

func (t *memTx) DeleteAsset(_ context.Context, id int64) error {
	if _, ok := t.st.assets[id]; !ok {
		return core.NotFound("asset", id)
	}
	delete(t.st.assets, id)
	for tid, rt := range t.st.templates {
		if isRef(rt.SourceAssetID, id) || isRef(rt.DestAssetID, id) {
			rt = cloneTemplate(rt)
			if isRef(rt.SourceAssetID, id) {
				rt.SourceAssetID = nil
			}
			if isRef(rt.DestAssetID, id) {
				rt.DestAssetID = nil
			}
			t.st.templates[tid] = rt
		}
	}
	return nil
}

func (t *memTx) ClearDefaultAsset(context.Context) error {
	for id, a := range t.st.assets {
		if a.IsDefault {
			a.IsDefault = false
			t.st.assets[id] = a
		}
	}
	return nil
}

// Categories

func (t *memTx) GetCategory(_ context.Context, id int64) (core.Category, error) {
	c, ok := t.st.categories[id]
	if !ok {
		return core.Category{}, core.NotFound("category", id)
	}
	return c, nil
}

func (t *memTx) ListCategories(context.Context) ([]core.Category, error) {
	return sortedValues(t.st.categories), nil
}

func (t *memTx) CreateCategory(_ context.Context, c *core.Category) error {
	c.ID = t.st.id()
	t.st.categories[c.ID] = *c
	return nil
}

func (t *memTx) UpdateCategory(_ context.Context, c core.Category) error {
	if _, ok := t.st.categories[c.ID]; !ok {
		return core.NotFound("category", c.ID)
	}
	t.st.categories[c.ID] = c
	return nil
}

func (t *memTx) DeleteCategory(_ context.Context, id int64) error {
	if _, ok := t.st.categories[id]; !ok {
		return core.NotFound("category", id)
	}
	delete(t.st.categories, id)
	return nil
}

func (t *memTx) CategoryInUse(_ context.Context, id int64) (bool, error) {
	for _, e := range t.st.entries {
		if e.CategoryID == id {
			return true, nil
		}
	}
	for _, rt := range t.st.templates {
		if rt.CategoryID == id {
			return true, nil
		}
	}
	for _, b := range t.st.budgets {
		if b.CategoryID == id {
			return true, nil
		}
	}
	return false, nil
}

// Cards

func (t *memTx) GetCard(_ context.Context, id int64) (core.Card, error) {
	c, ok := t.st.cards[id]
	if !ok {
		return core.Card{}, core.NotFound("card", id)
	}
	return c, nil
}

func (t *memTx) ListCards(context.Context) ([]core.Card, error) {
	return sortedValues(t.st.cards), nil
}

func (t *memTx) CreateCard(_ context.Context, c *core.Card) error {
	c.ID = t.st.id()
	t.st.cards[c.ID] = *c
	return nil
}

func (t *memTx) DeleteCard(_ context.Context, id int64) error {
	if _, ok := t.st.cards[id]; !ok {
		return core.NotFound("card", id)
	}
	delete(t.st.cards, id)
	for eid, e := range t.st.entries {
		if isRef(e.CardID, id) {
			e = cloneEntry(e)
			e.CardID = nil
			t.st.entries[eid] = e
		}
	}
	for tid, rt := range t.st.templates {
		if isRef(rt.CardID, id) {
			rt = cloneTemplate(rt)
			rt.CardID = nil
			t.st.templates[tid] = rt
		}
	}
	return nil
}

// Entries

func (t *memTx) GetEntry(_ context.Context, id int64) (core.Entry, error) {
	e, ok := t.st.entries[id]
	if !ok {
		return core.Entry{}, core.NotFound("entry", id)
	}
	return cloneEntry(e), nil
}

func (t *memTx) ListEntries(_ context.Context, f storage.EntryFilter) ([]core.Entry, error) {
	var out []core.Entry
	for _, e := range sortedValues(t.st.entries) {
		if f.Match(e) {
			out = append(out, cloneEntry(e))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (t *memTx) CreateEntry(_ context.Context, e *core.Entry) error {
	e.ID = t.st.id()
	t.st.entries[e.ID] = cloneEntry(*e)
	return nil
}

func (t *memTx) UpdateEntry(_ context.Context, e core.Entry) error {
	if _, ok := t.st.entries[e.ID]; !ok {
		return core.NotFound("entry", e.ID)
	}
	t.st.entries[e.ID] = cloneEntry(e)
	return nil
}

func (t *memTx) DeleteEntry(_ context.Context, id int64) error {
	if _, ok := t.st.entries[id]; !ok {
		return core.NotFound("entry", id)
	}
	delete(t.st.entries, id)
	return nil
}

func (t *memTx) ExistsEntryForTemplate(_ context.Context, templateID int64, from, to core.Date) (bool, error) {
	for _, e := range t.st.entries {
		if isRef(e.RecurringTemplateID, templateID) && !e.Date.Before(from) && !e.Date.After(to) {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) ClearAssetReferences(_ context.Context, assetID int64) error {
	for id, e := range t.st.entries {
		if isRef(e.SourceAssetID, assetID) || isRef(e.DestAssetID, assetID) {
			e = cloneEntry(e)
			if isRef(e.SourceAssetID, assetID) {
				e.SourceAssetID = nil
			}
			if isRef(e.DestAssetID, assetID) {
				e.DestAssetID = nil
			}
			t.st.entries[id] = e
		}
	}
	return nil
}

// Recurring templates

func (t *memTx) GetTemplate(_ context.Context, id int64) (core.RecurringTemplate, error) {
	rt, ok := t.st.templates[id]
	if !ok {
		return core.RecurringTemplate{}, core.NotFound("recurring template", id)
	}
	return cloneTemplate(rt), nil
}

func (t *memTx) ListTemplates(context.Context) ([]core.RecurringTemplate, error) {
	out := sortedValues(t.st.templates)
	for i := range out {
		out[i] = cloneTemplate(out[i])
	}
	return out, nil
}

func (t *memTx) CreateTemplate(_ context.Context, rt *core.RecurringTemplate) error {
	rt.ID = t.st.id()
	t.st.templates[rt.ID] = cloneTemplate(*rt)
	return nil
}

func (t *memTx) UpdateTemplate(_ context.Context, rt core.RecurringTemplate) error {
	if _, ok := t.st.templates[rt.ID]; !ok {
		return core.NotFound("recurring template", rt.ID)
	}
	t.st.templates[rt.ID] = cloneTemplate(rt)
	return nil
}

func (t *memTx) DeleteTemplate(_ context.Context, id int64) error {
	if _, ok := t.st.templates[id]; !ok {
		return core.NotFound("recurring template", id)
	}
	delete(t.st.templates, id)
	for eid, e := range t.st.entries {
		if isRef(e.RecurringTemplateID, id) {
			e = cloneEntry(e)
			e.RecurringTemplateID = nil
			t.st.entries[eid] = e
		}
	}
	return nil
}

// Budgets

func (t *memTx) GetBudget(_ context.Context, id int64) (core.Budget, error) {
	b, ok := t.st.budgets[id]
	if !ok {
		return core.Budget{}, core.NotFound("budget", id)
	}
	return b, nil
}

func (t *memTx) FindBudget(_ context.Context, year, month int, categoryID int64) (*core.Budget, error) {
	for _, b := range t.st.budgets {
		if b.Year == year && b.Month == month && b.CategoryID == categoryID {
			return &b, nil
		}
	}
	return nil, nil
}

func (t *memTx) ListBudgets(_ context.Context, from, to int) ([]core.Budget, error) {
	var out []core.Budget
	for _, b := range t.st.budgets {
		if idx := b.Index(); idx >= from && idx <= to {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Index() != out[j].Index() {
			return out[i].Index() < out[j].Index()
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out, nil
}

func (t *memTx) CreateBudget(_ context.Context, b *core.Budget) error {
	if existing, _ := t.FindBudget(context.Background(), b.Year, b.Month, b.CategoryID); existing != nil {
		return fmt.Errorf("budget %04d-%02d category %d already exists", b.Year, b.Month, b.CategoryID)
	}
	b.ID = t.st.id()
	t.st.budgets[b.ID] = *b
	return nil
}

func (t *memTx) UpdateBudget(_ context.Context, b core.Budget) error {
	if _, ok := t.st.budgets[b.ID]; !ok {
		return core.NotFound("budget", b.ID)
	}
	t.st.budgets[b.ID] = b
	return nil
}

func (t *memTx) DeleteBudget(_ context.Context, id int64) error {
	if _, ok := t.st.budgets[id]; !ok {
		return core.NotFound("budget", id)
	}
	delete(t.st.budgets, id)
	return nil
}
