// Package board keeps an admin's local view of the awards in step with the
// server. Reorders are applied locally first and then committed as a single
// batch; a failed commit throws the local state away and re-fetches it.
package board

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/P3chys/awards-api/internal/client"
	"github.com/P3chys/awards-api/internal/models"
	"github.com/P3chys/awards-api/internal/ordering"
	"go.uber.org/zap"
)

const (
	MsgOrderSaved    = "Award order saved"
	MsgOrderRestored = "Failed to save order, restoring..."
	MsgLoadAwards    = "Failed to load awards"
	MsgLoadCategory  = "Failed to load categories"
)

var ErrUnknownCategory = errors.New("unknown category")

// API is the part of the awards API the board needs. *client.Client
// satisfies it.
type API interface {
	Categories(ctx context.Context) ([]models.Category, error)
	Awards(ctx context.Context) ([]models.Award, error)
	Reorder(ctx context.Context, pairs []client.OrderPair) error
}

// Notifier shows short notices to the user.
type Notifier interface {
	Success(msg string)
	Failure(msg string)
}

// Result describes what happened to one reorder.
type Result struct {
	// Applied is set once the new order was published locally.
	Applied bool
	// Committed is set when the server accepted the batch.
	Committed bool
	Err       error
}

type Board struct {
	api    API
	notify Notifier
	log    *zap.Logger

	mu         sync.Mutex
	categories []models.Category
	awards     []models.Award
	active     uint
	directions map[uint]ordering.Direction
	observers  []func([]models.Award)
}

func New(api API, notify Notifier, log *zap.Logger) *Board {
	return &Board{
		api:        api,
		notify:     notify,
		log:        log,
		directions: make(map[uint]ordering.Direction),
	}
}

// Subscribe registers fn to receive every published award collection,
// optimistic and reloaded alike.
func (b *Board) Subscribe(fn func([]models.Award)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, fn)
}

// Load fetches categories and awards. The first category becomes active
// unless one was already selected.
func (b *Board) Load(ctx context.Context) error {
	categories, err := b.api.Categories(ctx)
	if err != nil {
		b.notify.Failure(MsgLoadCategory)
		return fmt.Errorf("load categories: %w", err)
	}

	b.mu.Lock()
	b.categories = categories
	if b.active == 0 && len(categories) > 0 {
		b.active = categories[0].ID
	}
	b.mu.Unlock()

	return b.Reload(ctx)
}

// Reload replaces the local awards with the server's.
func (b *Board) Reload(ctx context.Context) error {
	awards, err := b.api.Awards(ctx)
	if err != nil {
		b.notify.Failure(MsgLoadAwards)
		return fmt.Errorf("load awards: %w", err)
	}
	slices.SortStableFunc(awards, func(x, y models.Award) int {
		if c := cmp.Compare(x.CategoryID, y.CategoryID); c != 0 {
			return c
		}
		return cmp.Compare(x.Order, y.Order)
	})

	b.mu.Lock()
	b.awards = awards
	b.mu.Unlock()

	b.publish()
	return nil
}

func (b *Board) Select(categoryID uint) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, c := range b.categories {
		if c.ID == categoryID {
			b.active = categoryID
			return nil
		}
	}
	return fmt.Errorf("category %d: %w", categoryID, ErrUnknownCategory)
}

func (b *Board) Active() uint {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

func (b *Board) Categories() []models.Category {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.categories)
}

// Awards returns a copy of the whole collection.
func (b *Board) Awards() []models.Award {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.awards)
}

// Visible returns the active category's awards sorted by order.
func (b *Board) Visible() []models.Award {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.visibleLocked()
}

// Direction returns the last committed date-sort direction of the category,
// or "" if it was never sorted.
func (b *Board) Direction(categoryID uint) ordering.Direction {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.directions[categoryID]
}

// Move drags the visible award at index from to index to. Moving an award
// onto itself does nothing.
func (b *Board) Move(ctx context.Context, from, to int) Result {
	if from == to {
		return Result{}
	}

	b.mu.Lock()
	moved, err := ordering.Move(b.visibleLocked(), from, to)
	if err != nil {
		b.mu.Unlock()
		return Result{Err: err}
	}
	pairs := b.applyLocked(moved)
	b.directions[b.active] = ordering.Desc
	b.mu.Unlock()

	b.publish()
	return b.commit(ctx, pairs, nil)
}

// ToggleDateSort re-sorts the active category by date, flipping the
// direction used last time.
func (b *Board) ToggleDateSort(ctx context.Context) Result {
	return b.SortByDate(ctx, b.Direction(b.Active()).Toggle())
}

// SortByDate re-sorts the active category by date in the given direction.
// Equal dates keep their current relative order. The direction is only
// remembered once the server accepts it.
func (b *Board) SortByDate(ctx context.Context, dir ordering.Direction) Result {
	b.mu.Lock()
	category := b.active
	sorted := ordering.SortByDate(b.visibleLocked(), models.Award.DateKey, dir)
	pairs := b.applyLocked(sorted)
	b.mu.Unlock()

	b.publish()
	return b.commit(ctx, pairs, func() {
		b.mu.Lock()
		b.directions[category] = dir
		b.mu.Unlock()
	})
}

func (b *Board) commit(ctx context.Context, pairs []client.OrderPair, onSuccess func()) Result {
	if err := b.api.Reorder(ctx, pairs); err != nil {
		b.log.Warn("reorder rejected, reloading", zap.Int("count", len(pairs)), zap.Error(err))
		b.notify.Failure(MsgOrderRestored)
		if reloadErr := b.Reload(ctx); reloadErr != nil {
			b.log.Error("reload after failed reorder", zap.Error(reloadErr))
		}
		return Result{Applied: true, Err: err}
	}

	if onSuccess != nil {
		onSuccess()
	}
	b.notify.Success(MsgOrderSaved)
	return Result{Applied: true, Committed: true}
}

// applyLocked renumbers seq to 0..n-1, merges it into the collection by id
// and returns the batch to send.
func (b *Board) applyLocked(seq []models.Award) []client.OrderPair {
	ordering.Renumber(seq, func(a *models.Award, i int) { a.Order = i })

	byID := make(map[uint]models.Award, len(seq))
	pairs := make([]client.OrderPair, len(seq))
	for i, a := range seq {
		byID[a.ID] = a
		pairs[i] = client.OrderPair{ID: a.ID, Order: a.Order}
	}

	merged := make([]models.Award, len(b.awards))
	for i, a := range b.awards {
		if updated, ok := byID[a.ID]; ok {
			merged[i] = updated
		} else {
			merged[i] = a
		}
	}
	b.awards = merged
	return pairs
}

func (b *Board) visibleLocked() []models.Award {
	var out []models.Award
	for _, a := range b.awards {
		if a.CategoryID == b.active {
			out = append(out, a)
		}
	}
	slices.SortStableFunc(out, func(x, y models.Award) int {
		return cmp.Compare(x.Order, y.Order)
	})
	return out
}

func (b *Board) publish() {
	b.mu.Lock()
	snapshot := slices.Clone(b.awards)
	observers := slices.Clone(b.observers)
	b.mu.Unlock()

	for _, fn := range observers {
		fn(snapshot)
	}
}
