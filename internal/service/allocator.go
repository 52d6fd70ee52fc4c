package service

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/google/uuid"

	"github.com/Omarkam3l/Kathir-final/internal/domain"
)

const (
	DefaultTargetUniqueCount = 5
	DefaultMaxQtyPerItem     = 5

	// Phase 2 requests this many portions per traversal step; the
	// accumulation rule clamps it to stock, the per-item cap and the
	// remaining budget.
	fillAttemptQty = 15

	// Phase 1 aims for 1.5x the requested unique count, never below 2.
	varietyFactor = 1.5
)

// Allocator builds budget-constrained cart proposals over the resolver's
// candidate set. Favorites get triple selection weight; the shuffle is the
// sole source of non-determinism.
type Allocator struct {
	resolver *Resolver
	rng      *rand.Rand
}

type AllocatorOption func(*Allocator)

// WithRand replaces the allocator's random source, for reproducible tests.
func WithRand(rng *rand.Rand) AllocatorOption {
	return func(a *Allocator) { a.rng = rng }
}

func NewAllocator(resolver *Resolver, opts ...AllocatorOption) *Allocator {
	a := &Allocator{
		resolver: resolver,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type BuildCartRequest struct {
	ResolveRequest

	Budget            domain.Money
	TargetUniqueCount int // default 5
	MaxQtyPerItem     int // default 5
}

// BuildCart produces a priced, favorite-aware proposal that never exceeds the
// budget nor any per-item stock ceiling. A too-small budget yields an empty
// proposal, not an error.
func (a *Allocator) BuildCart(ctx context.Context, req BuildCartRequest) (domain.CartProposal, error) {
	if !req.Budget.IsPositive() {
		return domain.CartProposal{}, fmt.Errorf("%w: budget must be > 0", domain.ErrInvalidArgument)
	}
	if req.TargetUniqueCount == 0 {
		req.TargetUniqueCount = DefaultTargetUniqueCount
	}
	if req.MaxQtyPerItem == 0 {
		req.MaxQtyPerItem = DefaultMaxQtyPerItem
	}
	if req.TargetUniqueCount < 1 || req.MaxQtyPerItem < 1 {
		return domain.CartProposal{}, fmt.Errorf("%w: target_unique_count and max_qty_per_item must be >= 1", domain.ErrInvalidArgument)
	}

	candidates, restaurant, err := a.resolver.Resolve(ctx, req.ResolveRequest)
	if err != nil {
		return domain.CartProposal{}, err
	}

	proposal := allocate(candidates, req.Budget, req.TargetUniqueCount, req.MaxQtyPerItem, a.rng)
	proposal.RestaurantName = restaurant.Name

	return proposal, nil
}

type selection struct {
	item domain.CandidateItem
	qty  int
}

func allocate(candidates []domain.CandidateItem, budget domain.Money, targetUnique, maxQtyPerItem int, rng *rand.Rand) domain.CartProposal {
	var favorites, others []domain.CandidateItem
	for _, c := range candidates {
		if c.IsFavorite {
			favorites = append(favorites, c)
		} else {
			others = append(others, c)
		}
	}

	rng.Shuffle(len(favorites), func(i, j int) {
		favorites[i], favorites[j] = favorites[j], favorites[i]
	})
	rng.Shuffle(len(others), func(i, j int) {
		others[i], others[j] = others[j], others[i]
	})

	// Favorites appear three times in the traversal to triple their
	// selection opportunities; the accumulation rule keeps their quantity
	// capped like everyone else's.
	traversal := make([]domain.CandidateItem, 0, 3*len(favorites)+len(others))
	for range 3 {
		traversal = append(traversal, favorites...)
	}
	traversal = append(traversal, others...)

	picked := make(map[uuid.UUID]*selection)
	total := domain.ZeroMoney(budget.Currency)

	tryAdd := func(item domain.CandidateItem, qty int) {
		ceiling := min(maxQtyPerItem, item.Stock)

		current := 0
		if sel, ok := picked[item.ID]; ok {
			current = sel.qty
		}
		remainingCap := ceiling - current
		if remainingCap <= 0 {
			return
		}

		maxAffordable := int(budget.Amount.Sub(total.Amount).Div(item.Price.Amount).IntPart())

		add := min(qty, remainingCap, maxAffordable)
		if add <= 0 {
			return
		}

		if sel, ok := picked[item.ID]; ok {
			sel.qty += add
		} else {
			picked[item.ID] = &selection{item: item, qty: add}
		}
		total = total.Add(item.Price.MulInt(add))
	}

	// Phase 1 — variety: one portion at a time until enough distinct items.
	uniqueTarget := max(2, int(math.Round(float64(targetUnique)*varietyFactor)))
	for _, item := range traversal {
		if len(picked) >= uniqueTarget {
			break
		}
		tryAdd(item, 1)
	}

	// Phase 2 — fill the remaining budget aggressively.
	for _, item := range traversal {
		if total.Amount.GreaterThanOrEqual(budget.Amount) {
			break
		}
		tryAdd(item, fillAttemptQty)
	}

	return buildProposal(picked, budget, total)
}

func buildProposal(picked map[uuid.UUID]*selection, budget, total domain.Money) domain.CartProposal {
	lines := make([]domain.ProposalLine, 0, len(picked))
	totalQty := 0

	for _, sel := range picked {
		lines = append(lines, domain.ProposalLine{
			MealID:     sel.item.ID,
			Title:      sel.item.Title,
			UnitPrice:  sel.item.Price,
			Quantity:   sel.qty,
			Subtotal:   sel.item.Price.MulInt(sel.qty),
			IsFavorite: sel.item.IsFavorite,
		})
		totalQty += sel.qty
	}

	sort.Slice(lines, func(i, j int) bool {
		if lines[i].IsFavorite != lines[j].IsFavorite {
			return lines[i].IsFavorite
		}
		if cmp := lines[i].UnitPrice.Amount.Cmp(lines[j].UnitPrice.Amount); cmp != 0 {
			return cmp < 0
		}
		return lines[i].Title < lines[j].Title
	})

	proposal := domain.CartProposal{
		Budget:          budget,
		Lines:           lines,
		Total:           total,
		RemainingBudget: budget.Sub(total),
		TotalQuantity:   totalQty,
	}

	if len(lines) == 0 {
		proposal.Message = fmt.Sprintf("Nothing fits: every meal costs more than the %s budget.", budget)
	} else {
		proposal.Message = fmt.Sprintf("Suggested cart for %s: %d portions (%d unique), total %s. Add this?",
			budget, totalQty, len(lines), total)
	}

	return proposal
}
