package domain

import (
	"time"

	"github.com/google/uuid"
)

// CartLine is the persisted cart row, at most one per (user, meal) pair.
// Quantity accumulates across adds and is never overwritten.
type CartLine struct {
	UserID   uuid.UUID
	MealID   uuid.UUID
	Quantity int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Staleness reasons for a rendered cart line.
const (
	StaleExpired    = "expired"
	StaleOutOfStock = "out_of_stock"
	StaleInactive   = "inactive"
)

// CartViewLine is one annotated line of the rendered cart.
type CartViewLine struct {
	MealID         uuid.UUID
	Title          string
	Category       string
	RestaurantName string
	UnitPrice      Money
	Quantity       int
	Subtotal       Money
	AvailableStock int
	AddedAt        time.Time

	// Warning is set when the line stays active but its quantity exceeds the
	// live stock. StaleReason is set when the line is expired, inactive or
	// out of stock.
	Warning     string
	StaleReason string
}

// CartView is the annotated rendering of a user's persisted cart.
type CartView struct {
	UserID        uuid.UUID
	Lines         []CartViewLine
	StaleLines    []CartViewLine
	Total         Money
	TotalQuantity int
	Message       string
}

// ProposalLine is one selected item of a cart proposal.
type ProposalLine struct {
	MealID     uuid.UUID
	Title      string
	UnitPrice  Money
	Quantity   int
	Subtotal   Money
	IsFavorite bool
}

// CartProposal is the allocator's output: a priced selection that never
// exceeds the budget nor any per-item stock ceiling. Committing it to the
// persisted cart is a separate, per-line add.
type CartProposal struct {
	RestaurantName  string
	Budget          Money
	Lines           []ProposalLine
	Total           Money
	RemainingBudget Money
	TotalQuantity   int
	Message         string
}

func (p CartProposal) UniqueItems() int {
	return len(p.Lines)
}
