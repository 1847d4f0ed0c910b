package cart

import "github.com/shopspring/decimal"

type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeUpdated  ChangeKind = "updated"
	ChangeRemoved  ChangeKind = "removed"
	ChangeCleared  ChangeKind = "cleared"
	ChangeRestored ChangeKind = "restored"
	ChangeOrdered  ChangeKind = "ordered"
)

// Totals are the derived figures observers usually render (badge, footer).
type Totals struct {
	Total      decimal.Decimal
	ItemsCount int
	Lines      int
}

// Change is delivered to observers after a mutation was applied and persisted.
// ProductID and Packs are zero for cleared, restored and ordered.
type Change struct {
	Kind      ChangeKind
	ProductID int64
	Packs     int
	Totals    Totals
}

// Observer is called synchronously after every mutation, outside the store lock.
type Observer func(Change)
