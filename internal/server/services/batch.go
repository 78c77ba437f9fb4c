package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophdrive/internal/common"
)

type ItemKind string

const (
	KindFile   ItemKind = "file"
	KindFolder ItemKind = "folder"
)

// Item addresses one record in a batch. Name is a display snapshot taken
// when the item was selected; operations always reload the record by ID.
type Item struct {
	Kind ItemKind
	ID   string
	Name string
}

type Outcome string

const (
	OutcomeSuccess               Outcome = "Success"
	OutcomePermissionDenied      Outcome = "PermissionDenied"
	OutcomeDuplicateName         Outcome = "DuplicateName"
	OutcomeFolderNotEmpty        Outcome = "FolderNotEmpty"
	OutcomeNotFound              Outcome = "NotFound"
	OutcomeStoreUnavailable      Outcome = "StoreUnavailable"
	OutcomeInvalidPath           Outcome = "InvalidPath"
	OutcomePartialCascadeFailure Outcome = "PartialCascadeFailure"
	OutcomeCancelled             Outcome = "Cancelled"
)

// OutcomeOf classifies an item error. Unknown errors count as a store
// failure.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCancelled
	case errors.Is(err, common.ErrPermissionDenied):
		return OutcomePermissionDenied
	case errors.Is(err, common.ErrPartialCascade):
		return OutcomePartialCascadeFailure
	case errors.Is(err, common.ErrDuplicateName):
		return OutcomeDuplicateName
	case errors.Is(err, common.ErrFolderNotEmpty):
		return OutcomeFolderNotEmpty
	case errors.Is(err, common.ErrInvalidPath), errors.Is(err, common.ErrExtensionChanged):
		return OutcomeInvalidPath
	case errors.Is(err, common.ErrNotFound):
		return OutcomeNotFound
	default:
		return OutcomeStoreUnavailable
	}
}

type ItemResult struct {
	Item    Item
	Outcome Outcome
	Err     error
	// Rebased and NotRebased are set for folder moves.
	Rebased    int
	NotRebased int
}

// BatchResult holds one ItemResult per input item, in input order.
type BatchResult struct {
	Items     []ItemResult
	Succeeded int
	Failed    int
}

func (b *BatchResult) add(item Item, rebased int, err error) {
	r := ItemResult{Item: item, Outcome: OutcomeOf(err), Err: err, Rebased: rebased}

	var pe *common.PartialCascadeError
	if errors.As(err, &pe) {
		r.Rebased = pe.Rebased
		r.NotRebased = len(pe.Failed)
	}

	if err == nil {
		b.Succeeded++
	} else {
		b.Failed++
	}
	b.Items = append(b.Items, r)
}

// runBatch applies fn to every item, checking ctx before each one. Items
// not started because of cancellation are reported as Cancelled. fn
// returns the number of descendants it rebased, if any.
func runBatch(ctx context.Context, items []Item, fn func(Item) (int, error)) *BatchResult {
	res := &BatchResult{Items: make([]ItemResult, 0, len(items))}
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			res.add(it, 0, err)
			continue
		}
		n, err := fn(it)
		res.add(it, n, err)
	}
	return res
}
