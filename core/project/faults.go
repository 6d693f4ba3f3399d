package project

import (
	"fmt"

	"github.com/volatiletech/null/v8"
)

// FaultCode classifies per-item submission diagnostics.
type FaultCode string

const (
	// FaultInvalidQuantity - submitted progress is negative or non-numeric.
	FaultInvalidQuantity FaultCode = "invalid_quantity"
	// FaultPreconditionMissing - the item lacks target dates or scope.
	FaultPreconditionMissing FaultCode = "missing_dates"
	// FaultScopeExceeded - cumulative completion would exceed scope.
	FaultScopeExceeded FaultCode = "scope_exceeded"
	// FaultDataIntegrity - duplicate ledger rows found for a single key;
	// a storage-constraint violation, not a user error.
	FaultDataIntegrity FaultCode = "data_integrity"
)

// Fault is one item's diagnostic within a submission batch. Items fail
// independently; faults are accumulated and returned together, they never
// abort processing of sibling items.
type Fault struct {
	ItemID      string       `json:"item_id"`
	Description string       `json:"description"`
	Code        FaultCode    `json:"code"`
	Message     string       `json:"message"`
	MaxAllowed  null.Float64 `json:"max_allowed,omitempty"`
}

func invalidQuantityFault(itm WorkItem, reason string) Fault {
	return Fault{
		ItemID:      itm.ID,
		Description: itm.Description,
		Code:        FaultInvalidQuantity,
		Message:     fmt.Sprintf("%s value not allowed for %q", reason, itm.Description),
	}
}

func preconditionFault(itm WorkItem) Fault {
	return Fault{
		ItemID:      itm.ID,
		Description: itm.Description,
		Code:        FaultPreconditionMissing,
		Message:     fmt.Sprintf("cannot enter progress for %q due to missing dates or scope", itm.Description),
	}
}

func dataIntegrityFault(itm WorkItem) Fault {
	return Fault{
		ItemID:      itm.ID,
		Description: itm.Description,
		Code:        FaultDataIntegrity,
		Message:     fmt.Sprintf("multiple progress rows found for %q on the same date; contact an administrator", itm.Description),
	}
}

func scopeExceededFault(itm WorkItem, maxAllowed float64) Fault {
	return Fault{
		ItemID:      itm.ID,
		Description: itm.Description,
		Code:        FaultScopeExceeded,
		Message:     fmt.Sprintf("progress for %q exceeds scope; max allowed today: %g", itm.Description, maxAllowed),
		MaxAllowed:  null.Float64From(maxAllowed),
	}
}
