package product

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/feriaverde/catalog-backend/pkg/db/models"
	"github.com/feriaverde/catalog-backend/pkg/enums"
	pkgerrors "github.com/feriaverde/catalog-backend/pkg/errors"
)

// SyncStep names the phases of a variant reconciliation, used in error
// details and metrics so a failed sync reports exactly where it stopped.
type SyncStep string

const (
	SyncStepDelete SyncStep = "delete"
	SyncStepUpdate SyncStep = "update"
	SyncStepInsert SyncStep = "insert"
)

// VariantInput is one desired-state entry of an incoming variant list. A nil
// ID means the variant does not exist yet; a set ID targets a persisted row.
type VariantInput struct {
	ID        *int64
	Label     string
	Amount    decimal.Decimal
	Unit      enums.VariantUnit
	Price     decimal.Decimal
	IsDefault bool
	IsActive  bool
	SortOrder int
}

// variantSyncPlan is the minimal set of storage operations that turns the
// persisted variant set into the incoming desired state. The final slice
// holds every surviving row in display order with defaults normalized and
// sort_order re-sequenced 0..N-1.
type variantSyncPlan struct {
	deleteIDs []int64
	final     []models.ProductVariant
}

func (p *variantSyncPlan) updates() []models.ProductVariant {
	rows := make([]models.ProductVariant, 0, len(p.final))
	for _, v := range p.final {
		if v.ID != 0 {
			rows = append(rows, v)
		}
	}
	return rows
}

func (p *variantSyncPlan) inserts() []models.ProductVariant {
	rows := make([]models.ProductVariant, 0, len(p.final))
	for _, v := range p.final {
		if v.ID == 0 {
			rows = append(rows, v)
		}
	}
	return rows
}

// desiredVariant pairs a materialized row with its position in the incoming
// request, which stands in for creation order on rows that have no id yet.
type desiredVariant struct {
	row     models.ProductVariant
	arrival int
}

// order ranks persisted rows by id and places not-yet-created rows after
// every persisted one, so default promotion and display ordering tie-breaks
// follow creation order.
func (d desiredVariant) order() int64 {
	if d.row.ID != 0 {
		return d.row.ID
	}
	return int64(1)<<62 + int64(d.arrival)
}

// planVariantSync diffs the persisted set against the incoming desired state:
// persisted rows missing from the incoming id set are deleted, matched rows
// are updated, id-less entries are inserted. Default flags are normalized so
// exactly one active variant ends up default whenever any active variant
// exists, and sort_order comes out dense from zero.
func planVariantSync(productID int64, persisted []models.ProductVariant, incoming []VariantInput) (*variantSyncPlan, error) {
	if err := validateVariantInputs(persisted, incoming); err != nil {
		return nil, err
	}

	persistedByID := make(map[int64]models.ProductVariant, len(persisted))
	for _, v := range persisted {
		persistedByID[v.ID] = v
	}
	incomingIDs := make(map[int64]struct{}, len(incoming))
	for _, in := range incoming {
		if in.ID != nil {
			incomingIDs[*in.ID] = struct{}{}
		}
	}

	plan := &variantSyncPlan{}
	for _, v := range persisted {
		if _, keep := incomingIDs[v.ID]; !keep {
			plan.deleteIDs = append(plan.deleteIDs, v.ID)
		}
	}

	entries := make([]desiredVariant, 0, len(incoming))
	for idx, in := range incoming {
		row := models.ProductVariant{ProductID: productID}
		if in.ID != nil {
			row = persistedByID[*in.ID]
		}
		row.Label = strings.TrimSpace(in.Label)
		row.Amount = in.Amount
		row.Unit = in.Unit
		row.Price = in.Price
		row.IsDefault = in.IsDefault
		row.IsActive = in.IsActive
		row.SortOrder = in.SortOrder
		entries = append(entries, desiredVariant{row: row, arrival: idx})
	}

	if err := guardDefaultDeactivation(persisted, incomingIDs, entries); err != nil {
		return nil, err
	}
	if err := normalizeDefaults(entries); err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].row.SortOrder != entries[j].row.SortOrder {
			return entries[i].row.SortOrder < entries[j].row.SortOrder
		}
		return entries[i].order() < entries[j].order()
	})

	plan.final = make([]models.ProductVariant, 0, len(entries))
	for i := range entries {
		entries[i].row.SortOrder = i
		plan.final = append(plan.final, entries[i].row)
	}
	plan.final = repairDefaults(plan.final)
	return plan, nil
}

// normalizeDefaults applies the three reconciliation rules: a single default
// claim is honored literally, extra claims beyond the first are demoted, and
// when nothing claims the flag the first active entry is promoted. A claim on
// an inactive entry can never be honored.
func normalizeDefaults(entries []desiredVariant) error {
	claimed := -1
	for i := range entries {
		if !entries[i].row.IsDefault {
			continue
		}
		if claimed >= 0 {
			entries[i].row.IsDefault = false
			continue
		}
		claimed = i
	}
	if claimed >= 0 {
		if !entries[claimed].row.IsActive {
			return pkgerrors.New(pkgerrors.CodeValidation, "default variant must be active")
		}
		return nil
	}

	best := -1
	for i := range entries {
		if !entries[i].row.IsActive {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		a, b := entries[i], entries[best]
		if a.row.SortOrder < b.row.SortOrder ||
			(a.row.SortOrder == b.row.SortOrder && a.order() < b.order()) {
			best = i
		}
	}
	if best >= 0 {
		entries[best].row.IsDefault = true
	}
	return nil
}

// guardDefaultDeactivation rejects a request that flips the currently-default
// variant inactive without flagging another active variant as the default in
// the same request. Deleting the default row instead is allowed: promotion
// covers the post-deletion set.
func guardDefaultDeactivation(persisted []models.ProductVariant, incomingIDs map[int64]struct{}, entries []desiredVariant) error {
	var current *models.ProductVariant
	for i := range persisted {
		if persisted[i].IsDefault && persisted[i].IsActive {
			current = &persisted[i]
			break
		}
	}
	if current == nil {
		return nil
	}
	if _, kept := incomingIDs[current.ID]; !kept {
		return nil
	}

	deactivated := false
	transferred := false
	for _, e := range entries {
		if e.row.ID == current.ID {
			if !e.row.IsActive {
				deactivated = true
			}
			continue
		}
		if e.row.IsDefault && e.row.IsActive {
			transferred = true
		}
	}
	if deactivated && !transferred {
		return pkgerrors.New(pkgerrors.CodeValidation,
			"cannot deactivate the default variant; assign another default first")
	}
	return nil
}

func validateVariantInputs(persisted []models.ProductVariant, incoming []VariantInput) error {
	persistedIDs := make(map[int64]struct{}, len(persisted))
	for _, v := range persisted {
		persistedIDs[v.ID] = struct{}{}
	}

	var err error
	seen := make(map[int64]struct{}, len(incoming))
	for idx, in := range incoming {
		if in.ID != nil {
			if _, ok := persistedIDs[*in.ID]; !ok {
				err = multierr.Append(err, fmt.Errorf("variants[%d]: unknown variant id %d", idx, *in.ID))
			}
			if _, dup := seen[*in.ID]; dup {
				err = multierr.Append(err, fmt.Errorf("variants[%d]: duplicate variant id %d", idx, *in.ID))
			}
			seen[*in.ID] = struct{}{}
		}
		if strings.TrimSpace(in.Label) == "" {
			err = multierr.Append(err, fmt.Errorf("variants[%d]: label is required", idx))
		}
		if !in.Unit.IsValid() {
			err = multierr.Append(err, fmt.Errorf("variants[%d]: invalid unit %q", idx, in.Unit))
		}
		if !in.Amount.IsPositive() {
			err = multierr.Append(err, fmt.Errorf("variants[%d]: amount must be positive", idx))
		}
		if !in.Price.IsPositive() {
			err = multierr.Append(err, fmt.Errorf("variants[%d]: price must be positive", idx))
		}
	}
	if err == nil {
		return nil
	}

	details := make([]string, 0)
	for _, e := range multierr.Errors(err) {
		details = append(details, e.Error())
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variant list").
		WithDetails(map[string]any{"variants": details})
}
