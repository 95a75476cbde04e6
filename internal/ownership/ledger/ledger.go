// Package ledger computes and validates aggregate ownership percentages.
//
// The invariant: for every property, the percentages of ownership records
// active at an evaluated date must sum to exactly 100, within the rounding
// tolerance Epsilon. All arithmetic uses decimal values so repeating
// fractions (33.33 + 33.33 + 33.34) sum exactly, with no binary floating
// point drift.
//
// The package is pure: validation applies a proposed change to a copy of
// the record set and never mutates or persists anything. Callers run it
// inside the store's per-property mutation critical section so the record
// set it sees cannot change before the commit.
package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/natovichat/rent-management-app-sub001/internal/ownership/models"
	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
	dErrors "github.com/natovichat/rent-management-app-sub001/pkg/domain-errors"
)

// Epsilon absorbs decimal rounding when comparing a total to 100.
var Epsilon = decimal.RequireFromString("0.01")

var hundred = decimal.NewFromInt(100)

// Result is the aggregate active percentage at a date, with the records
// that contributed to it.
type Result struct {
	Total        decimal.Decimal
	Contributing []id.OwnershipID
}

// ActiveTotal sums the percentages of records active at asOf. The sum is
// independent of record order.
func ActiveTotal(records []*models.Ownership, asOf time.Time) Result {
	total := decimal.Zero
	var contributing []id.OwnershipID
	for _, rec := range records {
		if rec.ActiveAt(asOf) {
			total = total.Add(rec.Percentage)
			contributing = append(contributing, rec.ID)
		}
	}
	return Result{Total: total, Contributing: contributing}
}

type changeKind int

const (
	changeInsert changeKind = iota
	changeUpdate
	changeRemove
)

// Change is a proposed, not-yet-committed mutation of the record set.
type Change struct {
	kind     changeKind
	record   *models.Ownership
	targetID id.OwnershipID
}

// Insert proposes adding a new record.
func Insert(record *models.Ownership) Change {
	return Change{kind: changeInsert, record: record}
}

// Update proposes replacing the record with the same id by the given
// post-image. Closing a record (setting its end date) is an update.
func Update(record *models.Ownership) Change {
	return Change{kind: changeUpdate, record: record, targetID: record.ID}
}

// Remove proposes hard-deleting a record.
func Remove(targetID id.OwnershipID) Change {
	return Change{kind: changeRemove, targetID: targetID}
}

// Rejection reports that a change would break the 100% invariant. It
// carries both the pre-change and post-change totals so callers can build
// a precise diagnostic. NoActiveOwners distinguishes "this change leaves
// the property with no owner at all" from an under- or over-allocation.
type Rejection struct {
	CurrentTotal   decimal.Decimal
	ResultingTotal decimal.Decimal
	AsOf           time.Time
	NoActiveOwners bool
}

func (r *Rejection) Error() string {
	if r.NoActiveOwners {
		return fmt.Sprintf("change would leave the property with no active owners as of %s", r.AsOf.Format("2006-01-02"))
	}
	return fmt.Sprintf("active ownership as of %s would total %s%%, not 100%% (currently %s%%)",
		r.AsOf.Format("2006-01-02"), r.ResultingTotal.StringFixed(2), r.CurrentTotal.StringFixed(2))
}

// Validate computes what the active total would become if change were
// applied, without persisting anything, and checks the invariant.
//
// The primary evaluation date is asOf when the changed record is active
// then (and for removals); for a record that only becomes active later,
// it is the record's own start date, so fully-future stakes are validated
// at the date they take effect. At the primary date the resulting total
// must be within [100-Epsilon, 100+Epsilon].
//
// Every other boundary the change touches (the pre- and post-image start
// and end dates) is additionally checked for over-allocation: a total
// above 100+Epsilon at any of them rejects the change. Under-allocation at
// those secondary boundaries is tolerated so a transfer can be staged in
// sequence (close the outgoing stake at a future date, then record the
// successor, which is itself validated at its start date).
//
// Validation never changes the input; repeated calls with the same inputs
// return the same answer.
func Validate(records []*models.Ownership, change Change, asOf time.Time) (decimal.Decimal, error) {
	after, pre, post, err := apply(records, change)
	if err != nil {
		return decimal.Zero, err
	}

	if post != nil {
		if err := duplicateClaim(after, post); err != nil {
			return decimal.Zero, err
		}
	}

	primary := asOf
	if post != nil && !post.ActiveAt(asOf) && post.StartDate.After(asOf) {
		primary = post.StartDate
	}

	resulting := ActiveTotal(after, primary)
	if len(resulting.Contributing) == 0 {
		return decimal.Zero, &Rejection{
			CurrentTotal:   ActiveTotal(records, primary).Total,
			ResultingTotal: decimal.Zero,
			AsOf:           primary,
			NoActiveOwners: true,
		}
	}
	if resulting.Total.Sub(hundred).Abs().GreaterThan(Epsilon) {
		return decimal.Zero, &Rejection{
			CurrentTotal:   ActiveTotal(records, primary).Total,
			ResultingTotal: resulting.Total,
			AsOf:           primary,
		}
	}

	for _, boundary := range boundaries(pre, post) {
		if boundary.Equal(primary) {
			continue
		}
		at := ActiveTotal(after, boundary)
		if at.Total.Sub(hundred).GreaterThan(Epsilon) {
			return decimal.Zero, &Rejection{
				CurrentTotal:   ActiveTotal(records, boundary).Total,
				ResultingTotal: at.Total,
				AsOf:           boundary,
			}
		}
	}

	return resulting.Total, nil
}

// apply builds the post-change record set as a copy. pre is the record
// replaced or removed (nil for inserts); post is the changed record's
// post-image (nil for removals).
func apply(records []*models.Ownership, change Change) (after []*models.Ownership, pre, post *models.Ownership, err error) {
	switch change.kind {
	case changeInsert:
		after = make([]*models.Ownership, 0, len(records)+1)
		for _, rec := range records {
			after = append(after, rec)
		}
		post = change.record.Clone()
		after = append(after, post)
		return after, nil, post, nil

	case changeUpdate, changeRemove:
		after = make([]*models.Ownership, 0, len(records))
		for _, rec := range records {
			if rec.ID == change.targetID {
				pre = rec
				continue
			}
			after = append(after, rec)
		}
		if pre == nil {
			return nil, nil, nil, dErrors.New(dErrors.CodeNotFound, "ownership record not found")
		}
		if change.kind == changeUpdate {
			post = change.record.Clone()
			after = append(after, post)
		}
		return after, pre, post, nil

	default:
		return nil, nil, nil, dErrors.New(dErrors.CodeInternal, "unknown change kind")
	}
}

// duplicateClaim rejects a change that would give one owner two
// simultaneous records with the same percentage on the same property.
// Distinct percentages are allowed (joint ownership modeled as separate
// records).
func duplicateClaim(after []*models.Ownership, post *models.Ownership) error {
	probe := post.StartDate
	for _, rec := range after {
		if rec.ID == post.ID || rec.OwnerID != post.OwnerID {
			continue
		}
		if rec.ActiveAt(probe) && post.ActiveAt(probe) && rec.Percentage.Equal(post.Percentage) {
			return dErrors.New(dErrors.CodeValidation, "owner already holds an identical active stake in this property")
		}
	}
	return nil
}

// boundaries collects the dates at which the changed record starts or
// stops being active, before and after the change.
func boundaries(pre, post *models.Ownership) []time.Time {
	var out []time.Time
	add := func(t time.Time) {
		for _, seen := range out {
			if seen.Equal(t) {
				return
			}
		}
		out = append(out, t)
	}
	for _, rec := range []*models.Ownership{pre, post} {
		if rec == nil {
			continue
		}
		add(rec.StartDate)
		if rec.EndDate != nil {
			add(*rec.EndDate)
		}
	}
	return out
}
