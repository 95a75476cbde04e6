// Package cache memoizes per-property active ownership totals. Reads are
// served from Redis when a fresh value exists; every mutation to a
// property invalidates its entry, so stale totals never outlive a commit.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
)

// TotalCache stores the active percentage total for a property at a date.
// A cache is advisory: misses and errors fall back to recomputing from the
// store.
type TotalCache interface {
	Get(ctx context.Context, accountID id.AccountID, propertyID id.PropertyID, asOf time.Time) (decimal.Decimal, bool)
	Set(ctx context.Context, accountID id.AccountID, propertyID id.PropertyID, asOf time.Time, total decimal.Decimal)
	Invalidate(ctx context.Context, accountID id.AccountID, propertyID id.PropertyID)
}

func totalKey(accountID id.AccountID, propertyID id.PropertyID) string {
	return fmt.Sprintf("ownership:total:%s:%s", accountID, propertyID)
}

func dateField(asOf time.Time) string {
	return asOf.UTC().Format("2006-01-02")
}

// Nop satisfies TotalCache without caching anything. Used when Redis is
// not configured.
type Nop struct{}

func (Nop) Get(context.Context, id.AccountID, id.PropertyID, time.Time) (decimal.Decimal, bool) {
	return decimal.Zero, false
}
func (Nop) Set(context.Context, id.AccountID, id.PropertyID, time.Time, decimal.Decimal) {}
func (Nop) Invalidate(context.Context, id.AccountID, id.PropertyID)                      {}
