package checkout

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
)

// Fingerprint derives a stable idempotency key from the order's contents.
// Two orders with the same customer, the same lines (in any order) and the
// same total produce the same fingerprint, so a double-submitted checkout
// maps onto one key.
func (o *Order) Fingerprint() string {
	parts := make([]string, 0, len(o.Lines))
	for i := range o.Lines {
		parts = append(parts, fmt.Sprintf("%s:%d:%s",
			o.Lines[i].VariantID, o.Lines[i].Quantity, o.Lines[i].UnitPrice.String()))
	}
	sort.Strings(parts)

	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "%s|%s|%s|%s",
		o.CustomerEmail, strings.Join(parts, ","), o.Total.String(), o.CouponCode)
	return fmt.Sprintf("%016x", h.Sum64())
}
