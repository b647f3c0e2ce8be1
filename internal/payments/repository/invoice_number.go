package repository

import (
	"fmt"
	"sync/atomic"
	"time"
)

var lastInvoiceMillis atomic.Int64

// NewInvoiceNumber issues a monotonically increasing "INV-<ms>" identifier.
// Two settlements landing in the same millisecond bump the counter forward
// so numbers never collide within a process.
func NewInvoiceNumber(t time.Time) string {
	ms := t.UnixMilli()
	for {
		last := lastInvoiceMillis.Load()
		if ms <= last {
			ms = last + 1
		}
		if lastInvoiceMillis.CompareAndSwap(last, ms) {
			return fmt.Sprintf("INV-%d", ms)
		}
	}
}
