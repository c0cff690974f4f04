// Package provider implements the external load-more collaborators the
// chart data core paginates through. Every provider fetches on its own
// goroutine and hands the result back through a Dispatch function, so the
// store's callback always runs on the chart goroutine.
//
// Page orientation follows the store's index space: a backward page attaches
// after the tail of the sequence, a forward page attaches before the front.
// Providers therefore return timestamps strictly after the tail boundary for
// backward requests and strictly before the front boundary for forward
// requests, keeping the canonical sequence monotonic.
package provider

import (
	"github.com/quantview/chartcore/internal/model"
	"github.com/quantview/chartcore/internal/store"
)

// Dispatch schedules fn onto the chart goroutine. A nil Dispatch invokes fn
// inline, which is only safe in single-goroutine tests.
type Dispatch func(fn func())

func deliver(dispatch Dispatch, cb store.LoadMoreCallback, bars []model.PriceBar, hasMore bool) {
	if dispatch == nil {
		cb(bars, hasMore)
		return
	}
	dispatch(func() { cb(bars, hasMore) })
}
