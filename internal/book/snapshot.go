package book

import (
	"fmt"
	"sort"

	gocache "github.com/patrickmn/go-cache"
)

// PriceLevelView is one projected level: price, aggregate live quantity,
// and the count of non-tombstone entries backing it.
type PriceLevelView struct {
	Price    Price
	Quantity Quantity
	Orders   int
}

// Depth is a top-N-per-side projection of the book. Bids are ordered
// highest-to-lowest, asks lowest-to-highest.
type Depth struct {
	Bids []PriceLevelView
	Asks []PriceLevelView
}

// L1 is the best bid/ask and the spread between them, when both exist.
type L1 struct {
	BestBid   Price
	HasBid    bool
	BestAsk   Price
	HasAsk    bool
	Spread    Price
	HasSpread bool
}

// Snapshotter produces pure, detached views over an OrderBook. It never
// mutates the book. Depth projections for a given (revision, depth) pair
// are memoized in an in-process cache so repeated queries between commands
// are cheap; the cache key embeds the book's revision counter, so a
// mutation always misses and recomputes — the memoization can never change
// what a query returns, only how fast a repeated one returns it.
type Snapshotter struct {
	book  *OrderBook
	cache *gocache.Cache
}

// NewSnapshotter wraps ob with a depth-projection cache. Entries never
// expire on their own; they are invalidated implicitly because their key
// includes the revision at which they were computed.
func NewSnapshotter(ob *OrderBook) *Snapshotter {
	return &Snapshotter{
		book:  ob,
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

// L1 returns the current best bid/ask/spread. O(1) via the book's cached
// best prices.
func (s *Snapshotter) L1() L1 {
	var out L1
	if p, ok := s.book.BestBid(); ok {
		out.BestBid, out.HasBid = p, true
	}
	if p, ok := s.book.BestAsk(); ok {
		out.BestAsk, out.HasAsk = p, true
	}
	if out.HasBid && out.HasAsk {
		out.Spread = out.BestAsk - out.BestBid
		out.HasSpread = true
	}
	return out
}

// Depth returns the top n levels per side; n <= 0 means unbounded (L3).
func (s *Snapshotter) Depth(n int) Depth {
	key := fmt.Sprintf("depth:%d:%d", s.book.Revision(), n)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(Depth)
	}

	d := Depth{
		Bids: projectSide(s.book.Bids, n),
		Asks: projectSide(s.book.Asks, n),
	}
	s.cache.Set(key, d, gocache.NoExpiration)
	return d
}

func projectSide(sb *SideBook, n int) []PriceLevelView {
	levels := sb.Levels()
	views := make([]PriceLevelView, 0, len(levels))
	for _, lvl := range levels {
		views = append(views, PriceLevelView{
			Price:    lvl.Price,
			Quantity: lvl.LiveQuantity(),
			Orders:   lvl.LiveCount(),
		})
	}
	sort.Slice(views, func(i, j int) bool {
		if sb.Side == Buy {
			return views[i].Price > views[j].Price
		}
		return views[i].Price < views[j].Price
	})
	if n > 0 && len(views) > n {
		views = views[:n]
	}
	return views
}

// Imbalance is (Σbid_qty - Σask_qty) / (Σbid_qty + Σask_qty) over the given
// depth, in [-1, 1]. The second return is false when both sums are zero
// (undefined ).
func (s *Snapshotter) Imbalance(n int) (float64, bool) {
	d := s.Depth(n)
	var bidQty, askQty uint64
	for _, l := range d.Bids {
		bidQty += uint64(l.Quantity)
	}
	for _, l := range d.Asks {
		askQty += uint64(l.Quantity)
	}
	total := bidQty + askQty
	if total == 0 {
		return 0, false
	}
	return (float64(bidQty) - float64(askQty)) / float64(total), true
}

// WeightedMid is (best_bid*ask_qty + best_ask*bid_qty) / (bid_qty+ask_qty)
// using the quantities resting at the respective best levels. The
// second return is false unless both best levels exist.
func (s *Snapshotter) WeightedMid() (float64, bool) {
	l1 := s.L1()
	if !l1.HasBid || !l1.HasAsk {
		return 0, false
	}
	bidLvl, _ := s.book.Bids.Level(l1.BestBid)
	askLvl, _ := s.book.Asks.Level(l1.BestAsk)
	bidQty := float64(bidLvl.LiveQuantity())
	askQty := float64(askLvl.LiveQuantity())
	if bidQty+askQty == 0 {
		return 0, false
	}
	return (float64(l1.BestBid)*askQty + float64(l1.BestAsk)*bidQty) / (bidQty + askQty), true
}
