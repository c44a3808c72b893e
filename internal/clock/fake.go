package clock

import (
	"sync"
	"time"
)

// Fake is a Clock whose tickers fire only when Tick is called. Time stands
// still except that each Tick advances it by TickStep, whatever the
// tickers' intervals.
//
// Fake is safe for concurrent use.
type Fake struct {
	mu      sync.Mutex
	current time.Time
	tickers []*fakeTicker
	created chan struct{}
}

type fakeTicker struct {
	ch      chan time.Time
	stopped bool
}

// TickStep is how far Tick advances a Fake clock.
const TickStep = time.Millisecond

// NewFake returns a Fake clock set to initial.
func NewFake(initial time.Time) *Fake {
	return &Fake{current: initial, created: make(chan struct{}, 16)}
}

// Now returns the fake time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// NewTicker registers a ticker that fires on Tick.
func (f *Fake) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}
	f.mu.Lock()
	ft := &fakeTicker{ch: make(chan time.Time, 1)}
	f.tickers = append(f.tickers, ft)
	f.mu.Unlock()

	select {
	case f.created <- struct{}{}:
	default:
	}

	return &Ticker{
		C: ft.ch,
		stopFunc: func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			ft.stopped = true
		},
	}
}

// Tick delivers one tick to every live ticker. Like time.Ticker, a tick is
// dropped when the previous one has not been consumed yet.
func (f *Fake) Tick() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = f.current.Add(TickStep)
	live := f.tickers[:0]
	for _, ft := range f.tickers {
		if ft.stopped {
			continue
		}
		live = append(live, ft)
		select {
		case ft.ch <- f.current:
		default:
		}
	}
	f.tickers = live
}

// Tickers returns the number of live tickers.
func (f *Fake) Tickers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, ft := range f.tickers {
		if !ft.stopped {
			n++
		}
	}
	return n
}

// WaitForTicker blocks until a ticker has been created or the timeout
// elapses. Returns false on timeout.
func (f *Fake) WaitForTicker(timeout time.Duration) bool {
	select {
	case <-f.created:
		return true
	case <-time.After(timeout):
		return false
	}
}
