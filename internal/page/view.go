package page

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrSuperseded is returned by Navigate when a later navigation replaced it.
	ErrSuperseded = errors.New("navigation superseded")
	// ErrViewClosed is returned by Navigate after Close.
	ErrViewClosed = errors.New("view closed")
)

// View holds the result of the latest navigation. Starting a navigation cancels the one in
// flight, and only the latest navigation may publish its result.
type View struct {
	assembler *Assembler

	mu      sync.Mutex
	seq     uint64
	cancel  context.CancelFunc
	current *Result
	closed  bool
}

// NewView creates a view resolving through a.
func NewView(a *Assembler) *View {
	return &View{assembler: a}
}

// Navigate resolves req and makes it the current result.
func (v *View) Navigate(ctx context.Context, req Request) (*Result, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil, ErrViewClosed
	}
	if v.cancel != nil {
		v.cancel()
	}
	v.seq++
	seq := v.seq
	nctx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.mu.Unlock()

	res, err := v.assembler.Resolve(nctx, req)

	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.seq {
		return nil, ErrSuperseded
	}
	cancel()
	v.cancel = nil
	if v.closed {
		return nil, ErrViewClosed
	}
	if err != nil {
		return nil, err
	}
	v.current = res
	return res, nil
}

// Current returns the result of the latest completed navigation, or nil.
func (v *View) Current() *Result {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Close cancels the navigation in flight. Later navigations fail with ErrViewClosed.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}
