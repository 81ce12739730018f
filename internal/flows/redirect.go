package flows

import (
	"sync"
	"time"
)

// DefaultRedirectDelay is how long the "account exists" notice stays before
// the registration flow moves on to the login.
const DefaultRedirectDelay = 3 * time.Second

// PendingRedirect is a navigation scheduled for later. It either fires once
// or is cancelled; Done is closed in both cases.
type PendingRedirect struct {
	Target string

	timer *time.Timer
	once  sync.Once
	done  chan struct{}

	mu    sync.Mutex
	fired bool
}

func schedule(delay time.Duration, target string, fire func(target string)) *PendingRedirect {
	p := &PendingRedirect{Target: target, done: make(chan struct{})}
	p.timer = time.AfterFunc(delay, func() {
		p.finish(true, func() { fire(target) })
	})
	return p
}

// Cancel stops the redirect. It reports whether the redirect was still
// pending.
func (p *PendingRedirect) Cancel() bool {
	if p == nil {
		return false
	}
	p.timer.Stop()
	return p.finish(false, nil)
}

// Done is closed once the redirect fired or was cancelled.
func (p *PendingRedirect) Done() <-chan struct{} {
	return p.done
}

// Fired reports whether the navigation happened.
func (p *PendingRedirect) Fired() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fired
}

func (p *PendingRedirect) finish(fired bool, fn func()) bool {
	won := false
	p.once.Do(func() {
		won = true
		p.mu.Lock()
		p.fired = fired
		p.mu.Unlock()
		if fn != nil {
			fn()
		}
		close(p.done)
	})
	return won
}
