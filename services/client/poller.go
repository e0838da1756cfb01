package client

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"love-space-backend/services/clock"
)

const (
	DefaultPollInterval = 10 * time.Second
	unloadTimeout       = 2 * time.Second
)

type Presence int

const (
	Offline Presence = iota
	Online
)

func (p Presence) String() string {
	if p == Online {
		return "online"
	}
	return "offline"
}

// Poller announces the user as online and keeps checking whether the
// partner is. Failed checks count as Offline and are not retried.
type Poller struct {
	Session  *Session
	Clock    clock.Clock
	Interval time.Duration
	// OnChange, when set, is called after every partner check.
	OnChange func(Presence)

	mu      sync.Mutex
	partner Presence
	// userID is captured by Start so the offline write still goes out
	// after the session signs out.
	userID string
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(session *Session, c clock.Clock) *Poller {
	if c == nil {
		c = clock.RealClock{}
	}
	return &Poller{
		Session:  session,
		Clock:    c,
		Interval: DefaultPollInterval,
	}
}

func (p *Poller) Partner() Presence {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.partner
}

// Start marks the user online, checks the partner once and then keeps
// checking every Interval until Stop.
func (p *Poller) Start(ctx context.Context) error {
	user, err := p.Session.User()
	if err != nil {
		return err
	}

	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return nil
	}
	loopCtx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.userID = user.ID
	p.done = make(chan struct{})
	done := p.done
	p.mu.Unlock()

	if err := p.Session.API().SetPresence(ctx, user.ID, true); err != nil {
		logrus.WithError(err).Warn("failed to set presence online")
	}
	p.check(ctx, user.ID)

	go func() {
		defer close(done)
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-p.Clock.After(p.Interval):
				p.check(loopCtx, user.ID)
			}
		}
	}()
	return nil
}

// Stop ends the loop, waits for it and then marks the user offline.
func (p *Poller) Stop(ctx context.Context) {
	p.mu.Lock()
	cancel, done, userID := p.cancel, p.done, p.userID
	p.cancel, p.done = nil, nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}

	cancel()
	<-done
	p.setOffline(ctx, userID)
}

// Unload is the page-close path: it fires the offline write in the
// background and returns at once. The write may never arrive.
func (p *Poller) Unload() {
	p.mu.Lock()
	cancel, userID := p.cancel, p.userID
	p.cancel, p.done = nil, nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), unloadTimeout)
		defer cancel()
		p.setOffline(ctx, userID)
	}()
}

func (p *Poller) setOffline(ctx context.Context, userID string) {
	if err := p.Session.API().SetPresence(ctx, userID, false); err != nil {
		logrus.WithError(err).Debug("failed to set presence offline")
	}
}

func (p *Poller) check(ctx context.Context, userID string) {
	observed := Offline
	row, err := p.Session.API().PartnerPresence(ctx, userID)
	switch {
	case err != nil:
		if ctx.Err() != nil {
			return
		}
		logrus.WithError(err).Warn("partner status check failed")
	case row.IsOnline:
		observed = Online
	}

	p.mu.Lock()
	p.partner = observed
	onChange := p.OnChange
	p.mu.Unlock()

	if onChange != nil {
		onChange(observed)
	}
}
