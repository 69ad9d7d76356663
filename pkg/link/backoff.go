package link

import (
	"time"

	"golang.org/x/exp/rand"
)

// BackoffTimer decides how long to wait before retry number retries.
type BackoffTimer interface {
	BackoffTime(retries int) time.Duration
}

// RandomBackoffTimer jitters uniformly between MinDelay and MaxDelay so two
// rigs that talked over each other do not collide again in lockstep.
type RandomBackoffTimer struct {
	MinDelay time.Duration
	MaxDelay time.Duration
}

func (b RandomBackoffTimer) BackoffTime(retries int) time.Duration {
	if b.MaxDelay <= b.MinDelay {
		return b.MinDelay
	}
	return b.MinDelay + time.Duration(rand.Int63n(int64(b.MaxDelay-b.MinDelay)))
}

// FixedBackoffTimer waits the same span every time.
type FixedBackoffTimer struct {
	Delay time.Duration
}

func (b FixedBackoffTimer) BackoffTime(retries int) time.Duration {
	return b.Delay
}
