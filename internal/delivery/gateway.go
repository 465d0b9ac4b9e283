// Package delivery abstracts handing a verification code to its owner over
// an out-of-band channel (email, SMS) with an enforced deadline.
package delivery

import (
	"context"
	"fmt"
	"time"
)

// Channel is the single capability the core requires from its environment.
// Transmit is synchronous from the gateway's point of view; the gateway
// applies the timeout.
type Channel interface {
	Transmit(ctx context.Context, identity, code string) error
}

// Outcome classifies a single delivery attempt.
type Outcome int

const (
	Delivered Outcome = iota
	TimedOut
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case TimedOut:
		return "timed_out"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Gateway wraps a Channel with a bounded wait. It never retries: failures
// surface to the caller, which decides what to do with the stored record.
type Gateway struct {
	channel Channel
	timeout time.Duration
}

func NewGateway(channel Channel, timeout time.Duration) *Gateway {
	return &Gateway{channel: channel, timeout: timeout}
}

// Send attempts one transmit and races it against the deadline. On timeout
// the attempt is abandoned and TimedOut reported; unless the channel honors
// ctx, the underlying call may still complete later. That is acceptable:
// this is a bounded wait, not a cancellation guarantee.
func (g *Gateway) Send(ctx context.Context, identity, code string) (Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		errc <- g.channel.Transmit(ctx, identity, code)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return Failed, fmt.Errorf("transmit to %q: %w", identity, err)
		}
		return Delivered, nil
	case <-ctx.Done():
		return TimedOut, ctx.Err()
	}
}
