package osc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hidingwill/ableton-bridge/internal/bridgeerr"
)

// busyBackoff is the fixed backoff schedule for retrying a known-queueable
// OSC command after the bridge reports it is busy: the initial attempt
// runs immediately, then up to three retries follow at 0.5s, 1.0s, and
// 1.5s.
var busyBackoff = []time.Duration{500 * time.Millisecond, time.Second, 1500 * time.Millisecond}

// RetryBusy wraps a known-queueable OSC call with the helper-level busy
// retry policy. It is opt-in: the command pipeline's OSC entry point does
// not retry BridgeBusy automatically; callers that know their command is
// queueable (discovery, batch operations) wrap it with RetryBusy
// explicitly.
func RetryBusy(ctx context.Context, attempt func(ctx context.Context) (json.RawMessage, error)) (json.RawMessage, error) {
	attempts := 0
	for {
		result, err := attempt(ctx)
		attempts++
		if err == nil {
			return result, nil
		}
		if bridgeerr.KindOf(err) != bridgeerr.BridgeBusy {
			return nil, err
		}
		if attempts > len(busyBackoff) {
			return nil, bridgeerr.Newf(bridgeerr.BridgeBusy, "still busy after %d attempts", attempts).
				WithDetails(map[string]any{"attempts": attempts})
		}

		select {
		case <-time.After(busyBackoff[attempts-1]):
		case <-ctx.Done():
			return nil, bridgeerr.Wrap(bridgeerr.Timeout,
				fmt.Sprintf("busy-retry canceled after %d attempts", attempts), ctx.Err())
		}
	}
}
