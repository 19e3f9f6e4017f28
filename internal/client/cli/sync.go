package cli

import (
	"context"
	"fmt"
)

func (a *App) syncNow(ctx context.Context) {
	summary, err := a.sync.Drain(ctx)
	if err != nil {
		a.reportError(err)
		return
	}

	fmt.Printf("Synced %d, rejected %d, still queued %d.\n",
		summary.Synced, summary.Failed, summary.Remaining)

	if summary.Failed > 0 {
		letters, err := a.sync.DeadLetters(ctx)
		if err != nil {
			return
		}
		for _, l := range letters {
			fmt.Printf("  dropped %s %s: %s\n", l.Method, l.Endpoint, l.Reason)
		}
	}
}

func (a *App) status(ctx context.Context) {
	if a.probe.IsReachable(ctx) {
		fmt.Println("Server: reachable")
	} else {
		fmt.Println("Server: unreachable")
	}

	pending, err := a.sync.Pending(ctx)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("Queued actions: %d\n", pending)

	letters, err := a.sync.DeadLetters(ctx)
	if err == nil && len(letters) > 0 {
		fmt.Printf("Dead-lettered actions: %d (rejected by the server, kept for inspection)\n", len(letters))
	}
}
