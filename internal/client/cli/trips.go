package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/roamsync/roamsync/internal/client/models"
	"github.com/roamsync/roamsync/internal/common"
)

func (a *App) list(ctx context.Context) {
	trips, fromCache, err := a.trips.List(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNetwork) {
			fmt.Println("Offline and nothing cached yet. Connect once to seed the cache.")
			return
		}
		a.reportError(err)
		return
	}

	if fromCache {
		fmt.Println("(offline, showing cached trips)")
	}
	if len(trips) == 0 {
		fmt.Println("No trips yet. Use 'add' to create one.")
		return
	}
	for _, tr := range trips {
		fmt.Printf("  %s  %s -> %s  [%s .. %s]\n", tr.ID, tr.Title, tr.Destination, tr.StartDate, tr.EndDate)
	}
}

func (a *App) add(ctx context.Context) {
	trip, ok := a.promptTrip(nil)
	if !ok {
		return
	}

	created, queued, err := a.trips.Create(ctx, trip)
	if err != nil {
		a.reportError(err)
		return
	}
	if queued {
		fmt.Printf("Saved locally as %s; will sync when the server is back.\n", created.ID)
		return
	}
	fmt.Println("Created", created.ID)
}

func (a *App) edit(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: edit <id>")
		return
	}

	trip, ok := a.promptTrip(&models.Trip{ID: args[0]})
	if !ok {
		return
	}

	queued, err := a.trips.Update(ctx, trip)
	if err != nil {
		a.reportError(err)
		return
	}
	if queued {
		fmt.Println("Edit queued; will sync when the server is back.")
		return
	}
	fmt.Println("Updated", trip.ID)
}

func (a *App) delete(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: delete <id>")
		return
	}

	queued, err := a.trips.Delete(ctx, args[0])
	if err != nil {
		a.reportError(err)
		return
	}
	if queued {
		fmt.Println("Deletion queued; will sync when the server is back.")
		return
	}
	fmt.Println("Deleted", args[0])
}

// promptTrip collects trip fields interactively. With a non-nil base the id
// is preserved, which is what edit needs.
func (a *App) promptTrip(base *models.Trip) (*models.Trip, bool) {
	trip := &models.Trip{}
	if base != nil {
		trip.ID = base.ID
	}

	var err error
	if trip.Title, err = getSimpleText(a.reader, "Title", os.Stdout); err != nil {
		fmt.Println("Error:", err)
		return nil, false
	}
	if trip.Destination, err = getSimpleText(a.reader, "Destination", os.Stdout); err != nil {
		fmt.Println("Error:", err)
		return nil, false
	}
	if trip.StartDate, err = getSimpleText(a.reader, "Start date (YYYY-MM-DD)", os.Stdout); err != nil {
		fmt.Println("Error:", err)
		return nil, false
	}
	if trip.EndDate, err = getSimpleText(a.reader, "End date (YYYY-MM-DD)", os.Stdout); err != nil {
		fmt.Println("Error:", err)
		return nil, false
	}
	if trip.Description, err = getSimpleText(a.reader, "Description", os.Stdout); err != nil {
		fmt.Println("Error:", err)
		return nil, false
	}
	return trip, true
}

func (a *App) reportError(err error) {
	switch {
	case errors.Is(err, common.ErrAuthRequired):
		fmt.Println("Sign in first ('login' or 'register').")
	case errors.Is(err, common.ErrSessionExpired):
		a.user = ""
		fmt.Println("Your session has expired. Please log in again.")
	default:
		fmt.Println("Error:", err)
	}
}
