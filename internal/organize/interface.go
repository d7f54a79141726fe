package organize

import (
	"context"

	"dropsort/pkg/types"
)

// Organizer defines the interface for file organization operations
// This allows for dependency injection in tests and other parts of the application
type Organizer interface {
	// SetDryRun sets whether operations should be performed or just simulated
	SetDryRun(dryRun bool)

	// IsDryRun returns whether the organizer is simulating
	IsDryRun() bool

	// Dispatch moves a single file into its category folder
	Dispatch(ctx context.Context, path string) (types.MoveResult, error)

	// Scan sweeps a directory once, dispatching every eligible file
	Scan(ctx context.Context, dir string) (types.ScanReport, error)
}

// Ensure Engine implements the Organizer interface
var _ Organizer = (*Engine)(nil)
