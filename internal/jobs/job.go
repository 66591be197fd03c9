// Package jobs runs the periodic account checks that produce notifications.
package jobs

import "context"

// Job is a unit of work run by the worker pool.
type Job interface {
	// Execute runs the job. Implementations must respect ctx cancellation.
	Execute(ctx context.Context) error

	// AccountID is the account whose data the job processes.
	AccountID() string

	// Description names the job in logs.
	Description() string
}
