package health

import "context"

// Pinger checks a diagnostic source's availability.
type Pinger interface {
	Ping(ctx context.Context) error
}
