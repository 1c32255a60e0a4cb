package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// SessionCounter reports mounted search sessions against their limit.
type SessionCounter interface {
	Len() int
	Capacity() int
}
