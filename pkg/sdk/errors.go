package alumdex

import "github.com/kailas-cloud/alumdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound        = domain.ErrNotFound
	ErrInvalidRecord   = domain.ErrInvalidRecord
	ErrInvalidQuery    = domain.ErrInvalidQuery
	ErrInvalidFilter   = domain.ErrInvalidFilter
	ErrUnknownScreen   = domain.ErrUnknownScreen
	ErrUnknownCategory = domain.ErrUnknownCategory
	ErrSessionNotFound = domain.ErrSessionNotFound
	ErrSessionLimit    = domain.ErrSessionLimit
	ErrSessionClosed   = domain.ErrSessionClosed
)
