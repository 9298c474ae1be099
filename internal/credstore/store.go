package credstore

import "context"

// Store persists the single bearer credential for one session scope. The
// stored value is opaque besides being the credential string itself.
type Store interface {
	// Load returns the persisted credential, or "" when none is stored.
	Load(ctx context.Context) (string, error)
	// Save persists the credential, replacing any previous value.
	Save(ctx context.Context, credential string) error
	// Clear removes the persisted credential. Clearing an empty store is
	// not an error.
	Clear(ctx context.Context) error
}

// Keyed hands out credential stores bound to individual session IDs.
type Keyed interface {
	For(sessionID string) Store
}
