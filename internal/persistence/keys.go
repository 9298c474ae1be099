package persistence

import "strings"

// Namespace prefixes every Redis key this gateway writes, isolating it from
// other tenants of the same instance.
const Namespace = "skylink"

const (
	keySessionCredentialPrefix = Namespace + ":session:credential:"
	keyFlightCachePrefix       = Namespace + ":cache:flights:"
)

// SessionCredentialKey is the single persisted-credential key for a session.
func SessionCredentialKey(sessionID string) string {
	return keySessionCredentialPrefix + sessionID
}

// FlightCacheKey builds the cache key for a normalized flight search.
func FlightCacheKey(origin, destination string) string {
	origin = strings.ToUpper(strings.TrimSpace(origin))
	destination = strings.ToUpper(strings.TrimSpace(destination))
	return keyFlightCachePrefix + origin + ":" + destination
}
