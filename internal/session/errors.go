package session

import "errors"

// ErrUnauthorized is the single outward signal for every failed
// verification sub-check (bad signature, expiry, blacklist hit, missing
// or mismatched session record). Callers learn nothing about which
// check failed.
var ErrUnauthorized = errors.New("unauthorized")

// ErrStoreUnavailable reports an infrastructure failure during issuance
// or rotation. It must never degrade to an implicit allow.
var ErrStoreUnavailable = errors.New("session store unavailable")
