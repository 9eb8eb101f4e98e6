package sync

import "errors"

// Failure modes from §4.6: each is surfaced to the caller with the
// engine's state left unchanged.
var (
	ErrInvalidPlayer        = errors.New("sync: invalid player")
	ErrUnknownCachePosition = errors.New("sync: unknown cache position")
	ErrBadUnitSize          = errors.New("sync: bad unit size")
)
