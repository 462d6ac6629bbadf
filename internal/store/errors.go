package store

import "errors"

// Error taxonomy shared by every component in this package. Store methods
// return only these (possibly wrapped), so callers can tell them apart with
// errors.Is. The HTTP adapter does not: any error from a store call selects
// that route's single failure body.
var (
	// ErrUnknownUID means no record with the given identifier exists.
	ErrUnknownUID = errors.New("unknown uid")
	// ErrDuplicateUID means an insert was attempted for an identifier already
	// present in the primary index.
	ErrDuplicateUID = errors.New("duplicate uid")
	// ErrDuplicatePair means a RankedIndex already holds the exact (key, uid)
	// pair being inserted. UserStore's own uid-uniqueness precheck means this
	// can never surface from a UserStore call; it exists for RankedIndex
	// callers that don't go through UserStore.
	ErrDuplicatePair = errors.New("duplicate key/uid pair")
	// ErrPairNotFound means a RankedIndex erase/update targeted a (key, uid)
	// pair that isn't present.
	ErrPairNotFound = errors.New("key/uid pair not found")
	// ErrUnknownView means Rank was called with a view name the UserStore
	// wasn't configured with.
	ErrUnknownView = errors.New("unknown view")
)
