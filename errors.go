package ppsalign

import "errors"

// ErrEmptyInterval is returned when the end of a request is not after its
// start.
var ErrEmptyInterval = errors.New("empty time interval")
