package table

import "errors"

var (
	ErrMalformedRow  = errors.New("malformed row")
	ErrMissingColumn = errors.New("missing column")
	ErrNoRows        = errors.New("table has no rows")
)
