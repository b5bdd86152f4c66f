package common

import "errors"

var (
	ErrEmptyCSV        = errors.New("csv contains no rows")
	ErrNotCSV          = errors.New("payload is not delimited text")
	ErrHTMLPayload     = errors.New("payload is an HTML page, not a CSV export")
	ErrViewUnavailable = errors.New("view not available for current mode")
	ErrNoSheet         = errors.New("no sheet loaded")
	ErrBadRequest      = errors.New("bad request")
)
