package replay

import "errors"

var (
	ErrNotFound   = errors.New("replay: not found")
	ErrForbidden  = errors.New("replay: access denied")
	ErrBadRequest = errors.New("replay: unsupported representation")
	ErrMalformed  = errors.New("replay: malformed identifier")
)
