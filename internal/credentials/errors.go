package credentials

import "errors"

// ErrEmptyToken is returned when an empty token is stored
var ErrEmptyToken = errors.New("empty token")
