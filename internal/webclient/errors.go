package webclient

import "errors"

var (
	ErrNilRequest         = errors.New("request cannot be nil")
	ErrBodyTooLarge       = errors.New("response body too large")
	ErrMethodNotSupported = errors.New("method not supported by backend")
)
