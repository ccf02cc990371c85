package endpoint

import "errors"

var (
	errMissingHost       = errors.New("url has no host")
	errUnsupportedScheme = errors.New("url scheme is not http or https")
)
