package analytics

import "errors"

// ErrInsufficientData is returned while an indicator's window holds fewer
// than two post-transform values; the sample standard deviation is undefined
// below that.
var ErrInsufficientData = errors.New("insufficient data in window")
