package models

import "fmt"

// ConfigValidationError marks an indicator or composite definition as
// unloadable. It is fatal to that definition only; the rest of the
// definition set keeps operating.
type ConfigValidationError struct {
	Code   string
	Reason string
}

func (e *ConfigValidationError) Error() string {
	return fmt.Sprintf("invalid definition %q: %s", e.Code, e.Reason)
}

// PartialIngestionFailure reports a malformed or out-of-order raw value for
// one indicator in one cycle. The indicator is treated as data-unavailable
// for the cycle; other indicators are unaffected.
type PartialIngestionFailure struct {
	IndicatorCode string
	Reason        string
}

func (e *PartialIngestionFailure) Error() string {
	return fmt.Sprintf("ingestion failure for %q: %s", e.IndicatorCode, e.Reason)
}
