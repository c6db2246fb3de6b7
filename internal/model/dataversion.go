package model

import (
	"fmt"
	"time"
)

// NewDataVersion formats a run-unique identifier of shape
// "v" + YYYYMMDDhhmmss + millis (17 digits after the "v"), from local civil
// time, e.g. 2026-02-12T21:37:05.123 -> "v20260212213705123".
func NewDataVersion(t time.Time) string {
	return "v" + formatVersionDigits(t)
}

// NewRollbackVersion formats the "r"-prefixed version assigned to a rollback
// run's audit record.
func NewRollbackVersion(t time.Time) string {
	return "r" + formatVersionDigits(t)
}

func formatVersionDigits(t time.Time) string {
	return fmt.Sprintf("%04d%02d%02d%02d%02d%02d%03d",
		t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(),
		t.Nanosecond()/1_000_000)
}
