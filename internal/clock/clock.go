// Package clock supplies the time source used for task runtime accounting.
package clock

import "time"

// NowFunc returns current time. Override in tests for determinism.
var NowFunc = time.Now

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }

// Millis returns the current time in wall-clock milliseconds; elapsed-time
// accounting is the difference of two Millis readings.
func Millis() int64 { return NowFunc().UnixMilli() }
