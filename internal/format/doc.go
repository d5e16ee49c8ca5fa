// Package format turns raw GPU telemetry into display strings and severity levels.
//
// Every function here is pure and total: the same input always yields the same
// string, and no input panics. Sorting and filtering elsewhere operate on the
// raw values; these helpers are only used at render time.
package format
