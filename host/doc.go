// Package host adapts the reverb tank to a plugin-style host: a fixed table
// of automatable parameters, interleaved block processing with a validated
// bus layout, and control smoothing.
package host
