// Package dsp holds the sample-level building blocks shared by the filters and
// the reverb tank: circular buffers, the biquad core, the LFO and small helpers.
package dsp
