// Package filter designs second-order audio filters on top of dsp.Biquad.
//
// AudioFilter maps an algorithm, a cutoff or center frequency, a Q and a
// boost/cut gain to biquad coefficients. The output of every design is
// d0*x + c0*biquad(x), which lets first-order shelves and the
// non-constant-Q parametric EQ mix a filtered component with the dry input.
// TwoBandShelvingFilter chains a low shelf and a high shelf in series.
package filter
