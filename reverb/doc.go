// Package reverb implements a modulated allpass reverb tank.
//
// The tank feeds a mono sum of its input through a pre-delay into four
// feedback branches. Each branch is a nested allpass diffuser, a one-pole
// damping filter and a fixed delay. The last branch feeds back into the first,
// scaled by kRT. Stereo output is taken from prime-percentage taps into the
// branch delays, shelved, and mixed with the dry input.
//
// All processors follow the same lifecycle: construct, Reset(sampleRate),
// SetParameters, then ProcessSample or ProcessFrame once per sample. Nothing
// allocates after Reset.
package reverb
