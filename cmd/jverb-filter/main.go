package main

import (
	"flag"
	"fmt"
	"math"
	"math/cmplx"
	"os"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-jverb/filter"
)

func main() {
	algorithm := flag.String("algorithm", "lowshelf", "Filter algorithm name")
	fc := flag.Float64("fc", 1000, "Cutoff or center frequency in Hz")
	q := flag.Float64("q", 0.707, "Quality factor")
	gain := flag.Float64("gain", 0, "Boost/cut in dB for shelving and parametric designs")
	sampleRate := flag.Float64("sample-rate", 48000, "Sample rate in Hz")
	points := flag.Int("points", 31, "Number of log-spaced frequencies from 20 Hz to Nyquist")
	compare := flag.Bool("compare", false, "Add a cookbook second-order shelf column (shelving algorithms only)")
	list := flag.Bool("list", false, "List the available algorithms")
	flag.Parse()

	if *list {
		for _, a := range filter.Algorithms() {
			fmt.Println(a)
		}
		return
	}

	alg, err := filter.ParseAlgorithm(*algorithm)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if *points < 2 {
		*points = 2
	}

	params := filter.Parameters{Algorithm: alg, Fc: *fc, Q: *q, BoostCutDB: *gain}
	f := filter.NewAudioFilter()
	f.Reset(*sampleRate)
	f.SetParameters(params)

	ref, refErr := filter.ReferenceShelf(params, *sampleRate)
	if *compare && refErr != nil {
		fmt.Fprintf(os.Stderr, "compare: %v\n", refErr)
		os.Exit(1)
	}

	c := f.Coefficients()
	fmt.Printf("%s fc=%.1f Hz Q=%.3f gain=%.1f dB @ %.0f Hz\n", alg, *fc, *q, *gain, *sampleRate)
	fmt.Printf("a0=%.9f a1=%.9f a2=%.9f b1=%.9f b2=%.9f c0=%.3f d0=%.3f\n\n", c[0], c[1], c[2], c[3], c[4], c[5], c[6])

	if *compare {
		fmt.Printf("%10s  %10s  %10s  %8s\n", "Hz", "dB", "ref dB", "diff")
	} else {
		fmt.Printf("%10s  %10s  %10s\n", "Hz", "dB", "phase")
	}
	lo := math.Log(20)
	hi := math.Log(0.499 * *sampleRate)
	for i := 0; i < *points; i++ {
		hz := math.Exp(lo + (hi-lo)*float64(i)/float64(*points-1))
		h := f.Response(hz)
		db := dspcore.LinearToDB(cmplx.Abs(h))
		if *compare {
			refDB := dspcore.LinearToDB(cmplx.Abs(ref.Response(hz, *sampleRate)))
			fmt.Printf("%10.1f  %+10.3f  %+10.3f  %+8.3f\n", hz, db, refDB, db-refDB)
			continue
		}
		fmt.Printf("%10.1f  %+10.3f  %+10.1f\n", hz, db, cmplx.Phase(h)*180/math.Pi)
	}
}
