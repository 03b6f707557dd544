package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/algo-jverb/host"
	"github.com/cwbudde/algo-jverb/internal/audiofile"
	"github.com/cwbudde/algo-jverb/preset"
	"github.com/ebitengine/oto/v3"
	"golang.org/x/term"
)

func main() {
	input := flag.String("input", "", "Input WAV to loop through the reverb")
	presetName := flag.String("preset", "default", "Builtin preset name or preset JSON path")
	sampleRate := flag.Int("sample-rate", 48000, "Playback sample rate in Hz")
	smoothing := flag.Float64("smoothing-ms", 30, "Parameter smoothing time in ms")
	noLoop := flag.Bool("once", false, "Play the input once and keep the tail running")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "missing -input")
		os.Exit(1)
	}
	source, err := loadStereo(*input, *sampleRate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "input: %v\n", err)
		os.Exit(1)
	}
	p, err := preset.Load(*presetName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetName, err)
		os.Exit(1)
	}

	proc := host.NewProcessor()
	proc.SetState(p.Values)
	proc.SetSmoothing(*smoothing)
	if err := proc.Prepare(float64(*sampleRate), playBlockFrames); err != nil {
		fmt.Fprintf(os.Stderr, "prepare: %v\n", err)
		os.Exit(1)
	}
	pl := newPlayer(proc, source, !*noLoop)

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   *sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "audio: %v\n", err)
		os.Exit(1)
	}
	<-ready
	out := ctx.NewPlayer(pl)
	out.Play()
	defer out.Close()

	fmt.Printf("Playing %s through preset %s at %d Hz\n", *input, p.Name, *sampleRate)

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		fmt.Println("stdin is not a terminal; playing without key control (Ctrl-C to stop)")
		select {}
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set raw mode: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = term.Restore(fd, oldState) }()

	fmt.Print(keyHelp)
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		if buf[0] == 'q' || buf[0] == 3 { // q or Ctrl-C
			return
		}
		status, err := handleKey(pl, buf[0])
		if err != nil {
			fmt.Printf("error: %v\r\n", err)
			continue
		}
		if status != "" {
			fmt.Printf("%s\r\n", status)
		}
	}
}

func loadStereo(path string, sampleRate int) ([]float32, error) {
	a, err := audiofile.Read(path)
	if err != nil {
		return nil, err
	}
	left, right := a.Stereo()
	if a.SampleRate != sampleRate {
		if left, err = audiofile.Resample32(left, a.SampleRate, sampleRate); err != nil {
			return nil, err
		}
		if right, err = audiofile.Resample32(right, a.SampleRate, sampleRate); err != nil {
			return nil, err
		}
	}
	n := min(len(left), len(right))
	out := make([]float32, n*2)
	for i := 0; i < n; i++ {
		out[i*2] = left[i]
		out[i*2+1] = right[i]
	}
	return out, nil
}
