package main

import (
	"sync"
	"unsafe"

	"github.com/cwbudde/algo-jverb/host"
)

const playBlockFrames = 256

// player loops a stereo source through a host processor. It implements
// io.Reader producing interleaved float32 little-endian frames.
type player struct {
	mu     sync.Mutex
	proc   *host.Processor
	source []float32 // interleaved stereo
	pos    int       // frame position in source
	loop   bool

	sampleBuf []float32
}

func newPlayer(proc *host.Processor, source []float32, loop bool) *player {
	return &player{
		proc:      proc,
		source:    source,
		loop:      loop,
		sampleBuf: make([]float32, playBlockFrames*2),
	}
}

// setParameter forwards a change to the processor between reads.
func (pl *player) setParameter(id string, v float64) error {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.proc.SetParameter(id, v)
}

func (pl *player) parameter(id string) (float64, error) {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.proc.Parameter(id)
}

func (pl *player) setState(v host.Values) {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	pl.proc.SetState(v)
}

func (pl *player) state() host.Values {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.proc.State()
}

func (pl *player) Read(p []byte) (int, error) {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	frames := len(p) / 8
	if len(pl.sampleBuf) < frames*2 {
		pl.sampleBuf = make([]float32, frames*2)
	}
	samples := pl.sampleBuf[:frames*2]
	pl.fill(samples)

	for done := 0; done < frames; {
		n := min(playBlockFrames, frames-done)
		if err := pl.proc.ProcessBlock32(samples[done*2:(done+n)*2], 2); err != nil {
			clear(samples)
			break
		}
		done += n
	}

	n := frames * 8
	if n > 0 {
		copy(p, unsafe.Slice((*byte)(unsafe.Pointer(&samples[0])), n))
	}
	clear(p[n:])
	return len(p), nil
}

// fill copies source frames into dst, looping or padding with silence.
func (pl *player) fill(dst []float32) {
	srcFrames := len(pl.source) / 2
	for i := 0; i < len(dst)/2; i++ {
		if pl.pos >= srcFrames {
			if !pl.loop || srcFrames == 0 {
				dst[i*2], dst[i*2+1] = 0, 0
				continue
			}
			pl.pos = 0
		}
		dst[i*2] = pl.source[pl.pos*2]
		dst[i*2+1] = pl.source[pl.pos*2+1]
		pl.pos++
	}
}
