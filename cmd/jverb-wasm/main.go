//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"
	"unsafe"

	"github.com/cwbudde/algo-jverb/host"
	"github.com/cwbudde/algo-jverb/preset"
)

const maxBlockFrames = 128

var (
	globalProcessor *host.Processor
	ioBuffer        []float32
)

func main() {
	// Keep program running
	c := make(chan struct{})

	js.Global().Set("wasmInit", js.FuncOf(wasmInit))
	js.Global().Set("wasmParameters", js.FuncOf(wasmParameters))
	js.Global().Set("wasmSetParameter", js.FuncOf(wasmSetParameter))
	js.Global().Set("wasmGetParameter", js.FuncOf(wasmGetParameter))
	js.Global().Set("wasmLoadPreset", js.FuncOf(wasmLoadPreset))
	js.Global().Set("wasmGetIOBuffer", js.FuncOf(wasmGetIOBuffer))
	js.Global().Set("wasmProcessBlock", js.FuncOf(wasmProcessBlock))
	js.Global().Set("wasmGetMemoryBuffer", js.FuncOf(wasmGetMemoryBuffer))

	println("WASM jverb module loaded")
	<-c
}

func wasmInit(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	sampleRate := args[0].Float()

	p := host.NewProcessor()
	p.SetSmoothing(20)
	if err := p.Prepare(sampleRate, maxBlockFrames); err != nil {
		println("Prepare failed:", err.Error())
		return nil
	}
	globalProcessor = p

	// Interleaved stereo, processed in place
	ioBuffer = make([]float32, maxBlockFrames*2)

	println("Reverb initialized at", int(sampleRate), "Hz")
	return nil
}

// wasmParameters returns the parameter layout as JSON.
func wasmParameters(this js.Value, args []js.Value) interface{} {
	b, err := json.Marshal(host.Parameters())
	if err != nil {
		return nil
	}
	return string(b)
}

func wasmSetParameter(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 || globalProcessor == nil {
		return nil
	}
	if err := globalProcessor.SetParameter(args[0].String(), args[1].Float()); err != nil {
		println("SetParameter:", err.Error())
	}
	return nil
}

func wasmGetParameter(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalProcessor == nil {
		return nil
	}
	v, err := globalProcessor.Parameter(args[0].String())
	if err != nil {
		return nil
	}
	return v
}

func wasmLoadPreset(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalProcessor == nil {
		return false
	}
	p, err := preset.Builtin(args[0].String())
	if err != nil {
		println("LoadPreset:", err.Error())
		return false
	}
	globalProcessor.SetState(p.Values)
	return true
}

// wasmGetIOBuffer returns the address of the interleaved stereo block that
// JS fills before wasmProcessBlock.
func wasmGetIOBuffer(this js.Value, args []js.Value) interface{} {
	if len(ioBuffer) == 0 {
		return 0
	}
	return js.ValueOf(uintptr(unsafe.Pointer(&ioBuffer[0])))
}

func wasmProcessBlock(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalProcessor == nil {
		return 0
	}

	numFrames := min(args[0].Int(), maxBlockFrames)
	if numFrames <= 0 {
		return 0
	}
	if err := globalProcessor.ProcessBlock32(ioBuffer[:numFrames*2], 2); err != nil {
		println("ProcessBlock:", err.Error())
		return 0
	}
	return js.ValueOf(uintptr(unsafe.Pointer(&ioBuffer[0])))
}

func wasmGetMemoryBuffer(this js.Value, args []js.Value) interface{} {
	// Return WASM memory buffer for access from JS
	return js.Global().Get("Go").Get("_inst").Get("exports").Get("mem").Get("buffer")
}
