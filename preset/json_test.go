package preset

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-jverb/host"
	"github.com/cwbudde/algo-jverb/reverb"
)

func TestLoadJSONAppliesKeys(t *testing.T) {
	dir := t.TempDir()
	presetPath := filepath.Join(dir, "bright.json")
	content := `{
  "krt": 0.75,
  "lpf_g": 0.1,
  "pre_delay_ms": 12.5,
  "wet_level_db": -6,
  "density": "thin",
  "ir_wav_path": "irs/hall.wav"
}`
	if err := os.WriteFile(presetPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write preset: %v", err)
	}

	p, err := LoadJSON(presetPath)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if p.Name != "bright" {
		t.Fatalf("name = %q, want file stem", p.Name)
	}
	tp := p.Values.Tank()
	if tp.KRT != 0.75 || tp.LPFg != 0.1 || tp.PreDelayTimeMs != 12.5 || tp.WetLevelDB != -6 {
		t.Fatalf("tank parameters = %+v", tp)
	}
	if tp.Density != reverb.DensityThin {
		t.Fatalf("density = %v, want thin", tp.Density)
	}
	if tp.HighShelfFc != 4000 {
		t.Fatalf("unset keys should keep defaults, high shelf fc = %v", tp.HighShelfFc)
	}
	if want := filepath.Join(dir, "irs", "hall.wav"); p.IRWavPath != want {
		t.Fatalf("ir path = %q, want %q", p.IRWavPath, want)
	}
}

func TestApplyFileRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		file File
	}{
		{"krt range", File{KRT: f64(1.5)}},
		{"pre-delay range", File{PreDelayMs: f64(-1)}},
		{"low shelf fc range", File{LowShelfFc: f64(5)}},
		{"density", File{Density: str("medium")}},
		{"rt60", File{RT60Seconds: f64(0)}},
		{"exclusive", File{KRT: f64(0.5), RT60Seconds: f64(1)}},
	}
	for _, tt := range tests {
		if err := ApplyFile(Default(), &tt.file); err == nil {
			t.Fatalf("%s: expected error", tt.name)
		}
	}
	if err := ApplyFile(nil, &File{}); err == nil {
		t.Fatalf("expected error for nil destination")
	}
}

func TestRT60DerivesFeedback(t *testing.T) {
	p := Default()
	f := File{RT60Seconds: f64(2), FixedDelayMaxMs: f64(60)}
	if err := ApplyFile(p, &f); err != nil {
		t.Fatal(err)
	}
	tp := p.Values.Tank()
	want := reverb.FeedbackForDecay(2, tp)
	if math.Abs(tp.KRT-want) > 1e-12 {
		t.Fatalf("kRT = %v, want %v", tp.KRT, want)
	}
}

func TestSaveJSONRoundTrip(t *testing.T) {
	p, err := Builtin("hall")
	if err != nil {
		t.Fatal(err)
	}
	p.IRWavPath = "hall.wav"
	path := filepath.Join(t.TempDir(), "out", "hall.json")
	if err := SaveJSON(path, p); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}
	got, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if got.Values != p.Values {
		t.Fatalf("values changed:\n got %v\nwant %v", got.Values, p.Values)
	}
	if got.Name != "hall" {
		t.Fatalf("name = %q", got.Name)
	}
	if got.IRWavPath != filepath.Join(filepath.Dir(path), "hall.wav") {
		t.Fatalf("ir path = %q", got.IRWavPath)
	}
}

func TestBuiltins(t *testing.T) {
	names := Names()
	if len(names) != 6 {
		t.Fatalf("Names() = %v", names)
	}
	for _, name := range names {
		p, err := Builtin(name)
		if err != nil {
			t.Fatalf("Builtin(%q): %v", name, err)
		}
		for _, param := range host.Parameters() {
			v, _ := p.Values.Get(param.ID)
			if v < param.Min || v > param.Max {
				t.Fatalf("%s: %s = %v out of range", name, param.ID, v)
			}
		}
	}
	if _, err := Builtin("bathroom"); err == nil {
		t.Fatalf("expected error for unknown preset")
	}

	hall, _ := Builtin("hall")
	room, _ := Builtin("room")
	if hall.Values.Tank().KRT <= room.Values.Tank().KRT {
		t.Fatalf("hall should feed back more than room")
	}
	def, _ := Load("default")
	if def.Values != host.DefaultValues() {
		t.Fatalf("default preset differs from host defaults")
	}
}
