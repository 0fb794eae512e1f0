// Package whisper wraps the whisper CLI for speech-to-text transcription.
package whisper

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Model selects the whisper model size. Larger models are slower and more
// accurate.
type Model string

const (
	ModelTiny  Model = "tiny"
	ModelBase  Model = "base"
	ModelSmall Model = "small"
)

// Preset selects the decoding quality/speed trade-off.
type Preset string

const (
	PresetFast     Preset = "fast"
	PresetBalanced Preset = "balanced"
	PresetHigh     Preset = "high"
)

// decodingParams maps a preset onto concrete whisper decoding flags
type decodingParams struct {
	BeamSize         int
	BestOf           int
	Temperature      string
	ConditionOnPrev  bool
}

var presetParams = map[Preset]decodingParams{
	PresetFast:     {BeamSize: 1, BestOf: 1, Temperature: "0", ConditionOnPrev: false},
	PresetBalanced: {BeamSize: 3, BestOf: 3, Temperature: "0", ConditionOnPrev: true},
	PresetHigh:     {BeamSize: 5, BestOf: 5, Temperature: "0,0.2,0.4", ConditionOnPrev: true},
}

// etaMultipliers estimates transcription wall-clock time as a multiple of
// the audio duration, indexed by model then preset. Display only, never
// enforced.
var etaMultipliers = map[Model]map[Preset]float64{
	ModelTiny:  {PresetFast: 0.1, PresetBalanced: 0.2, PresetHigh: 0.4},
	ModelBase:  {PresetFast: 0.2, PresetBalanced: 0.4, PresetHigh: 0.8},
	ModelSmall: {PresetFast: 0.5, PresetBalanced: 1.0, PresetHigh: 2.0},
}

// ParseModel validates a model name, defaulting to tiny for the empty string.
func ParseModel(s string) (Model, error) {
	switch Model(s) {
	case "":
		return ModelTiny, nil
	case ModelTiny, ModelBase, ModelSmall:
		return Model(s), nil
	default:
		return "", fmt.Errorf("unknown whisper model %q (expected tiny, base or small)", s)
	}
}

// ParsePreset validates a preset name, defaulting to fast for the empty string.
func ParsePreset(s string) (Preset, error) {
	switch Preset(s) {
	case "":
		return PresetFast, nil
	case PresetFast, PresetBalanced, PresetHigh:
		return Preset(s), nil
	default:
		return "", fmt.Errorf("unknown whisper preset %q (expected fast, balanced or high)", s)
	}
}

// EstimateMultiplier returns the wall-clock multiplier for a model/preset
// pair. Unknown pairs fall back to 1.0.
func EstimateMultiplier(model Model, preset Preset) float64 {
	if byPreset, ok := etaMultipliers[model]; ok {
		if m, ok := byPreset[preset]; ok {
			return m
		}
	}
	return 1.0
}

// Transcriber invokes the whisper CLI. The binary, model and preset are fixed
// at construction; the caller owns the lifecycle and injects the handle where
// needed rather than sharing a hidden singleton.
type Transcriber struct {
	binPath  string
	model    Model
	preset   Preset
	language string
	timeout  time.Duration
}

// New creates a Transcriber. language may be empty for autodetection; timeout
// bounds a single transcription run (zero disables the bound).
func New(binPath string, model Model, preset Preset, language string, timeout time.Duration) *Transcriber {
	if binPath == "" {
		binPath = "whisper"
	}
	return &Transcriber{
		binPath:  binPath,
		model:    model,
		preset:   preset,
		language: language,
		timeout:  timeout,
	}
}

// Model returns the configured model size.
func (t *Transcriber) Model() Model { return t.model }

// Preset returns the configured decoding preset.
func (t *Transcriber) Preset() Preset { return t.preset }

// ValidateBinary checks that the whisper CLI is on the PATH.
func (t *Transcriber) ValidateBinary() error {
	if _, err := exec.LookPath(t.binPath); err != nil {
		return fmt.Errorf("whisper binary not found: %s", t.binPath)
	}
	return nil
}

// Transcribe runs the whisper CLI on a 16kHz mono WAV file and returns the
// path of the SRT it produced inside outDir. The CLI names its output after
// the input file, so the returned path is <outDir>/<wav base>.srt.
func (t *Transcriber) Transcribe(ctx context.Context, wavPath, outDir string) (string, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, t.binPath, t.args(wavPath, outDir)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("whisper failed: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}

	base := strings.TrimSuffix(filepath.Base(wavPath), filepath.Ext(wavPath))
	srtPath := filepath.Join(outDir, base+".srt")
	if _, err := os.Stat(srtPath); err != nil {
		return "", fmt.Errorf("whisper produced no output at %s", srtPath)
	}

	return srtPath, nil
}

// args builds the CLI argument list for one transcription run
func (t *Transcriber) args(wavPath, outDir string) []string {
	params, ok := presetParams[t.preset]
	if !ok {
		params = presetParams[PresetFast]
	}

	args := []string{
		wavPath,
		"--model", string(t.model),
		"--output_format", "srt",
		"--output_dir", outDir,
		"--beam_size", fmt.Sprintf("%d", params.BeamSize),
		"--best_of", fmt.Sprintf("%d", params.BestOf),
		"--temperature", params.Temperature,
		"--condition_on_previous_text", boolFlag(params.ConditionOnPrev),
	}

	if t.language != "" {
		args = append(args, "--language", t.language)
	}

	return args
}

func boolFlag(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
