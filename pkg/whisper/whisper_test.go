package whisper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModel(t *testing.T) {
	got, err := ParseModel("")
	require.NoError(t, err)
	assert.Equal(t, ModelTiny, got)

	got, err = ParseModel("small")
	require.NoError(t, err)
	assert.Equal(t, ModelSmall, got)

	_, err = ParseModel("large")
	assert.Error(t, err)
}

func TestParsePreset(t *testing.T) {
	got, err := ParsePreset("")
	require.NoError(t, err)
	assert.Equal(t, PresetFast, got)

	_, err = ParsePreset("turbo")
	assert.Error(t, err)
}

func TestEstimateMultiplier(t *testing.T) {
	// Higher fidelity must never be estimated cheaper than lower fidelity
	// within one model.
	for _, m := range []Model{ModelTiny, ModelBase, ModelSmall} {
		fast := EstimateMultiplier(m, PresetFast)
		balanced := EstimateMultiplier(m, PresetBalanced)
		high := EstimateMultiplier(m, PresetHigh)

		assert.Less(t, fast, balanced, "model %s", m)
		assert.Less(t, balanced, high, "model %s", m)
	}

	assert.Equal(t, 1.0, EstimateMultiplier(Model("huge"), PresetFast))
}

func TestArgs(t *testing.T) {
	tr := New("whisper", ModelBase, PresetHigh, "pt", 0)
	args := tr.args("/tmp/audio.wav", "/tmp/out")

	assert.Equal(t, "/tmp/audio.wav", args[0])
	assert.Contains(t, args, "base")
	assert.Contains(t, args, "srt")
	assert.Contains(t, args, "--beam_size")
	assert.Contains(t, args, "5")
	assert.Contains(t, args, "0,0.2,0.4")
	assert.Contains(t, args, "--language")
	assert.Contains(t, args, "pt")
}

func TestArgsFastPresetDisablesContext(t *testing.T) {
	tr := New("whisper", ModelTiny, PresetFast, "", 0)
	args := tr.args("a.wav", ".")

	require.Contains(t, args, "--condition_on_previous_text")
	for i, a := range args {
		if a == "--condition_on_previous_text" {
			assert.Equal(t, "False", args[i+1])
		}
	}
	assert.NotContains(t, args, "--language")
}
