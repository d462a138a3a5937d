package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firewire-audio/dice"
)

func TestSpro24DspGeneralFlags(t *testing.T) {
	tr, unit, _ := newFixture(t, deviceConfig{spec: dice.SPro24DspSpec})
	dev := dice.NewSpro24Dsp(unit)

	params := dice.Spro24DspEffectGeneral{}
	params.EqEnable[0] = true
	params.CompEnable[1] = true
	params.EqAfterComp[1] = true
	require.NoError(t, dev.UpdateGeneral(params, timeoutMs))

	appBase := uint64(extBase + fixAppOffset)
	assert.Equal(t, uint32(0x0006_0001), tr.quad(appBase+0x78))
	assert.Equal(t, uint32(0x05), tr.quad(appBase+0x5ec))

	cached := dice.NewSpro24Dsp(unit)
	require.NoError(t, cached.CacheGeneral(timeoutMs))
	assert.Equal(t, params, cached.General)

	// Nothing to transmit when the flags already match.
	tr.reset()
	require.NoError(t, dev.UpdateGeneral(params, timeoutMs))
	assert.Empty(t, tr.writes)
}

func TestSpro24DspCompressorRoundTrip(t *testing.T) {
	tr, unit, _ := newFixture(t, deviceConfig{spec: dice.SPro24DspSpec})
	dev := dice.NewSpro24Dsp(unit)

	params := dice.Spro24DspCompressor{
		Output:    [2]float32{32.0, 16.0},
		Threshold: [2]float32{-0.5, -0.25},
		Ratio:     [2]float32{0.125, 0.25},
		Attack:    [2]float32{-1.0, -0.9375},
		Release:   [2]float32{0.9375, 1.0},
	}
	require.NoError(t, dev.UpdateCompressor(params, timeoutMs))

	cached := dice.NewSpro24Dsp(unit)
	require.NoError(t, cached.CacheCompressor(timeoutMs))
	assert.Equal(t, params, cached.Comp)

	// A single changed coefficient costs one coefficient write plus the
	// two arming notices.
	tr.reset()
	params.Ratio[1] = 0.5
	require.NoError(t, dev.UpdateCompressor(params, timeoutMs))
	require.Len(t, tr.writes, 3)
	assert.Equal(t, uint64(extBase+fixAppOffset+0x190+0x88*3+0x0c), tr.writes[0].addr)
}

func TestSpro24DspEqualizerRoundTrip(t *testing.T) {
	_, unit, _ := newFixture(t, deviceConfig{spec: dice.SPro24DspSpec})
	dev := dice.NewSpro24Dsp(unit)

	params := dice.Spro24DspEqualizer{Output: [2]float32{1.0, 0.5}}
	params.Low[0] = dice.Spro24DspEqualizerBand{0.1, 0.2, 0.3, 0.4, 0.5}
	params.HighMiddle[1] = dice.Spro24DspEqualizerBand{-0.1, -0.2, -0.3, -0.4, -0.5}
	require.NoError(t, dev.UpdateEqualizer(params, timeoutMs))

	cached := dice.NewSpro24Dsp(unit)
	require.NoError(t, cached.CacheEqualizer(timeoutMs))
	assert.Equal(t, params, cached.Eq)
}

func TestSpro24DspReverbCarriesPreFilterSign(t *testing.T) {
	_, unit, _ := newFixture(t, deviceConfig{spec: dice.SPro24DspSpec})
	dev := dice.NewSpro24Dsp(unit)

	params := dice.Spro24DspReverb{
		Size:      0.25,
		Air:       0.75,
		Enabled:   true,
		PreFilter: -0.5,
	}
	require.NoError(t, dev.UpdateReverb(params, timeoutMs))

	cached := dice.NewSpro24Dsp(unit)
	require.NoError(t, cached.CacheReverb(timeoutMs))
	assert.Equal(t, params, cached.Reverb)

	params.PreFilter = 0.5
	require.NoError(t, dev.UpdateReverb(params, timeoutMs))
	require.NoError(t, cached.CacheReverb(timeoutMs))
	assert.Equal(t, float32(0.5), cached.Reverb.PreFilter)
}

func TestSpro24DspEnable(t *testing.T) {
	tr, unit, _ := newFixture(t, deviceConfig{spec: dice.SPro24DspSpec})
	dev := dice.NewSpro24Dsp(unit)

	require.NoError(t, dev.SetDspEnabled(true, timeoutMs))

	appBase := uint64(extBase + fixAppOffset)
	assert.Equal(t, uint32(1), tr.quad(appBase+0x70))
	assert.Equal(t, uint32(0x1c), tr.quad(appBase+0x5ec))
}
