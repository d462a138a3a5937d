package avc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firewire-audio/dice/avc"
)

func TestAudioSelectorOperands(t *testing.T) {
	op := &avc.AudioSelector{FuncBlkID: 0xe5, Attr: avc.CtlAttrDuration, InputPlugID: 0x28}

	operands, err := op.BuildOperands()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x80, 0xe5, 0x08, 0x02, 0x28, 0x01}, operands)

	parsed := &avc.AudioSelector{FuncBlkID: 0xe5, Attr: avc.CtlAttrDuration}
	require.NoError(t, parsed.ParseOperands(operands))
	assert.Equal(t, uint8(0x28), parsed.InputPlugID)
}

func TestAudioFeatureVolumeOperands(t *testing.T) {
	op := &avc.AudioFeature{
		FuncBlkID: 0x03,
		Attr:      avc.CtlAttrMinimum,
		Ch:        avc.AudioChEach(0x1b),
		Ctl:       avc.VolumeControl{Levels: []int16{-1234, 5678, 3210}},
	}

	operands, err := op.BuildOperands()
	require.NoError(t, err)
	assert.Equal(t,
		[]byte{0x81, 0x03, 0x02, 0x02, 0x1c, 0x02, 0x06, 0xfb, 0x2e, 0x16, 0x2e, 0x0c, 0x8a},
		operands)

	parsed := &avc.AudioFeature{FuncBlkID: 0x03, Attr: avc.CtlAttrMinimum, Ch: avc.AudioChEach(0x1b)}
	require.NoError(t, parsed.ParseOperands(operands))
	assert.Equal(t, op.Ctl, parsed.Ctl)
}

func TestAudioFeatureTrebleOperands(t *testing.T) {
	op := &avc.AudioFeature{
		FuncBlkID: 0x33,
		Attr:      avc.CtlAttrResolution,
		Ch:        avc.AudioChEach(0xd8),
		Ctl:       avc.TrebleControl{Levels: []int8{40, -33, 123, -96}},
	}

	operands, err := op.BuildOperands()
	require.NoError(t, err)
	assert.Equal(t,
		[]byte{0x81, 0x33, 0x01, 0x02, 0xd9, 0x07, 0x04, 0x28, 0xdf, 0x7b, 0xa0},
		operands)

	parsed := &avc.AudioFeature{FuncBlkID: 0x33, Attr: avc.CtlAttrResolution, Ch: avc.AudioChEach(0xd8)}
	require.NoError(t, parsed.ParseOperands(operands))
	assert.Equal(t, op.Ctl, parsed.Ctl)
}

func TestFeatureControlRoundTrips(t *testing.T) {
	ctls := []avc.FeatureControl{
		avc.MuteControl{States: []bool{false, true, false}},
		avc.VolumeControl{Levels: []int16{0x1234, 0x3456, avc.VolumeInfinity}},
		avc.LrBalanceControl{Balance: -123},
		avc.FrBalanceControl{Balance: 321},
		avc.BassControl{Levels: []int8{10, -10, 20, -20}},
		avc.MidControl{Levels: []int8{30, -30, -40, 40}},
		avc.TrebleControl{Levels: []int8{50, 60, -70, -80}},
		avc.GraphicEqualizerControl{
			BandsPresent:   [4]uint8{0x00, 0x01, 0x02, 0x03},
			ExBandsPresent: [4]uint8{0x04, 0x05, 0x06, 0x07},
			Gains:          []int8{-1, -2, -3, 10, 14, -40, -100, 33},
		},
		avc.AutomaticGainControl{States: []bool{false, true, false}},
		avc.DelayControl{Delays: []uint16{0x1234, 0x3456, 0x789a}},
		avc.BassBoostControl{States: []bool{true, false, true}},
		avc.LoudnessControl{States: []bool{false, true, false}},
		avc.RawControl{Selector: 0xd0, Data: []byte{0xad, 0xbe, 0xef}},
	}

	for _, ctl := range ctls {
		op := &avc.AudioFeature{
			FuncBlkID: 0x01,
			Attr:      avc.CtlAttrCurrent,
			Ch:        avc.AudioChMaster,
			Ctl:       ctl,
		}

		operands, err := op.BuildOperands()
		require.NoError(t, err)

		parsed := &avc.AudioFeature{FuncBlkID: 0x01, Attr: avc.CtlAttrCurrent, Ch: avc.AudioChMaster}
		require.NoError(t, parsed.ParseOperands(operands))
		assert.Equal(t, ctl, parsed.Ctl)
	}
}

func TestAudioProcessingEnableOperands(t *testing.T) {
	op := &avc.AudioProcessing{
		FuncBlkID:   0xf5,
		Attr:        avc.CtlAttrDefault,
		InputPlugID: 0x71,
		InputCh:     avc.AudioChEach(0xa8),
		OutputCh:    avc.AudioChEach(0x3e),
		Ctl:         avc.ProcessingEnable{Enabled: true},
	}

	operands, err := op.BuildOperands()
	require.NoError(t, err)
	assert.Equal(t,
		[]byte{0x82, 0xf5, 0x04, 0x04, 0x71, 0xa9, 0x3f, 0x01, 0x01, 0x70},
		operands)

	parsed := &avc.AudioProcessing{
		FuncBlkID:   0xf5,
		Attr:        avc.CtlAttrDefault,
		InputPlugID: 0x71,
		InputCh:     avc.AudioChEach(0xa8),
		OutputCh:    avc.AudioChEach(0x3e),
	}
	require.NoError(t, parsed.ParseOperands(operands))
	assert.Equal(t, op.Ctl, parsed.Ctl)
}

func TestAudioProcessingMixerOperands(t *testing.T) {
	op := &avc.AudioProcessing{
		FuncBlkID:   0x11,
		Attr:        avc.CtlAttrMinimum,
		InputPlugID: 0x22,
		InputCh:     avc.AudioChEach(0x32),
		OutputCh:    avc.AudioChEach(0x43),
		Ctl:         avc.ProcessingMixer{Levels: []int16{10, -10}},
	}

	operands, err := op.BuildOperands()
	require.NoError(t, err)
	assert.Equal(t,
		[]byte{0x82, 0x11, 0x02, 0x04, 0x22, 0x33, 0x44, 0x03, 0x04, 0x00, 0x0a, 0xff, 0xf6},
		operands)

	parsed := &avc.AudioProcessing{
		FuncBlkID:   0x11,
		Attr:        avc.CtlAttrMinimum,
		InputPlugID: 0x22,
		InputCh:     avc.AudioChEach(0x32),
		OutputCh:    avc.AudioChEach(0x43),
	}
	require.NoError(t, parsed.ParseOperands(operands))
	assert.Equal(t, op.Ctl, parsed.Ctl)
}

func TestParseTruncatedOperands(t *testing.T) {
	op := &avc.AudioSelector{FuncBlkID: 0xe5, Attr: avc.CtlAttrCurrent, InputPlugID: 0x28}

	err := op.ParseOperands([]byte{0x80, 0xe5, 0x10})
	assert.ErrorIs(t, err, avc.ErrOperandsTooShort)

	// Selector length field promises more bytes than the frame holds.
	err = op.ParseOperands([]byte{0x80, 0xe5, 0x10, 0x08, 0x28, 0x01})
	assert.ErrorIs(t, err, avc.ErrOperandsTooShort)
}

func TestParseMismatchedOperands(t *testing.T) {
	op := &avc.AudioSelector{FuncBlkID: 0xe5, Attr: avc.CtlAttrCurrent, InputPlugID: 0x28}

	// A feature block answer to a selector block command.
	err := op.ParseOperands([]byte{0x81, 0xe5, 0x10, 0x02, 0x28, 0x01})
	assert.ErrorIs(t, err, avc.ErrOperandMismatch)

	// Wrong function block id.
	err = op.ParseOperands([]byte{0x80, 0xe6, 0x10, 0x02, 0x28, 0x01})
	assert.ErrorIs(t, err, avc.ErrOperandMismatch)

	// Wrong control attribute.
	err = op.ParseOperands([]byte{0x80, 0xe5, 0x02, 0x02, 0x28, 0x01})
	assert.ErrorIs(t, err, avc.ErrOperandMismatch)
}

func TestAudioFeatureChannelEcho(t *testing.T) {
	op := &avc.AudioFeature{
		FuncBlkID: 0x02,
		Attr:      avc.CtlAttrCurrent,
		Ch:        avc.AudioChEach(0),
		Ctl:       avc.MuteControl{States: []bool{true}},
	}

	operands, err := op.BuildOperands()
	require.NoError(t, err)

	// Flip the echoed channel number.
	operands[4] = uint8(avc.AudioChAll)
	err = op.ParseOperands(operands)
	assert.ErrorIs(t, err, avc.ErrOperandMismatch)
}
