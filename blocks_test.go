package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firewire-audio/dice"
)

func TestSrcBlkString(t *testing.T) {
	assert.Equal(t, "Ins-0-3", dice.SrcBlk{ID: dice.SrcBlkIns0, Ch: 2}.String())
	assert.Equal(t, "Stream-A-1", dice.SrcBlk{ID: dice.SrcBlkAvs0, Ch: 0}.String())
	assert.Equal(t, "None", dice.SrcBlkNone().String())
	assert.Equal(t, "Reserved-7-1", dice.SrcBlk{ID: 7, Ch: 0}.String())
}

func TestParseSrcBlk(t *testing.T) {
	blk, err := dice.ParseSrcBlk("Ins-0-3")
	require.NoError(t, err)
	assert.Equal(t, dice.SrcBlk{ID: dice.SrcBlkIns0, Ch: 2}, blk)

	blk, err = dice.ParseSrcBlk("stream-a-2")
	require.NoError(t, err)
	assert.Equal(t, dice.SrcBlk{ID: dice.SrcBlkAvs0, Ch: 1}, blk)

	blk, err = dice.ParseSrcBlk("None")
	require.NoError(t, err)
	assert.True(t, blk.IsNone())

	_, err = dice.ParseSrcBlk("Ins-0")
	assert.Error(t, err)
	_, err = dice.ParseSrcBlk("Ins-0-17")
	assert.Error(t, err)
	_, err = dice.ParseSrcBlk("Tape-1")
	assert.Error(t, err)
}

func TestParseDstBlk(t *testing.T) {
	blk, err := dice.ParseDstBlk("Mixer-A-16")
	require.NoError(t, err)
	assert.Equal(t, dice.DstBlk{ID: dice.DstBlkMixerTx0, Ch: 15}, blk)

	blk, err = dice.ParseDstBlk("None")
	require.NoError(t, err)
	assert.True(t, blk.IsNone())

	_, err = dice.ParseDstBlk("Mixer-A-0")
	assert.Error(t, err)
	_, err = dice.ParseDstBlk("Mute-1")
	assert.Error(t, err)
}

func TestBlkStringParseRoundTrip(t *testing.T) {
	srcs := []dice.SrcBlk{
		{ID: dice.SrcBlkAes, Ch: 0},
		{ID: dice.SrcBlkAdat, Ch: 7},
		{ID: dice.SrcBlkMixer, Ch: 15},
		{ID: dice.SrcBlkArmAprAudio, Ch: 1},
		{ID: dice.SrcBlkMute, Ch: 0},
		dice.SrcBlkNone(),
	}
	for _, blk := range srcs {
		got, err := dice.ParseSrcBlk(blk.String())
		require.NoError(t, err)
		assert.Equal(t, blk, got)
	}

	dsts := []dice.DstBlk{
		{ID: dice.DstBlkAes, Ch: 3},
		{ID: dice.DstBlkMixerTx1, Ch: 1},
		{ID: dice.DstBlkAvs1, Ch: 0},
		dice.DstBlkNone(),
	}
	for _, blk := range dsts {
		got, err := dice.ParseDstBlk(blk.String())
		require.NoError(t, err)
		assert.Equal(t, blk, got)
	}
}

func TestModelLabels(t *testing.T) {
	spec := &dice.ModelSpec{
		Name: "Labels",
		Inputs: []dice.Input{
			{ID: dice.SrcBlkIns0, Offset: 0, Count: 2, Label: "Mic"},
			{ID: dice.SrcBlkIns0, Offset: 2, Count: 2, Label: "Line"},
		},
		Outputs: []dice.Output{
			{ID: dice.DstBlkIns0, Offset: 0, Count: 2, Label: "Monitor"},
		},
	}

	assert.Equal(t, "Mic-2", spec.SrcLabel(dice.SrcBlk{ID: dice.SrcBlkIns0, Ch: 1}))
	assert.Equal(t, "Line-1", spec.SrcLabel(dice.SrcBlk{ID: dice.SrcBlkIns0, Ch: 2}))
	assert.Equal(t, "Monitor-2", spec.DstLabel(dice.DstBlk{ID: dice.DstBlkIns0, Ch: 1}))

	// Blocks outside the catalog fall back to the generic rendering.
	assert.Equal(t, "Ins-0-5", spec.SrcLabel(dice.SrcBlk{ID: dice.SrcBlkIns0, Ch: 4}))
	assert.Equal(t, "AES-1", spec.DstLabel(dice.DstBlk{ID: dice.DstBlkAes, Ch: 0}))
}
