package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/firewire-audio/dice"
)

func TestModelByName(t *testing.T) {
	spec := dice.ModelByName("Saffire Pro 26")
	assert.Equal(t, dice.SPro26Spec, spec)

	assert.Equal(t, dice.GenericSpec, dice.ModelByName("no such unit"))
}

func countSrcs(pair dice.AvailBlkPair, id dice.SrcBlkID) int {
	count := 0
	for _, src := range pair.Srcs {
		if src.ID == id {
			count++
		}
	}

	return count
}

func TestAdatChannelsShrinkWithRateMode(t *testing.T) {
	spec := dice.GenericSpec

	low := spec.ComputeAvailRealBlkPair(dice.RateModeLow)
	assert.Equal(t, 16, countSrcs(low, dice.SrcBlkAdat))

	middle := spec.ComputeAvailRealBlkPair(dice.RateModeMiddle)
	assert.Equal(t, 8, countSrcs(middle, dice.SrcBlkAdat))

	high := spec.ComputeAvailRealBlkPair(dice.RateModeHigh)
	assert.Equal(t, 4, countSrcs(high, dice.SrcBlkAdat))

	// The second optical interface continues where the first left off, so
	// S/MUX never leaves channel holes.
	var chans []uint8
	for _, src := range high.Srcs {
		if src.ID == dice.SrcBlkAdat {
			chans = append(chans, src.Ch)
		}
	}
	assert.Equal(t, []uint8{0, 1, 2, 3}, chans)
}

func TestMixerBlkPairCappedByCaps(t *testing.T) {
	spec := dice.GenericSpec
	caps := dice.MixerCaps{InputCount: 4, OutputCount: 6}

	pair := spec.ComputeAvailMixerBlkPair(caps, dice.RateModeLow)
	assert.Len(t, pair.Srcs, 6)
	assert.Len(t, pair.Dsts, 4)
	for _, dst := range pair.Dsts {
		assert.Equal(t, dice.DstBlkMixerTx0, dst.ID)
	}

	assert.Equal(t, uint8(18), spec.MixerInPortCount())
	assert.Equal(t, uint8(8), spec.MixerOutPortCount(dice.RateModeHigh))
}

func TestStreamBlkPairFollowsNegotiatedFormats(t *testing.T) {
	spec := dice.GenericSpec

	tx := []dice.FormatEntry{{PcmCount: 4}, {PcmCount: 2}}
	rx := []dice.FormatEntry{{PcmCount: 8}}

	pair := spec.ComputeAvailStreamBlkPair(tx, rx)
	assert.Len(t, pair.Dsts, 6)
	assert.Equal(t, dice.DstBlk{ID: dice.DstBlkAvs1, Ch: 0}, pair.Dsts[4])
	assert.Len(t, pair.Srcs, 8)
	assert.Equal(t, dice.SrcBlk{ID: dice.SrcBlkAvs0, Ch: 7}, pair.Srcs[7])
}

func TestCatalogsAreConsistent(t *testing.T) {
	for name, spec := range dice.Models {
		assert.Equal(t, name, spec.Name)
		assert.NotEmpty(t, spec.Inputs, name)
		assert.NotEmpty(t, spec.Outputs, name)

		low := spec.ComputeAvailRealBlkPair(dice.RateModeLow)
		for _, fixed := range spec.Fixed {
			assert.Contains(t, low.Srcs, fixed, name)
		}
	}
}
