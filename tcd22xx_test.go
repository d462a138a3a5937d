package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firewire-audio/dice"
)

func TestUpdateMixerRowWritesOneTransaction(t *testing.T) {
	tr, _, dev := newFixture(t, deviceConfig{mixerIn: 2, mixerOut: 2})

	require.NoError(t, dev.UpdateMixerRow(0, []int16{0x1000, -0x1000}, timeoutMs))

	require.Len(t, tr.writes, 1)
	w := tr.writes[0]
	assert.Equal(t, uint64(extBase+fixMixerOffset+4), w.addr)
	assert.Equal(t, []byte{0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0xf0, 0x00}, w.data)

	assert.Equal(t, []int16{0x1000, -0x1000}, dev.State.MixerCache[0])
	assert.Equal(t, []int16{0, 0}, dev.State.MixerCache[1])

	// The untouched row keeps its register image.
	rowStride := uint64(4 * dice.MixerMaxInputCount)
	assert.Zero(t, tr.quad(extBase+fixMixerOffset+4+rowStride))
}

func TestUpdateMixerRowUnchangedWritesNothing(t *testing.T) {
	tr, _, dev := newFixture(t, deviceConfig{mixerIn: 2, mixerOut: 2})

	require.NoError(t, dev.UpdateMixerRow(1, []int16{0, 0}, timeoutMs))
	assert.Empty(t, tr.writes)
}

func TestUpdateMixerRowValidatesBeforeTransaction(t *testing.T) {
	tr, _, dev := newFixture(t, deviceConfig{mixerIn: 2, mixerOut: 2})

	err := dev.UpdateMixerRow(2, []int16{0, 0}, timeoutMs)
	assert.ErrorIs(t, err, dice.ErrInvalidArgument)

	err = dev.UpdateMixerRow(0, []int16{0, 0, 0}, timeoutMs)
	assert.ErrorIs(t, err, dice.ErrInvalidArgument)

	assert.Empty(t, tr.writes)
}

func TestUpdateRouterEntriesRejectsOversizedTable(t *testing.T) {
	tr, _, dev := newFixture(t, deviceConfig{routerMax: 4})

	entry := dice.RouterEntry{
		Dst: dice.DstBlk{ID: dice.DstBlkIns0, Ch: 0},
		Src: dice.SrcBlk{ID: dice.SrcBlkIns0, Ch: 1},
	}
	entries := make([]dice.RouterEntry, 5)
	for i := range entries {
		entries[i] = entry
	}

	err := dev.UpdateRouterEntries(entries, timeoutMs)
	assert.ErrorIs(t, err, dice.ErrInvalidArgument)
	assert.Empty(t, tr.writes)
}

func TestUpdateRouterEntriesDropsAbsentBlocks(t *testing.T) {
	tr, _, dev := newFixture(t, deviceConfig{})

	entries := []dice.RouterEntry{
		{Dst: dice.DstBlk{ID: dice.DstBlkIns0, Ch: 0}, Src: dice.SrcBlk{ID: dice.SrcBlkIns0, Ch: 1}},
		// No ADAT blocks exist in the catalog; the entry must vanish.
		{Dst: dice.DstBlk{ID: dice.DstBlkAdat, Ch: 0}, Src: dice.SrcBlk{ID: dice.SrcBlkAdat, Ch: 0}},
	}

	require.NoError(t, dev.UpdateRouterEntries(entries, timeoutMs))
	require.Len(t, dev.State.RouterEntries, 1)
	assert.Equal(t, entries[0], dev.State.RouterEntries[0])
	assert.Equal(t, uint32(1), tr.quad(extBase+fixRouterOffset))
}

func TestFixedSourcesPinnedToTableHead(t *testing.T) {
	spec := &dice.ModelSpec{
		Name:    "Test-Fixed",
		Inputs:  []dice.Input{{ID: dice.SrcBlkIns0, Offset: 0, Count: 2, Label: "Analog"}},
		Outputs: []dice.Output{{ID: dice.DstBlkIns0, Offset: 0, Count: 2, Label: "Analog"}},
		Fixed:   []dice.SrcBlk{{ID: dice.SrcBlkIns0, Ch: 0}},
	}
	tr, _, dev := newFixture(t, deviceConfig{spec: spec})

	// The cache pass already parked the fixed source on the reserved
	// destination.
	require.Len(t, dev.State.RouterEntries, 1)
	assert.Equal(t, dice.SrcBlk{ID: dice.SrcBlkIns0, Ch: 0}, dev.State.RouterEntries[0].Src)
	assert.True(t, dev.State.RouterEntries[0].Dst.IsNone())

	// Routing the fixed source moves its live entry to the head instead of
	// duplicating it.
	entries := append([]dice.RouterEntry{},
		dice.RouterEntry{
			Dst: dice.DstBlk{ID: dice.DstBlkIns0, Ch: 1},
			Src: dice.SrcBlk{ID: dice.SrcBlkIns0, Ch: 1},
		},
		dice.RouterEntry{
			Dst: dice.DstBlk{ID: dice.DstBlkIns0, Ch: 0},
			Src: dice.SrcBlk{ID: dice.SrcBlkIns0, Ch: 0},
		},
	)
	require.NoError(t, dev.UpdateRouterEntries(entries, timeoutMs))
	require.Len(t, dev.State.RouterEntries, 2)
	assert.Equal(t, dice.SrcBlk{ID: dice.SrcBlkIns0, Ch: 0}, dev.State.RouterEntries[0].Src)
	assert.False(t, dev.State.RouterEntries[0].Dst.IsNone())

	// An unchanged table is not retransmitted.
	tr.reset()
	require.NoError(t, dev.UpdateRouterEntries(dev.State.RouterEntries, timeoutMs))
	assert.Empty(t, tr.writes)
}

func TestCachePeaksFromRouterSection(t *testing.T) {
	tr, _, dev := newFixture(t, deviceConfig{})

	entries := []dice.RouterEntry{{
		Dst: dice.DstBlk{ID: dice.DstBlkIns0, Ch: 0},
		Src: dice.SrcBlk{ID: dice.SrcBlkIns0, Ch: 1},
	}}
	require.NoError(t, dev.UpdateRouterEntries(entries, timeoutMs))

	tr.putBytes(extBase+fixRouterOffset+4, []byte{0x01, 0x23})

	require.NoError(t, dev.CachePeaks(timeoutMs))
	assert.Equal(t, uint16(0x0123), dev.State.RouterEntries[0].Peak)
}

func TestCachePeaksFromPeakSection(t *testing.T) {
	tr, _, dev := newFixture(t, deviceConfig{peakAvail: true})

	entries := []dice.RouterEntry{{
		Dst: dice.DstBlk{ID: dice.DstBlkIns0, Ch: 0},
		Src: dice.SrcBlk{ID: dice.SrcBlkIns0, Ch: 1},
	}}
	require.NoError(t, dev.UpdateRouterEntries(entries, timeoutMs))

	tr.putBytes(extBase+fixPeakOffset, routerEntryImage(0x0456,
		entries[0].Src, entries[0].Dst))

	require.NoError(t, dev.CachePeaks(timeoutMs))
	assert.Equal(t, uint16(0x0456), dev.State.RouterEntries[0].Peak)
}

func TestStateEnumerationsAreOrdered(t *testing.T) {
	_, _, dev := newFixture(t, deviceConfig{mixerIn: 2, mixerOut: 2, txPcm: []uint8{2}, rxPcm: []uint8{2}})

	srcs := dev.State.RouterSources()
	require.Len(t, srcs, 6)
	assert.Equal(t, dice.SrcBlk{ID: dice.SrcBlkIns0, Ch: 0}, srcs[0])
	assert.Equal(t, dice.SrcBlk{ID: dice.SrcBlkAvs0, Ch: 0}, srcs[2])
	assert.Equal(t, dice.SrcBlk{ID: dice.SrcBlkMixer, Ch: 0}, srcs[4])

	dsts := dev.State.RouterDestinations()
	require.Len(t, dsts, 6)
	assert.Equal(t, dice.DstBlk{ID: dice.DstBlkIns0, Ch: 0}, dsts[0])
	assert.Equal(t, dice.DstBlk{ID: dice.DstBlkAvs0, Ch: 0}, dsts[2])
	assert.Equal(t, dice.DstBlk{ID: dice.DstBlkMixerTx0, Ch: 0}, dsts[4])
}
