package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firewire-audio/dice"
)

func TestExtensionCapsFromRaw(t *testing.T) {
	raw := []byte{0xff, 0x00, 0x00, 0x07, 0x23, 0x12, 0x0c, 0xe7, 0x00, 0x00, 0x1b, 0xa3}

	caps, err := dice.ExtensionCapsFromRaw(raw)
	require.NoError(t, err)

	assert.Equal(t, dice.RouterCaps{
		IsExposed:         true,
		IsReadonly:        true,
		IsStorable:        true,
		MaximumEntryCount: 0xff00,
	}, caps.Router)

	assert.Equal(t, dice.MixerCaps{
		IsExposed:      true,
		IsReadonly:     true,
		IsStorable:     true,
		InputDeviceID:  0x0e,
		OutputDeviceID: 0x0c,
		InputCount:     0x12,
		OutputCount:    0x23,
	}, caps.Mixer)

	assert.Equal(t, dice.GeneralCaps{
		DynamicStreamFormat:    true,
		StorageAvail:           true,
		PeakAvail:              false,
		MaxTxStreams:           0x0a,
		MaxRxStreams:           0x0b,
		StreamFormatIsStorable: true,
		Asic:                   dice.AsicDiceII,
	}, caps.General)

	_, err = dice.ExtensionCapsFromRaw(raw[:8])
	assert.ErrorIs(t, err, dice.ErrCaps)
}

func TestSectionTablesConvertQuadletUnits(t *testing.T) {
	_, unit, _ := newFixture(t, deviceConfig{})

	assert.Equal(t, dice.Section{Offset: fixGlobalOffset, Size: fixGlobalSize}, unit.Sections.Global)
	assert.Equal(t, dice.Section{Offset: fixCapsOffset, Size: fixCapsSize}, unit.Ext.Caps)
	assert.Equal(t, dice.Section{Offset: fixCurrentOffset, Size: fixCurrentSize}, unit.Ext.CurrentConfig)
	assert.Equal(t, dice.Section{Offset: fixStandaloneOffset, Size: fixStandaloneSize}, unit.Ext.Standalone)
}

func TestRouterEntriesRoundTrip(t *testing.T) {
	tr, unit, _ := newFixture(t, deviceConfig{})

	entries := []dice.RouterEntry{
		{Dst: dice.DstBlk{ID: dice.DstBlkAes, Ch: 1}, Src: dice.SrcBlk{ID: dice.SrcBlkIns0, Ch: 3}},
		{Dst: dice.DstBlk{ID: dice.DstBlkAvs0, Ch: 7}, Src: dice.SrcBlk{ID: dice.SrcBlkMute, Ch: 15}},
	}
	require.NoError(t, unit.WriteRouterEntries(entries, timeoutMs))

	base := uint64(extBase + fixRouterOffset)
	assert.Equal(t, uint32(2), tr.quad(base))
	assert.Equal(t, uint32(0x0000_4301), tr.quad(base+4))
	assert.Equal(t, uint32(0x0000_ffb7), tr.quad(base+8))

	got, err := unit.ReadRouterEntries(timeoutMs)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestClockConfigPreservesReservedBits(t *testing.T) {
	tr, unit, _ := newFixture(t, deviceConfig{})

	globalBase := uint64(dice.BaseAddr + fixGlobalOffset)
	tr.putQuad(globalBase+0x4c, 0xabcd_020c)

	config := dice.ClockConfig{Rate: dice.ClockRate44100, Source: dice.ClockSourceWordClock}
	require.NoError(t, unit.WriteClockConfig(config, timeoutMs))
	assert.Equal(t, uint32(0xabcd_0107), tr.quad(globalBase+0x4c))

	got, err := unit.ReadClockConfig(timeoutMs)
	require.NoError(t, err)
	assert.Equal(t, config, got)
}

func TestClockStatusAndCurrentRate(t *testing.T) {
	tr, unit, _ := newFixture(t, deviceConfig{})

	globalBase := uint64(dice.BaseAddr + fixGlobalOffset)
	tr.putQuad(globalBase+0x54, 0x0000_0401)
	tr.putQuad(globalBase+0x5c, 96000)

	status, err := unit.ReadClockStatus(timeoutMs)
	require.NoError(t, err)
	assert.True(t, status.SourceIsLocked)
	assert.Equal(t, dice.ClockRate96000, status.Rate)

	rate, err := unit.ReadCurrentRate(timeoutMs)
	require.NoError(t, err)
	assert.Equal(t, uint32(96000), rate)
}

func TestOwnerAddrSpansTwoQuadlets(t *testing.T) {
	tr, unit, _ := newFixture(t, deviceConfig{})

	globalBase := uint64(dice.BaseAddr + fixGlobalOffset)
	tr.putQuad(globalBase, 0x0000_ffc1)
	tr.putQuad(globalBase+4, 0xe000_0400)

	owner, err := unit.ReadOwnerAddr(timeoutMs)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0000_ffc1_e000_0400), owner)
}

// Units whose global section predates the capability registers report a
// fixed rate and source set.
func TestClockCapsFallbackForSmallGlobalSection(t *testing.T) {
	tr := newFakeTransport()
	tr.putQuad(dice.BaseAddr+0, fixGlobalOffset/4)
	tr.putQuad(dice.BaseAddr+4, 0x64/4)

	unit := dice.NewUnit(tr)
	require.NoError(t, unit.ReadSections(timeoutMs))

	caps, err := unit.ReadClockCaps(timeoutMs)
	require.NoError(t, err)
	assert.Equal(t, []dice.ClockRate{dice.ClockRate44100, dice.ClockRate48000}, caps.RateEntries())

	labels, err := unit.ReadClockSourceLabels(timeoutMs)
	require.NoError(t, err)
	assert.Equal(t, []dice.ClockSource{dice.ClockSourceInternal}, caps.SrcEntries(labels))
	assert.Equal(t, "Internal", labels[dice.ClockSourceInternal])
}

func TestClockSourceLabelsFromRegister(t *testing.T) {
	_, unit, _ := newFixture(t, deviceConfig{})

	labels, err := unit.ReadClockSourceLabels(timeoutMs)
	require.NoError(t, err)
	assert.Equal(t, fixLabels, labels)
}

func TestStreamFormatEntriesRoundTrip(t *testing.T) {
	_, unit, _ := newFixture(t, deviceConfig{})

	tx := []dice.FormatEntry{{
		PcmCount:  8,
		MidiCount: 1,
		Labels:    []string{"Main-L", "Main-R"},
	}}
	rx := []dice.FormatEntry{{
		PcmCount: 2,
		Labels:   []string{"Return-L", "Return-R"},
	}}
	rx[0].EnableAC3[0] = true

	require.NoError(t, unit.WriteStreamFormatEntries(tx, rx, timeoutMs))

	gotTx, gotRx, err := unit.ReadStreamFormatEntries(timeoutMs)
	require.NoError(t, err)
	assert.Equal(t, tx, gotTx)
	assert.Equal(t, rx, gotRx)
}

func TestWriteStreamFormatEntriesRejectsExcessStreams(t *testing.T) {
	tr, unit, _ := newFixture(t, deviceConfig{})

	tx := make([]dice.FormatEntry, 3)
	err := unit.WriteStreamFormatEntries(tx, nil, timeoutMs)
	assert.ErrorIs(t, err, dice.ErrInvalidArgument)
	assert.Empty(t, tr.writes)
}

func TestExecuteCommandHonorsCapabilityGates(t *testing.T) {
	tr, unit, _ := newFixture(t, deviceConfig{})

	// No storage on the fixture.
	_, err := unit.ExecuteCommand(dice.OpcodeStoreConfigToFlash, dice.RateModeLow, timeoutMs)
	assert.ErrorIs(t, err, dice.ErrCmd)

	// Router immutability is flagged through the mixer capability.
	unit.Caps.Mixer.IsReadonly = true
	_, err = unit.ExecuteCommand(dice.OpcodeLoadRouter, dice.RateModeLow, timeoutMs)
	assert.ErrorIs(t, err, dice.ErrCmd)

	assert.Empty(t, tr.writes)
}

func TestExecuteCommandCarriesRateModeFlag(t *testing.T) {
	tr, unit, _ := newFixture(t, deviceConfig{})

	_, err := unit.ExecuteCommand(dice.OpcodeLoadRouter, dice.RateModeHigh, timeoutMs)
	require.NoError(t, err)

	require.NotEmpty(t, tr.writes)
	assert.Equal(t, uint64(extBase+fixCmdOffset), tr.writes[0].addr)
	assert.Equal(t, []byte{0x80, 0x04, 0x00, 0x01}, tr.writes[0].data)
}

func TestStandaloneClockSource(t *testing.T) {
	tr, unit, _ := newFixture(t, deviceConfig{})

	require.NoError(t, unit.WriteStandaloneClockSource(dice.ClockSourceWordClock, timeoutMs))

	src, err := unit.ReadStandaloneClockSource(timeoutMs)
	require.NoError(t, err)
	assert.Equal(t, dice.ClockSourceWordClock, src)

	tr.reset()
	err = unit.WriteStandaloneClockSource(dice.ClockSource(0x20), timeoutMs)
	assert.ErrorIs(t, err, dice.ErrInvalidArgument)
	assert.Empty(t, tr.writes)
}

func TestStandaloneAdatModeAndAesHighRate(t *testing.T) {
	_, unit, _ := newFixture(t, deviceConfig{})

	require.NoError(t, unit.WriteStandaloneAdatMode(dice.AdatModeSmux4, timeoutMs))
	mode, err := unit.ReadStandaloneAdatMode(timeoutMs)
	require.NoError(t, err)
	assert.Equal(t, dice.AdatModeSmux4, mode)

	require.NoError(t, unit.WriteStandaloneAesHighRate(true, timeoutMs))
	enabled, err := unit.ReadStandaloneAesHighRate(timeoutMs)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestStandaloneWordClockParams(t *testing.T) {
	tr, unit, _ := newFixture(t, deviceConfig{})

	// Reserved bits in the shared register survive the read-modify-write.
	wcAddr := uint64(extBase + fixStandaloneOffset + 0x0c)
	tr.putQuad(wcAddr, 0x0000_000c)

	rate := dice.WordClockRate{Numerator: 0x10, Denominator: 0x100}
	require.NoError(t, unit.WriteStandaloneWordClockParams(dice.WordClockModeHigh, rate, timeoutMs))
	assert.Equal(t, uint32(0x00ff_00ff), tr.quad(wcAddr))

	mode, gotRate, err := unit.ReadStandaloneWordClockParams(timeoutMs)
	require.NoError(t, err)
	assert.Equal(t, dice.WordClockModeHigh, mode)
	assert.Equal(t, rate, gotRate)

	tr.reset()
	err = unit.WriteStandaloneWordClockParams(dice.WordClockModeNormal,
		dice.WordClockRate{Numerator: 0, Denominator: 1}, timeoutMs)
	assert.ErrorIs(t, err, dice.ErrInvalidArgument)
	assert.Empty(t, tr.writes)
}

func TestStandaloneInternalRate(t *testing.T) {
	tr, unit, _ := newFixture(t, deviceConfig{})

	require.NoError(t, unit.WriteStandaloneInternalRate(dice.ClockRate96000, timeoutMs))
	rate, err := unit.ReadStandaloneInternalRate(timeoutMs)
	require.NoError(t, err)
	assert.Equal(t, dice.ClockRate96000, rate)

	tr.reset()
	err = unit.WriteStandaloneInternalRate(dice.ClockRateAnyLow, timeoutMs)
	assert.ErrorIs(t, err, dice.ErrInvalidArgument)
	assert.Empty(t, tr.writes)
}

func TestMixerSaturationBitmap(t *testing.T) {
	tr, unit, _ := newFixture(t, deviceConfig{mixerIn: 2, mixerOut: 3})

	tr.putQuad(extBase+fixMixerOffset, 0x0000_0005)

	saturations, err := unit.ReadMixerSaturation(timeoutMs)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, saturations)
}
