package dice_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/firewire-audio/dice"
)

const timeoutMs = 100

// Register layout shared by the fixtures. Offsets mirror the factory layout
// of TCD22xx evaluation firmware; sizes are stored in the tables in quadlet
// units.
const (
	extBase = dice.BaseAddr + 0x00200000

	fixGlobalOffset = 0x28
	fixGlobalSize   = 0x168

	fixCapsOffset       = 0x48
	fixCmdOffset        = 0x60
	fixMixerOffset      = 0x70
	fixPeakOffset       = 0x500
	fixRouterOffset     = 0x900
	fixFmtOffset        = 0xd10
	fixCurrentOffset    = 0x3000
	fixStandaloneOffset = 0x9100
	fixAppOffset        = 0x9200

	fixCapsSize       = 0x0c
	fixCmdSize        = 0x10
	fixMixerSize      = 0x488
	fixPeakSize       = 0x40
	fixFmtSize        = 0x220
	fixCurrentSize    = 0x6000
	fixStandaloneSize = 0x14
	fixAppSize        = 0x10
)

// fakeTransport backs a Unit with sparse in-memory registers. Reads of
// untouched addresses yield zero bytes, matching cleared silicon registers.
// Writes to the command opcode register clear the execute flag immediately,
// standing in for the firmware completing the command.
type fakeTransport struct {
	mem     map[uint64]byte
	writes  []writeOp
	reads   int
	cmdAddr uint64
}

type writeOp struct {
	addr uint64
	data []byte
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{mem: make(map[uint64]byte)}
}

func (t *fakeTransport) Read(addr uint64, buf []byte, timeoutMs int) error {
	t.reads++
	for i := range buf {
		buf[i] = t.mem[addr+uint64(i)]
	}

	return nil
}

func (t *fakeTransport) Write(addr uint64, buf []byte, timeoutMs int) error {
	t.writes = append(t.writes, writeOp{addr: addr, data: append([]byte(nil), buf...)})
	for i, b := range buf {
		t.mem[addr+uint64(i)] = b
	}

	if t.cmdAddr != 0 && addr == t.cmdAddr {
		t.mem[addr] &= 0x7f
	}

	return nil
}

func (t *fakeTransport) putBytes(addr uint64, data []byte) {
	for i, b := range data {
		t.mem[addr+uint64(i)] = b
	}
}

func (t *fakeTransport) putQuad(addr uint64, val uint32) {
	var raw [4]byte
	binary.BigEndian.PutUint32(raw[:], val)
	t.putBytes(addr, raw[:])
}

func (t *fakeTransport) quad(addr uint64) uint32 {
	var raw [4]byte
	for i := range raw {
		raw[i] = t.mem[addr+uint64(i)]
	}

	return binary.BigEndian.Uint32(raw[:])
}

// reset drops the transaction log so tests assert against their own traffic
// only.
func (t *fakeTransport) reset() {
	t.writes = nil
	t.reads = 0
}

// labelImage serializes a backslash-separated label sequence the way the
// text registers store it: NUL-padded, terminated by a double backslash, with
// the bytes of each quadlet reversed.
func labelImage(labels []string, size int) []byte {
	raw := make([]byte, size)

	pos := 0
	for _, label := range labels {
		copy(raw[pos:], label)
		raw[pos+len(label)] = '\\'
		pos += len(label) + 1
	}
	raw[pos] = '\\'

	swapQuadlets(raw)

	return raw
}

// singleLabelImage serializes one NUL-terminated label, as the nickname
// register stores it.
func singleLabelImage(label string, size int) []byte {
	raw := make([]byte, size)
	copy(raw, label)
	swapQuadlets(raw)

	return raw
}

func swapQuadlets(raw []byte) {
	for pos := 0; pos+4 <= len(raw); pos += 4 {
		raw[pos], raw[pos+3] = raw[pos+3], raw[pos]
		raw[pos+1], raw[pos+2] = raw[pos+2], raw[pos+1]
	}
}

// formatEntryImage serializes one stream format entry.
func formatEntryImage(pcm, midi uint8, labels []string) []byte {
	raw := make([]byte, 268)
	binary.BigEndian.PutUint32(raw[0:], uint32(pcm))
	binary.BigEndian.PutUint32(raw[4:], uint32(midi))
	copy(raw[8:264], labelImage(labels, 256))

	return raw
}

// routerEntryImage serializes one router entry.
func routerEntryImage(peak uint16, src dice.SrcBlk, dst dice.DstBlk) []byte {
	srcWire := uint8(src.ID)<<4 | src.Ch&0x0f
	if src.IsNone() {
		srcWire = 0xff
	}
	dstWire := uint8(dst.ID)<<4 | dst.Ch&0x0f
	if dst.IsNone() {
		dstWire = 0xff
	}

	return []byte{uint8(peak >> 8), uint8(peak), srcWire, dstWire}
}

// fixLabels is the clock source name list every fixture reports.
var fixLabels = []string{
	"AES1", "AES2", "AES3", "AES4", "AES-ANY", "ADAT", "TDIF",
	"Word-Clock", "ARX1", "ARX2", "ARX3", "ARX4", "Internal",
}

// testSpec is a minimal catalog with two analog channels each way, enough to
// exercise the router and mixer engines without the bulk of a real catalog.
var testSpec = &dice.ModelSpec{
	Name:    "Test-2x2",
	Inputs:  []dice.Input{{ID: dice.SrcBlkIns0, Offset: 0, Count: 2, Label: "Analog"}},
	Outputs: []dice.Output{{ID: dice.DstBlkIns0, Offset: 0, Count: 2, Label: "Analog"}},
}

// deviceConfig parametrizes a fixture. Zero values select two-channel stream
// I/O, low rates, an internal-only clock and a writable 64-entry router.
type deviceConfig struct {
	spec      *dice.ModelSpec
	rateBits  uint16
	srcBits   uint16
	routerMax uint16
	mixerIn   uint8
	mixerOut  uint8
	peakAvail bool
	clockQuad uint32
	txPcm     []uint8
	rxPcm     []uint8
}

// newFixture assembles the register image of a device honoring cfg, binds a
// unit and an engine to it and populates the low-tier mirror. The transaction
// log is cleared before returning so tests observe only their own traffic.
func newFixture(t *testing.T, cfg deviceConfig) (*fakeTransport, *dice.Unit, *dice.Tcd22xx) {
	t.Helper()

	if cfg.spec == nil {
		cfg.spec = testSpec
	}
	if cfg.rateBits == 0 {
		cfg.rateBits = 1<<uint(dice.ClockRate44100) | 1<<uint(dice.ClockRate48000)
	}
	if cfg.srcBits == 0 {
		cfg.srcBits = 1 << uint(dice.ClockSourceInternal)
	}
	if cfg.routerMax == 0 {
		cfg.routerMax = 64
	}
	if cfg.clockQuad == 0 {
		cfg.clockQuad = uint32(dice.ClockSourceInternal) | uint32(dice.ClockRate48000)<<8
	}

	tr := newFakeTransport()

	// General section table, global section only.
	tr.putQuad(dice.BaseAddr+0, fixGlobalOffset/4)
	tr.putQuad(dice.BaseAddr+4, fixGlobalSize/4)

	// Global section registers.
	globalBase := dice.BaseAddr + fixGlobalOffset
	rate := (cfg.clockQuad >> 8) & 0xff
	tr.putQuad(globalBase+0x4c, cfg.clockQuad)
	tr.putQuad(globalBase+0x54, 0x01|rate<<8)
	if freq, err := dice.ClockRate(rate).Frequency(); err == nil {
		tr.putQuad(globalBase+0x5c, freq)
	}
	tr.putQuad(globalBase+0x60, 0x01000400)
	tr.putQuad(globalBase+0x64, uint32(cfg.srcBits)<<16|uint32(cfg.rateBits))
	tr.putBytes(globalBase+0x68, labelImage(fixLabels, 256))

	// Extension section table.
	sections := []struct{ offset, size uint32 }{
		{fixCapsOffset, fixCapsSize},
		{fixCmdOffset, fixCmdSize},
		{fixMixerOffset, fixMixerSize},
		{fixPeakOffset, fixPeakSize},
		{fixRouterOffset, 4 + 4*uint32(cfg.routerMax)},
		{fixFmtOffset, fixFmtSize},
		{fixCurrentOffset, fixCurrentSize},
		{fixStandaloneOffset, fixStandaloneSize},
		{fixAppOffset, fixAppSize},
	}
	for i, section := range sections {
		tr.putQuad(extBase+uint64(i*8), section.offset/4)
		tr.putQuad(extBase+uint64(i*8+4), section.size/4)
	}

	// Capability section. Router and mixer are exposed, writable and
	// storable; the stream format is dynamic; two streams each way.
	generalFlags := uint8(0x20 | 0x01)
	if cfg.peakAvail {
		generalFlags |= 0x04
	}
	tr.putBytes(extBase+fixCapsOffset, []byte{
		uint8(cfg.routerMax >> 8), uint8(cfg.routerMax), 0x00, 0x05,
		cfg.mixerOut, cfg.mixerIn, 0x0c, 0xe5,
		0x00, 0x02, 0x12, generalFlags,
	})

	tr.cmdAddr = extBase + fixCmdOffset

	// Low-tier stream format block of the current configuration.
	streamBase := extBase + fixCurrentOffset + 0x1000
	tr.putQuad(streamBase, uint32(len(cfg.txPcm)))
	tr.putQuad(streamBase+4, uint32(len(cfg.rxPcm)))
	pos := streamBase + 8
	for _, pcm := range append(append([]uint8{}, cfg.txPcm...), cfg.rxPcm...) {
		tr.putBytes(pos, formatEntryImage(pcm, 0, nil))
		pos += 268
	}

	unit := dice.NewUnit(tr)
	require.NoError(t, unit.ReadSections(timeoutMs))
	require.NoError(t, unit.ReadExtensionSections(timeoutMs))
	require.NoError(t, unit.ReadCaps(timeoutMs))

	dev := dice.NewTcd22xx(unit, cfg.spec)
	require.NoError(t, dev.Cache(dice.RateModeLow, timeoutMs))

	tr.reset()

	return tr, unit, dev
}
