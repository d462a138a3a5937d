package dice

import (
	"fmt"
	"math"
)

// Saffire Pro 24 DSP keeps its effect state in the application section. A
// parameter write becomes effective only once the matching software notice
// is written; coefficients are IEEE 754 binary32 values stored big-endian,
// laid out in 0x88-byte blocks per effect and channel. Several equalizer
// words have no known interpretation and pass through opaquely.

const (
	spro24DspSwNoticeOffset = 0x05ec

	spro24DspEnableOffset      = 0x0070
	spro24DspChStripFlagOffset = 0x0078

	spro24DspCoefOffset    = 0x0190
	spro24DspCoefBlockSize = 0x88

	// Only writes to these block indexes take effect; the earlier blocks
	// mirror them per rate tier.
	spro24DspCompBlock   = 2
	spro24DspEqBlock     = 2
	spro24DspReverbBlock = 3
)

// Channel strip flag bits, repeated in the high half for the second channel.
const (
	spro24DspFlagEqEnable    = 0x0001
	spro24DspFlagCompEnable  = 0x0002
	spro24DspFlagEqAfterComp = 0x0004
)

// Software notice codes per parameter group.
const (
	spro24DspNoticeChStripFlags = 0x05
	spro24DspNoticeCompCh0      = 0x06
	spro24DspNoticeCompCh1      = 0x07
	spro24DspNoticeEqOutputCh0  = 0x09
	spro24DspNoticeEqOutputCh1  = 0x0a
	spro24DspNoticeEqLowCh0     = 0x0c
	spro24DspNoticeEqLowCh1     = 0x0c
	spro24DspNoticeEqLowMidCh0  = 0x0f
	spro24DspNoticeEqLowMidCh1  = 0x10
	spro24DspNoticeEqHighMidCh0 = 0x12
	spro24DspNoticeEqHighMidCh1 = 0x13
	spro24DspNoticeEqHighCh0    = 0x15
	spro24DspNoticeEqHighCh1    = 0x16
	spro24DspNoticeDspEnable    = 0x1c
	spro24DspNoticeReverb       = 0x1a
)

// Coefficient offsets inside one compressor block.
const (
	spro24DspCompOutputOffset    = 0x04
	spro24DspCompThresholdOffset = 0x08
	spro24DspCompRatioOffset     = 0x0c
	spro24DspCompAttackOffset    = 0x10
	spro24DspCompReleaseOffset   = 0x14
)

const (
	spro24DspEqOutputOffset  = 0x18
	spro24DspEqLowFreqOffset = 0x20
	spro24DspEqBandCoefCount = 5
)

// Coefficient offsets inside the reverb block.
const (
	spro24DspReverbSizeOffset          = 0x70
	spro24DspReverbAirOffset           = 0x74
	spro24DspReverbEnableOffset        = 0x78
	spro24DspReverbDisableOffset       = 0x7c
	spro24DspReverbPreFilterValOffset  = 0x80
	spro24DspReverbPreFilterSignOffset = 0x84
)

// Parameter ranges in coefficient representation.
const (
	Spro24DspCompressorOutputMin    float32 = 0.0
	Spro24DspCompressorOutputMax    float32 = 64.0
	Spro24DspCompressorThresholdMin float32 = -1.25
	Spro24DspCompressorThresholdMax float32 = 0.0
	Spro24DspCompressorRatioMin     float32 = 0.03125
	Spro24DspCompressorRatioMax     float32 = 0.5
	Spro24DspCompressorAttackMin    float32 = -1.0
	Spro24DspCompressorAttackMax    float32 = -0.9375
	Spro24DspCompressorReleaseMin   float32 = 0.9375
	Spro24DspCompressorReleaseMax   float32 = 1.0

	Spro24DspEqualizerOutputMin float32 = 0.0
	Spro24DspEqualizerOutputMax float32 = 1.0

	Spro24DspReverbSizeMin      float32 = 0.0
	Spro24DspReverbSizeMax      float32 = 1.0
	Spro24DspReverbAirMin       float32 = 0.0
	Spro24DspReverbAirMax       float32 = 1.0
	Spro24DspReverbPreFilterMin float32 = -1.0
	Spro24DspReverbPreFilterMax float32 = 1.0
)

func putF32(raw []byte, pos int, val float32) {
	putQuad(raw, pos, math.Float32bits(val))
}

func getF32(raw []byte, pos int) float32 {
	return math.Float32frombits(getQuad(raw, pos))
}

// Spro24DspCompressor is the per-channel compressor state.
type Spro24DspCompressor struct {
	Output    [2]float32
	Threshold [2]float32
	Ratio     [2]float32
	Attack    [2]float32
	Release   [2]float32
}

func (s *Spro24DspCompressor) build(raw []byte) {
	for ch := 0; ch < 2; ch++ {
		base := spro24DspCoefBlockSize * ch
		putF32(raw, base+spro24DspCompOutputOffset, s.Output[ch])
		putF32(raw, base+spro24DspCompThresholdOffset, s.Threshold[ch])
		putF32(raw, base+spro24DspCompRatioOffset, s.Ratio[ch])
		putF32(raw, base+spro24DspCompAttackOffset, s.Attack[ch])
		putF32(raw, base+spro24DspCompReleaseOffset, s.Release[ch])
	}
}

func (s *Spro24DspCompressor) parse(raw []byte) {
	for ch := 0; ch < 2; ch++ {
		base := spro24DspCoefBlockSize * ch
		s.Output[ch] = getF32(raw, base+spro24DspCompOutputOffset)
		s.Threshold[ch] = getF32(raw, base+spro24DspCompThresholdOffset)
		s.Ratio[ch] = getF32(raw, base+spro24DspCompRatioOffset)
		s.Attack[ch] = getF32(raw, base+spro24DspCompAttackOffset)
		s.Release[ch] = getF32(raw, base+spro24DspCompReleaseOffset)
	}
}

// Spro24DspEqualizerBand holds the five coefficients of one filter band.
// Their interpretation is unknown; they are carried verbatim.
type Spro24DspEqualizerBand [spro24DspEqBandCoefCount]float32

// Spro24DspEqualizer is the per-channel equalizer state.
type Spro24DspEqualizer struct {
	Output     [2]float32
	Low        [2]Spro24DspEqualizerBand
	LowMiddle  [2]Spro24DspEqualizerBand
	HighMiddle [2]Spro24DspEqualizerBand
	High       [2]Spro24DspEqualizerBand
}

func (s *Spro24DspEqualizer) bands(ch int) []*Spro24DspEqualizerBand {
	return []*Spro24DspEqualizerBand{
		&s.Low[ch], &s.LowMiddle[ch], &s.HighMiddle[ch], &s.High[ch],
	}
}

func (s *Spro24DspEqualizer) build(raw []byte) {
	for ch := 0; ch < 2; ch++ {
		base := spro24DspCoefBlockSize * ch
		putF32(raw, base+spro24DspEqOutputOffset, s.Output[ch])

		pos := base + spro24DspEqLowFreqOffset
		for _, band := range s.bands(ch) {
			for _, coef := range band {
				putF32(raw, pos, coef)
				pos += 4
			}
		}
	}
}

func (s *Spro24DspEqualizer) parse(raw []byte) {
	for ch := 0; ch < 2; ch++ {
		base := spro24DspCoefBlockSize * ch
		s.Output[ch] = getF32(raw, base+spro24DspEqOutputOffset)

		pos := base + spro24DspEqLowFreqOffset
		for _, band := range s.bands(ch) {
			for i := range band {
				band[i] = getF32(raw, pos)
				pos += 4
			}
		}
	}
}

// Spro24DspReverb is the reverb state shared by both channels.
type Spro24DspReverb struct {
	Size float32
	Air  float32

	Enabled bool

	// PreFilter balances the pre high-pass/low-pass filters, negative
	// toward high-pass. The magnitude and sign occupy separate words.
	PreFilter float32
}

func (s *Spro24DspReverb) build(raw []byte) {
	putF32(raw, spro24DspReverbSizeOffset, s.Size)
	putF32(raw, spro24DspReverbAirOffset, s.Air)

	enabled, disabled := float32(0.0), float32(1.0)
	if s.Enabled {
		enabled, disabled = 1.0, 0.0
	}
	putF32(raw, spro24DspReverbEnableOffset, enabled)
	putF32(raw, spro24DspReverbDisableOffset, disabled)

	putF32(raw, spro24DspReverbPreFilterValOffset, float32(math.Abs(float64(s.PreFilter))))
	sign := float32(0.0)
	if s.PreFilter > 0.0 {
		sign = 1.0
	}
	putF32(raw, spro24DspReverbPreFilterSignOffset, sign)
}

func (s *Spro24DspReverb) parse(raw []byte) {
	s.Size = getF32(raw, spro24DspReverbSizeOffset)
	s.Air = getF32(raw, spro24DspReverbAirOffset)
	s.Enabled = getF32(raw, spro24DspReverbEnableOffset) > 0.0

	val := getF32(raw, spro24DspReverbPreFilterValOffset)
	if getF32(raw, spro24DspReverbPreFilterSignOffset) == 0.0 {
		val = -val
	}
	s.PreFilter = val
}

// Spro24DspEffectGeneral is the channel strip routing state.
type Spro24DspEffectGeneral struct {
	EqAfterComp [2]bool
	CompEnable  [2]bool
	EqEnable    [2]bool
}

func (s *Spro24DspEffectGeneral) build(raw []byte) {
	var val uint32
	for ch := 0; ch < 2; ch++ {
		var flags uint32
		if s.EqEnable[ch] {
			flags |= spro24DspFlagEqEnable
		}
		if s.CompEnable[ch] {
			flags |= spro24DspFlagCompEnable
		}
		if s.EqAfterComp[ch] {
			flags |= spro24DspFlagEqAfterComp
		}
		val |= flags << uint(16*ch)
	}

	putQuad(raw, 0, val)
}

func (s *Spro24DspEffectGeneral) parse(raw []byte) {
	val := getQuad(raw, 0)
	for ch := 0; ch < 2; ch++ {
		flags := val >> uint(16*ch)
		s.EqEnable[ch] = flags&spro24DspFlagEqEnable != 0
		s.CompEnable[ch] = flags&spro24DspFlagCompEnable != 0
		s.EqAfterComp[ch] = flags&spro24DspFlagEqAfterComp != 0
	}
}

// Spro24Dsp couples a unit with the mirror of its effect state. Mirrors are
// authoritative only after the corresponding cache call; updates diff
// against the mirror and transmit changed quadlets only, followed by the
// software notices that arm them.
type Spro24Dsp struct {
	unit *Unit

	General Spro24DspEffectGeneral
	Comp    Spro24DspCompressor
	Eq      Spro24DspEqualizer
	Reverb  Spro24DspReverb
}

// NewSpro24Dsp binds a unit to the effect mirror.
func NewSpro24Dsp(unit *Unit) *Spro24Dsp {
	return &Spro24Dsp{unit: unit}
}

func (d *Spro24Dsp) writeSwNotice(notice uint32, timeoutMs int) error {
	var raw [4]byte
	putQuad(raw[:], 0, notice)

	err := d.unit.writeExtension(d.unit.Ext.Application, spro24DspSwNoticeOffset, raw[:], timeoutMs)
	if err != nil {
		return fmt.Errorf("%w: software notice 0x%02x: %w", ErrApplication, notice, err)
	}

	return nil
}

// SetDspEnabled switches the whole effect processor.
func (d *Spro24Dsp) SetDspEnabled(enabled bool, timeoutMs int) error {
	if d == nil {
		return fmt.Errorf("device is nil")
	}

	var raw [4]byte
	if enabled {
		putQuad(raw[:], 0, 1)
	}

	err := d.unit.writeExtension(d.unit.Ext.Application, spro24DspEnableOffset, raw[:], timeoutMs)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrApplication, err)
	}

	return d.writeSwNotice(spro24DspNoticeDspEnable, timeoutMs)
}

// CacheGeneral reads the channel strip routing flags into the mirror.
func (d *Spro24Dsp) CacheGeneral(timeoutMs int) error {
	if d == nil {
		return fmt.Errorf("device is nil")
	}

	var raw [4]byte
	err := d.unit.readExtension(d.unit.Ext.Application, spro24DspChStripFlagOffset, raw[:], timeoutMs)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrApplication, err)
	}

	d.General.parse(raw[:])

	return nil
}

// UpdateGeneral applies new channel strip routing flags, skipping the
// transaction when nothing changed.
func (d *Spro24Dsp) UpdateGeneral(params Spro24DspEffectGeneral, timeoutMs int) error {
	if d == nil {
		return fmt.Errorf("device is nil")
	}

	var cur, old [4]byte
	params.build(cur[:])
	d.General.build(old[:])

	if cur == old {
		return nil
	}

	err := d.unit.writeExtension(d.unit.Ext.Application, spro24DspChStripFlagOffset, cur[:], timeoutMs)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrApplication, err)
	}

	if err := d.writeSwNotice(spro24DspNoticeChStripFlags, timeoutMs); err != nil {
		return err
	}

	d.General = params

	return nil
}

// f32Patches diffs two serialized coefficient images and returns the offsets
// of changed quadlets. float32 payloads are compared by bit pattern, so NaN
// representations round-trip without spurious writes.
func f32Patches(old, cur []byte) []int {
	return quadPatches(old, cur)
}

// cacheCoefBlocks reads a span of coefficient blocks from the application
// section.
func (d *Spro24Dsp) cacheCoefBlocks(block, count int, timeoutMs int) ([]byte, error) {
	raw := make([]byte, spro24DspCoefBlockSize*count)
	offset := uint32(spro24DspCoefOffset + spro24DspCoefBlockSize*block)

	err := d.unit.readExtension(d.unit.Ext.Application, offset, raw, timeoutMs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrApplication, err)
	}

	return raw, nil
}

// updateCoefBlocks writes the quadlets differing between two coefficient
// images of a block span.
func (d *Spro24Dsp) updateCoefBlocks(block int, old, cur []byte, timeoutMs int) error {
	base := uint32(spro24DspCoefOffset + spro24DspCoefBlockSize*block)
	for _, pos := range f32Patches(old, cur) {
		err := d.unit.writeExtension(d.unit.Ext.Application, base+uint32(pos), cur[pos:pos+4], timeoutMs)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrApplication, err)
		}
	}

	return nil
}

// CacheCompressor reads the compressor coefficients into the mirror.
func (d *Spro24Dsp) CacheCompressor(timeoutMs int) error {
	if d == nil {
		return fmt.Errorf("device is nil")
	}

	raw, err := d.cacheCoefBlocks(spro24DspCompBlock, 2, timeoutMs)
	if err != nil {
		return err
	}

	d.Comp.parse(raw)

	return nil
}

// UpdateCompressor applies new compressor coefficients with quadlet-granular
// writes and arms them with the per-channel notices.
func (d *Spro24Dsp) UpdateCompressor(params Spro24DspCompressor, timeoutMs int) error {
	if d == nil {
		return fmt.Errorf("device is nil")
	}

	cur := make([]byte, spro24DspCoefBlockSize*2)
	old := make([]byte, spro24DspCoefBlockSize*2)
	params.build(cur)
	d.Comp.build(old)

	if err := d.updateCoefBlocks(spro24DspCompBlock, old, cur, timeoutMs); err != nil {
		return err
	}

	for _, notice := range []uint32{spro24DspNoticeCompCh0, spro24DspNoticeCompCh1} {
		if err := d.writeSwNotice(notice, timeoutMs); err != nil {
			return err
		}
	}

	d.Comp = params

	return nil
}

// CacheEqualizer reads the equalizer coefficients into the mirror.
func (d *Spro24Dsp) CacheEqualizer(timeoutMs int) error {
	if d == nil {
		return fmt.Errorf("device is nil")
	}

	raw, err := d.cacheCoefBlocks(spro24DspEqBlock, 2, timeoutMs)
	if err != nil {
		return err
	}

	d.Eq.parse(raw)

	return nil
}

// UpdateEqualizer applies new equalizer coefficients, opaque band words
// included, and arms every band notice.
func (d *Spro24Dsp) UpdateEqualizer(params Spro24DspEqualizer, timeoutMs int) error {
	if d == nil {
		return fmt.Errorf("device is nil")
	}

	cur := make([]byte, spro24DspCoefBlockSize*2)
	old := make([]byte, spro24DspCoefBlockSize*2)
	params.build(cur)
	d.Eq.build(old)

	if err := d.updateCoefBlocks(spro24DspEqBlock, old, cur, timeoutMs); err != nil {
		return err
	}

	notices := []uint32{
		spro24DspNoticeEqOutputCh0, spro24DspNoticeEqOutputCh1,
		spro24DspNoticeEqLowCh0, spro24DspNoticeEqLowCh1,
		spro24DspNoticeEqLowMidCh0, spro24DspNoticeEqLowMidCh1,
		spro24DspNoticeEqHighMidCh0, spro24DspNoticeEqHighMidCh1,
		spro24DspNoticeEqHighCh0, spro24DspNoticeEqHighCh1,
	}
	for _, notice := range notices {
		if err := d.writeSwNotice(notice, timeoutMs); err != nil {
			return err
		}
	}

	d.Eq = params

	return nil
}

// CacheReverb reads the reverb coefficients into the mirror.
func (d *Spro24Dsp) CacheReverb(timeoutMs int) error {
	if d == nil {
		return fmt.Errorf("device is nil")
	}

	raw, err := d.cacheCoefBlocks(spro24DspReverbBlock, 1, timeoutMs)
	if err != nil {
		return err
	}

	d.Reverb.parse(raw)

	return nil
}

// UpdateReverb applies new reverb coefficients and arms them.
func (d *Spro24Dsp) UpdateReverb(params Spro24DspReverb, timeoutMs int) error {
	if d == nil {
		return fmt.Errorf("device is nil")
	}

	cur := make([]byte, spro24DspCoefBlockSize)
	old := make([]byte, spro24DspCoefBlockSize)
	params.build(cur)
	d.Reverb.build(old)

	if err := d.updateCoefBlocks(spro24DspReverbBlock, old, cur, timeoutMs); err != nil {
		return err
	}

	if err := d.writeSwNotice(spro24DspNoticeReverb, timeoutMs); err != nil {
		return err
	}

	d.Reverb = params

	return nil
}
