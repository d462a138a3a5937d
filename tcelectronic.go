package dice

import (
	"fmt"
)

// TC Electronic Konnekt units expose their vendor state as fixed-size memory
// segments above a common base offset. A segment pairs structured parameters
// with the raw image of its hardware layout; updates serialize the
// parameters and transmit only the quadlets that differ from the image.

const konnektBaseOffset = 0x00a01000

// KonnektSegmentData is implemented by the structured form of one segment.
type KonnektSegmentData interface {
	SegmentName() string
	SegmentOffset() uint32
	SegmentSize() int
	Serialize(raw []byte) error
	Deserialize(raw []byte) error
}

// KonnektSegment couples segment parameters with the raw image last agreed
// with the hardware.
type KonnektSegment struct {
	Data KonnektSegmentData
	raw  []byte
}

// NewKonnektSegment wraps segment parameters with a zeroed image.
func NewKonnektSegment(data KonnektSegmentData) *KonnektSegment {
	return &KonnektSegment{Data: data, raw: make([]byte, data.SegmentSize())}
}

// CacheKonnektSegment reads the whole segment and deserializes it into the
// structured parameters.
func (u *Unit) CacheKonnektSegment(seg *KonnektSegment, timeoutMs int) error {
	if u == nil {
		return fmt.Errorf("unit is nil")
	}

	raw := make([]byte, seg.Data.SegmentSize())
	if err := u.read(konnektBaseOffset+seg.Data.SegmentOffset(), raw, timeoutMs); err != nil {
		return fmt.Errorf("segment %s: %w", seg.Data.SegmentName(), err)
	}

	if err := seg.Data.Deserialize(raw); err != nil {
		return fmt.Errorf("segment %s: %w", seg.Data.SegmentName(), err)
	}
	copy(seg.raw, raw)

	return nil
}

// UpdateKonnektSegment serializes the current parameters and writes the
// quadlets that changed against the cached image. Serialization failures
// reject the update before any transaction; the image absorbs each quadlet
// as its write succeeds.
func (u *Unit) UpdateKonnektSegment(seg *KonnektSegment, timeoutMs int) error {
	if u == nil {
		return fmt.Errorf("unit is nil")
	}

	raw := make([]byte, seg.Data.SegmentSize())
	if err := seg.Data.Serialize(raw); err != nil {
		return fmt.Errorf("segment %s: %w", seg.Data.SegmentName(), err)
	}

	base := konnektBaseOffset + seg.Data.SegmentOffset()
	for _, pos := range quadPatches(seg.raw, raw) {
		if err := u.write(base+uint32(pos), raw[pos:pos+4], timeoutMs); err != nil {
			return fmt.Errorf("segment %s: %w", seg.Data.SegmentName(), err)
		}

		copy(seg.raw[pos:pos+4], raw[pos:pos+4])
	}

	return nil
}

// StudioSrcKind classifies the mixer and output sources of Studio Konnekt
// 48.
type StudioSrcKind uint8

const (
	StudioSrcUnused StudioSrcKind = iota
	StudioSrcAnalog
	StudioSrcSpdif
	StudioSrcAdat
	StudioSrcStreamA
	StudioSrcStreamB
	StudioSrcMixer
)

// Wire offsets of the source entry ranges.
const (
	studioSrcAnalogOffset  = 0x01
	studioSrcSpdifOffset   = 0x0d
	studioSrcAdatOffset    = 0x0f
	studioSrcAdatEnd       = 0x17
	studioSrcStreamAOffset = 0x37
	studioSrcStreamBOffset = 0x47
	studioSrcMixerOffset   = 0x55
	studioSrcMixerEnd      = 0x5d
)

// StudioSrc is one selectable source, addressed by kind and channel.
type StudioSrc struct {
	Kind StudioSrcKind
	Ch   uint8
}

func studioSrcFromQuad(val uint32) StudioSrc {
	switch {
	case val >= studioSrcAnalogOffset && val < studioSrcSpdifOffset:
		return StudioSrc{StudioSrcAnalog, uint8(val - studioSrcAnalogOffset)}
	case val >= studioSrcSpdifOffset && val < studioSrcAdatOffset:
		return StudioSrc{StudioSrcSpdif, uint8(val - studioSrcSpdifOffset)}
	case val >= studioSrcAdatOffset && val < studioSrcAdatEnd:
		return StudioSrc{StudioSrcAdat, uint8(val - studioSrcAdatOffset)}
	case val >= studioSrcStreamAOffset && val < studioSrcStreamBOffset:
		return StudioSrc{StudioSrcStreamA, uint8(val - studioSrcStreamAOffset)}
	case val >= studioSrcStreamBOffset && val < studioSrcMixerOffset:
		return StudioSrc{StudioSrcStreamB, uint8(val - studioSrcStreamBOffset)}
	case val >= studioSrcMixerOffset && val < studioSrcMixerEnd:
		return StudioSrc{StudioSrcMixer, uint8(val - studioSrcMixerOffset)}
	}

	return StudioSrc{}
}

func (s StudioSrc) toQuad() uint32 {
	switch s.Kind {
	case StudioSrcAnalog:
		return studioSrcAnalogOffset + uint32(s.Ch)
	case StudioSrcSpdif:
		return studioSrcSpdifOffset + uint32(s.Ch)
	case StudioSrcAdat:
		return studioSrcAdatOffset + uint32(s.Ch)
	case StudioSrcStreamA:
		return studioSrcStreamAOffset + uint32(s.Ch)
	case StudioSrcStreamB:
		return studioSrcStreamBOffset + uint32(s.Ch)
	case StudioSrcMixer:
		return studioSrcMixerOffset + uint32(s.Ch)
	}

	return 0
}

func boolQuad(val bool) uint32 {
	if val {
		return 1
	}

	return 0
}

// OutPair is the volume state of one output pair.
type OutPair struct {
	DimEnabled bool
	Vol        int32
	DimVol     int32
}

const outPairSize = 12

func (p OutPair) build(raw []byte) {
	putQuad(raw, 0, boolQuad(p.DimEnabled))
	putQuad(raw, 4, uint32(p.Vol))
	putQuad(raw, 8, uint32(p.DimVol))
}

func (p *OutPair) parse(raw []byte) {
	p.DimEnabled = getQuad(raw, 0) > 0
	p.Vol = int32(getQuad(raw, 4))
	p.DimVol = int32(getQuad(raw, 8))
}

// PhysOutSrcParam is one channel of a physical output source.
type PhysOutSrcParam struct {
	Src   StudioSrc
	Vol   int32
	Delay int32
}

const physOutSrcParamSize = 12

func (p PhysOutSrcParam) build(raw []byte) {
	putQuad(raw, 0, p.Src.toQuad())
	putQuad(raw, 4, uint32(p.Vol))
	putQuad(raw, 8, uint32(p.Delay))
}

func (p *PhysOutSrcParam) parse(raw []byte) {
	p.Src = studioSrcFromQuad(getQuad(raw, 0))
	p.Vol = int32(getQuad(raw, 4))
	p.Delay = int32(getQuad(raw, 8))
}

// PhysOutPairSrc is the source selection of one physical output pair.
type PhysOutPairSrc struct {
	StereoLink bool
	Left       PhysOutSrcParam
	Right      PhysOutSrcParam
}

const physOutPairSrcSize = 28

func (p PhysOutPairSrc) build(raw []byte) {
	putQuad(raw, 0, boolQuad(p.StereoLink))
	p.Left.build(raw[4:16])
	p.Right.build(raw[16:28])
}

func (p *PhysOutPairSrc) parse(raw []byte) {
	p.StereoLink = getQuad(raw, 0) > 0
	p.Left.parse(raw[4:16])
	p.Right.parse(raw[16:28])
}

// CrossOverFreq is the highest frequency crossed over into the LFE channel.
type CrossOverFreq uint32

const (
	CrossOverFreq50  CrossOverFreq = 0
	CrossOverFreq80  CrossOverFreq = 1
	CrossOverFreq95  CrossOverFreq = 2
	CrossOverFreq110 CrossOverFreq = 3
	CrossOverFreq115 CrossOverFreq = 4
	CrossOverFreq120 CrossOverFreq = 5
)

// HighPassFreq is the frequency above the crossover kept in the main
// channel.
type HighPassFreq uint32

const (
	HighPassFreqOff     HighPassFreq = 0
	HighPassFreqAbove12 HighPassFreq = 1
	HighPassFreqAbove24 HighPassFreq = 2
)

// LowPassFreq is the frequency below the crossover fed to the LFE channel.
type LowPassFreq uint32

const (
	LowPassFreqBelow12 LowPassFreq = 1
	LowPassFreqBelow24 LowPassFreq = 2
)

// StudioMaxSurroundChannels is the largest number of physical outputs one
// output group may aggregate. The firmware accepts more flag bits but the
// ASIC freezes reading them back, recoverable only through a standalone
// program recall and factory reset, so exceeding the cap is rejected before
// serialization.
const StudioMaxSurroundChannels = 8

// Physical output group geometry of Studio Konnekt 48.
const (
	StudioPhysOutPairCount = 11
	StudioOutputGroupCount = 3
)

// OutGroup aggregates several physical outputs into one surround group.
type OutGroup struct {
	AssignedPhysOuts [StudioPhysOutPairCount * 2]bool
	BassManagement   bool

	// SubChannel is the output position carrying the LFE channel, or -1
	// when no output does.
	SubChannel int

	MainCrossOverFreq CrossOverFreq
	MainLevelToSub    int32
	SubLevelToSub     int32
	MainFilterForMain HighPassFreq
	MainFilterForSub  LowPassFreq
}

const outGroupSize = 36

func (g *OutGroup) build(raw []byte) error {
	var count int
	var val uint32
	for i, assigned := range g.AssignedPhysOuts {
		if assigned {
			val |= 1 << uint(i)
			count++
		}
	}
	if count > StudioMaxSurroundChannels {
		return fmt.Errorf("%w: %d outputs assigned to a group of at most %d",
			ErrInvalidArgument, count, StudioMaxSurroundChannels)
	}
	putQuad(raw, 0, val)

	putQuad(raw, 4, boolQuad(g.BassManagement))

	val = 0
	if g.SubChannel >= 0 {
		val = 1 << uint(g.SubChannel)
	}
	putQuad(raw, 12, val)

	putQuad(raw, 16, uint32(g.MainCrossOverFreq))
	putQuad(raw, 20, uint32(g.MainLevelToSub))
	putQuad(raw, 24, uint32(g.SubLevelToSub))
	putQuad(raw, 28, uint32(g.MainFilterForMain))
	putQuad(raw, 32, uint32(g.MainFilterForSub))

	return nil
}

func (g *OutGroup) parse(raw []byte) {
	val := getQuad(raw, 0)
	for i := range g.AssignedPhysOuts {
		g.AssignedPhysOuts[i] = val&(1<<uint(i)) != 0
	}

	g.BassManagement = getQuad(raw, 4) > 0

	g.SubChannel = -1
	val = getQuad(raw, 12)
	for i := range g.AssignedPhysOuts {
		if val&(1<<uint(i)) != 0 {
			g.SubChannel = i

			break
		}
	}

	g.MainCrossOverFreq = CrossOverFreq(getQuad(raw, 16))
	g.MainLevelToSub = int32(getQuad(raw, 20))
	g.SubLevelToSub = int32(getQuad(raw, 24))
	g.MainFilterForMain = HighPassFreq(getQuad(raw, 28))
	g.MainFilterForSub = LowPassFreq(getQuad(raw, 32))
}

// StudioPhysOut is the physical output segment of Studio Konnekt 48: the
// master pair, the per-pair source selections and the surround groups.
type StudioPhysOut struct {
	MasterOut      OutPair
	SelectedOutGrp int
	OutPairSrcs    [StudioPhysOutPairCount]PhysOutPairSrc
	OutAssignToGrp [StudioPhysOutPairCount * 2]bool
	OutMutes       [StudioPhysOutPairCount * 2]bool
	OutGrps        [StudioOutputGroupCount]OutGroup
}

const studioPhysOutSize = 440

// SegmentName implements KonnektSegmentData.
func (p *StudioPhysOut) SegmentName() string { return "physical-output" }

// SegmentOffset implements KonnektSegmentData.
func (p *StudioPhysOut) SegmentOffset() uint32 { return 0x03dc }

// SegmentSize implements KonnektSegmentData.
func (p *StudioPhysOut) SegmentSize() int { return studioPhysOutSize }

// Serialize implements KonnektSegmentData.
func (p *StudioPhysOut) Serialize(raw []byte) error {
	p.MasterOut.build(raw[0:outPairSize])
	putQuad(raw, 12, uint32(p.SelectedOutGrp))

	for i := range p.OutPairSrcs {
		pos := 16 + i*physOutPairSrcSize
		p.OutPairSrcs[i].build(raw[pos : pos+physOutPairSrcSize])
	}

	var val uint32
	for i, assigned := range p.OutAssignToGrp {
		if assigned {
			val |= 1 << uint(i)
		}
	}
	putQuad(raw, 324, val)

	val = 0
	for i, muted := range p.OutMutes {
		if muted {
			val |= 1 << uint(i)
		}
	}
	putQuad(raw, 328, val)

	for i := range p.OutGrps {
		pos := 332 + i*outGroupSize
		if err := p.OutGrps[i].build(raw[pos : pos+outGroupSize]); err != nil {
			return fmt.Errorf("output group %d: %w", i, err)
		}
	}

	return nil
}

// Deserialize implements KonnektSegmentData.
func (p *StudioPhysOut) Deserialize(raw []byte) error {
	p.MasterOut.parse(raw[0:outPairSize])
	p.SelectedOutGrp = int(getQuad(raw, 12))

	for i := range p.OutPairSrcs {
		pos := 16 + i*physOutPairSrcSize
		p.OutPairSrcs[i].parse(raw[pos : pos+physOutPairSrcSize])
	}

	val := getQuad(raw, 324)
	for i := range p.OutAssignToGrp {
		p.OutAssignToGrp[i] = val&(1<<uint(i)) != 0
	}

	val = getQuad(raw, 328)
	for i := range p.OutMutes {
		p.OutMutes[i] = val&(1<<uint(i)) != 0
	}

	for i := range p.OutGrps {
		pos := 332 + i*outGroupSize
		p.OutGrps[i].parse(raw[pos : pos+outGroupSize])
	}

	return nil
}
