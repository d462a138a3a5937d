package dice

import (
	"fmt"
	"slices"
)

// Input is one catalog entry for a real input block of a model.
type Input struct {
	ID     SrcBlkID
	Offset uint8
	Count  uint8
	Label  string
}

// Output is one catalog entry for a real output block of a model.
type Output struct {
	ID     DstBlkID
	Offset uint8
	Count  uint8
	Label  string
}

// ModelSpec is the frozen per-model profile. It parametrizes the router,
// mixer and clock engines; selected once at device detection and never
// mutated.
type ModelSpec struct {
	Name    string
	Inputs  []Input
	Outputs []Output

	// Fixed lists sources permanently wired to the head of the router
	// table for metering.
	Fixed []SrcBlk

	// MixerOutPorts and AdatChannels may be overridden per model; zero
	// values select the silicon defaults.
	MixerOutPorts [3]uint8
	AdatChannels  [3]uint8
}

var (
	defaultMixerOutPorts = [3]uint8{16, 16, 8}
	defaultAdatChannels  = [3]uint8{8, 4, 2}
)

// mixerInPorts fixes the destination blocks feeding the mixer and their
// channel counts.
var mixerInPorts = []struct {
	id    DstBlkID
	count uint8
}{
	{DstBlkMixerTx0, 16},
	{DstBlkMixerTx1, 2},
}

// AdatChannelCount returns how many optical channels one ADAT block carries
// at the rate mode.
func (s *ModelSpec) AdatChannelCount(mode RateMode) uint8 {
	channels := s.AdatChannels
	if channels == ([3]uint8{}) {
		channels = defaultAdatChannels
	}

	return channels[mode]
}

// MixerOutPortCount returns how many mixer outputs exist at the rate mode.
func (s *ModelSpec) MixerOutPortCount(mode RateMode) uint8 {
	ports := s.MixerOutPorts
	if ports == ([3]uint8{}) {
		ports = defaultMixerOutPorts
	}

	return ports[mode]
}

// MixerInPortCount returns how many mixer inputs exist.
func (s *ModelSpec) MixerInPortCount() uint8 {
	var count uint8
	for _, port := range mixerInPorts {
		count += port.count
	}

	return count
}

// AvailBlkPair is one availability enumeration: the sources and
// destinations of a block category present at the current configuration.
type AvailBlkPair struct {
	Srcs []SrcBlk
	Dsts []DstBlk
}

// ComputeAvailRealBlkPair returns the real I/O blocks present at the rate
// mode. ADAT entries shrink with the tier; their channel offsets accumulate
// over the ADAT blocks already emitted so S/MUX never leaves holes.
func (s *ModelSpec) ComputeAvailRealBlkPair(mode RateMode) AvailBlkPair {
	var pair AvailBlkPair

	for _, entry := range s.Inputs {
		offset, count := entry.Offset, entry.Count
		if entry.ID == SrcBlkAdat {
			offset = 0
			for _, src := range pair.Srcs {
				if src.ID == SrcBlkAdat {
					offset++
				}
			}
			count = s.AdatChannelCount(mode)
		}

		for ch := offset; ch < offset+count; ch++ {
			pair.Srcs = append(pair.Srcs, SrcBlk{ID: entry.ID, Ch: ch})
		}
	}

	for _, entry := range s.Outputs {
		offset, count := entry.Offset, entry.Count
		if entry.ID == DstBlkAdat {
			offset = 0
			for _, dst := range pair.Dsts {
				if dst.ID == DstBlkAdat {
					offset++
				}
			}
			count = s.AdatChannelCount(mode)
		}

		for ch := offset; ch < offset+count; ch++ {
			pair.Dsts = append(pair.Dsts, DstBlk{ID: entry.ID, Ch: ch})
		}
	}

	return pair
}

// ComputeAvailStreamBlkPair returns the stream blocks carried by the
// negotiated isochronous streams. Stream availability is not static; it
// follows whatever the host negotiated for the session.
func (s *ModelSpec) ComputeAvailStreamBlkPair(tx, rx []FormatEntry) AvailBlkPair {
	var pair AvailBlkPair

	dstIDs := [2]DstBlkID{DstBlkAvs0, DstBlkAvs1}
	for i, entry := range tx {
		if i >= len(dstIDs) {
			break
		}
		for ch := uint8(0); ch < entry.PcmCount; ch++ {
			pair.Dsts = append(pair.Dsts, DstBlk{ID: dstIDs[i], Ch: ch})
		}
	}

	srcIDs := [2]SrcBlkID{SrcBlkAvs0, SrcBlkAvs1}
	for i, entry := range rx {
		if i >= len(srcIDs) {
			break
		}
		for ch := uint8(0); ch < entry.PcmCount; ch++ {
			pair.Srcs = append(pair.Srcs, SrcBlk{ID: srcIDs[i], Ch: ch})
		}
	}

	return pair
}

// ComputeAvailMixerBlkPair returns the mixer blocks present at the rate
// mode, capped by the mixer capability.
func (s *ModelSpec) ComputeAvailMixerBlkPair(caps MixerCaps, mode RateMode) AvailBlkPair {
	var pair AvailBlkPair

	portCount := s.MixerOutPortCount(mode)
	if caps.OutputCount < portCount {
		portCount = caps.OutputCount
	}
	for ch := uint8(0); ch < portCount; ch++ {
		pair.Srcs = append(pair.Srcs, SrcBlk{ID: SrcBlkMixer, Ch: ch})
	}

	remain := int(caps.InputCount)
	for _, port := range mixerInPorts {
		for ch := uint8(0); ch < port.count && remain > 0; ch++ {
			pair.Dsts = append(pair.Dsts, DstBlk{ID: port.id, Ch: ch})
			remain--
		}
	}

	return pair
}

// SrcLabel renders a source block using the model catalog, falling back to
// the generic block name.
func (s *ModelSpec) SrcLabel(blk SrcBlk) string {
	for _, entry := range s.Inputs {
		if entry.ID == blk.ID && entry.Label != "" &&
			blk.Ch >= entry.Offset && blk.Ch < entry.Offset+entry.Count {
			return fmt.Sprintf("%s-%d", entry.Label, blk.Ch-entry.Offset+1)
		}
	}

	return blk.String()
}

// DstLabel renders a destination block using the model catalog, falling
// back to the generic block name.
func (s *ModelSpec) DstLabel(blk DstBlk) string {
	for _, entry := range s.Outputs {
		if entry.ID == blk.ID && entry.Label != "" &&
			blk.Ch >= entry.Offset && blk.Ch < entry.Offset+entry.Count {
			return fmt.Sprintf("%s-%d", entry.Label, blk.Ch-entry.Offset+1)
		}
	}

	return blk.String()
}

// refineRouterEntries drops entries whose source or destination is absent
// from the given enumerations, then pins the fixed metering sources to the
// head of the table, parking them on the reserved destination when nothing
// routes them.
func (s *ModelSpec) refineRouterEntries(entries []RouterEntry, srcs []SrcBlk, dsts []DstBlk) []RouterEntry {
	refined := make([]RouterEntry, 0, len(entries))
	for _, entry := range entries {
		if slices.Contains(srcs, entry.Src) && slices.Contains(dsts, entry.Dst) {
			refined = append(refined, entry)
		}
	}

	for i, src := range s.Fixed {
		pos := slices.IndexFunc(refined, func(e RouterEntry) bool { return e.Src == src })
		if pos >= 0 {
			refined[i], refined[pos] = refined[pos], refined[i]
		} else {
			refined = slices.Insert(refined, i, RouterEntry{Dst: DstBlkNone(), Src: src})
		}
	}

	return refined
}

// State is the in-memory mirror of one device's router and mixer
// configuration. It is authoritative only after a successful Cache call.
type State struct {
	RouterEntries []RouterEntry
	MixerCache    [][]int16

	rateMode   RateMode
	realBlks   AvailBlkPair
	streamBlks AvailBlkPair
	mixerBlks  AvailBlkPair
}

// RateMode returns the tier the mirror was cached at.
func (s *State) RateMode() RateMode {
	return s.rateMode
}

// RouterSources returns the full source enumeration: real, stream, then
// mixer blocks.
func (s *State) RouterSources() []SrcBlk {
	srcs := make([]SrcBlk, 0, len(s.realBlks.Srcs)+len(s.streamBlks.Srcs)+len(s.mixerBlks.Srcs))
	srcs = append(srcs, s.realBlks.Srcs...)
	srcs = append(srcs, s.streamBlks.Srcs...)
	srcs = append(srcs, s.mixerBlks.Srcs...)

	return srcs
}

// RouterDestinations returns the full destination enumeration: real, stream,
// then mixer blocks.
func (s *State) RouterDestinations() []DstBlk {
	dsts := make([]DstBlk, 0, len(s.realBlks.Dsts)+len(s.streamBlks.Dsts)+len(s.mixerBlks.Dsts))
	dsts = append(dsts, s.realBlks.Dsts...)
	dsts = append(dsts, s.streamBlks.Dsts...)
	dsts = append(dsts, s.mixerBlks.Dsts...)

	return dsts
}

// Tcd22xx couples a unit with its model profile and the state mirror. All
// methods assume exclusive, non-reentrant access; the caller serializes.
type Tcd22xx struct {
	unit  *Unit
	spec  *ModelSpec
	State State
}

// NewTcd22xx binds a unit to its model profile.
func NewTcd22xx(unit *Unit, spec *ModelSpec) *Tcd22xx {
	return &Tcd22xx{unit: unit, spec: spec}
}

// Spec returns the model profile.
func (t *Tcd22xx) Spec() *ModelSpec {
	return t.spec
}

// UpdateRouterEntries refines the requested table against the current
// enumerations and replaces the hardware table when it differs from the
// mirror. The mirror is committed only after both the table write and the
// load command succeeded; on failure it keeps its pre-write value.
func (t *Tcd22xx) UpdateRouterEntries(entries []RouterEntry, timeoutMs int) error {
	if t == nil {
		return fmt.Errorf("device is nil")
	}

	refined := t.spec.refineRouterEntries(entries,
		t.State.RouterSources(), t.State.RouterDestinations())

	if len(refined) > int(t.unit.Caps.Router.MaximumEntryCount) {
		return fmt.Errorf("%w: %d router entries exceed the maximum of %d",
			ErrInvalidArgument, len(refined), t.unit.Caps.Router.MaximumEntryCount)
	}

	if slices.Equal(refined, t.State.RouterEntries) {
		return nil
	}

	if err := t.unit.WriteRouterEntries(refined, timeoutMs); err != nil {
		return err
	}

	if _, err := t.unit.ExecuteCommand(OpcodeLoadRouter, t.State.rateMode, timeoutMs); err != nil {
		return err
	}

	t.State.RouterEntries = refined

	return nil
}

// CacheRouterEntries recomputes the availability enumerations for the rate
// mode the mirror runs at and re-reads the active router table from the
// current configuration.
func (t *Tcd22xx) CacheRouterEntries(timeoutMs int) error {
	if t == nil {
		return fmt.Errorf("device is nil")
	}

	mode := t.State.rateMode
	t.State.realBlks = t.spec.ComputeAvailRealBlkPair(mode)

	tx, rx, err := t.unit.ReadCurrentStreamFormatEntries(mode, timeoutMs)
	if err != nil {
		return err
	}
	t.State.streamBlks = t.spec.ComputeAvailStreamBlkPair(tx, rx)

	t.State.mixerBlks = t.spec.ComputeAvailMixerBlkPair(t.unit.Caps.Mixer, mode)

	entries, err := t.unit.ReadCurrentRouterEntries(mode, timeoutMs)
	if err != nil {
		return err
	}

	return t.UpdateRouterEntries(entries, timeoutMs)
}

// mixerDims returns the active matrix dimensions, capped by capability.
func (t *Tcd22xx) mixerDims() (outs, ins int) {
	outs = int(t.spec.MixerOutPortCount(t.State.rateMode))
	if c := int(t.unit.Caps.Mixer.OutputCount); c < outs {
		outs = c
	}

	ins = int(t.spec.MixerInPortCount())
	if c := int(t.unit.Caps.Mixer.InputCount); c < ins {
		ins = c
	}

	return outs, ins
}

// CacheMixerCoefs re-reads the whole coefficient matrix into the mirror.
func (t *Tcd22xx) CacheMixerCoefs(timeoutMs int) error {
	if t == nil {
		return fmt.Errorf("device is nil")
	}

	coefs, err := t.unit.ReadMixerCoefs(timeoutMs)
	if err != nil {
		return err
	}

	outs, ins := t.mixerDims()
	cache := make([][]int16, outs)
	for out := range cache {
		cache[out] = make([]int16, ins)
		if out < len(coefs) {
			copy(cache[out], coefs[out])
		}
	}
	t.State.MixerCache = cache

	return nil
}

// UpdateMixerRow applies new coefficients to one destination row. The row
// index and vector length are validated before any transaction; a changed
// row is carried by a single hardware write addressed at the row, and the
// mirror is committed only on success.
func (t *Tcd22xx) UpdateMixerRow(row int, coefs []int16, timeoutMs int) error {
	if t == nil {
		return fmt.Errorf("device is nil")
	}

	if row < 0 || row >= len(t.State.MixerCache) {
		return fmt.Errorf("%w: mixer row %d out of range [0, %d)",
			ErrInvalidArgument, row, len(t.State.MixerCache))
	}

	if len(coefs) != len(t.State.MixerCache[row]) {
		return fmt.Errorf("%w: %d coefficients for mixer row of %d",
			ErrInvalidArgument, len(coefs), len(t.State.MixerCache[row]))
	}

	next := make([][]int16, len(t.State.MixerCache))
	for out := range next {
		next[out] = slices.Clone(t.State.MixerCache[out])
	}
	copy(next[row], coefs)

	patches, err := coefRowPatches(t.State.MixerCache, next)
	if err != nil {
		return err
	}

	if err := t.unit.writeMixerCoefPatches(patches, timeoutMs); err != nil {
		return err
	}

	t.State.MixerCache = next

	return nil
}

// CachePeaks refreshes the peak fields of the mirrored router entries. When
// the device exposes no peak section, the peaks come from re-reading the
// router table itself.
func (t *Tcd22xx) CachePeaks(timeoutMs int) error {
	if t == nil {
		return fmt.Errorf("device is nil")
	}

	var entries []RouterEntry
	var err error
	if t.unit.Caps.General.PeakAvail {
		entries, err = t.unit.ReadPeakEntries(timeoutMs)
	} else {
		entries, err = t.unit.ReadRouterEntries(timeoutMs)
	}
	if err != nil {
		return err
	}

	for i := range t.State.RouterEntries {
		mirrored := &t.State.RouterEntries[i]
		for _, entry := range entries {
			if entry.Src == mirrored.Src && entry.Dst == mirrored.Dst {
				mirrored.Peak = entry.Peak

				break
			}
		}
	}

	return nil
}

// Cache populates the whole mirror for the given rate mode. Called after
// device binding and again whenever a notification reports that the
// operating rate changed, since every enumeration is rate-mode-dependent.
func (t *Tcd22xx) Cache(mode RateMode, timeoutMs int) error {
	if t == nil {
		return fmt.Errorf("device is nil")
	}

	t.State.rateMode = mode
	if err := t.CacheRouterEntries(timeoutMs); err != nil {
		return err
	}

	return t.CacheMixerCoefs(timeoutMs)
}
