package dice

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Element names registered by the surface adapter. The names are part of the
// stable interface toward control applications.
const (
	ElemClockRate   = "clock-rate"
	ElemClockSource = "clock-source"
	ElemNickname    = "nickname"

	ElemOutputSource    = "output-source"
	ElemStreamSource    = "stream-source"
	ElemMixerSource     = "mixer-source"
	ElemMixerSourceGain = "mixer-source-gain"

	ElemOutputSourceMeter  = "output-source-meter"
	ElemStreamSourceMeter  = "stream-source-meter"
	ElemMixerSourceMeter   = "mixer-source-meter"
	ElemMixerOutSaturation = "mixer-out-saturation"

	ElemStandaloneClockSource   = "standalone-clock-source"
	ElemStandaloneSpdifHighRate = "standalone-spdif-high-rate"
	ElemStandaloneAdatMode      = "standalone-adat-mode"
	ElemStandaloneWcMode        = "standalone-word-clock-mode"
	ElemStandaloneWcNumerator   = "standalone-word-clock-rate-numerator"
	ElemStandaloneWcDenominator = "standalone-word-clock-rate-denominator"
	ElemStandaloneInternalRate  = "standalone-internal-clock-rate"
)

// meterMax is the full scale of the 12 bit peak detectors.
const meterMax = 0x00000fff

var adatModeLabels = []string{"Normal", "S/MUX2", "S/MUX4", "Auto"}

var wcModeLabels = []string{"Normal", "Low", "Middle", "High"}

// Surface adapts a device to a control element registry: it registers the
// elements the device warrants, translates element reads and writes into
// protocol operations, and refreshes metering and notification driven state.
// Like the engine underneath, it expects the caller to serialize access.
type Surface struct {
	dev    *Tcd22xx
	locker Locker

	clockCaps   ClockCaps
	clockLabels []string
	rates       []ClockRate
	sources     []ClockSource

	// Availability enumerations sized for the low tier, the largest the
	// device ever exposes. Element geometry never changes after Load.
	realBlks   AvailBlkPair
	streamBlks AvailBlkPair
	mixerBlks  AvailBlkPair

	realMeters   []int32
	streamMeters []int32
	mixerMeters  []int32
	saturation   []bool

	extStates ExtSourceStates

	notified []ElemID
	measured []ElemID
}

// NewSurface binds a device to the adapter. locker may be nil when the
// caller has no streaming to protect.
func NewSurface(dev *Tcd22xx, locker Locker) *Surface {
	return &Surface{dev: dev, locker: locker}
}

// NotifiedElems lists the elements whose values follow device notifications.
func (s *Surface) NotifiedElems() []ElemID {
	return s.notified
}

// MeasuredElems lists the elements refreshed by Measure.
func (s *Surface) MeasuredElems() []ElemID {
	return s.measured
}

// ExtSourceStates returns the external source states captured by the last
// notification or Cache call.
func (s *Surface) ExtSourceStates() ExtSourceStates {
	return s.extStates
}

func compareSrcBlk(a, b SrcBlk) int {
	if c := cmp.Compare(a.ID, b.ID); c != 0 {
		return c
	}

	return cmp.Compare(a.Ch, b.Ch)
}

func compareDstBlk(a, b DstBlk) int {
	if c := cmp.Compare(a.ID, b.ID); c != 0 {
		return c
	}

	return cmp.Compare(a.Ch, b.Ch)
}

// rateModes returns the deduplicated tiers covered by the supported rates.
func (s *Surface) rateModes() []RateMode {
	modes := make([]RateMode, 0, 3)
	for _, rate := range s.rates {
		if mode := rate.Mode(); !slices.Contains(modes, mode) {
			modes = append(modes, mode)
		}
	}

	return modes
}

// Load queries the device capabilities and registers every element the
// device warrants. Stream blocks are unioned over all supported tiers so
// the enumerations stay valid across rate changes.
func (s *Surface) Load(reg ElemRegistry, timeoutMs int) error {
	if s == nil {
		return fmt.Errorf("surface is nil")
	}

	unit := s.dev.unit

	caps, err := unit.ReadClockCaps(timeoutMs)
	if err != nil {
		return err
	}
	s.clockCaps = caps

	labels, err := unit.ReadClockSourceLabels(timeoutMs)
	if err != nil {
		return err
	}
	s.clockLabels = labels

	s.rates = caps.RateEntries()
	s.sources = caps.SrcEntries(labels)

	if err := s.loadGlobals(reg); err != nil {
		return err
	}

	if err := s.loadRouter(reg, timeoutMs); err != nil {
		return err
	}

	if err := s.loadMixer(reg); err != nil {
		return err
	}

	if err := s.loadMeters(reg); err != nil {
		return err
	}

	return s.loadStandalone(reg)
}

func (s *Surface) loadGlobals(reg ElemRegistry) error {
	rateLabels := make([]string, len(s.rates))
	for i, rate := range s.rates {
		rateLabels[i] = rate.String()
	}

	ids, err := reg.AddEnumElems(ElemClockRate, 1, 1, rateLabels)
	if err != nil {
		return err
	}
	s.notified = append(s.notified, ids...)

	srcLabels := make([]string, len(s.sources))
	for i, src := range s.sources {
		srcLabels[i] = SourceLabel(src, s.clockLabels)
	}

	ids, err = reg.AddEnumElems(ElemClockSource, 1, 1, srcLabels)
	if err != nil {
		return err
	}
	s.notified = append(s.notified, ids...)

	_, err = reg.AddBytesElems(ElemNickname, 1, NicknameMaxSize)

	return err
}

func (s *Surface) loadRouter(reg ElemRegistry, timeoutMs int) error {
	spec := s.dev.spec
	unit := s.dev.unit

	s.realBlks = spec.ComputeAvailRealBlkPair(RateModeLow)

	s.streamBlks = AvailBlkPair{}
	for _, mode := range s.rateModes() {
		tx, rx, err := unit.ReadCurrentStreamFormatEntries(mode, timeoutMs)
		if err != nil {
			return err
		}

		pair := spec.ComputeAvailStreamBlkPair(tx, rx)
		for _, src := range pair.Srcs {
			if !slices.Contains(s.streamBlks.Srcs, src) {
				s.streamBlks.Srcs = append(s.streamBlks.Srcs, src)
			}
		}
		for _, dst := range pair.Dsts {
			if !slices.Contains(s.streamBlks.Dsts, dst) {
				s.streamBlks.Dsts = append(s.streamBlks.Dsts, dst)
			}
		}
	}
	slices.SortFunc(s.streamBlks.Srcs, compareSrcBlk)
	slices.SortFunc(s.streamBlks.Dsts, compareDstBlk)

	s.mixerBlks = spec.ComputeAvailMixerBlkPair(unit.Caps.Mixer, RateModeLow)

	elems := []struct {
		name string
		dsts []DstBlk
		srcs []SrcBlk
	}{
		{ElemOutputSource, s.realBlks.Dsts, s.outputSrcs()},
		{ElemStreamSource, s.streamBlks.Dsts, s.streamSrcs()},
		{ElemMixerSource, s.mixerBlks.Dsts, s.mixerSrcs()},
	}
	for _, elem := range elems {
		labels := make([]string, 0, 1+len(elem.srcs))
		labels = append(labels, "None")
		for _, src := range elem.srcs {
			labels = append(labels, spec.SrcLabel(src))
		}

		ids, err := reg.AddEnumElems(elem.name, 1, len(elem.dsts), labels)
		if err != nil {
			return err
		}
		s.notified = append(s.notified, ids...)
	}

	return nil
}

func (s *Surface) loadMixer(reg ElemRegistry) error {
	outs, ins := s.dev.mixerDims()

	_, err := reg.AddIntElems(ElemMixerSourceGain, outs, ins, MixerCoefMin, MixerCoefMax, 1)

	return err
}

func (s *Surface) loadMeters(reg ElemRegistry) error {
	s.realMeters = make([]int32, len(s.realBlks.Dsts))
	s.streamMeters = make([]int32, len(s.streamBlks.Dsts))
	s.mixerMeters = make([]int32, len(s.mixerBlks.Dsts))
	s.saturation = make([]bool, len(s.mixerBlks.Srcs))

	meters := []struct {
		name  string
		count int
	}{
		{ElemOutputSourceMeter, len(s.realMeters)},
		{ElemStreamSourceMeter, len(s.streamMeters)},
		{ElemMixerSourceMeter, len(s.mixerMeters)},
	}
	for _, meter := range meters {
		ids, err := reg.AddIntElems(meter.name, 1, meter.count, 0, meterMax, 1)
		if err != nil {
			return err
		}
		s.measured = append(s.measured, ids...)
	}

	ids, err := reg.AddBoolElems(ElemMixerOutSaturation, 1, len(s.saturation))
	if err != nil {
		return err
	}
	s.measured = append(s.measured, ids...)

	return nil
}

func (s *Surface) loadStandalone(reg ElemRegistry) error {
	labels := make([]string, len(s.sources))
	for i, src := range s.sources {
		labels[i] = SourceLabel(src, s.clockLabels)
	}

	if _, err := reg.AddEnumElems(ElemStandaloneClockSource, 1, 1, labels); err != nil {
		return err
	}

	hasAes := slices.ContainsFunc(s.sources, func(src ClockSource) bool {
		return src >= ClockSourceAes1 && src <= ClockSourceAes4
	})
	if hasAes {
		if _, err := reg.AddBoolElems(ElemStandaloneSpdifHighRate, 1, 1); err != nil {
			return err
		}
	}

	if slices.Contains(s.sources, ClockSourceAdat) {
		if _, err := reg.AddEnumElems(ElemStandaloneAdatMode, 1, 1, adatModeLabels); err != nil {
			return err
		}
	}

	if slices.Contains(s.sources, ClockSourceWordClock) {
		if _, err := reg.AddEnumElems(ElemStandaloneWcMode, 1, 1, wcModeLabels); err != nil {
			return err
		}
		if _, err := reg.AddIntElems(ElemStandaloneWcNumerator, 1, 1, 1, 4095, 1); err != nil {
			return err
		}
		if _, err := reg.AddIntElems(ElemStandaloneWcDenominator, 1, 1, 1, 65535, 1); err != nil {
			return err
		}
	}

	rateLabels := make([]string, len(s.rates))
	for i, rate := range s.rates {
		rateLabels[i] = rate.String()
	}

	_, err := reg.AddEnumElems(ElemStandaloneInternalRate, 1, 1, rateLabels)

	return err
}

// outputSrcs enumerates the sources selectable for real outputs.
func (s *Surface) outputSrcs() []SrcBlk {
	srcs := make([]SrcBlk, 0, len(s.realBlks.Srcs)+len(s.streamBlks.Srcs)+len(s.mixerBlks.Srcs))
	srcs = append(srcs, s.realBlks.Srcs...)
	srcs = append(srcs, s.streamBlks.Srcs...)
	srcs = append(srcs, s.mixerBlks.Srcs...)

	return srcs
}

// streamSrcs enumerates the sources selectable for stream transmitters.
func (s *Surface) streamSrcs() []SrcBlk {
	srcs := make([]SrcBlk, 0, len(s.realBlks.Srcs)+len(s.mixerBlks.Srcs))
	srcs = append(srcs, s.realBlks.Srcs...)
	srcs = append(srcs, s.mixerBlks.Srcs...)

	return srcs
}

// mixerSrcs enumerates the sources selectable for mixer inputs. The mixer's
// own outputs are excluded so a selection can never loop the mixer back into
// itself.
func (s *Surface) mixerSrcs() []SrcBlk {
	srcs := make([]SrcBlk, 0, len(s.realBlks.Srcs)+len(s.streamBlks.Srcs))
	srcs = append(srcs, s.realBlks.Srcs...)
	srcs = append(srcs, s.streamBlks.Srcs...)

	return srcs
}

// Cache derives the operating tier from the sampling clock configuration and
// repopulates the device mirror and the external source states.
func (s *Surface) Cache(timeoutMs int) error {
	if s == nil {
		return fmt.Errorf("surface is nil")
	}

	config, err := s.dev.unit.ReadClockConfig(timeoutMs)
	if err != nil {
		return err
	}

	if err := s.dev.Cache(config.Rate.Mode(), timeoutMs); err != nil {
		return err
	}

	states, err := s.dev.unit.ReadExtSourceStates(timeoutMs)
	if err != nil {
		return err
	}
	s.extStates = states

	return nil
}

// routerValues maps the mirrored router table onto element values: for each
// destination the 1-based position of its source in the enumeration, or 0
// when nothing routes it or its source fell outside the enumeration.
func routerValues(entries []RouterEntry, dsts []DstBlk, srcs []SrcBlk) []uint32 {
	vals := make([]uint32, len(dsts))
	for i, dst := range dsts {
		pos := slices.IndexFunc(entries, func(e RouterEntry) bool { return e.Dst == dst })
		if pos < 0 {
			continue
		}

		if sp := slices.Index(srcs, entries[pos].Src); sp >= 0 {
			vals[i] = uint32(sp + 1)
		}
	}

	return vals
}

// Read fills val with the current value of the element. It reports false for
// element names the adapter does not own.
func (s *Surface) Read(id ElemID, val *ElemValue, timeoutMs int) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("surface is nil")
	}

	unit := s.dev.unit

	switch id.Name {
	case ElemClockRate:
		config, err := unit.ReadClockConfig(timeoutMs)
		if err != nil {
			return true, err
		}

		idx := slices.Index(s.rates, config.Rate)
		if idx < 0 {
			return true, fmt.Errorf("clock rate %s is outside the capability", config.Rate)
		}
		val.Enums = []uint32{uint32(idx)}

		return true, nil
	case ElemClockSource:
		config, err := unit.ReadClockConfig(timeoutMs)
		if err != nil {
			return true, err
		}

		idx := slices.Index(s.sources, config.Source)
		if idx < 0 {
			return true, fmt.Errorf("clock source %s is outside the capability", config.Source)
		}
		val.Enums = []uint32{uint32(idx)}

		return true, nil
	case ElemNickname:
		name, err := unit.ReadNickname(timeoutMs)
		if err != nil {
			return true, err
		}

		val.Bytes = make([]byte, NicknameMaxSize)
		copy(val.Bytes, name)

		return true, nil
	case ElemOutputSource:
		val.Enums = routerValues(s.dev.State.RouterEntries, s.realBlks.Dsts, s.outputSrcs())

		return true, nil
	case ElemStreamSource:
		val.Enums = routerValues(s.dev.State.RouterEntries, s.streamBlks.Dsts, s.streamSrcs())

		return true, nil
	case ElemMixerSource:
		val.Enums = routerValues(s.dev.State.RouterEntries, s.mixerBlks.Dsts, s.mixerSrcs())

		return true, nil
	case ElemMixerSourceGain:
		if id.Index < 0 || id.Index >= len(s.dev.State.MixerCache) {
			return true, fmt.Errorf("%w: mixer row %d out of range", ErrInvalidArgument, id.Index)
		}

		row := s.dev.State.MixerCache[id.Index]
		val.Ints = make([]int32, len(row))
		for i, coef := range row {
			val.Ints[i] = int32(coef)
		}

		return true, nil
	case ElemOutputSourceMeter:
		val.Ints = slices.Clone(s.realMeters)

		return true, nil
	case ElemStreamSourceMeter:
		val.Ints = slices.Clone(s.streamMeters)

		return true, nil
	case ElemMixerSourceMeter:
		val.Ints = slices.Clone(s.mixerMeters)

		return true, nil
	case ElemMixerOutSaturation:
		val.Bools = slices.Clone(s.saturation)

		return true, nil
	default:
		return s.readStandalone(id, val, timeoutMs)
	}
}

func (s *Surface) readStandalone(id ElemID, val *ElemValue, timeoutMs int) (bool, error) {
	unit := s.dev.unit

	switch id.Name {
	case ElemStandaloneClockSource:
		src, err := unit.ReadStandaloneClockSource(timeoutMs)
		if err != nil {
			return true, err
		}

		idx := slices.Index(s.sources, src)
		if idx < 0 {
			return true, fmt.Errorf("standalone clock source %s is outside the capability", src)
		}
		val.Enums = []uint32{uint32(idx)}

		return true, nil
	case ElemStandaloneSpdifHighRate:
		enabled, err := unit.ReadStandaloneAesHighRate(timeoutMs)
		if err != nil {
			return true, err
		}
		val.Bools = []bool{enabled}

		return true, nil
	case ElemStandaloneAdatMode:
		mode, err := unit.ReadStandaloneAdatMode(timeoutMs)
		if err != nil {
			return true, err
		}
		val.Enums = []uint32{uint32(mode)}

		return true, nil
	case ElemStandaloneWcMode:
		mode, _, err := unit.ReadStandaloneWordClockParams(timeoutMs)
		if err != nil {
			return true, err
		}
		val.Enums = []uint32{uint32(mode)}

		return true, nil
	case ElemStandaloneWcNumerator:
		_, rate, err := unit.ReadStandaloneWordClockParams(timeoutMs)
		if err != nil {
			return true, err
		}
		val.Ints = []int32{int32(rate.Numerator)}

		return true, nil
	case ElemStandaloneWcDenominator:
		_, rate, err := unit.ReadStandaloneWordClockParams(timeoutMs)
		if err != nil {
			return true, err
		}
		val.Ints = []int32{int32(rate.Denominator)}

		return true, nil
	case ElemStandaloneInternalRate:
		rate, err := unit.ReadStandaloneInternalRate(timeoutMs)
		if err != nil {
			return true, err
		}

		idx := slices.Index(s.rates, rate)
		if idx < 0 {
			return true, fmt.Errorf("standalone clock rate %s is outside the capability", rate)
		}
		val.Enums = []uint32{uint32(idx)}

		return true, nil
	}

	return false, nil
}

func (s *Surface) withLock(fn func() error) error {
	if s.locker == nil {
		return fn()
	}

	if err := s.locker.Lock(); err != nil {
		return err
	}
	defer s.locker.Unlock()

	return fn()
}

// writeRouter resolves element values into router entries and hands the
// updated table to the engine. Every index is validated before the first
// transaction.
func (s *Surface) writeRouter(dsts []DstBlk, srcs []SrcBlk, vals []uint32, timeoutMs int) error {
	if len(vals) != len(dsts) {
		return fmt.Errorf("%w: %d values for %d destinations",
			ErrInvalidArgument, len(vals), len(dsts))
	}

	for _, v := range vals {
		if int(v) > len(srcs) {
			return fmt.Errorf("%w: source index %d out of range [0, %d]",
				ErrInvalidArgument, v, len(srcs))
		}
	}

	entries := slices.Clone(s.dev.State.RouterEntries)
	for i, v := range vals {
		src := SrcBlkNone()
		if v > 0 {
			src = srcs[v-1]
		}

		pos := slices.IndexFunc(entries, func(e RouterEntry) bool { return e.Dst == dsts[i] })
		if pos >= 0 {
			entries[pos].Src = src
		} else {
			entries = append(entries, RouterEntry{Dst: dsts[i], Src: src})
		}
	}

	return s.dev.UpdateRouterEntries(entries, timeoutMs)
}

// Write applies val to the element. It reports false for element names the
// adapter does not own.
func (s *Surface) Write(id ElemID, val *ElemValue, timeoutMs int) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("surface is nil")
	}

	unit := s.dev.unit

	switch id.Name {
	case ElemClockRate:
		if len(val.Enums) != 1 || int(val.Enums[0]) >= len(s.rates) {
			return true, fmt.Errorf("%w: invalid clock rate index", ErrInvalidArgument)
		}
		rate := s.rates[val.Enums[0]]

		return true, s.withLock(func() error {
			return s.writeClockConfig(func(config *ClockConfig) { config.Rate = rate }, timeoutMs)
		})
	case ElemClockSource:
		if len(val.Enums) != 1 || int(val.Enums[0]) >= len(s.sources) {
			return true, fmt.Errorf("%w: invalid clock source index", ErrInvalidArgument)
		}
		src := s.sources[val.Enums[0]]

		return true, s.withLock(func() error {
			return s.writeClockConfig(func(config *ClockConfig) { config.Source = src }, timeoutMs)
		})
	case ElemNickname:
		name := string(val.Bytes)
		if pos := strings.IndexByte(name, 0x00); pos >= 0 {
			name = name[:pos]
		}

		return true, unit.WriteNickname(name, timeoutMs)
	case ElemOutputSource:
		return true, s.writeRouter(s.realBlks.Dsts, s.outputSrcs(), val.Enums, timeoutMs)
	case ElemStreamSource:
		return true, s.writeRouter(s.streamBlks.Dsts, s.streamSrcs(), val.Enums, timeoutMs)
	case ElemMixerSource:
		return true, s.writeRouter(s.mixerBlks.Dsts, s.mixerSrcs(), val.Enums, timeoutMs)
	case ElemMixerSourceGain:
		coefs := make([]int16, len(val.Ints))
		for i, v := range val.Ints {
			if v < MixerCoefMin || v > MixerCoefMax {
				return true, fmt.Errorf("%w: coefficient %d out of range [%d, %d]",
					ErrInvalidArgument, v, MixerCoefMin, MixerCoefMax)
			}
			coefs[i] = int16(v)
		}

		return true, s.dev.UpdateMixerRow(id.Index, coefs, timeoutMs)
	default:
		return s.writeStandalone(id, val, timeoutMs)
	}
}

// writeClockConfig mutates the sampling clock configuration register with a
// read-modify-write and verifies the device accepted the new value.
func (s *Surface) writeClockConfig(mutate func(*ClockConfig), timeoutMs int) error {
	unit := s.dev.unit

	config, err := unit.ReadClockConfig(timeoutMs)
	if err != nil {
		return err
	}

	mutate(&config)
	if err := unit.WriteClockConfig(config, timeoutMs); err != nil {
		return err
	}

	applied, err := unit.ReadClockConfig(timeoutMs)
	if err != nil {
		return err
	}
	if applied != config {
		return fmt.Errorf("clock configuration not applied: requested %+v, device reports %+v",
			config, applied)
	}

	return nil
}

func (s *Surface) writeStandalone(id ElemID, val *ElemValue, timeoutMs int) (bool, error) {
	unit := s.dev.unit

	switch id.Name {
	case ElemStandaloneClockSource:
		if len(val.Enums) != 1 || int(val.Enums[0]) >= len(s.sources) {
			return true, fmt.Errorf("%w: invalid standalone clock source index", ErrInvalidArgument)
		}

		return true, unit.WriteStandaloneClockSource(s.sources[val.Enums[0]], timeoutMs)
	case ElemStandaloneSpdifHighRate:
		if len(val.Bools) != 1 {
			return true, fmt.Errorf("%w: single flag expected", ErrInvalidArgument)
		}

		return true, unit.WriteStandaloneAesHighRate(val.Bools[0], timeoutMs)
	case ElemStandaloneAdatMode:
		if len(val.Enums) != 1 || int(val.Enums[0]) >= len(adatModeLabels) {
			return true, fmt.Errorf("%w: invalid ADAT mode index", ErrInvalidArgument)
		}

		return true, unit.WriteStandaloneAdatMode(AdatMode(val.Enums[0]), timeoutMs)
	case ElemStandaloneWcMode:
		if len(val.Enums) != 1 || int(val.Enums[0]) >= len(wcModeLabels) {
			return true, fmt.Errorf("%w: invalid word clock mode index", ErrInvalidArgument)
		}

		return true, s.updateWordClock(func(mode *WordClockMode, _ *WordClockRate) {
			*mode = WordClockMode(val.Enums[0])
		}, timeoutMs)
	case ElemStandaloneWcNumerator:
		if len(val.Ints) != 1 {
			return true, fmt.Errorf("%w: single value expected", ErrInvalidArgument)
		}

		return true, s.updateWordClock(func(_ *WordClockMode, rate *WordClockRate) {
			rate.Numerator = uint16(val.Ints[0])
		}, timeoutMs)
	case ElemStandaloneWcDenominator:
		if len(val.Ints) != 1 {
			return true, fmt.Errorf("%w: single value expected", ErrInvalidArgument)
		}

		return true, s.updateWordClock(func(_ *WordClockMode, rate *WordClockRate) {
			rate.Denominator = uint16(val.Ints[0])
		}, timeoutMs)
	case ElemStandaloneInternalRate:
		if len(val.Enums) != 1 || int(val.Enums[0]) >= len(s.rates) {
			return true, fmt.Errorf("%w: invalid standalone clock rate index", ErrInvalidArgument)
		}

		return true, unit.WriteStandaloneInternalRate(s.rates[val.Enums[0]], timeoutMs)
	}

	return false, nil
}

// updateWordClock mutates one field of the shared word clock register,
// carrying the others over from a fresh read.
func (s *Surface) updateWordClock(mutate func(*WordClockMode, *WordClockRate), timeoutMs int) error {
	unit := s.dev.unit

	mode, rate, err := unit.ReadStandaloneWordClockParams(timeoutMs)
	if err != nil {
		return err
	}

	mutate(&mode, &rate)

	return unit.WriteStandaloneWordClockParams(mode, rate, timeoutMs)
}

// meterValues extracts the peak of the entry routing each destination, 0 for
// destinations nothing routes.
func meterValues(entries []RouterEntry, dsts []DstBlk, out []int32) {
	for i, dst := range dsts {
		out[i] = 0
		for _, entry := range entries {
			if entry.Dst == dst {
				out[i] = int32(entry.Peak)

				break
			}
		}
	}
}

// Measure refreshes the metering elements: the per-destination peaks and the
// mixer saturation flags. On failure the previous values stay in place.
func (s *Surface) Measure(timeoutMs int) error {
	if s == nil {
		return fmt.Errorf("surface is nil")
	}

	if err := s.dev.CachePeaks(timeoutMs); err != nil {
		return err
	}

	entries := s.dev.State.RouterEntries
	meterValues(entries, s.realBlks.Dsts, s.realMeters)
	meterValues(entries, s.streamBlks.Dsts, s.streamMeters)
	meterValues(entries, s.mixerBlks.Dsts, s.mixerMeters)

	saturation, err := s.dev.unit.ReadMixerSaturation(timeoutMs)
	if err != nil {
		return err
	}
	for i := range s.saturation {
		s.saturation[i] = i < len(saturation) && saturation[i]
	}

	return nil
}

// ParseNotification reacts to a notification message. Acceptance of a new
// sampling clock invalidates every rate-dependent enumeration, so the whole
// mirror is rebuilt; an external status change only refreshes the source
// states.
func (s *Surface) ParseNotification(msg uint32, timeoutMs int) error {
	if s == nil {
		return fmt.Errorf("surface is nil")
	}

	if msg&NotifyClockAccepted != 0 {
		if err := s.Cache(timeoutMs); err != nil {
			return err
		}
	}

	if msg&NotifyExtStatus != 0 {
		states, err := s.dev.unit.ReadExtSourceStates(timeoutMs)
		if err != nil {
			return err
		}
		s.extStates = states
	}

	return nil
}
