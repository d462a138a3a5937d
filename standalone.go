package dice

import (
	"fmt"
)

// AdatMode selects how the optical interface carries channels when the
// device clocks from ADAT in standalone operation.
type AdatMode uint8

const (
	AdatModeNormal AdatMode = 0
	AdatModeSmux2  AdatMode = 1
	AdatModeSmux4  AdatMode = 2
	AdatModeAuto   AdatMode = 3
)

// String renders the mode for display.
func (m AdatMode) String() string {
	switch m {
	case AdatModeNormal:
		return "Normal"
	case AdatModeSmux2:
		return "S/MUX2"
	case AdatModeSmux4:
		return "S/MUX4"
	case AdatModeAuto:
		return "Auto"
	}

	return fmt.Sprintf("Reserved(%d)", uint8(m))
}

// WordClockMode selects the multiplier regime applied to an external word
// clock signal in standalone operation.
type WordClockMode uint8

const (
	WordClockModeNormal WordClockMode = 0
	WordClockModeLow    WordClockMode = 1
	WordClockModeMiddle WordClockMode = 2
	WordClockModeHigh   WordClockMode = 3
)

// String renders the mode for display.
func (m WordClockMode) String() string {
	switch m {
	case WordClockModeNormal:
		return "Normal"
	case WordClockModeLow:
		return "Low"
	case WordClockModeMiddle:
		return "Middle"
	case WordClockModeHigh:
		return "High"
	}

	return fmt.Sprintf("Reserved(%d)", uint8(m))
}

// WordClockRate is the rational multiplier applied to the word clock signal.
type WordClockRate struct {
	Numerator   uint16
	Denominator uint16
}

// Word clock numerator/denominator limits imposed by the register fields.
const (
	WordClockNumeratorMax   = 0x1000
	WordClockDenominatorMax = 0x10000
)

// Standalone section register offsets.
const (
	standaloneClockSrcOffset = 0x00
	standaloneAesCfgOffset   = 0x04
	standaloneAdatCfgOffset  = 0x08
	standaloneWcCfgOffset    = 0x0c
	standaloneIntCfgOffset   = 0x10
)

const (
	wcCfgModeMask   = 0x00000003
	wcCfgNumMask    = 0x0000fff0
	wcCfgNumShift   = 4
	wcCfgDenomMask  = 0xffff0000
	wcCfgDenomShift = 16
)

// ReadStandaloneClockSource reads the clock source used without a host.
func (u *Unit) ReadStandaloneClockSource(timeoutMs int) (ClockSource, error) {
	if u == nil {
		return ClockSourceReserved, fmt.Errorf("unit is nil")
	}

	val, err := u.readQuad(extensionOffset+u.Ext.Standalone.Offset+standaloneClockSrcOffset, timeoutMs)
	if err != nil {
		return ClockSourceReserved, fmt.Errorf("%w: clock source: %w", ErrStandalone, err)
	}

	src := ClockSource(val)
	if src > ClockSourceInternal {
		src = ClockSourceReserved
	}

	return src, nil
}

// WriteStandaloneClockSource selects the clock source used without a host.
func (u *Unit) WriteStandaloneClockSource(src ClockSource, timeoutMs int) error {
	if u == nil {
		return fmt.Errorf("unit is nil")
	}

	if src > ClockSourceInternal {
		return fmt.Errorf("%w: clock source %s is not selectable", ErrInvalidArgument, src)
	}

	err := u.writeQuad(extensionOffset+u.Ext.Standalone.Offset+standaloneClockSrcOffset,
		uint32(src), timeoutMs)
	if err != nil {
		return fmt.Errorf("%w: clock source: %w", ErrStandalone, err)
	}

	return nil
}

// ReadStandaloneAesHighRate reads whether the AES/EBU receiver expects a
// high-rate signal in standalone operation.
func (u *Unit) ReadStandaloneAesHighRate(timeoutMs int) (bool, error) {
	if u == nil {
		return false, fmt.Errorf("unit is nil")
	}

	val, err := u.readQuad(extensionOffset+u.Ext.Standalone.Offset+standaloneAesCfgOffset, timeoutMs)
	if err != nil {
		return false, fmt.Errorf("%w: AES configuration: %w", ErrStandalone, err)
	}

	return val&0x00000001 != 0, nil
}

// WriteStandaloneAesHighRate selects high-rate AES/EBU reception.
func (u *Unit) WriteStandaloneAesHighRate(enable bool, timeoutMs int) error {
	if u == nil {
		return fmt.Errorf("unit is nil")
	}

	var val uint32
	if enable {
		val = 1
	}

	err := u.writeQuad(extensionOffset+u.Ext.Standalone.Offset+standaloneAesCfgOffset, val, timeoutMs)
	if err != nil {
		return fmt.Errorf("%w: AES configuration: %w", ErrStandalone, err)
	}

	return nil
}

// ReadStandaloneAdatMode reads the optical channel mode for standalone ADAT
// clocking.
func (u *Unit) ReadStandaloneAdatMode(timeoutMs int) (AdatMode, error) {
	if u == nil {
		return AdatModeNormal, fmt.Errorf("unit is nil")
	}

	val, err := u.readQuad(extensionOffset+u.Ext.Standalone.Offset+standaloneAdatCfgOffset, timeoutMs)
	if err != nil {
		return AdatModeNormal, fmt.Errorf("%w: ADAT configuration: %w", ErrStandalone, err)
	}

	return AdatMode(val & 0x03), nil
}

// WriteStandaloneAdatMode selects the optical channel mode for standalone
// ADAT clocking.
func (u *Unit) WriteStandaloneAdatMode(mode AdatMode, timeoutMs int) error {
	if u == nil {
		return fmt.Errorf("unit is nil")
	}

	if mode > AdatModeAuto {
		return fmt.Errorf("%w: ADAT mode %d is not selectable", ErrInvalidArgument, uint8(mode))
	}

	err := u.writeQuad(extensionOffset+u.Ext.Standalone.Offset+standaloneAdatCfgOffset,
		uint32(mode), timeoutMs)
	if err != nil {
		return fmt.Errorf("%w: ADAT configuration: %w", ErrStandalone, err)
	}

	return nil
}

// ReadStandaloneWordClockParams reads the word clock mode and rational
// multiplier. Both live in one register.
func (u *Unit) ReadStandaloneWordClockParams(timeoutMs int) (WordClockMode, WordClockRate, error) {
	if u == nil {
		return WordClockModeNormal, WordClockRate{}, fmt.Errorf("unit is nil")
	}

	val, err := u.readQuad(extensionOffset+u.Ext.Standalone.Offset+standaloneWcCfgOffset, timeoutMs)
	if err != nil {
		return WordClockModeNormal, WordClockRate{},
			fmt.Errorf("%w: word clock configuration: %w", ErrStandalone, err)
	}

	mode := WordClockMode(val & wcCfgModeMask)
	rate := WordClockRate{
		Numerator:   uint16(1 + (val&wcCfgNumMask)>>wcCfgNumShift),
		Denominator: uint16(1 + (val&wcCfgDenomMask)>>wcCfgDenomShift),
	}

	return mode, rate, nil
}

// WriteStandaloneWordClockParams updates the word clock mode and rational
// multiplier. The register is read fresh immediately before the write so a
// partial update of one field never carries a stale value of the other.
func (u *Unit) WriteStandaloneWordClockParams(mode WordClockMode, rate WordClockRate, timeoutMs int) error {
	if u == nil {
		return fmt.Errorf("unit is nil")
	}

	if mode > WordClockModeHigh {
		return fmt.Errorf("%w: word clock mode %d is not selectable", ErrInvalidArgument, uint8(mode))
	}

	if rate.Numerator < 1 || uint32(rate.Numerator) > WordClockNumeratorMax {
		return fmt.Errorf("%w: word clock numerator %d out of range [1, %d]",
			ErrInvalidArgument, rate.Numerator, WordClockNumeratorMax)
	}

	if rate.Denominator < 1 || uint32(rate.Denominator) > WordClockDenominatorMax {
		return fmt.Errorf("%w: word clock denominator %d out of range [1, %d]",
			ErrInvalidArgument, rate.Denominator, WordClockDenominatorMax)
	}

	offset := extensionOffset + u.Ext.Standalone.Offset + standaloneWcCfgOffset

	val, err := u.readQuad(offset, timeoutMs)
	if err != nil {
		return fmt.Errorf("%w: word clock configuration: %w", ErrStandalone, err)
	}

	val &^= uint32(wcCfgModeMask | wcCfgNumMask | wcCfgDenomMask)
	val |= uint32(mode)
	val |= (uint32(rate.Numerator) - 1) << wcCfgNumShift
	val |= (uint32(rate.Denominator) - 1) << wcCfgDenomShift

	if err := u.writeQuad(offset, val, timeoutMs); err != nil {
		return fmt.Errorf("%w: word clock configuration: %w", ErrStandalone, err)
	}

	return nil
}

// ReadStandaloneInternalRate reads the internal clock rate used without a
// host.
func (u *Unit) ReadStandaloneInternalRate(timeoutMs int) (ClockRate, error) {
	if u == nil {
		return ClockRateReserved, fmt.Errorf("unit is nil")
	}

	val, err := u.readQuad(extensionOffset+u.Ext.Standalone.Offset+standaloneIntCfgOffset, timeoutMs)
	if err != nil {
		return ClockRateReserved, fmt.Errorf("%w: internal configuration: %w", ErrStandalone, err)
	}

	rate := ClockRate(val)
	if rate > ClockRateNone {
		rate = ClockRateReserved
	}

	return rate, nil
}

// WriteStandaloneInternalRate selects the internal clock rate used without
// a host.
func (u *Unit) WriteStandaloneInternalRate(rate ClockRate, timeoutMs int) error {
	if u == nil {
		return fmt.Errorf("unit is nil")
	}

	if _, err := rate.Frequency(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	err := u.writeQuad(extensionOffset+u.Ext.Standalone.Offset+standaloneIntCfgOffset,
		uint32(rate), timeoutMs)
	if err != nil {
		return fmt.Errorf("%w: internal configuration: %w", ErrStandalone, err)
	}

	return nil
}
