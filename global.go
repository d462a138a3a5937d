package dice

import (
	"fmt"
)

// ClockRate identifies the media clock rate of the sampling clock.
type ClockRate uint8

const (
	ClockRate32000   ClockRate = 0x00
	ClockRate44100   ClockRate = 0x01
	ClockRate48000   ClockRate = 0x02
	ClockRate88200   ClockRate = 0x03
	ClockRate96000   ClockRate = 0x04
	ClockRate176400  ClockRate = 0x05
	ClockRate192000  ClockRate = 0x06
	ClockRateAnyLow  ClockRate = 0x07
	ClockRateAnyMid  ClockRate = 0x08
	ClockRateAnyHigh ClockRate = 0x09
	ClockRateNone    ClockRate = 0x0a

	// ClockRateReserved covers values the protocol does not define.
	ClockRateReserved ClockRate = 0xff
)

var clockRateFreqs = map[ClockRate]uint32{
	ClockRate32000:  32000,
	ClockRate44100:  44100,
	ClockRate48000:  48000,
	ClockRate88200:  88200,
	ClockRate96000:  96000,
	ClockRate176400: 176400,
	ClockRate192000: 192000,
}

// Frequency returns the nominal sampling frequency in Hz, or an error for
// rates without a single concrete frequency.
func (r ClockRate) Frequency() (uint32, error) {
	freq, ok := clockRateFreqs[r]
	if !ok {
		return 0, fmt.Errorf("clock rate %s has no concrete frequency", r)
	}

	return freq, nil
}

// ClockRateFromFrequency returns the rate identifier for a concrete
// sampling frequency in Hz.
func ClockRateFromFrequency(freq uint32) (ClockRate, error) {
	for rate, f := range clockRateFreqs {
		if f == freq {
			return rate, nil
		}
	}

	return ClockRateReserved, fmt.Errorf("frequency %d is not expressible as a clock rate", freq)
}

// RateMode buckets concrete sampling rates into the three tiers the silicon
// distinguishes. Optical channel counts and mixer dimensions shrink at
// higher tiers.
type RateMode uint8

const (
	RateModeLow RateMode = iota
	RateModeMiddle
	RateModeHigh
)

// Mode returns the rate-mode tier of the clock rate. Rates without a tier
// fold into the low tier.
func (r ClockRate) Mode() RateMode {
	switch r {
	case ClockRate88200, ClockRate96000, ClockRateAnyMid:
		return RateModeMiddle
	case ClockRate176400, ClockRate192000, ClockRateAnyHigh:
		return RateModeHigh
	}

	return RateModeLow
}

// String renders the rate mode for display.
func (m RateMode) String() string {
	switch m {
	case RateModeMiddle:
		return "middle"
	case RateModeHigh:
		return "high"
	}

	return "low"
}

// String renders the rate for display.
func (r ClockRate) String() string {
	switch r {
	case ClockRateAnyLow:
		return "Any-low"
	case ClockRateAnyMid:
		return "Any-mid"
	case ClockRateAnyHigh:
		return "Any-high"
	case ClockRateNone:
		return "None"
	}

	if freq, ok := clockRateFreqs[r]; ok {
		return fmt.Sprintf("%d", freq)
	}

	return fmt.Sprintf("Reserved(0x%02x)", uint8(r))
}

// ClockSource identifies the source of the sampling clock.
type ClockSource uint8

const (
	ClockSourceAes1      ClockSource = 0x00
	ClockSourceAes2      ClockSource = 0x01
	ClockSourceAes3      ClockSource = 0x02
	ClockSourceAes4      ClockSource = 0x03
	ClockSourceAesAny    ClockSource = 0x04
	ClockSourceAdat      ClockSource = 0x05
	ClockSourceTdif      ClockSource = 0x06
	ClockSourceWordClock ClockSource = 0x07
	ClockSourceArx1      ClockSource = 0x08
	ClockSourceArx2      ClockSource = 0x09
	ClockSourceArx3      ClockSource = 0x0a
	ClockSourceArx4      ClockSource = 0x0b
	ClockSourceInternal  ClockSource = 0x0c

	// ClockSourceReserved covers values the protocol does not define.
	ClockSourceReserved ClockSource = 0xff
)

// String renders the source for display.
func (s ClockSource) String() string {
	switch s {
	case ClockSourceAes1:
		return "AES1"
	case ClockSourceAes2:
		return "AES2"
	case ClockSourceAes3:
		return "AES3"
	case ClockSourceAes4:
		return "AES4"
	case ClockSourceAesAny:
		return "AES-ANY"
	case ClockSourceAdat:
		return "ADAT"
	case ClockSourceTdif:
		return "TDIF"
	case ClockSourceWordClock:
		return "Word-Clock"
	case ClockSourceArx1:
		return "ARX1"
	case ClockSourceArx2:
		return "ARX2"
	case ClockSourceArx3:
		return "ARX3"
	case ClockSourceArx4:
		return "ARX4"
	case ClockSourceInternal:
		return "Internal"
	}

	return fmt.Sprintf("Reserved(0x%02x)", uint8(s))
}

// ClockConfig is the negotiated clock selection.
type ClockConfig struct {
	Rate   ClockRate
	Source ClockSource
}

const (
	clockConfigSrcMask   = 0x000000ff
	clockConfigRateMask  = 0x0000ff00
	clockConfigRateShift = 8
)

func clockConfigFromQuad(val uint32) ClockConfig {
	return ClockConfig{
		Rate:   ClockRate((val & clockConfigRateMask) >> clockConfigRateShift),
		Source: ClockSource(val & clockConfigSrcMask),
	}
}

func (c ClockConfig) toQuad(val uint32) uint32 {
	val &^= uint32(clockConfigSrcMask | clockConfigRateMask)
	val |= uint32(c.Source)
	val |= uint32(c.Rate) << clockConfigRateShift

	return val
}

// ClockStatus reports whether the configured source is locked and the rate
// the device nominally runs at.
type ClockStatus struct {
	SourceIsLocked bool
	Rate           ClockRate
}

func clockStatusFromQuad(val uint32) ClockStatus {
	return ClockStatus{
		SourceIsLocked: val&0x00000001 != 0,
		Rate:           ClockRate((val & 0x0000ff00) >> 8),
	}
}

// extSourceStateOrder is the wire ordering of external source state bits.
var extSourceStateOrder = [11]ClockSource{
	ClockSourceAes1,
	ClockSourceAes2,
	ClockSourceAes3,
	ClockSourceAes4,
	ClockSourceAdat,
	ClockSourceTdif,
	ClockSourceArx1,
	ClockSourceArx2,
	ClockSourceArx3,
	ClockSourceArx4,
	ClockSourceWordClock,
}

// ExtSourceStates reports lock and slip state per external clock source.
type ExtSourceStates struct {
	lockedBits  uint16
	slippedBits uint16
}

func extSourceStatesFromQuad(val uint32) ExtSourceStates {
	return ExtSourceStates{
		lockedBits:  uint16(val & 0x0000ffff),
		slippedBits: uint16(val >> 16),
	}
}

func extSourceBit(src ClockSource) (uint, bool) {
	for i, s := range extSourceStateOrder {
		if s == src {
			return uint(i), true
		}
	}

	return 0, false
}

// IsLocked reports whether the given external source carries a lockable
// signal.
func (s ExtSourceStates) IsLocked(src ClockSource) bool {
	bit, ok := extSourceBit(src)

	return ok && s.lockedBits&(1<<bit) != 0
}

// IsSlipped reports whether the given external source slipped since the
// previous read.
func (s ExtSourceStates) IsSlipped(src ClockSource) bool {
	bit, ok := extSourceBit(src)

	return ok && s.slippedBits&(1<<bit) != 0
}

// clockCapsRateOrder and clockCapsSrcOrder fix the order capability entries
// are reported in, matching the capability register bit positions.
var clockCapsRateOrder = [11]ClockRate{
	ClockRate32000, ClockRate44100, ClockRate48000,
	ClockRate88200, ClockRate96000, ClockRate176400, ClockRate192000,
	ClockRateAnyLow, ClockRateAnyMid, ClockRateAnyHigh, ClockRateNone,
}

var clockCapsSrcOrder = [13]ClockSource{
	ClockSourceAes1, ClockSourceAes2, ClockSourceAes3, ClockSourceAes4,
	ClockSourceAesAny, ClockSourceAdat, ClockSourceTdif, ClockSourceWordClock,
	ClockSourceArx1, ClockSourceArx2, ClockSourceArx3, ClockSourceArx4,
	ClockSourceInternal,
}

// ClockCaps is the clock capability register content. It is read once after
// binding and immutable for the session.
type ClockCaps struct {
	RateBits uint16
	SrcBits  uint16
}

func clockCapsFromQuad(val uint32) ClockCaps {
	return ClockCaps{
		RateBits: uint16(val & 0x0000ffff),
		SrcBits:  uint16(val >> 16),
	}
}

// HasRate reports whether the device supports the rate.
func (c ClockCaps) HasRate(rate ClockRate) bool {
	if rate > ClockRateNone {
		return false
	}

	return c.RateBits&(1<<uint(rate)) != 0
}

// HasSource reports whether the device supports the source. A source whose
// reported label is "unused" is treated as unsupported.
func (c ClockCaps) HasSource(src ClockSource, labels []string) bool {
	if src > ClockSourceInternal {
		return false
	}

	if c.SrcBits&(1<<uint(src)) == 0 {
		return false
	}

	if int(src) < len(labels) {
		label := labels[src]
		if label == "Unused" || label == "unused" {
			return false
		}
	} else if len(labels) > 0 {
		return false
	}

	return true
}

// RateEntries returns the supported rates in capability-bit order.
func (c ClockCaps) RateEntries() []ClockRate {
	entries := make([]ClockRate, 0, len(clockCapsRateOrder))
	for _, rate := range clockCapsRateOrder {
		if c.HasRate(rate) {
			entries = append(entries, rate)
		}
	}

	return entries
}

// SrcEntries returns the supported sources in capability-bit order, filtered
// by the device-reported label list.
func (c ClockCaps) SrcEntries(labels []string) []ClockSource {
	entries := make([]ClockSource, 0, len(clockCapsSrcOrder))
	for _, src := range clockCapsSrcOrder {
		if c.HasSource(src, labels) {
			entries = append(entries, src)
		}
	}

	return entries
}

// SourceLabel renders a clock source using the device-reported label list,
// substituting "Stream" for the first stream receiver which devices label
// inconsistently.
func SourceLabel(src ClockSource, labels []string) string {
	if src == ClockSourceArx1 {
		return "Stream"
	}

	if int(src) < len(labels) && labels[src] != "" {
		return labels[src]
	}

	return src.String()
}

// NicknameMaxSize is the size of the nickname register in bytes.
const NicknameMaxSize = 64

// Global section register offsets.
const (
	globalOwnerOffset        = 0x00
	globalLatestNotifyOffset = 0x04
	globalNicknameOffset     = 0x0c
	globalClockSelectOffset  = 0x4c
	globalEnabledOffset      = 0x50
	globalStatusOffset       = 0x54
	globalExtSrcStatesOffset = 0x58
	globalCurrentRateOffset  = 0x5c
	globalVersionOffset      = 0x60
	globalClockCapsOffset    = 0x64
	globalClockNamesOffset   = 0x68
	globalClockNamesMaxSize  = 256
)

// ReadOwnerAddr reads the 1394 address registered to receive notifications.
func (u *Unit) ReadOwnerAddr(timeoutMs int) (uint64, error) {
	raw := make([]byte, 8)
	if err := u.read(u.Sections.Global.Offset+globalOwnerOffset, raw, timeoutMs); err != nil {
		return 0, fmt.Errorf("owner address: %w", err)
	}

	return uint64(getQuad(raw, 0))<<32 | uint64(getQuad(raw, 4)), nil
}

// ReadLatestNotification reads the most recent notification message bits.
func (u *Unit) ReadLatestNotification(timeoutMs int) (uint32, error) {
	val, err := u.readQuad(u.Sections.Global.Offset+globalLatestNotifyOffset, timeoutMs)
	if err != nil {
		return 0, fmt.Errorf("latest notification: %w", err)
	}

	return val, nil
}

// ReadNickname reads the user-assigned device nickname.
func (u *Unit) ReadNickname(timeoutMs int) (string, error) {
	raw := make([]byte, NicknameMaxSize)
	if err := u.read(u.Sections.Global.Offset+globalNicknameOffset, raw, timeoutMs); err != nil {
		return "", fmt.Errorf("nickname: %w", err)
	}

	return parseLabel(raw), nil
}

// WriteNickname stores the user-assigned device nickname.
func (u *Unit) WriteNickname(name string, timeoutMs int) error {
	raw, err := buildLabel(name, NicknameMaxSize)
	if err != nil {
		return err
	}

	if err := u.write(u.Sections.Global.Offset+globalNicknameOffset, raw, timeoutMs); err != nil {
		return fmt.Errorf("nickname: %w", err)
	}

	return nil
}

// ReadClockConfig reads the current clock selection.
func (u *Unit) ReadClockConfig(timeoutMs int) (ClockConfig, error) {
	val, err := u.readQuad(u.Sections.Global.Offset+globalClockSelectOffset, timeoutMs)
	if err != nil {
		return ClockConfig{}, fmt.Errorf("clock select: %w", err)
	}

	return clockConfigFromQuad(val), nil
}

// WriteClockConfig updates the clock selection, preserving the bits outside
// the source and rate fields.
func (u *Unit) WriteClockConfig(config ClockConfig, timeoutMs int) error {
	offset := u.Sections.Global.Offset + globalClockSelectOffset

	val, err := u.readQuad(offset, timeoutMs)
	if err != nil {
		return fmt.Errorf("clock select: %w", err)
	}

	if err := u.writeQuad(offset, config.toQuad(val), timeoutMs); err != nil {
		return fmt.Errorf("clock select: %w", err)
	}

	return nil
}

// ReadEnabled reports whether streaming is enabled by the host driver.
func (u *Unit) ReadEnabled(timeoutMs int) (bool, error) {
	val, err := u.readQuad(u.Sections.Global.Offset+globalEnabledOffset, timeoutMs)
	if err != nil {
		return false, fmt.Errorf("enabled: %w", err)
	}

	return val&1 != 0, nil
}

// ReadClockStatus reads the lock state and nominal rate of the clock.
func (u *Unit) ReadClockStatus(timeoutMs int) (ClockStatus, error) {
	val, err := u.readQuad(u.Sections.Global.Offset+globalStatusOffset, timeoutMs)
	if err != nil {
		return ClockStatus{}, fmt.Errorf("clock status: %w", err)
	}

	return clockStatusFromQuad(val), nil
}

// ReadExtSourceStates reads the lock/slip state of external clock sources.
func (u *Unit) ReadExtSourceStates(timeoutMs int) (ExtSourceStates, error) {
	val, err := u.readQuad(u.Sections.Global.Offset+globalExtSrcStatesOffset, timeoutMs)
	if err != nil {
		return ExtSourceStates{}, fmt.Errorf("external source states: %w", err)
	}

	return extSourceStatesFromQuad(val), nil
}

// ReadCurrentRate reads the sampling frequency in Hz the device currently
// operates at.
func (u *Unit) ReadCurrentRate(timeoutMs int) (uint32, error) {
	val, err := u.readQuad(u.Sections.Global.Offset+globalCurrentRateOffset, timeoutMs)
	if err != nil {
		return 0, fmt.Errorf("current rate: %w", err)
	}

	return val, nil
}

// ReadVersion reads the protocol version quadlet.
func (u *Unit) ReadVersion(timeoutMs int) (uint32, error) {
	val, err := u.readQuad(u.Sections.Global.Offset+globalVersionOffset, timeoutMs)
	if err != nil {
		return 0, fmt.Errorf("version: %w", err)
	}

	return val, nil
}

// ReadClockCaps reads the clock capability register. Devices predating the
// capability register report a fixed low-rate internal-or-stream capability,
// signalled by a global section too small to contain the register.
func (u *Unit) ReadClockCaps(timeoutMs int) (ClockCaps, error) {
	if u.Sections.Global.Size <= globalClockCapsOffset {
		caps := ClockCaps{}
		for _, rate := range []ClockRate{ClockRate44100, ClockRate48000} {
			caps.RateBits |= 1 << uint(rate)
		}
		caps.SrcBits |= 1 << uint(ClockSourceInternal)

		return caps, nil
	}

	val, err := u.readQuad(u.Sections.Global.Offset+globalClockCapsOffset, timeoutMs)
	if err != nil {
		return ClockCaps{}, fmt.Errorf("clock caps: %w", err)
	}

	return clockCapsFromQuad(val), nil
}

// ReadClockSourceLabels reads the device-reported clock source name list.
// Devices whose global section predates the register report a fixed list
// with only the internal source named.
func (u *Unit) ReadClockSourceLabels(timeoutMs int) ([]string, error) {
	if u.Sections.Global.Size <= globalClockNamesMaxSize {
		labels := make([]string, int(ClockSourceInternal)+1)
		labels[ClockSourceInternal] = "Internal"

		return labels, nil
	}

	raw := make([]byte, globalClockNamesMaxSize)
	if err := u.read(u.Sections.Global.Offset+globalClockNamesOffset, raw, timeoutMs); err != nil {
		return nil, fmt.Errorf("clock source labels: %w", err)
	}

	return parseLabels(raw), nil
}
