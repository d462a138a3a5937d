package dice

import (
	"fmt"
)

// AC3Channels is the number of channels an isochronous stream can flag for
// AC3 passthrough.
const AC3Channels = 32

// FormatEntry describes the negotiated format of one isochronous stream.
type FormatEntry struct {
	PcmCount  uint8
	MidiCount uint8
	Labels    []string
	EnableAC3 [AC3Channels]bool
}

const (
	formatEntrySize      = 268
	formatEntryNamesSize = 256
)

func (e FormatEntry) build() ([]byte, error) {
	raw := make([]byte, formatEntrySize)
	putQuad(raw, 0, uint32(e.PcmCount))
	putQuad(raw, 4, uint32(e.MidiCount))

	labels, err := buildLabels(e.Labels, formatEntryNamesSize)
	if err != nil {
		return nil, err
	}
	copy(raw[8:264], labels)

	var val uint32
	for i, enabled := range e.EnableAC3 {
		if enabled {
			val |= 1 << uint(i)
		}
	}
	putQuad(raw, 264, val)

	return raw, nil
}

func (e *FormatEntry) parse(raw []byte) {
	e.PcmCount = uint8(getQuad(raw, 0))
	e.MidiCount = uint8(getQuad(raw, 4))
	e.Labels = parseLabels(raw[8:264])

	val := getQuad(raw, 264)
	for i := range e.EnableAC3 {
		e.EnableAC3[i] = val&(1<<uint(i)) != 0
	}
}

// readFormatEntrySet reads a tx/rx entry pair list headed by two count
// quadlets at the given absolute offset from BaseAddr.
func (u *Unit) readFormatEntrySet(offset uint32, timeoutMs int) (tx, rx []FormatEntry, err error) {
	head := make([]byte, 8)
	if err := u.read(offset, head, timeoutMs); err != nil {
		return nil, nil, err
	}

	txCount := int(getQuad(head, 0))
	if txCount > int(u.Caps.General.MaxTxStreams) {
		return nil, nil, fmt.Errorf("unexpected count of tx streams: %d, at most %d expected",
			txCount, u.Caps.General.MaxTxStreams)
	}

	rxCount := int(getQuad(head, 4))
	if rxCount > int(u.Caps.General.MaxRxStreams) {
		return nil, nil, fmt.Errorf("unexpected count of rx streams: %d, at most %d expected",
			rxCount, u.Caps.General.MaxRxStreams)
	}

	entries := make([]FormatEntry, txCount+rxCount)
	for i := range entries {
		raw := make([]byte, formatEntrySize)
		if err := u.read(offset+8+uint32(formatEntrySize*i), raw, timeoutMs); err != nil {
			return nil, nil, fmt.Errorf("stream entry %d: %w", i, err)
		}

		entries[i].parse(raw)
	}

	return entries[:txCount], entries[txCount:], nil
}

// ReadStreamFormatEntries reads the negotiated tx/rx stream formats from the
// stream format section.
func (u *Unit) ReadStreamFormatEntries(timeoutMs int) (tx, rx []FormatEntry, err error) {
	if u == nil {
		return nil, nil, fmt.Errorf("unit is nil")
	}

	tx, rx, err = u.readFormatEntrySet(extensionOffset+u.Ext.StreamFormat.Offset, timeoutMs)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrStreamFormat, err)
	}

	return tx, rx, nil
}

// WriteStreamFormatEntries replaces the tx/rx stream format lists. The new
// formats take effect once a load-stream-config command is executed.
func (u *Unit) WriteStreamFormatEntries(tx, rx []FormatEntry, timeoutMs int) error {
	if u == nil {
		return fmt.Errorf("unit is nil")
	}

	if !u.Caps.General.DynamicStreamFormat {
		return fmt.Errorf("%w: dynamic stream format %w", ErrStreamFormat, ErrNotAvailable)
	}

	if len(tx) > int(u.Caps.General.MaxTxStreams) || len(rx) > int(u.Caps.General.MaxRxStreams) {
		return fmt.Errorf("%w: %d/%d streams exceed the maximum of %d/%d",
			ErrInvalidArgument, len(tx), len(rx),
			u.Caps.General.MaxTxStreams, u.Caps.General.MaxRxStreams)
	}

	raw := make([]byte, 8, 8+formatEntrySize*(len(tx)+len(rx)))
	putQuad(raw, 0, uint32(len(tx)))
	putQuad(raw, 4, uint32(len(rx)))
	for i, entry := range append(append([]FormatEntry{}, tx...), rx...) {
		image, err := entry.build()
		if err != nil {
			return fmt.Errorf("%w: stream entry %d: %w", ErrStreamFormat, i, err)
		}

		raw = append(raw, image...)
	}

	if err := u.write(extensionOffset+u.Ext.StreamFormat.Offset, raw, timeoutMs); err != nil {
		return fmt.Errorf("%w: %w", ErrStreamFormat, err)
	}

	return nil
}

// Current configuration blocks are laid out per rate mode at fixed offsets
// within the current configuration section.
const (
	currentConfigBlockStride = 0x1000

	currentConfigRouterBlock = 0
	currentConfigStreamBlock = 1
)

func currentConfigOffset(mode RateMode, block uint32) uint32 {
	return uint32(mode)*2*currentConfigBlockStride + block*currentConfigBlockStride
}

// ReadCurrentRouterEntries reads the router table active for the given rate
// mode from the current configuration section.
func (u *Unit) ReadCurrentRouterEntries(mode RateMode, timeoutMs int) ([]RouterEntry, error) {
	if u == nil {
		return nil, fmt.Errorf("unit is nil")
	}

	base := extensionOffset + u.Ext.CurrentConfig.Offset + currentConfigOffset(mode, currentConfigRouterBlock)

	count, err := u.readQuad(base, timeoutMs)
	if err != nil {
		return nil, fmt.Errorf("%w: entry count: %w", ErrCurrentConfig, err)
	}

	entries, err := u.readRouterEntries(base+4, int(count), timeoutMs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCurrentConfig, err)
	}

	return entries, nil
}

// ReadCurrentStreamFormatEntries reads the stream formats active for the
// given rate mode from the current configuration section.
func (u *Unit) ReadCurrentStreamFormatEntries(mode RateMode, timeoutMs int) (tx, rx []FormatEntry, err error) {
	if u == nil {
		return nil, nil, fmt.Errorf("unit is nil")
	}

	base := extensionOffset + u.Ext.CurrentConfig.Offset + currentConfigOffset(mode, currentConfigStreamBlock)
	tx, rx, err = u.readFormatEntrySet(base, timeoutMs)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrCurrentConfig, err)
	}

	return tx, rx, nil
}
