package dice

import (
	"fmt"
)

// RouterEntry wires one source block to one destination block. The peak
// field carries the detected level of the routed signal on readback.
type RouterEntry struct {
	Dst  DstBlk
	Src  SrcBlk
	Peak uint16
}

const routerEntrySize = 4

func (e RouterEntry) build(raw []byte) {
	raw[0] = uint8(e.Peak >> 8)
	raw[1] = uint8(e.Peak)
	raw[2] = e.Src.toWire()
	raw[3] = e.Dst.toWire()
}

func (e *RouterEntry) parse(raw []byte) {
	e.Peak = uint16(raw[0])<<8 | uint16(raw[1])
	e.Src = srcBlkFromWire(raw[2])
	e.Dst = dstBlkFromWire(raw[3])
}

// readRouterEntries reads entryCount packed entries at the given absolute
// offset from BaseAddr.
func (u *Unit) readRouterEntries(offset uint32, entryCount int, timeoutMs int) ([]RouterEntry, error) {
	if entryCount > int(u.Caps.Router.MaximumEntryCount) {
		return nil, fmt.Errorf("%w: %d entries exceed the maximum of %d",
			ErrInvalidArgument, entryCount, u.Caps.Router.MaximumEntryCount)
	}

	raw := make([]byte, entryCount*routerEntrySize)
	if err := u.read(offset, raw, timeoutMs); err != nil {
		return nil, err
	}

	entries := make([]RouterEntry, entryCount)
	for i := range entries {
		entries[i].parse(raw[i*routerEntrySize:])
	}

	return entries, nil
}

// ReadRouterEntries reads the active entry list from the router section.
// The first quadlet of the section carries the entry count.
func (u *Unit) ReadRouterEntries(timeoutMs int) ([]RouterEntry, error) {
	if u == nil {
		return nil, fmt.Errorf("unit is nil")
	}

	if !u.Caps.Router.IsExposed {
		return nil, fmt.Errorf("%w: router %w", ErrRouter, ErrNotAvailable)
	}

	base := extensionOffset + u.Ext.Router.Offset
	count, err := u.readQuad(base, timeoutMs)
	if err != nil {
		return nil, fmt.Errorf("%w: entry count: %w", ErrRouter, err)
	}

	entries, err := u.readRouterEntries(base+4, int(count), timeoutMs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRouter, err)
	}

	return entries, nil
}

// WriteRouterEntries replaces the whole entry table in the router section.
// The hardware has no primitive to patch a single row; the replacement takes
// effect once a load-router command is executed for the running rate mode.
func (u *Unit) WriteRouterEntries(entries []RouterEntry, timeoutMs int) error {
	if u == nil {
		return fmt.Errorf("unit is nil")
	}

	if !u.Caps.Router.IsExposed {
		return fmt.Errorf("%w: router %w", ErrRouter, ErrNotAvailable)
	}

	if len(entries) > int(u.Caps.Router.MaximumEntryCount) {
		return fmt.Errorf("%w: %d entries exceed the maximum of %d",
			ErrInvalidArgument, len(entries), u.Caps.Router.MaximumEntryCount)
	}

	base := extensionOffset + u.Ext.Router.Offset
	if err := u.writeQuad(base, uint32(len(entries)), timeoutMs); err != nil {
		return fmt.Errorf("%w: entry count: %w", ErrRouter, err)
	}

	raw := make([]byte, len(entries)*routerEntrySize)
	for i, entry := range entries {
		entry.build(raw[i*routerEntrySize:])
	}

	if err := u.write(base+4, raw, timeoutMs); err != nil {
		return fmt.Errorf("%w: %w", ErrRouter, err)
	}

	return nil
}
