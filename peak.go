package dice

import (
	"fmt"
)

// ReadPeakEntries reads the metering table from the peak section. The table
// mirrors the router entry list with the peak field populated; it is
// read-only.
func (u *Unit) ReadPeakEntries(timeoutMs int) ([]RouterEntry, error) {
	if u == nil {
		return nil, fmt.Errorf("unit is nil")
	}

	if !u.Caps.General.PeakAvail {
		return nil, fmt.Errorf("%w: peak metering %w", ErrPeak, ErrNotAvailable)
	}

	entryCount := int(u.Ext.Peak.Size) / routerEntrySize
	if max := int(u.Caps.Router.MaximumEntryCount); entryCount > max {
		entryCount = max
	}

	entries, err := u.readRouterEntries(extensionOffset+u.Ext.Peak.Offset, entryCount, timeoutMs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPeak, err)
	}

	return entries, nil
}
