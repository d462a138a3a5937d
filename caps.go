package dice

import (
	"fmt"
)

// RouterCaps is the capability of the router facility.
type RouterCaps struct {
	IsExposed         bool
	IsReadonly        bool
	IsStorable        bool
	MaximumEntryCount uint16
}

func routerCapsFromRaw(raw []byte) RouterCaps {
	return RouterCaps{
		IsExposed:         raw[3]&0x01 != 0,
		IsReadonly:        raw[3]&0x02 != 0,
		IsStorable:        raw[3]&0x04 != 0,
		MaximumEntryCount: uint16(raw[0])<<8 | uint16(raw[1]),
	}
}

// MixerCaps is the capability of the mixer facility.
type MixerCaps struct {
	IsExposed      bool
	IsReadonly     bool
	IsStorable     bool
	InputDeviceID  uint8
	OutputDeviceID uint8
	InputCount     uint8
	OutputCount    uint8
}

func mixerCapsFromRaw(raw []byte) MixerCaps {
	return MixerCaps{
		IsExposed:      raw[3]&0x01 != 0,
		IsReadonly:     raw[3]&0x02 != 0,
		IsStorable:     raw[3]&0x04 != 0,
		InputDeviceID:  (raw[3] >> 4) & 0x0f,
		OutputDeviceID: raw[2] & 0x0f,
		InputCount:     raw[1],
		OutputCount:    raw[0],
	}
}

// AsicType identifies the silicon generation.
type AsicType uint8

const (
	AsicDiceII  AsicType = 0
	AsicTcd2210 AsicType = 1
	AsicTcd2220 AsicType = 2
)

// String renders the ASIC type for display.
func (t AsicType) String() string {
	switch t {
	case AsicDiceII:
		return "DICE-II"
	case AsicTcd2210:
		return "TCD-2210"
	case AsicTcd2220:
		return "TCD-2220"
	}

	return fmt.Sprintf("Reserved(%d)", uint8(t))
}

// GeneralCaps is the capability of the remaining extension facilities.
type GeneralCaps struct {
	DynamicStreamFormat    bool
	StorageAvail           bool
	PeakAvail              bool
	MaxTxStreams           uint8
	MaxRxStreams           uint8
	StreamFormatIsStorable bool
	Asic                   AsicType
}

func generalCapsFromRaw(raw []byte) GeneralCaps {
	return GeneralCaps{
		DynamicStreamFormat:    raw[3]&0x01 != 0,
		StorageAvail:           raw[3]&0x02 != 0,
		PeakAvail:              raw[3]&0x04 != 0,
		MaxTxStreams:           (raw[3] >> 4) & 0x0f,
		MaxRxStreams:           raw[2] & 0x0f,
		StreamFormatIsStorable: raw[2]&0x10 != 0,
		Asic:                   AsicType(raw[1]),
	}
}

// ExtensionCaps is the content of the capability section.
type ExtensionCaps struct {
	Router  RouterCaps
	Mixer   MixerCaps
	General GeneralCaps
}

const extensionCapsSize = 12

// ExtensionCapsFromRaw decodes a raw capability section image.
func ExtensionCapsFromRaw(raw []byte) (ExtensionCaps, error) {
	if len(raw) < extensionCapsSize {
		return ExtensionCaps{}, fmt.Errorf("%w: capability image is %d bytes, want %d",
			ErrCaps, len(raw), extensionCapsSize)
	}

	return ExtensionCaps{
		Router:  routerCapsFromRaw(raw[0:4]),
		Mixer:   mixerCapsFromRaw(raw[4:8]),
		General: generalCapsFromRaw(raw[8:12]),
	}, nil
}

// ReadCaps reads and caches the capability section. Call after
// ReadExtensionSections.
func (u *Unit) ReadCaps(timeoutMs int) error {
	if u == nil {
		return fmt.Errorf("unit is nil")
	}

	raw := make([]byte, extensionCapsSize)
	if err := u.readExtension(u.Ext.Caps, 0, raw, timeoutMs); err != nil {
		return fmt.Errorf("%w: %w", ErrCaps, err)
	}

	caps, err := ExtensionCapsFromRaw(raw)
	if err != nil {
		return err
	}
	u.Caps = caps

	return nil
}
