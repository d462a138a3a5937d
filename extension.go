package dice

import (
	"errors"
	"fmt"
)

// extensionOffset is the base of the protocol extension register space,
// relative to BaseAddr.
const extensionOffset uint32 = 0x00200000

// ExtensionSections is the section table at the head of the extension
// register space.
type ExtensionSections struct {
	Caps          Section
	Cmd           Section
	Mixer         Section
	Peak          Section
	Router        Section
	StreamFormat  Section
	CurrentConfig Section
	Standalone    Section
	Application   Section
}

const extensionSectionCount = 9

// Errors distinguishing which extension facility a failure belongs to.
var (
	ErrCaps          = errors.New("capability section")
	ErrCmd           = errors.New("command section")
	ErrMixer         = errors.New("mixer section")
	ErrPeak          = errors.New("peak section")
	ErrRouter        = errors.New("router section")
	ErrStreamFormat  = errors.New("stream format section")
	ErrCurrentConfig = errors.New("current configuration section")
	ErrStandalone    = errors.New("standalone section")
	ErrApplication   = errors.New("application section")

	// ErrNotAvailable reports a facility the device does not expose.
	ErrNotAvailable = errors.New("not available")

	// ErrInvalidArgument reports a caller input rejected before any
	// hardware transaction.
	ErrInvalidArgument = errors.New("invalid argument")
)

// readExtension performs a chunked read within an extension section.
func (u *Unit) readExtension(section Section, offset uint32, buf []byte, timeoutMs int) error {
	return u.read(extensionOffset+section.Offset+offset, buf, timeoutMs)
}

// writeExtension performs a chunked write within an extension section.
func (u *Unit) writeExtension(section Section, offset uint32, buf []byte, timeoutMs int) error {
	return u.write(extensionOffset+section.Offset+offset, buf, timeoutMs)
}

// ReadExtensionSections caches the extension section table. Offsets and
// sizes are stored on the wire in quadlet units and converted to byte units
// here.
func (u *Unit) ReadExtensionSections(timeoutMs int) error {
	if u == nil {
		return fmt.Errorf("unit is nil")
	}

	raw := make([]byte, extensionSectionCount*8)
	if err := u.read(extensionOffset, raw, timeoutMs); err != nil {
		return fmt.Errorf("extension section table: %w", err)
	}

	sections := []*Section{
		&u.Ext.Caps,
		&u.Ext.Cmd,
		&u.Ext.Mixer,
		&u.Ext.Peak,
		&u.Ext.Router,
		&u.Ext.StreamFormat,
		&u.Ext.CurrentConfig,
		&u.Ext.Standalone,
		&u.Ext.Application,
	}
	for i, section := range sections {
		section.Offset = 4 * getQuad(raw, i*8)
		section.Size = 4 * getQuad(raw, i*8+4)
	}

	return nil
}
