package dice

import (
	"fmt"
)

const (
	// BaseAddr is the base of the protocol register space in the node's
	// 1394 address space.
	BaseAddr uint64 = 0xffffe0000000

	// MaxFrameSize is the largest span carried by one block transaction.
	MaxFrameSize = 512
)

// Notification message bits delivered by the device to the owner address.
const (
	NotifyRxCfgChg      uint32 = 0x00000001
	NotifyTxCfgChg      uint32 = 0x00000002
	NotifyLockChg       uint32 = 0x00000010
	NotifyClockAccepted uint32 = 0x00000020
	NotifyExtStatus     uint32 = 0x00000040
)

// Transport carries asynchronous transactions against the register space of
// a node. Reads and writes block until the transaction completes or the
// timeout elapses. Implementations must accept arbitrary lengths that are a
// multiple of four; quadlet-sized spans may be carried as quadlet
// transactions.
type Transport interface {
	Read(addr uint64, buf []byte, timeoutMs int) error
	Write(addr uint64, buf []byte, timeoutMs int) error
}

// Section locates one register section relative to BaseAddr.
type Section struct {
	Offset uint32
	Size   uint32
}

// GeneralSections is the section table at the head of the register space.
type GeneralSections struct {
	Global          Section
	TxStreamFormat  Section
	RxStreamFormat  Section
	ExtSync         Section
	Reserved        Section
}

const generalSectionCount = 5

// Unit is a handle to one DICE node. Hardware state cached on the handle is
// authoritative only after the corresponding cache call succeeded.
type Unit struct {
	tr       Transport
	Sections GeneralSections
	Ext      ExtensionSections
	Caps     ExtensionCaps
}

// NewUnit wraps a transport. ReadSections must be called before any section
// operation.
func NewUnit(tr Transport) *Unit {
	return &Unit{tr: tr}
}

// read performs a chunked read at the given offset from BaseAddr.
func (u *Unit) read(offset uint32, buf []byte, timeoutMs int) error {
	if u == nil || u.tr == nil {
		return fmt.Errorf("unit is not bound to a transport")
	}

	for pos := 0; pos < len(buf); pos += MaxFrameSize {
		end := pos + MaxFrameSize
		if end > len(buf) {
			end = len(buf)
		}

		if err := u.tr.Read(BaseAddr+uint64(offset)+uint64(pos), buf[pos:end], timeoutMs); err != nil {
			return fmt.Errorf("read at offset 0x%08x: %w", offset+uint32(pos), err)
		}
	}

	return nil
}

// write performs a chunked write at the given offset from BaseAddr.
func (u *Unit) write(offset uint32, buf []byte, timeoutMs int) error {
	if u == nil || u.tr == nil {
		return fmt.Errorf("unit is not bound to a transport")
	}

	for pos := 0; pos < len(buf); pos += MaxFrameSize {
		end := pos + MaxFrameSize
		if end > len(buf) {
			end = len(buf)
		}

		if err := u.tr.Write(BaseAddr+uint64(offset)+uint64(pos), buf[pos:end], timeoutMs); err != nil {
			return fmt.Errorf("write at offset 0x%08x: %w", offset+uint32(pos), err)
		}
	}

	return nil
}

// readQuad reads one quadlet at the given offset from BaseAddr.
func (u *Unit) readQuad(offset uint32, timeoutMs int) (uint32, error) {
	var raw [4]byte
	if err := u.read(offset, raw[:], timeoutMs); err != nil {
		return 0, err
	}

	return getQuad(raw[:], 0), nil
}

// writeQuad writes one quadlet at the given offset from BaseAddr.
func (u *Unit) writeQuad(offset uint32, val uint32, timeoutMs int) error {
	var raw [4]byte
	putQuad(raw[:], 0, val)

	return u.write(offset, raw[:], timeoutMs)
}

// ReadSections caches the general section table from the head of the
// register space. Section offsets and sizes are stored on the wire in
// quadlet units and converted to byte units here.
func (u *Unit) ReadSections(timeoutMs int) error {
	raw := make([]byte, generalSectionCount*8)
	if err := u.read(0, raw, timeoutMs); err != nil {
		return fmt.Errorf("general section table: %w", err)
	}

	sections := []*Section{
		&u.Sections.Global,
		&u.Sections.TxStreamFormat,
		&u.Sections.RxStreamFormat,
		&u.Sections.ExtSync,
		&u.Sections.Reserved,
	}
	for i, section := range sections {
		section.Offset = 4 * getQuad(raw, i*8)
		section.Size = 4 * getQuad(raw, i*8+4)
	}

	return nil
}
