// Package avc implements the AV/C Audio Subunit FUNCTION_BLOCK command for
// selector, feature and processing function blocks, per clause 10 of the
// 1394TA AV/C Audio Subunit specification. It produces and consumes the
// operand payload of the command frame; the frame header and the bus
// transaction itself belong to a Transactor implementation.
package avc

import (
	"errors"
	"fmt"
)

// OpcodeFunctionBlock is the AV/C opcode shared by all function block
// commands.
const OpcodeFunctionBlock uint8 = 0xb8

// AddrAudioSubunit0 addresses the first audio subunit (subunit type 0x01,
// subunit id 0).
const AddrAudioSubunit0 uint8 = 0x08

// Function block types in the first operand.
const (
	blkTypeSelector   uint8 = 0x80
	blkTypeFeature    uint8 = 0x81
	blkTypeProcessing uint8 = 0x82
)

var (
	// ErrOperandsTooShort reports a response truncated below the length
	// its own header promises.
	ErrOperandsTooShort = errors.New("operands too short")

	// ErrOperandMismatch reports a well-formed response whose echoed
	// fields disagree with the command, meaning the answer belongs to a
	// different transaction.
	ErrOperandMismatch = errors.New("operand mismatch")

	// ErrOperandsTooLong reports control data that does not fit the
	// one-byte length fields of the frame.
	ErrOperandsTooLong = errors.New("operands too long")
)

func shortErr(want, got int) error {
	return fmt.Errorf("%w: want at least %d bytes, got %d", ErrOperandsTooShort, want, got)
}

func mismatchErr(field string, pos int) error {
	return fmt.Errorf("%w: %s at operand %d", ErrOperandMismatch, field, pos)
}

// CtlAttr selects which aspect of a control a command addresses, per clause
// "4.8 Control Attributes".
type CtlAttr uint8

const (
	CtlAttrResolution CtlAttr = 0x01
	CtlAttrMinimum    CtlAttr = 0x02
	CtlAttrMaximum    CtlAttr = 0x03
	CtlAttrDefault    CtlAttr = 0x04
	CtlAttrDuration   CtlAttr = 0x08
	CtlAttrCurrent    CtlAttr = 0x10
	CtlAttrMove       CtlAttr = 0x18
	CtlAttrDelta      CtlAttr = 0x19
)

func (a CtlAttr) String() string {
	switch a {
	case CtlAttrResolution:
		return "resolution"
	case CtlAttrMinimum:
		return "minimum"
	case CtlAttrMaximum:
		return "maximum"
	case CtlAttrDefault:
		return "default"
	case CtlAttrDuration:
		return "duration"
	case CtlAttrCurrent:
		return "current"
	case CtlAttrMove:
		return "move"
	case CtlAttrDelta:
		return "delta"
	}

	return fmt.Sprintf("reserved(0x%02x)", uint8(a))
}

// AudioCh is the audio_channel_number field of feature and processing
// function blocks, kept in its wire encoding. Channel n is stored as n+1;
// use AudioChEach to build it.
type AudioCh uint8

const (
	AudioChMaster AudioCh = 0x00
	AudioChVoid   AudioCh = 0xfe
	AudioChAll    AudioCh = 0xff
)

// AudioChEach addresses a single channel counted from zero.
func AudioChEach(ch uint8) AudioCh {
	return AudioCh(ch + 1)
}

// Op is a single AV/C operation: one opcode plus the codec for its operands.
type Op interface {
	Opcode() uint8

	// BuildOperands serializes the operation into command frame operands.
	BuildOperands() ([]byte, error)

	// ParseOperands deserializes the operands of the response frame back
	// into the operation, verifying the echoed command fields.
	ParseOperands(operands []byte) error
}

// Transactor runs AV/C transactions against a subunit address. Status reads
// the addressed control, Control changes it; both fill the operation from
// the response.
type Transactor interface {
	Status(addr uint8, op Op, timeoutMs uint) error
	Control(addr uint8, op Op, timeoutMs uint) error
}

// funcBlkCtl is the trailing control information of a function block frame:
// a control selector optionally followed by length-prefixed control data.
type funcBlkCtl struct {
	selector uint8
	data     []byte
}

func (c *funcBlkCtl) appendTo(operands []byte) ([]byte, error) {
	if len(c.data) > 0xff {
		return nil, fmt.Errorf("%w: %d bytes of control data", ErrOperandsTooLong, len(c.data))
	}

	operands = append(operands, c.selector)
	if len(c.data) > 0 {
		operands = append(operands, uint8(len(c.data)))
		operands = append(operands, c.data...)
	}

	return operands, nil
}

func (c *funcBlkCtl) parse(raw []byte) error {
	if len(raw) < 1 {
		return shortErr(1, 0)
	}

	c.selector = raw[0]
	c.data = nil
	if len(raw) > 1 {
		length := int(raw[1])
		if len(raw) >= 2+length {
			c.data = append(c.data, raw[2:2+length]...)
		}
	}

	return nil
}

// funcBlk carries the operands common to every function block command:
// block type, block id, control attribute, the selector data specific to
// the block type, then the control information.
type funcBlk struct {
	blkType  uint8
	blkID    uint8
	attr     CtlAttr
	selector []byte
	ctl      funcBlkCtl
}

func (b *funcBlk) buildOperands() ([]byte, error) {
	if len(b.selector) > 0xfe {
		return nil, fmt.Errorf("%w: %d bytes of selector data", ErrOperandsTooLong, len(b.selector))
	}

	operands := make([]byte, 0, 4+len(b.selector)+2+len(b.ctl.data))
	operands = append(operands, b.blkType, b.blkID, uint8(b.attr), uint8(1+len(b.selector)))
	operands = append(operands, b.selector...)

	return b.ctl.appendTo(operands)
}

func (b *funcBlk) parseOperands(operands []byte) error {
	if len(operands) < 4 {
		return shortErr(4, len(operands))
	}

	if operands[0] != b.blkType {
		return mismatchErr("function block type", 0)
	}
	if operands[1] != b.blkID {
		return mismatchErr("function block id", 1)
	}
	if CtlAttr(operands[2]) != b.attr {
		return mismatchErr("control attribute", 2)
	}

	selLen := int(operands[3])
	if len(operands) < 3+selLen {
		return shortErr(3+selLen, len(operands))
	}
	if selLen < 1 {
		return mismatchErr("audio selector length", 3)
	}
	selLen--

	b.selector = append(b.selector[:0], operands[4:4+selLen]...)

	return b.ctl.parse(operands[4+selLen:])
}
