package dice

import (
	"fmt"
	"time"
)

// Opcode identifies a command executed through the command section.
type Opcode uint16

const (
	OpcodeNoOp                   Opcode = 0x00
	OpcodeLoadRouter             Opcode = 0x01
	OpcodeLoadStreamConfig       Opcode = 0x02
	OpcodeLoadRouterStreamConfig Opcode = 0x03
	OpcodeLoadConfigFromFlash    Opcode = 0x04
	OpcodeStoreConfigToFlash     Opcode = 0x05
)

const (
	cmdOpcodeOffset = 0x00
	cmdReturnOffset = 0x04

	cmdExecute = 0x80

	cmdPollCount    = 10
	cmdPollInterval = 50 * time.Millisecond
)

func rateModeFlag(mode RateMode) uint8 {
	switch mode {
	case RateModeMiddle:
		return 2
	case RateModeHigh:
		return 4
	}

	return 1
}

// ExecuteCommand initiates a command and polls until the device clears the
// execute flag, returning the command's result quadlet. Load commands carry
// the rate mode whose configuration block they apply.
func (u *Unit) ExecuteCommand(opcode Opcode, mode RateMode, timeoutMs int) (uint32, error) {
	if u == nil {
		return 0, fmt.Errorf("unit is nil")
	}

	switch opcode {
	case OpcodeLoadRouter:
		// Quirk carried over from the protocol documentation: router
		// mutability is reported through the mixer capability flags.
		if u.Caps.Mixer.IsReadonly {
			return 0, fmt.Errorf("%w: router configuration is immutable", ErrCmd)
		}
	case OpcodeLoadStreamConfig:
		if !u.Caps.General.DynamicStreamFormat {
			return 0, fmt.Errorf("%w: stream format configuration is immutable", ErrCmd)
		}
	case OpcodeLoadRouterStreamConfig:
		if u.Caps.Mixer.IsReadonly && !u.Caps.General.DynamicStreamFormat {
			return 0, fmt.Errorf("%w: configuration is immutable", ErrCmd)
		}
	case OpcodeLoadConfigFromFlash, OpcodeStoreConfigToFlash:
		if !u.Caps.General.StorageAvail {
			return 0, fmt.Errorf("%w: storage is %w", ErrCmd, ErrNotAvailable)
		}
	}

	var raw [4]byte
	raw[0] = cmdExecute
	switch opcode {
	case OpcodeLoadRouter, OpcodeLoadStreamConfig, OpcodeLoadRouterStreamConfig:
		raw[1] = rateModeFlag(mode)
	}
	raw[2] = uint8(opcode >> 8)
	raw[3] = uint8(opcode)

	base := extensionOffset + u.Ext.Cmd.Offset
	if err := u.write(base+cmdOpcodeOffset, raw[:], timeoutMs); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCmd, err)
	}

	for count := 0; count < cmdPollCount; count++ {
		time.Sleep(cmdPollInterval)

		val, err := u.readQuad(base+cmdOpcodeOffset, timeoutMs)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrCmd, err)
		}

		if val&(uint32(cmdExecute)<<24) == 0 {
			ret, err := u.readQuad(base+cmdReturnOffset, timeoutMs)
			if err != nil {
				return 0, fmt.Errorf("%w: %w", ErrCmd, err)
			}

			return ret, nil
		}
	}

	return 0, fmt.Errorf("%w: operation timeout", ErrCmd)
}
