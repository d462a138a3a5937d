package avc

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Control selectors of the feature function block, clauses 10.3.1 to
// 10.3.12.
const (
	featureMute             uint8 = 0x01
	featureVolume           uint8 = 0x02
	featureLrBalance        uint8 = 0x03
	featureFrBalance        uint8 = 0x04
	featureBass             uint8 = 0x05
	featureMid              uint8 = 0x06
	featureTreble           uint8 = 0x07
	featureGraphicEqualizer uint8 = 0x08
	featureAutomaticGain    uint8 = 0x09
	featureDelay            uint8 = 0x0a
	featureBassBoost        uint8 = 0x0b
	featureLoudness         uint8 = 0x0c
)

// Control selectors of the processing function block, clause 10.4.
const (
	processingEnable uint8 = 0x01
	processingMode   uint8 = 0x02
	processingMixer  uint8 = 0x03
)

// Boolean control data encoding.
const (
	ctlTrue  uint8 = 0x70
	ctlFalse uint8 = 0x60
)

// Volume and mixer levels outside the regular range.
const (
	VolumeInfinity    int16 = 0x7ffe
	VolumeNegInfinity int16 = -0x8000
)

func boolsToRaw(states []bool) []byte {
	raw := make([]byte, len(states))
	for i, state := range states {
		if state {
			raw[i] = ctlTrue
		} else {
			raw[i] = ctlFalse
		}
	}

	return raw
}

func boolsFromRaw(raw []byte) []bool {
	states := make([]bool, len(raw))
	for i, val := range raw {
		states[i] = val == ctlTrue
	}

	return states
}

func int16sToRaw(levels []int16) []byte {
	raw := make([]byte, 2*len(levels))
	for i, level := range levels {
		binary.BigEndian.PutUint16(raw[2*i:], uint16(level))
	}

	return raw
}

func int16sFromRaw(raw []byte) []int16 {
	levels := make([]int16, len(raw)/2)
	for i := range levels {
		levels[i] = int16(binary.BigEndian.Uint16(raw[2*i:]))
	}

	return levels
}

func uint16sToRaw(vals []uint16) []byte {
	raw := make([]byte, 2*len(vals))
	for i, val := range vals {
		binary.BigEndian.PutUint16(raw[2*i:], val)
	}

	return raw
}

func uint16sFromRaw(raw []byte) []uint16 {
	vals := make([]uint16, len(raw)/2)
	for i := range vals {
		vals[i] = binary.BigEndian.Uint16(raw[2*i:])
	}

	return vals
}

func int8sToRaw(levels []int8) []byte {
	raw := make([]byte, len(levels))
	for i, level := range levels {
		raw[i] = uint8(level)
	}

	return raw
}

func int8sFromRaw(raw []byte) []int8 {
	levels := make([]int8, len(raw))
	for i, val := range raw {
		levels[i] = int8(val)
	}

	return levels
}

// FeatureControl is one control of the feature function block. The set of
// implementations is closed over the controls of clause 10.3 plus
// RawControl for reserved selectors.
type FeatureControl interface {
	featureSelector() uint8
	featureData() []byte
}

// MuteControl, clause 10.3.1.
type MuteControl struct {
	States []bool
}

func (c MuteControl) featureSelector() uint8 { return featureMute }
func (c MuteControl) featureData() []byte    { return boolsToRaw(c.States) }

// VolumeControl, clause 10.3.2. Levels use VolumeInfinity and
// VolumeNegInfinity for the open ends of the scale.
type VolumeControl struct {
	Levels []int16
}

func (c VolumeControl) featureSelector() uint8 { return featureVolume }
func (c VolumeControl) featureData() []byte    { return int16sToRaw(c.Levels) }

// LrBalanceControl, clause 10.3.3.
type LrBalanceControl struct {
	Balance int16
}

func (c LrBalanceControl) featureSelector() uint8 { return featureLrBalance }
func (c LrBalanceControl) featureData() []byte    { return int16sToRaw([]int16{c.Balance}) }

// FrBalanceControl, clause 10.3.4.
type FrBalanceControl struct {
	Balance int16
}

func (c FrBalanceControl) featureSelector() uint8 { return featureFrBalance }
func (c FrBalanceControl) featureData() []byte    { return int16sToRaw([]int16{c.Balance}) }

// BassControl, clause 10.3.5.
type BassControl struct {
	Levels []int8
}

func (c BassControl) featureSelector() uint8 { return featureBass }
func (c BassControl) featureData() []byte    { return int8sToRaw(c.Levels) }

// MidControl, clause 10.3.6.
type MidControl struct {
	Levels []int8
}

func (c MidControl) featureSelector() uint8 { return featureMid }
func (c MidControl) featureData() []byte    { return int8sToRaw(c.Levels) }

// TrebleControl, clause 10.3.7.
type TrebleControl struct {
	Levels []int8
}

func (c TrebleControl) featureSelector() uint8 { return featureTreble }
func (c TrebleControl) featureData() []byte    { return int8sToRaw(c.Levels) }

// GraphicEqualizerControl, clause 10.3.8, first form of the parameters.
type GraphicEqualizerControl struct {
	BandsPresent   [4]uint8
	ExBandsPresent [4]uint8
	Gains          []int8
}

func (c GraphicEqualizerControl) featureSelector() uint8 { return featureGraphicEqualizer }

func (c GraphicEqualizerControl) featureData() []byte {
	raw := make([]byte, 0, 8+len(c.Gains))
	raw = append(raw, c.BandsPresent[:]...)
	raw = append(raw, c.ExBandsPresent[:]...)
	raw = append(raw, int8sToRaw(c.Gains)...)

	return raw
}

// AutomaticGainControl, clause 10.3.9.
type AutomaticGainControl struct {
	States []bool
}

func (c AutomaticGainControl) featureSelector() uint8 { return featureAutomaticGain }
func (c AutomaticGainControl) featureData() []byte    { return boolsToRaw(c.States) }

// DelayControl, clause 10.3.10.
type DelayControl struct {
	Delays []uint16
}

func (c DelayControl) featureSelector() uint8 { return featureDelay }
func (c DelayControl) featureData() []byte    { return uint16sToRaw(c.Delays) }

// BassBoostControl, clause 10.3.11.
type BassBoostControl struct {
	States []bool
}

func (c BassBoostControl) featureSelector() uint8 { return featureBassBoost }
func (c BassBoostControl) featureData() []byte    { return boolsToRaw(c.States) }

// LoudnessControl, clause 10.3.12.
type LoudnessControl struct {
	States []bool
}

func (c LoudnessControl) featureSelector() uint8 { return featureLoudness }
func (c LoudnessControl) featureData() []byte    { return boolsToRaw(c.States) }

// RawControl carries a control with a selector outside the defined set,
// keeping its wire encoding untouched. It is valid for both feature and
// processing function blocks.
type RawControl struct {
	Selector uint8
	Data     []byte
}

func (c RawControl) featureSelector() uint8    { return c.Selector }
func (c RawControl) featureData() []byte       { return c.Data }
func (c RawControl) processingSelector() uint8 { return c.Selector }
func (c RawControl) processingData() []byte    { return c.Data }

func featureControlFromWire(selector uint8, data []byte) (FeatureControl, error) {
	switch selector {
	case featureMute:
		return MuteControl{States: boolsFromRaw(data)}, nil
	case featureVolume:
		return VolumeControl{Levels: int16sFromRaw(data)}, nil
	case featureLrBalance:
		if len(data) < 2 {
			return nil, shortErr(2, len(data))
		}

		return LrBalanceControl{Balance: int16sFromRaw(data)[0]}, nil
	case featureFrBalance:
		if len(data) < 2 {
			return nil, shortErr(2, len(data))
		}

		return FrBalanceControl{Balance: int16sFromRaw(data)[0]}, nil
	case featureBass:
		return BassControl{Levels: int8sFromRaw(data)}, nil
	case featureMid:
		return MidControl{Levels: int8sFromRaw(data)}, nil
	case featureTreble:
		return TrebleControl{Levels: int8sFromRaw(data)}, nil
	case featureGraphicEqualizer:
		if len(data) < 8 {
			return nil, shortErr(8, len(data))
		}

		ctl := GraphicEqualizerControl{Gains: int8sFromRaw(data[8:])}
		copy(ctl.BandsPresent[:], data[0:4])
		copy(ctl.ExBandsPresent[:], data[4:8])

		return ctl, nil
	case featureAutomaticGain:
		return AutomaticGainControl{States: boolsFromRaw(data)}, nil
	case featureDelay:
		return DelayControl{Delays: uint16sFromRaw(data)}, nil
	case featureBassBoost:
		return BassBoostControl{States: boolsFromRaw(data)}, nil
	case featureLoudness:
		return LoudnessControl{States: boolsFromRaw(data)}, nil
	}

	return RawControl{Selector: selector, Data: append([]byte(nil), data...)}, nil
}

// ProcessingControl is one control of the processing function block, clause
// 10.4.
type ProcessingControl interface {
	processingSelector() uint8
	processingData() []byte
}

// ProcessingEnable switches the whole processing function block on or off.
type ProcessingEnable struct {
	Enabled bool
}

func (c ProcessingEnable) processingSelector() uint8 { return processingEnable }

func (c ProcessingEnable) processingData() []byte {
	return boolsToRaw([]bool{c.Enabled})
}

// ProcessingMode selects among block type dependent modes.
type ProcessingMode struct {
	Mode []byte
}

func (c ProcessingMode) processingSelector() uint8 { return processingMode }
func (c ProcessingMode) processingData() []byte    { return c.Mode }

// ProcessingMixer sets mixer levels, in the same encoding as VolumeControl.
type ProcessingMixer struct {
	Levels []int16
}

func (c ProcessingMixer) processingSelector() uint8 { return processingMixer }
func (c ProcessingMixer) processingData() []byte    { return int16sToRaw(c.Levels) }

func processingControlFromWire(selector uint8, data []byte) (ProcessingControl, error) {
	switch selector {
	case processingEnable:
		if len(data) < 1 {
			return nil, shortErr(1, len(data))
		}

		return ProcessingEnable{Enabled: data[0] == ctlTrue}, nil
	case processingMode:
		return ProcessingMode{Mode: append([]byte(nil), data...)}, nil
	case processingMixer:
		return ProcessingMixer{Levels: int16sFromRaw(data)}, nil
	}

	return RawControl{Selector: selector, Data: append([]byte(nil), data...)}, nil
}

// selectorControl is the only control selector of the selector function
// block, clause 10.2.
const selectorControl uint8 = 0x01

// AudioSelector is the FUNCTION_BLOCK command for the selector function
// block. It reads or switches the input plug feeding the block.
type AudioSelector struct {
	FuncBlkID   uint8
	Attr        CtlAttr
	InputPlugID uint8
}

func (op *AudioSelector) Opcode() uint8 {
	return OpcodeFunctionBlock
}

func (op *AudioSelector) funcBlk() funcBlk {
	return funcBlk{
		blkType:  blkTypeSelector,
		blkID:    op.FuncBlkID,
		attr:     op.Attr,
		selector: []byte{op.InputPlugID},
		ctl:      funcBlkCtl{selector: selectorControl},
	}
}

func (op *AudioSelector) BuildOperands() ([]byte, error) {
	blk := op.funcBlk()

	return blk.buildOperands()
}

func (op *AudioSelector) ParseOperands(operands []byte) error {
	blk := op.funcBlk()
	if err := blk.parseOperands(operands); err != nil {
		return err
	}

	if len(blk.selector) != 1 {
		return mismatchErr("audio selector length", 3)
	}
	if blk.ctl.selector != selectorControl {
		return mismatchErr("control selector", 5)
	}
	if len(blk.ctl.data) > 0 {
		return mismatchErr("control data", 7)
	}

	op.InputPlugID = blk.selector[0]

	return nil
}

// AudioFeature is the FUNCTION_BLOCK command for the feature function
// block: one control applied to the addressed channels.
type AudioFeature struct {
	FuncBlkID uint8
	Attr      CtlAttr
	Ch        AudioCh
	Ctl       FeatureControl
}

func (op *AudioFeature) Opcode() uint8 {
	return OpcodeFunctionBlock
}

func (op *AudioFeature) BuildOperands() ([]byte, error) {
	if op.Ctl == nil {
		return nil, errors.New("feature control not set")
	}

	blk := funcBlk{
		blkType:  blkTypeFeature,
		blkID:    op.FuncBlkID,
		attr:     op.Attr,
		selector: []byte{uint8(op.Ch)},
		ctl: funcBlkCtl{
			selector: op.Ctl.featureSelector(),
			data:     op.Ctl.featureData(),
		},
	}

	return blk.buildOperands()
}

func (op *AudioFeature) ParseOperands(operands []byte) error {
	blk := funcBlk{blkType: blkTypeFeature, blkID: op.FuncBlkID, attr: op.Attr}
	if err := blk.parseOperands(operands); err != nil {
		return err
	}

	if len(blk.selector) != 1 {
		return mismatchErr("audio selector length", 3)
	}
	if AudioCh(blk.selector[0]) != op.Ch {
		return mismatchErr("audio channel number", 4)
	}

	ctl, err := featureControlFromWire(blk.ctl.selector, blk.ctl.data)
	if err != nil {
		return fmt.Errorf("feature control: %w", err)
	}
	op.Ctl = ctl

	return nil
}

// AudioProcessing is the FUNCTION_BLOCK command for the processing function
// block: one control applied to a path from an input plug channel to an
// output channel.
type AudioProcessing struct {
	FuncBlkID   uint8
	Attr        CtlAttr
	InputPlugID uint8
	InputCh     AudioCh
	OutputCh    AudioCh
	Ctl         ProcessingControl
}

func (op *AudioProcessing) Opcode() uint8 {
	return OpcodeFunctionBlock
}

func (op *AudioProcessing) BuildOperands() ([]byte, error) {
	if op.Ctl == nil {
		return nil, errors.New("processing control not set")
	}

	blk := funcBlk{
		blkType:  blkTypeProcessing,
		blkID:    op.FuncBlkID,
		attr:     op.Attr,
		selector: []byte{op.InputPlugID, uint8(op.InputCh), uint8(op.OutputCh)},
		ctl: funcBlkCtl{
			selector: op.Ctl.processingSelector(),
			data:     op.Ctl.processingData(),
		},
	}

	return blk.buildOperands()
}

func (op *AudioProcessing) ParseOperands(operands []byte) error {
	blk := funcBlk{blkType: blkTypeProcessing, blkID: op.FuncBlkID, attr: op.Attr}
	if err := blk.parseOperands(operands); err != nil {
		return err
	}

	if len(blk.selector) != 3 {
		return mismatchErr("audio selector length", 3)
	}
	if blk.selector[0] != op.InputPlugID {
		return mismatchErr("input plug id", 4)
	}
	if AudioCh(blk.selector[1]) != op.InputCh {
		return mismatchErr("input channel number", 5)
	}
	if AudioCh(blk.selector[2]) != op.OutputCh {
		return mismatchErr("output channel number", 6)
	}

	ctl, err := processingControlFromWire(blk.ctl.selector, blk.ctl.data)
	if err != nil {
		return fmt.Errorf("processing control: %w", err)
	}
	op.Ctl = ctl

	return nil
}
