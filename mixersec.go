package dice

import (
	"fmt"
)

const (
	mixerSaturationOffset = 0x00
	mixerCoeffOffset      = 0x04

	// MixerMaxOutputCount and MixerMaxInputCount fix the register stride
	// of the coefficient matrix regardless of how much of it the device
	// exposes.
	MixerMaxOutputCount = 16
	MixerMaxInputCount  = 18
)

// Coefficients are signed Q2.14 fixed point, carried in the low 16 bits of
// each quadlet. The usable span corresponds to roughly -60 dB to +4 dB.
const (
	MixerCoefMin = -0x8000
	MixerCoefMax = 0x7fff
)

// ReadMixerSaturation reads the per-output saturation bitmap.
func (u *Unit) ReadMixerSaturation(timeoutMs int) ([]bool, error) {
	if u == nil {
		return nil, fmt.Errorf("unit is nil")
	}

	if !u.Caps.Mixer.IsExposed {
		return nil, fmt.Errorf("%w: mixer %w", ErrMixer, ErrNotAvailable)
	}

	val, err := u.readQuad(extensionOffset+u.Ext.Mixer.Offset+mixerSaturationOffset, timeoutMs)
	if err != nil {
		return nil, fmt.Errorf("%w: saturation: %w", ErrMixer, err)
	}

	saturations := make([]bool, u.Caps.Mixer.OutputCount)
	for i := range saturations {
		saturations[i] = val&(1<<uint(i)) != 0
	}

	return saturations, nil
}

// mixerCoefCell returns the byte offset of one coefficient cell relative to
// the coefficient base.
func mixerCoefCell(out, in int) uint32 {
	return uint32(4 * (out*MixerMaxInputCount + in))
}

// ReadMixerCoefs reads the whole coefficient matrix, sized by the mixer
// capability.
func (u *Unit) ReadMixerCoefs(timeoutMs int) ([][]int16, error) {
	if u == nil {
		return nil, fmt.Errorf("unit is nil")
	}

	if !u.Caps.Mixer.IsExposed {
		return nil, fmt.Errorf("%w: mixer %w", ErrMixer, ErrNotAvailable)
	}

	raw := make([]byte, 4*MixerMaxOutputCount*MixerMaxInputCount)
	if err := u.readExtension(u.Ext.Mixer, mixerCoeffOffset, raw, timeoutMs); err != nil {
		return nil, fmt.Errorf("%w: coefficients: %w", ErrMixer, err)
	}

	coefs := make([][]int16, u.Caps.Mixer.OutputCount)
	for out := range coefs {
		coefs[out] = make([]int16, u.Caps.Mixer.InputCount)
		for in := range coefs[out] {
			coefs[out][in] = int16(uint16(getQuad(raw, int(mixerCoefCell(out, in)))))
		}
	}

	return coefs, nil
}

// coefRowPatch is one pending hardware write: a full destination row image
// at its register offset relative to the coefficient base.
type coefRowPatch struct {
	row    int
	offset uint32
	raw    []byte
}

// coefRowPatches compares two equally-sized matrices and returns one patch
// per differing destination row. The diff is computed entirely in memory so
// the write path stays unit-testable without a transport.
func coefRowPatches(old, cur [][]int16) ([]coefRowPatch, error) {
	if len(old) != len(cur) {
		return nil, fmt.Errorf("%w: row count differs: %d against %d",
			ErrInvalidArgument, len(cur), len(old))
	}

	patches := make([]coefRowPatch, 0)
	for row := range cur {
		if len(old[row]) != len(cur[row]) {
			return nil, fmt.Errorf("%w: column count differs in row %d: %d against %d",
				ErrInvalidArgument, row, len(cur[row]), len(old[row]))
		}

		changed := false
		for in := range cur[row] {
			if cur[row][in] != old[row][in] {
				changed = true

				break
			}
		}

		if !changed {
			continue
		}

		raw := make([]byte, 4*len(cur[row]))
		for in, coef := range cur[row] {
			putQuad(raw, 4*in, uint32(uint16(coef)))
		}

		patches = append(patches, coefRowPatch{
			row:    row,
			offset: mixerCoefCell(row, 0),
			raw:    raw,
		})
	}

	return patches, nil
}

// writeMixerCoefPatches transmits previously computed row patches.
func (u *Unit) writeMixerCoefPatches(patches []coefRowPatch, timeoutMs int) error {
	for _, patch := range patches {
		err := u.writeExtension(u.Ext.Mixer, mixerCoeffOffset+patch.offset, patch.raw, timeoutMs)
		if err != nil {
			return fmt.Errorf("%w: row %d: %w", ErrMixer, patch.row, err)
		}
	}

	return nil
}
