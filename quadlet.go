package dice

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// getQuad reads the big-endian quadlet at pos.
func getQuad(raw []byte, pos int) uint32 {
	return binary.BigEndian.Uint32(raw[pos : pos+4])
}

// putQuad stores val as a big-endian quadlet at pos.
func putQuad(raw []byte, pos int, val uint32) {
	binary.BigEndian.PutUint32(raw[pos:pos+4], val)
}

// quadPatches returns the offsets of quadlets differing between two register
// images of equal size. Partial updates write only these.
func quadPatches(old, cur []byte) []int {
	var patches []int
	for pos := 0; pos+4 <= len(cur); pos += 4 {
		if getQuad(old, pos) != getQuad(cur, pos) {
			patches = append(patches, pos)
		}
	}

	return patches
}

// swapLabelQuadlets reverses the byte order inside each quadlet in place.
// Text registers (nickname, clock source names) store their ASCII payload in
// little-endian order within each big-endian quadlet, so the same swap maps
// both directions.
func swapLabelQuadlets(raw []byte) {
	for pos := 0; pos+4 <= len(raw); pos += 4 {
		raw[pos], raw[pos+3] = raw[pos+3], raw[pos]
		raw[pos+1], raw[pos+2] = raw[pos+2], raw[pos+1]
	}
}

// buildLabel serializes a single NUL-padded label into a register image of
// the given size.
func buildLabel(name string, size int) ([]byte, error) {
	if len(name) >= size {
		return nil, fmt.Errorf("label %q does not fit in %d bytes", name, size)
	}

	raw := make([]byte, size)
	copy(raw, name)
	swapLabelQuadlets(raw)

	return raw, nil
}

// parseLabel deserializes a single NUL-terminated label from a register image.
func parseLabel(raw []byte) string {
	data := make([]byte, len(raw))
	copy(data, raw)
	swapLabelQuadlets(data)

	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}

	return string(data)
}

// buildLabels serializes a backslash-separated label sequence, terminated by
// a double backslash, into a register image of the given size.
func buildLabels(labels []string, size int) ([]byte, error) {
	raw := make([]byte, size)

	pos := 0
	for _, label := range labels {
		if pos+len(label)+1 >= size {
			return nil, fmt.Errorf("labels do not fit in %d bytes", size)
		}

		copy(raw[pos:], label)
		raw[pos+len(label)] = '\\'
		pos += len(label) + 1
	}

	if pos+1 >= size {
		return nil, fmt.Errorf("labels do not fit in %d bytes", size)
	}

	raw[pos] = '\\'
	swapLabelQuadlets(raw)

	return raw, nil
}

// parseLabels deserializes a backslash-separated label sequence. The sequence
// terminator is a pair of backslashes, which shows up as an empty chunk when
// splitting on a single backslash.
func parseLabels(raw []byte) []string {
	data := make([]byte, len(raw))
	copy(data, raw)
	swapLabelQuadlets(data)

	labels := make([]string, 0)
	for _, chunk := range bytes.Split(data, []byte{'\\'}) {
		if len(chunk) == 0 {
			break
		}

		labels = append(labels, string(chunk))
	}

	return labels
}
