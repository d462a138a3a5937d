package fw_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firewire-audio/dice/fw"
)

func TestOpenDevice(t *testing.T) {
	paths, err := fw.DevicePaths()
	require.NoError(t, err)
	if len(paths) == 0 {
		t.Skip("no firewire device present, skipping test")
	}

	dev, err := fw.Open(paths[0])
	if err != nil {
		t.Skipf("Failed to open %s, skipping test: %v", paths[0], err)
	}
	defer dev.Close()

	assert.Equal(t, paths[0], dev.Path())
	assert.NotEmpty(t, dev.ConfigROM())
	assert.NotZero(t, dev.GUID())
}

func TestClosedDevice(t *testing.T) {
	var dev *fw.Device

	assert.ErrorIs(t, dev.Close(), fw.ErrClosed)
	assert.ErrorIs(t, dev.Read(0xfffff0000400, make([]byte, 4), 100), fw.ErrClosed)
	assert.ErrorIs(t, dev.Write(0xfffff0000400, make([]byte, 4), 100), fw.ErrClosed)
	assert.Zero(t, dev.GUID())
}
