// Package fw drives IEEE 1394 asynchronous transactions through the Linux
// firewire character device. A Device satisfies the transport interface the
// protocol layer consumes: block and quadlet reads and writes against the
// unit address space, with a per-transaction timeout.
//
// A Device is not safe for concurrent use; the protocol layer dispatches
// transactions one at a time.
package fw

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

var (
	// ErrClosed reports use of a closed or unopened device.
	ErrClosed = errors.New("device closed")

	// ErrTransaction reports a transaction completed by the bus with a
	// response code other than complete.
	ErrTransaction = errors.New("transaction failed")
)

// maxPayload bounds a single block transaction; larger spans are chunked by
// the caller.
const maxPayload = 512

// DevicePaths lists the firewire character devices present on the system.
func DevicePaths() ([]string, error) {
	return filepath.Glob("/dev/fw*")
}

// Device is an open firewire character device.
type Device struct {
	fd      int
	path    string
	closure uint64

	card        uint32
	generation  uint32
	nodeID      uint32
	localNodeID uint32
	rom         []uint32

	evbuf [cdevEventResponseHeader + maxPayload + 64]byte
}

// Open opens the firewire character device at path and caches its bus state
// and configuration ROM.
func Open(path string) (*Device, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	dev := &Device{fd: fd, path: path}
	if err := dev.getInfo(true); err != nil {
		unix.Close(fd)

		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return dev, nil
}

// Close releases the device.
func (d *Device) Close() error {
	if d == nil || d.fd < 0 {
		return ErrClosed
	}

	err := unix.Close(d.fd)
	d.fd = -1

	return err
}

// Path returns the device node this Device was opened from.
func (d *Device) Path() string {
	if d == nil {
		return ""
	}

	return d.path
}

// Card returns the index of the host adapter the node hangs off.
func (d *Device) Card() uint32 {
	if d == nil {
		return 0
	}

	return d.card
}

// Generation returns the cached bus generation.
func (d *Device) Generation() uint32 {
	if d == nil {
		return 0
	}

	return d.generation
}

// NodeID returns the current node id of the device on the bus.
func (d *Device) NodeID() uint32 {
	if d == nil {
		return 0
	}

	return d.nodeID
}

// GUID returns the 64-bit unique id from the bus information block of the
// configuration ROM, or zero when the ROM is too short to carry one.
func (d *Device) GUID() uint64 {
	if d == nil || len(d.rom) < 5 {
		return 0
	}

	return uint64(d.rom[3])<<32 | uint64(d.rom[4])
}

// ConfigROM returns a copy of the configuration ROM quadlets cached at open.
func (d *Device) ConfigROM() []uint32 {
	if d == nil {
		return nil
	}

	return append([]uint32(nil), d.rom...)
}

// getInfo refreshes bus state from the kernel, and the configuration ROM
// when withRom is set.
func (d *Device) getInfo(withRom bool) error {
	var reset cdevEventBusResetData
	info := cdevGetInfo{
		Version:  cdevVersion,
		BusReset: uint64(uintptr(unsafe.Pointer(&reset))),
	}

	var rom [256]uint32
	if withRom {
		info.RomLength = uint32(len(rom) * 4)
		info.Rom = uint64(uintptr(unsafe.Pointer(&rom[0])))
	}

	err := ioctl(uintptr(d.fd), FW_CDEV_IOC_GET_INFO, uintptr(unsafe.Pointer(&info)))
	runtime.KeepAlive(&reset)
	runtime.KeepAlive(&rom)
	if err != nil {
		return fmt.Errorf("get info: %w", err)
	}

	d.card = info.Card
	d.generation = reset.Generation
	d.nodeID = reset.NodeID
	d.localNodeID = reset.LocalNodeID

	if withRom {
		quads := int(info.RomLength) / 4
		if quads > len(rom) {
			quads = len(rom)
		}
		d.rom = append([]uint32(nil), rom[:quads]...)
	}

	return nil
}

// Read performs a block or quadlet read transaction at addr.
func (d *Device) Read(addr uint64, buf []byte, timeoutMs int) error {
	if d == nil || d.fd < 0 {
		return ErrClosed
	}

	tcode := uint32(tcodeReadBlockRequest)
	if len(buf) == 4 {
		tcode = tcodeReadQuadletRequest
	}

	payload, err := d.transaction(tcode, addr, nil, len(buf), timeoutMs)
	if err != nil {
		return fmt.Errorf("read at 0x%012x: %w", addr, err)
	}
	if len(payload) < len(buf) {
		return fmt.Errorf("read at 0x%012x: %w: response holds %d of %d bytes",
			addr, ErrTransaction, len(payload), len(buf))
	}

	copy(buf, payload)

	return nil
}

// Write performs a block or quadlet write transaction at addr.
func (d *Device) Write(addr uint64, buf []byte, timeoutMs int) error {
	if d == nil || d.fd < 0 {
		return ErrClosed
	}

	tcode := uint32(tcodeWriteBlockRequest)
	if len(buf) == 4 {
		tcode = tcodeWriteQuadletRequest
	}

	if _, err := d.transaction(tcode, addr, buf, len(buf), timeoutMs); err != nil {
		return fmt.Errorf("write at 0x%012x: %w", addr, err)
	}

	return nil
}

// transaction submits one request and blocks for its response event. A
// response carrying the stale-generation rcode refreshes the cached
// generation and resends once, since a bus reset between open and use is
// routine.
func (d *Device) transaction(tcode uint32, addr uint64, out []byte, length, timeoutMs int) ([]byte, error) {
	if length > maxPayload {
		return nil, fmt.Errorf("payload of %d bytes exceeds %d", length, maxPayload)
	}

	deadline := time.Now().Add(time.Duration(timeoutMs) * time.Millisecond)

	for attempt := 0; ; attempt++ {
		payload, rcode, err := d.submit(tcode, addr, out, length, deadline)
		if err != nil {
			return nil, err
		}

		if rcode == rcodeGeneration && attempt == 0 {
			if err := d.getInfo(false); err != nil {
				return nil, err
			}

			continue
		}
		if rcode != rcodeComplete {
			return nil, fmt.Errorf("%w: %s", ErrTransaction, rcodeString(rcode))
		}

		return payload, nil
	}
}

func (d *Device) submit(tcode uint32, addr uint64, out []byte, length int, deadline time.Time) ([]byte, uint32, error) {
	d.closure++
	req := cdevSendRequest{
		Tcode:      tcode,
		Length:     uint32(length),
		Offset:     addr,
		Closure:    d.closure,
		Generation: d.generation,
	}
	if len(out) > 0 {
		req.Data = uint64(uintptr(unsafe.Pointer(&out[0])))
	}

	err := ioctl(uintptr(d.fd), FW_CDEV_IOC_SEND_REQUEST, uintptr(unsafe.Pointer(&req)))
	runtime.KeepAlive(out)
	if err != nil {
		return nil, 0, fmt.Errorf("send request: %w", err)
	}

	return d.waitResponse(d.closure, deadline)
}

// waitResponse reads events until the response matching closure arrives or
// the deadline passes. Bus reset events encountered on the way refresh the
// cached bus state.
func (d *Device) waitResponse(closure uint64, deadline time.Time) ([]byte, uint32, error) {
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, 0, fmt.Errorf("wait response: %w", unix.ETIMEDOUT)
		}

		fds := []unix.PollFd{{Fd: int32(d.fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, int(remaining.Milliseconds())+1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, 0, fmt.Errorf("poll: %w", err)
		}
		if n == 0 {
			return nil, 0, fmt.Errorf("wait response: %w", unix.ETIMEDOUT)
		}

		n, err = unix.Read(d.fd, d.evbuf[:])
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read event: %w", err)
		}
		if n < 12 {
			continue
		}

		switch *(*uint32)(unsafe.Pointer(&d.evbuf[8])) {
		case cdevEventBusReset:
			if n >= int(unsafe.Sizeof(cdevEventBusResetData{})) {
				reset := (*cdevEventBusResetData)(unsafe.Pointer(&d.evbuf[0]))
				d.generation = reset.Generation
				d.nodeID = reset.NodeID
				d.localNodeID = reset.LocalNodeID
			}

		case cdevEventResponse:
			if n < cdevEventResponseHeader {
				continue
			}

			resp := (*cdevEventResponseData)(unsafe.Pointer(&d.evbuf[0]))
			if resp.Closure != closure {
				// Response to an abandoned request.
				continue
			}

			length := int(resp.Length)
			if cdevEventResponseHeader+length > n {
				length = n - cdevEventResponseHeader
			}
			payload := append([]byte(nil), d.evbuf[cdevEventResponseHeader:cdevEventResponseHeader+length]...)

			return payload, resp.Rcode, nil
		}
	}
}
