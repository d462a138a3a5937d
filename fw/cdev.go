package fw

// Kernel ABI of the firewire character device, mirroring
// <linux/firewire-cdev.h>. The trailing pad fields keep the struct sizes
// identical to the kernel's on 32-bit targets, where Go aligns uint64 to
// four bytes.

// Protocol version negotiated through FW_CDEV_IOC_GET_INFO.
const cdevVersion = 4

// Event types in the third quadlet of every event read from the device.
const (
	cdevEventBusReset = 0x00
	cdevEventResponse = 0x01
)

// Transaction codes.
const (
	tcodeWriteQuadletRequest = 0x0
	tcodeWriteBlockRequest   = 0x1
	tcodeReadQuadletRequest  = 0x4
	tcodeReadBlockRequest    = 0x5
)

// Response codes, including the software ones the kernel synthesizes.
const (
	rcodeComplete      = 0x00
	rcodeConflictError = 0x04
	rcodeDataError     = 0x05
	rcodeTypeError     = 0x06
	rcodeAddressError  = 0x07
	rcodeSendError     = 0x10
	rcodeCancelled     = 0x11
	rcodeBusy          = 0x12
	rcodeGeneration    = 0x13
	rcodeNoAck         = 0x14
)

func rcodeString(rcode uint32) string {
	switch rcode {
	case rcodeComplete:
		return "complete"
	case rcodeConflictError:
		return "conflict error"
	case rcodeDataError:
		return "data error"
	case rcodeTypeError:
		return "type error"
	case rcodeAddressError:
		return "address error"
	case rcodeSendError:
		return "send error"
	case rcodeCancelled:
		return "cancelled"
	case rcodeBusy:
		return "busy"
	case rcodeGeneration:
		return "bus generation changed"
	case rcodeNoAck:
		return "no ack"
	}

	return "unknown rcode"
}

type cdevGetInfo struct {
	Version         uint32
	RomLength       uint32
	Rom             uint64
	BusReset        uint64
	BusResetClosure uint64
	Card            uint32
	_               uint32
}

type cdevSendRequest struct {
	Tcode      uint32
	Length     uint32
	Offset     uint64
	Closure    uint64
	Data       uint64
	Generation uint32
	_          uint32
}

type cdevEventBusResetData struct {
	Closure     uint64
	Type        uint32
	NodeID      uint32
	LocalNodeID uint32
	BmNodeID    uint32
	IrmNodeID   uint32
	RootNodeID  uint32
	Generation  uint32
}

type cdevEventResponseData struct {
	Closure uint64
	Type    uint32
	Rcode   uint32
	Length  uint32
}

// Payload of a response event starts right after the header fields.
const cdevEventResponseHeader = 20
