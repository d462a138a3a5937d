package fw

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl performs a generic ioctl syscall.
func ioctl(fd uintptr, req uintptr, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, arg)
	if errno != 0 {
		return errno
	}

	return nil
}

// iow builds an ioctl request code for a write-only operation.
func iow(typ, nr, size uintptr) uintptr {
	const (
		iocNrbits    = 8
		iocTypebits  = 8
		iocSizebits  = 14
		iocNrshift   = 0
		iocTypeshift = iocNrshift + iocNrbits
		iocSizeshift = iocTypeshift + iocTypebits
		iocDirshift  = iocSizeshift + iocSizebits
		iocWrite     = 1
	)

	return ((iocWrite) << iocDirshift) | (typ << iocTypeshift) | (nr << iocNrshift) | (size << iocSizeshift)
}

// iowr builds a read-write ioctl request code.
func iowr(typ, nr, size uintptr) uintptr {
	const (
		iocNrbits    = 8
		iocTypebits  = 8
		iocSizebits  = 14
		iocNrshift   = 0
		iocTypeshift = iocNrshift + iocNrbits
		iocSizeshift = iocTypeshift + iocTypebits
		iocDirshift  = iocSizeshift + iocSizebits
		iocRead      = 2
		iocWrite     = 1
	)

	return ((iocRead | iocWrite) << iocDirshift) | (typ << iocTypeshift) | (nr << iocNrshift) | (size << iocSizeshift)
}

var (
	FW_CDEV_IOC_GET_INFO     uintptr
	FW_CDEV_IOC_SEND_REQUEST uintptr
)

func init() {
	// Firewire cdev IOCTLs ('#' for /dev/fw*)
	FW_CDEV_IOC_GET_INFO = iowr('#', 0x00, unsafe.Sizeof(cdevGetInfo{}))
	FW_CDEV_IOC_SEND_REQUEST = iow('#', 0x01, unsafe.Sizeof(cdevSendRequest{}))
}
