package hci

// Encoding of ioctl request numbers, as in asm-generic/ioctl.h.
const (
	iocWrite = uintptr(1)
	iocRead  = uintptr(2)

	iocNRShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30
)

func ioc(dir, typ, nr, size uintptr) uintptr {
	return dir<<iocDirShift | typ<<iocTypeShift | nr<<iocNRShift | size<<iocSizeShift
}

func ioW(typ, nr, size uintptr) uintptr {
	return ioc(iocWrite, typ, nr, size)
}

func ioR(typ, nr, size uintptr) uintptr {
	return ioc(iocRead, typ, nr, size)
}

const (
	ioctlSize = uintptr(4)
	typeHCI   = 72 // 'H'
)

var (
	hciUpDevice      = ioW(typeHCI, 201, ioctlSize) // HCIDEVUP
	hciDownDevice    = ioW(typeHCI, 202, ioctlSize) // HCIDEVDOWN
	hciGetDeviceInfo = ioR(typeHCI, 211, ioctlSize) // HCIGETDEVINFO
)

type hciDevInfo struct {
	id         uint16
	name       [8]byte
	bdaddr     [6]byte
	flags      uint32
	devType    uint8
	features   [8]uint8
	pktType    uint32
	linkPolicy uint32
	linkMode   uint32
	aclMtu     uint16
	aclPkts    uint16
	scoMtu     uint16
	scoPkts    uint16

	stats hciDevStats
}

type hciDevStats struct {
	errRx  uint32
	errTx  uint32
	cmdTx  uint32
	evtRx  uint32
	aclTx  uint32
	aclRx  uint32
	scoTx  uint32
	scoRx  uint32
	byteRx uint32
	byteTx uint32
}
