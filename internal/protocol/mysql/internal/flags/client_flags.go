package flags

// CapabilityFlags 是客户端告诉服务端，它支持什么样的功能特性
// https://dev.mysql.com/doc/dev/mysql-server/latest/group__group__cs__capabilities__flags.html
type CapabilityFlags uint64

func (flags CapabilityFlags) Has(flag CapabilityFlag) bool {
	return uint64(flags)&uint64(flag) > 0
}

func (flags CapabilityFlags) Lower16() uint16 {
	return uint16(flags)
}

func (flags CapabilityFlags) Upper16() uint16 {
	return uint16(flags >> 16)
}

// CapabilityFlag
// 这里我们按需定义，只把用到了的添加到这里
type CapabilityFlag uint64

const (
	ClientLongPassword     CapabilityFlag = 1
	ClientFoundRows        CapabilityFlag = 1 << 1
	ClientLongFlag         CapabilityFlag = 1 << 2
	ClientConnectWithDB    CapabilityFlag = 1 << 3
	ClientProtocol41       CapabilityFlag = 1 << 9
	ClientTransactions     CapabilityFlag = 1 << 13
	ClientSecureConnection CapabilityFlag = 1 << 15
	ClientPluginAuth       CapabilityFlag = 1 << 19
	ClientSessionTrack     CapabilityFlag = 1 << 23
	ClientDeprecateEOF     CapabilityFlag = 1 << 24
	ClientQueryAttributes  CapabilityFlag = 1 << 27
)
