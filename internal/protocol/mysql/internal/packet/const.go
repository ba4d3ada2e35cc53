package packet

// 字符编码类型
const (
	CharSetUtf8GeneralCi    uint32 = 33
	CharSetUtf8mb4GeneralCi uint32 = 45
	CharSetBinary           uint32 = 63
)

const (
	// MaxPacketSize 单一报文最大长度
	MaxPacketSize      = 1<<24 - 1
	MinProtocolVersion = 10

	// ServerVersion 对外的版本横幅，协议里要求以 NUL 结尾
	ServerVersion = "8.4.0-mysqlmimic"

	// ScrambleLength 挑战值固定 20 个字节
	ScrambleLength = 20
)
