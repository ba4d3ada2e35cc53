package builder

import (
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/internal/packet"
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/internal/packet/encoding"
)

// EOFPacketBuilder EOF包构建器
// 我们不与客户端协商 CLIENT_DEPRECATE_EOF
// 所以字段描述之后和行数据之后都使用这里的 EOF 包收尾
type EOFPacketBuilder struct {
	Warnings    uint16
	StatusFlags packet.SeverStatus
}

// Build 构造 EOF_Packet
// https://dev.mysql.com/doc/dev/mysql-server/latest/page_protocol_basic_eof_packet.html
func (b *EOFPacketBuilder) Build() []byte {
	// 头部的四个字节保留，不需要填充
	p := make([]byte, 4, 9)

	// int<1>	header	0xFE EOF packet header
	p = append(p, 0xFE)

	// int<2>	warnings 警告数
	p = append(p, encoding.FixedLengthInteger(uint64(b.Warnings), 2)...)

	// int<2>	status_flags	SERVER_STATUS_flags_enum 服务器状态
	p = append(p, encoding.FixedLengthInteger(uint64(b.StatusFlags.AsUint16()), 2)...)

	return p
}
