package builder

import (
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/internal/packet"
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/internal/packet/encoding"
)

// OKPacketBuilder OK包构建器
type OKPacketBuilder struct {
	// AffectedRows 增删改的时候设置
	AffectedRows uint64
	LastInsertID uint64
	StatusFlags  packet.SeverStatus
	Warnings     uint16
	// Info 人类可读的提示信息，放在包的末尾
	Info string
}

// Build 构造 OK_Packet
// https://dev.mysql.com/doc/dev/mysql-server/latest/page_protocol_basic_ok_packet.html
func (b *OKPacketBuilder) Build() []byte {
	// 头部的四个字节保留，不需要填充
	p := make([]byte, 4, 16+len(b.Info))

	// int<1>  header 0x00 表示OK
	p = append(p, 0x00)

	// int<lenenc>	affected_rows 受影响的行数
	p = append(p, encoding.LengthEncodeInteger(b.AffectedRows)...)

	// int<lenenc>	last_insert_id 最后插入的ID
	p = append(p, encoding.LengthEncodeInteger(b.LastInsertID)...)

	// int<2>	status_flags	SERVER_STATUS_flags_enum 服务器状态
	p = append(p, encoding.FixedLengthInteger(uint64(b.StatusFlags.AsUint16()), 2)...)

	// int<2>	warnings 警告数
	p = append(p, encoding.FixedLengthInteger(uint64(b.Warnings), 2)...)

	// string<EOF>	info human-readable status information
	p = append(p, b.Info...)

	return p
}
