package builder

import (
	"encoding/binary"

	"github.com/ecodeclub/ekit/randx"
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/internal/flags"
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/internal/packet"
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/internal/packet/encoding"
)

// HandshakeV10Packet 在 mysql 协议中，在建立了 TCP 连接之后
// mysql server 端发起 Handshake
// 而后客户端要响应 Handshake
// https://dev.mysql.com/doc/dev/mysql-server/latest/page_protocol_connection_phase.html#sect_protocol_connection_phase_initial_handshake
// https://dev.mysql.com/doc/dev/mysql-server/latest/page_protocol_connection_phase_packets_protocol_handshake_v10.html
type HandshakeV10Packet struct {
	capabilities flags.CapabilityFlags
	scramble     []byte

	// 以下为协议包内可以用于设置的部分字段
	ProtocolVersion      byte
	ServerVersion        string
	ConnectionID         uint32
	CharacterSet         byte
	StatusFlags          packet.SeverStatus
	AuthPluginDataLength byte
}

func NewHandshakeV10Packet(capabilities flags.CapabilityFlags, serverStatus packet.SeverStatus, scramble []byte) *HandshakeV10Packet {
	return &HandshakeV10Packet{
		capabilities:         capabilities,
		scramble:             scramble,
		ProtocolVersion:      packet.MinProtocolVersion,
		ServerVersion:        packet.ServerVersion,
		StatusFlags:          serverStatus,
		CharacterSet:         byte(packet.CharSetUtf8GeneralCi),
		AuthPluginDataLength: 0x15,
	}
}

func (b *HandshakeV10Packet) Build() []byte {

	p := make([]byte, 4, 64)

	// int<1>	protocol version	Always 10
	p = append(p, b.ProtocolVersion)

	// string<NUL>	server version	human-readable status information
	p = append(p, encoding.NullTerminatedString(b.ServerVersion)...)

	// int<4>	thread id	a.k.a. connection id
	p = binary.LittleEndian.AppendUint32(p, b.ConnectionID)

	// string[8]	auth-plugin-data-part-1	first 8 bytes of the plugin provided data (scramble)
	// int<1>	filler	0x00 byte, terminating the first part of a scramble
	// 挑战值一共 20 个字节
	// 其中 8 个放在 auth-plugin-data-part1
	// 12 个放在 auth-plugin-data-part2
	// 0 作为结尾
	scramble := b.scramble[:packet.ScrambleLength]
	p = append(p, scramble[:8]...)
	p = append(p, 0x00)

	// int<2>	capability_flags_1	The lower 2 bytes of the Capabilities Flags
	p = append(p, encoding.FixedLengthInteger(uint64(b.capabilities.Lower16()), 2)...)

	// int<1>	character_set	default server a_protocol_character_set, only the lower 8-bits
	p = append(p, b.CharacterSet)

	// int<2>	status_flags	SERVER_STATUS_flags_enum
	p = append(p, encoding.FixedLengthInteger(uint64(b.StatusFlags.AsUint16()), 2)...)

	// int<2>	capability_flags_2	The upper 2 bytes of the Capabilities Flags
	p = append(p, encoding.FixedLengthInteger(uint64(b.capabilities.Upper16()), 2)...)

	// int<1>	auth_plugin_data_len	length of the combined auth_plugin_data (scramble)
	p = append(p, b.AuthPluginDataLength)

	// string[10]	reserved	reserved. All 0s.
	p = append(p, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)

	// $length	auth-plugin-data-part-2
	// Rest of the plugin provided data (scramble), $len=MAX(13, length of auth-plugin-data - 8)
	// 0x00 作为结束符
	p = append(p, scramble[8:]...)
	p = append(p, 0x00)

	return p
}

// NewScramble 每个连接握手时生成一次，校验完客户端响应就丢弃
func NewScramble() []byte {
	code, _ := randx.RandCode(packet.ScrambleLength, randx.TypeMixed)
	return []byte(code)
}
