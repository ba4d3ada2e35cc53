package parser

import (
	"github.com/meoying/mysqlmimic/internal/errs"
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/internal/flags"
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/internal/packet/encoding"
)

// HandshakeResponse41 是来自客户端的握手响应
// 传入的 payload 不包含头部四个字节
// https://dev.mysql.com/doc/dev/mysql-server/latest/page_protocol_connection_phase_packets_protocol_handshake_response.html#sect_protocol_connection_phase_packets_protocol_handshake_response41
type HandshakeResponse41 struct {
	clientFlags   flags.CapabilityFlags
	maxPacketSize uint32
	characterSet  uint32
	username      string
	authResponse  []byte
	database      string
}

func (h *HandshakeResponse41) Parse(payload []byte) error {
	// int<4>	client_flag	Capabilities Flags, CLIENT_PROTOCOL_41 always set.
	// int<4>	max_packet_size	maximum packet size
	// int<1>	character_set	client charset a_protocol_character_set, only the lower 8-bits
	// string[23]	filler	filler to the size of the handshake response packet. All 0s.
	if len(payload) < 32 {
		return errs.ErrPktMalformed
	}
	clientFlags, err := encoding.ReadFixedLengthInteger(payload, 4)
	if err != nil {
		return err
	}
	h.clientFlags = flags.CapabilityFlags(clientFlags)
	maxPacketSize, err := encoding.ReadFixedLengthInteger(payload[4:], 4)
	if err != nil {
		return err
	}
	h.maxPacketSize = uint32(maxPacketSize)
	h.characterSet = uint32(payload[8])

	rest := payload[32:]

	// string<NUL>	username	login user name
	username, n, err := encoding.ReadNullTerminatedString(rest)
	if err != nil {
		return err
	}
	h.username = username
	rest = rest[n:]

	// 我们只和客户端协商 CLIENT_SECURE_CONNECTION，不带 CLIENT_PLUGIN_AUTH_LENENC_CLIENT_DATA
	// int<1>	auth_response_length
	// $length	auth_response
	if len(rest) == 0 {
		return errs.ErrPktMalformed
	}
	authLen := int(rest[0])
	rest = rest[1:]
	if len(rest) < authLen {
		return errs.ErrPktMalformed
	}
	h.authResponse = rest[:authLen]
	rest = rest[authLen:]

	// if capabilities & CLIENT_CONNECT_WITH_DB
	// string<NUL>	database	initial database for the connection
	if h.clientFlags.Has(flags.ClientConnectWithDB) && len(rest) > 0 {
		database, _, err1 := encoding.ReadNullTerminatedString(rest)
		if err1 != nil {
			return err1
		}
		h.database = database
	}
	return nil
}

func (h *HandshakeResponse41) ClientFlags() flags.CapabilityFlags {
	return h.clientFlags
}

func (h *HandshakeResponse41) MaxPacketSize() uint32 {
	return h.maxPacketSize
}

func (h *HandshakeResponse41) CharacterSet() uint32 {
	return h.characterSet
}

func (h *HandshakeResponse41) Username() string {
	return h.username
}

// AuthResponse 客户端算出来的 20 字节挑战应答
func (h *HandshakeResponse41) AuthResponse() []byte {
	return h.authResponse
}

func (h *HandshakeResponse41) Database() string {
	return h.database
}
