package connection

import (
	"github.com/meoying/mysqlmimic/internal/errs"
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/internal/flags"
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/internal/packet"
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/internal/packet/builder"
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/internal/packet/parser"
)

// serverCapabilities 我们对外声明的功能特性
// 文本协议的结果集不需要额外的 capability
var serverCapabilities = flags.CapabilityFlags(
	flags.ClientLongPassword |
		flags.ClientConnectWithDB |
		flags.ClientProtocol41 |
		flags.ClientSecureConnection)

// startHandshake
// 在 mysql 协议中，在建立了 TCP 连接之后
// mysql server 端发起 startHandshake
// 而后客户端要响应 startHandshake
func (mc *Conn) startHandshake() error {
	mc.scramble = builder.NewScramble()
	b := builder.NewHandshakeV10Packet(serverCapabilities, packet.ServerStatusAutoCommit, mc.scramble)
	b.ConnectionID = mc.id
	return mc.WritePacket(b.Build())
}

func (mc *Conn) auth() error {
	payload, err := mc.readPacket()
	if err != nil {
		return err
	}
	p := parser.HandshakeResponse41{}
	err = p.Parse(payload)
	if err != nil {
		return err
	}
	mc.clientFlags = p.ClientFlags()
	mc.characterSet = p.CharacterSet()
	mc.username = p.Username()
	mc.database = p.Database()

	ok := mc.authenticator(p.Username(), mc.scramble, p.AuthResponse())
	// 挑战值用过一次就丢弃
	mc.scramble = nil
	if !ok {
		eb := builder.NewErrorPacketBuilder(
			builder.ER_ACCESS_DENIED_ERROR.WithMsg("Access denied for user '" + p.Username() + "'"))
		_ = mc.WritePacket(eb.Build())
		return errs.ErrAccessDenied
	}

	// 写回 OK 响应
	ob := &builder.OKPacketBuilder{StatusFlags: packet.ServerStatusAutoCommit}
	return mc.WritePacket(ob.Build())
}
