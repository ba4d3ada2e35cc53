package connection

import (
	"context"
	"net"
	"time"

	"github.com/meoying/mysqlmimic/internal/protocol/mysql/internal/flags"
)

// OnCmd 处理一个完整的客户端命令，payload 的第一个字节是命令编号
type OnCmd func(ctx context.Context, conn *Conn, payload []byte) error

// Conn 代表了 MySQL 的一个连接
// 要参考 mysql driver 的设计与实现
type Conn struct {
	conn net.Conn
	// 默认是 maxPacketSize
	maxAllowedPacket int
	// 写入超时时间
	writeTimeout time.Duration
	sequence     uint8
	id           uint32

	// onCmd 处理客户端过来的命令
	onCmd OnCmd
	// authenticator 鉴权策略，默认是密码等于用户名
	authenticator Authenticator
	// scramble 本连接的挑战值，校验完客户端应答之后置空
	scramble []byte

	clientFlags  flags.CapabilityFlags
	characterSet uint32
	username     string
	database     string
}

func NewConn(id uint32, rc net.Conn, auth Authenticator, onCmd OnCmd) *Conn {
	return &Conn{
		conn:             rc,
		maxAllowedPacket: maxPacketSize,
		// 后续要考虑做成可配置的
		writeTimeout:  time.Second * 3,
		onCmd:         onCmd,
		authenticator: auth,
		id:            id,
	}
}

// Loop 完成握手、鉴权，并且开始监听客户端的数据
// 返回错误之后，则意味着这个 Conn 已经不可用
func (mc *Conn) Loop() error {
	// 先建立连接
	err := mc.startHandshake()
	if err != nil {
		return err
	}
	// 鉴权
	err = mc.auth()
	if err != nil {
		return err
	}
	for {
		// 每个命令都是一轮新的报文序列，预期从 0 开始
		mc.sequence = 0
		pkt, err1 := mc.readPacket()
		if err1 != nil {
			return err1
		}
		err1 = mc.onCmd(context.Background(), mc, pkt)
		if err1 != nil {
			return err1
		}
	}
}

func (mc *Conn) Close() error {
	return mc.conn.Close()
}

func (mc *Conn) ID() uint32 {
	return mc.id
}

func (mc *Conn) ClientCapabilityFlags() flags.CapabilityFlags {
	return mc.clientFlags
}

func (mc *Conn) CharacterSet() uint32 {
	return mc.characterSet
}

// Username 鉴权通过之后的登录用户名
func (mc *Conn) Username() string {
	return mc.username
}

// Database 客户端在握手或者 INIT_DB 里选中的库
func (mc *Conn) Database() string {
	return mc.database
}

func (mc *Conn) SetDatabase(database string) {
	mc.database = database
}

// RemoteIP 对端地址，不带端口
func (mc *Conn) RemoteIP() string {
	host, _, err := net.SplitHostPort(mc.conn.RemoteAddr().String())
	if err != nil {
		return mc.conn.RemoteAddr().String()
	}
	return host
}
