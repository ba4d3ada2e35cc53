package builder

import (
	"encoding/binary"
	"fmt"
)

// 这里直接照着 MySQL 文档的命令，所以不符合 Go 的规范

var (
	// ER_ACCESS_DENIED_ERROR 鉴权失败
	ER_ACCESS_DENIED_ERROR = Error{
		code:     1044,
		sqlState: []byte("28000"),
		msg:      "Access denied",
	}

	// ER_UNKNOWN_COM_ERROR 不认识的命令，并且没有任何规则接手
	ER_UNKNOWN_COM_ERROR = Error{
		code:     1047,
		sqlState: []byte("08S01"),
		msg:      "Unknown command",
	}

	// ER_NOT_SUPPORTED_YET 需要转发但是没有任何可用的上游连接
	ER_NOT_SUPPORTED_YET = Error{
		code:     1235,
		sqlState: []byte("42000"),
		msg:      "No handle; cannot forward",
	}

	// ER_NO_SUCH_TABLE 数据表不存在
	ER_NO_SUCH_TABLE = Error{
		code:     1146,
		sqlState: []byte("42S02"),
		msg:      "Table doesn't exist",
	}
)

// Error 表示服务端发生的一个错误
// 这些错误一般都是mysql协议中预定义的错误
// mariadb官方文档中有更好的解释 https://mariadb.com/kb/en/mariadb-error-code-reference/
type Error struct {
	// 错误码
	code uint16
	// 通常固定为五个字符,规则相见上方文档连接
	sqlState []byte
	// 错误信息
	msg string
}

func NewError(code uint16, sqlState string, msg string) Error {
	return Error{
		code:     code,
		sqlState: []byte(sqlState),
		msg:      msg,
	}
}

// NewInternalError 没有更准确的错误码可用时的兜底
func NewInternalError(cause error) Error {
	return Error{
		code:     2000,
		sqlState: []byte("HY000"),
		msg:      fmt.Sprintf("Internal error: %s", cause),
	}
}

func (e Error) WithMsg(msg string) Error {
	e.msg = msg
	return e
}

func (e Error) Code() uint16 {
	return e.code
}

func (e Error) SQLState() []byte {
	return e.sqlState
}

func (e Error) Msg() string {
	return e.msg
}

// ErrorPacketBuilder 错误包构建器
type ErrorPacketBuilder struct {
	// Error 发生的错误
	Error Error
}

func NewErrorPacketBuilder(err Error) *ErrorPacketBuilder {
	return &ErrorPacketBuilder{
		Error: err,
	}
}

// Build 构造 ERR_Packet
// https://dev.mysql.com/doc/dev/mysql-server/latest/page_protocol_basic_err_packet.html
func (b *ErrorPacketBuilder) Build() []byte {
	// 头部四个字节保留
	p := make([]byte, 4, 13+len(b.Error.Msg()))

	// int<1> header 固定 0xFF 代表错误
	p = append(p, 0xFF)

	// int<2>	error_code	错误码
	p = binary.LittleEndian.AppendUint16(p, b.Error.Code())

	// 我们必然支持 CLIENT_PROTOCOL_41，所以要加 state 相关字段
	// string[1] sql_state_marker	固定的 # 作为分隔符
	p = append(p, '#')

	// string[5]  sql_state	SQL state
	p = append(p, b.Error.SQLState()...)

	// string<EOF>	error_message 人可读的错误信息
	p = append(p, b.Error.Msg()...)

	return p
}
