package cmd

import (
	"context"

	"github.com/meoying/mysqlmimic/internal/protocol/mysql/internal/connection"
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/rule"
)

type Executor interface {
	// Exec 执行命令，并且返回响应
	// 传入的 payload 部分不包含 packet 的头部字段
	Exec(ctx *Context, payload []byte) error
}

type Context struct {
	context.Context
	Conn *connection.Conn
	// Session 这个连接的会话状态，钩子靠它读写变量袋
	Session *rule.Session
}
