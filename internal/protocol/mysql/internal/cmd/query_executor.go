package cmd

import (
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/rule"
)

var _ Executor = &QueryExecutor{}

// QueryExecutor 负责处理 QUERY 命令
// 查询先交给规则管线，没有任何规则接手的时候兜底转发
type QueryExecutor struct {
	base       *BaseExecutor
	dispatcher *rule.Dispatcher
}

func NewQueryExecutor(dispatcher *rule.Dispatcher, base *BaseExecutor) *QueryExecutor {
	return &QueryExecutor{
		base:       base,
		dispatcher: dispatcher,
	}
}

// Exec
// Query 命令的 payload 格式在
// https://dev.mysql.com/doc/dev/mysql-server/latest/page_protocol_com_query.html
func (exec *QueryExecutor) Exec(ctx *Context, payload []byte) error {
	que := exec.base.parseQuery(payload)
	resp := exec.dispatcher.Dispatch(ctx, ctx.Session, CmdQuery.Byte(), que)
	if resp == nil {
		// 规则都没接手，当成要转发处理
		resp = exec.dispatcher.Forward(ctx, ctx.Session, que)
	}
	return exec.base.writeResponse(ctx.Conn, resp)
}
