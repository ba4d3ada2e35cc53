package cmd

import (
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/rule"
)

var _ Executor = &InitDBExecutor{}

// InitDBExecutor 负责处理 INIT_DB 命令
// payload 就是库名，默认行为是记下来然后回 OK
// https://dev.mysql.com/doc/dev/mysql-server/latest/page_protocol_com_init_db.html
type InitDBExecutor struct {
	base       *BaseExecutor
	dispatcher *rule.Dispatcher
}

func NewInitDBExecutor(dispatcher *rule.Dispatcher, base *BaseExecutor) *InitDBExecutor {
	return &InitDBExecutor{
		base:       base,
		dispatcher: dispatcher,
	}
}

func (exec *InitDBExecutor) Exec(ctx *Context, payload []byte) error {
	database := exec.base.parseQuery(payload)
	resp := exec.dispatcher.Dispatch(ctx, ctx.Session, CmdInitDB.Byte(), database)
	if resp == nil || resp.OK != nil {
		ctx.Conn.SetDatabase(database)
		ctx.Session.Database = database
	}
	return exec.base.writeResponse(ctx.Conn, resp)
}
