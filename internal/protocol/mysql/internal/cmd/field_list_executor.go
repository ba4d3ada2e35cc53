package cmd

import (
	"strings"

	"github.com/meoying/mysqlmimic/internal/protocol/mysql/rule"
)

var _ Executor = &FieldListExecutor{}

// FieldListExecutor 负责处理 FIELD_LIST 命令
// 响应是一串字段描述包加一个 EOF，我们默认不认识任何表，所以默认是空的
// https://dev.mysql.com/doc/dev/mysql-server/latest/page_protocol_com_field_list.html
type FieldListExecutor struct {
	base       *BaseExecutor
	dispatcher *rule.Dispatcher
}

func NewFieldListExecutor(dispatcher *rule.Dispatcher, base *BaseExecutor) *FieldListExecutor {
	return &FieldListExecutor{
		base:       base,
		dispatcher: dispatcher,
	}
}

func (exec *FieldListExecutor) Exec(ctx *Context, payload []byte) error {
	// string<NUL> table 后面跟着字段通配符，匹配只看表名
	table := exec.base.parseQuery(payload)
	if idx := strings.IndexByte(table, 0x00); idx >= 0 {
		table = table[:idx]
	}
	resp := exec.dispatcher.Dispatch(ctx, ctx.Session, CmdFieldList.Byte(), table)
	switch {
	case resp == nil:
		return exec.base.writeFieldsRespPackets(ctx.Conn, nil)
	case resp.ResultSet != nil:
		// 规则合成的结果集只取字段描述部分
		return exec.base.writeFieldsRespPackets(ctx.Conn, resp.ResultSet.Columns)
	case resp.Err != nil:
		return exec.base.writeErrRespPacket(ctx.Conn, resp.Err)
	default:
		return exec.base.writeFieldsRespPackets(ctx.Conn, nil)
	}
}
