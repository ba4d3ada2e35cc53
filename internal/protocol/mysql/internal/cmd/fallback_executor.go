package cmd

import (
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/rule"
)

var _ Executor = &FallbackExecutor{}

// FallbackExecutor 接住所有没有专属 Executor 的命令
// 规则还是有机会接手，谁都不接手的时候回「不认识的命令」
type FallbackExecutor struct {
	base       *BaseExecutor
	dispatcher *rule.Dispatcher
}

func NewFallbackExecutor(dispatcher *rule.Dispatcher, base *BaseExecutor) *FallbackExecutor {
	return &FallbackExecutor{
		base:       base,
		dispatcher: dispatcher,
	}
}

func (exec *FallbackExecutor) Exec(ctx *Context, payload []byte) error {
	resp := exec.dispatcher.Dispatch(ctx, ctx.Session, payload[0], exec.base.parseQuery(payload))
	if resp == nil {
		resp = &rule.Response{Err: &rule.ErrorSpec{
			Msg:      "Unknown command",
			Code:     1047,
			SQLState: "08S01",
		}}
	}
	return exec.base.writeResponse(ctx.Conn, resp)
}
