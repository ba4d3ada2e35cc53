package cmd

import (
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/rule"
)

var _ Executor = &PingExecutor{}

// PingExecutor 负责处理 ping 的命令
type PingExecutor struct {
	base *BaseExecutor
}

func NewPingExecutor(base *BaseExecutor) *PingExecutor {
	return &PingExecutor{base: base}
}

func (p *PingExecutor) Exec(ctx *Context, payload []byte) error {
	return p.base.writeOKRespPacket(ctx.Conn, &rule.OKSpec{})
}
