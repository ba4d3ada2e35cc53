package datasource

import (
	"context"
	"database/sql"
)

//go:generate mockgen -source=types.go -destination=mocks/datasource.mock.go -package=mocks

// Query 发往上游的一次查询
type Query struct {
	SQL string
}

type Executor interface {
	Query(ctx context.Context, query Query) (*sql.Rows, error)
	Exec(ctx context.Context, query Query) (sql.Result, error)
}

// DataSource 一个可以转发查询的上游
// Clone 出来的对象和原对象之间不共享任何可变状态
// 每个连接都只会用自己 Clone 出来的那一份
type DataSource interface {
	Executor
	Clone() (DataSource, error)
	Close() error
}

// Opener 打开一个上游
// 规则里出现 dsn、或者会话变量 dsn 被改写的时候都会走到这里
type Opener interface {
	Open(dsn, user, password string) (DataSource, error)
}
