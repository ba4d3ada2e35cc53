package datasource

import (
	"context"
	"database/sql"
)

var _ DataSource = &DB{}
var _ Opener = OpenerFunc(nil)

// DB 基于 database/sql 的上游实现
type DB struct {
	driverName     string
	dataSourceName string
	db             *sql.DB
}

// Open 打开一个上游
// dsn 的解析规则见 ResolveDSN
func Open(dsn, user, password string) (*DB, error) {
	driverName, dataSourceName, err := ResolveDSN(dsn, user, password)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	return &DB{
		driverName:     driverName,
		dataSourceName: dataSourceName,
		db:             db,
	}, nil
}

func (d *DB) Query(ctx context.Context, query Query) (*sql.Rows, error) {
	return d.db.QueryContext(ctx, query.SQL)
}

func (d *DB) Exec(ctx context.Context, query Query) (sql.Result, error) {
	return d.db.ExecContext(ctx, query.SQL)
}

// Clone 给一个新连接准备一份独立的上游
// 两份之间不共享连接池，互相关闭也互不影响
func (d *DB) Clone() (DataSource, error) {
	db, err := sql.Open(d.driverName, d.dataSourceName)
	if err != nil {
		return nil, err
	}
	return &DB{
		driverName:     d.driverName,
		dataSourceName: d.dataSourceName,
		db:             db,
	}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// OpenerFunc 把普通函数适配成 Opener
type OpenerFunc func(dsn, user, password string) (DataSource, error)

func (f OpenerFunc) Open(dsn, user, password string) (DataSource, error) {
	return f(dsn, user, password)
}

// DefaultOpener 直接用 Open
func DefaultOpener() Opener {
	return OpenerFunc(func(dsn, user, password string) (DataSource, error) {
		return Open(dsn, user, password)
	})
}
