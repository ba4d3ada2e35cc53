package datasource

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ResolveDSN 把对外暴露的 DSN 翻译成 database/sql 需要的 (driverName, dataSourceName)
// 形如 sqlite3://<路径> 的走 sqlite3 驱动
// 其余的都按 go-sql-driver 的 mysql DSN 处理，用户名和密码会被注入进去
func ResolveDSN(dsn, user, password string) (string, string, error) {
	if dsn == "" {
		return "", "", errors.New("datasource: 空的 DSN")
	}
	if path, ok := strings.CutPrefix(dsn, "sqlite3://"); ok {
		return "sqlite3", path, nil
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", "", err
	}
	if user != "" {
		cfg.User = user
	}
	if password != "" {
		cfg.Passwd = password
	}
	return "mysql", cfg.FormatDSN(), nil
}

// TranslateError 把上游驱动的错误翻译成 (错误码, SQLState, 错误信息)
// mysql 驱动自带这三样，翻译不了的统一用 2000/HY000
func TranslateError(err error) (uint16, string, string) {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		state := string(myErr.SQLState[:])
		if state == "\x00\x00\x00\x00\x00" {
			state = "HY000"
		}
		return myErr.Number, state, myErr.Message
	}
	return 2000, "HY000", err.Error()
}
