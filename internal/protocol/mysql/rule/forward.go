package rule

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ecodeclub/ekit/slice"

	"github.com/meoying/mysqlmimic/internal/datasource"
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/internal/packet"
)

// forwardQuery 把查询交给上游执行，并且把驱动的结果翻译成协议响应
// 所有值都按文本协议取回，NULL 保留
// 驱动报错的时候尽量保留它自己的错误码和 SQLState
func forwardQuery(ctx context.Context, handle datasource.DataSource, query string) *Response {
	if returnsRows(query) {
		rows, err := handle.Query(ctx, datasource.Query{SQL: query})
		if err != nil {
			return driverErrResponse(err)
		}
		rs, err := collectRows(rows)
		if err != nil {
			return driverErrResponse(err)
		}
		return &Response{ResultSet: rs}
	}

	res, err := handle.Exec(ctx, datasource.Query{SQL: query})
	if err != nil {
		return driverErrResponse(err)
	}
	affected, _ := res.RowsAffected()
	lastInsertID, _ := res.LastInsertId()
	return &Response{OK: &OKSpec{
		AffectedRows: uint64(affected),
		LastInsertID: uint64(lastInsertID),
	}}
}

// returnsRows 判断一条语句会不会带回结果集
// 我们不解析 SQL，只认语句开头的关键字
func returnsRows(query string) bool {
	q := strings.TrimSpace(query)
	idx := strings.IndexFunc(q, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\r' || r == '\n'
	})
	if idx < 0 {
		idx = len(q)
	}
	switch strings.ToUpper(q[:idx]) {
	case "SELECT", "SHOW", "DESCRIBE", "DESC", "EXPLAIN", "WITH":
		return true
	default:
		return false
	}
}

// collectRows 急切地把驱动的行迭代器消费成文本结果集
func collectRows(rows *sql.Rows) (*ResultSet, error) {
	defer func() {
		_ = rows.Close()
	}()
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	cols := slice.Map(colTypes, func(idx int, src *sql.ColumnType) packet.Column {
		return packet.NewDriverColumn(src)
	})

	var data []Row
	for rows.Next() {
		scanned := make([]any, len(cols))
		// 这里需要用指针给 Scan，统一按 []byte 取文本值
		for i := range scanned {
			var v []byte
			scanned[i] = &v
		}
		if err := rows.Scan(scanned...); err != nil {
			return nil, err
		}
		data = append(data, slice.Map(scanned, func(idx int, src any) []byte {
			return *(src.(*[]byte))
		}))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &ResultSet{Columns: cols, Rows: data}, nil
}

func driverErrResponse(err error) *Response {
	code, state, msg := datasource.TranslateError(err)
	return &Response{Err: &ErrorSpec{
		Msg:      msg,
		Code:     code,
		SQLState: state,
	}}
}
