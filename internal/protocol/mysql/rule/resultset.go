package rule

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/ecodeclub/ekit/slice"

	"github.com/meoying/mysqlmimic/internal/protocol/mysql/internal/packet"
)

// Row 文本协议的一行，nil 元素代表 NULL
type Row [][]byte

// ResultSet 合成出来或者从上游带回来的一个结果集
type ResultSet struct {
	Columns []packet.Column
	Rows    []Row
}

// Response 一条客户端命令的终结响应
// 三个字段里恰好有一个非空
type Response struct {
	Err       *ErrorSpec
	OK        *OKSpec
	ResultSet *ResultSet
}

// buildResultSet 把 data 槽位的值摆成结果集
// 支持四种形态：
//   - 映射：两列，按键排序，一行一个键值对
//   - 平铺序列：单列
//   - 序列的序列：一行一个内层序列
//   - 标量：提升成一行一列
//
// names 是 columns 槽位给的字段名，不够的用下标补齐
func buildResultSet(data any, names []string) (*ResultSet, error) {
	var rows []Row
	switch d := data.(type) {
	case nil:
		rows = nil
	case map[string]any:
		keys := make([]string, 0, len(d))
		for k := range d {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rows = slice.Map(keys, func(idx int, k string) Row {
			return Row{[]byte(k), renderCell(d[k])}
		})
	case []any:
		// 全是内层序列的时候按行展开，否则按单列处理
		if isNested(d) {
			rows = slice.Map(d, func(idx int, item any) Row {
				inner := item.([]any)
				return slice.Map(inner, func(idx int, cell any) []byte {
					return renderCell(cell)
				})
			})
		} else {
			rows = slice.Map(d, func(idx int, cell any) Row {
				return Row{renderCell(cell)}
			})
		}
	case []string:
		rows = slice.Map(d, func(idx int, cell string) Row {
			return Row{[]byte(cell)}
		})
	default:
		// 标量提升成一行一列
		rows = []Row{{renderCell(d)}}
	}

	width := len(names)
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	if width == 0 && len(names) == 0 {
		return nil, fmt.Errorf("rule: data 槽位给出的结果集没有任何列")
	}

	cols := make([]packet.Column, 0, width)
	for i := 0; i < width; i++ {
		name := strconv.Itoa(i)
		if i < len(names) {
			name = names[i]
		}
		cols = append(cols, packet.NewStringColumn(name))
	}
	return &ResultSet{Columns: cols, Rows: rows}, nil
}

// isNested 只有每个元素都是序列的时候才按「序列的序列」展开
func isNested(items []any) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if _, ok := item.([]any); !ok {
			return false
		}
	}
	return true
}

// renderCell 所有值都按文本协议渲染，NULL 保留
func renderCell(v any) []byte {
	if v == nil {
		return nil
	}
	return []byte(fmt.Sprint(v))
}
