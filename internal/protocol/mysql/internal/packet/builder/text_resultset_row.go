package builder

import (
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/internal/packet/encoding"
)

// TextResultsetRowPacket 文本协议里一行数据的包构建器
// 一行就是所有字段值的 string<lenenc> 拼接，NULL 是单独的 0xFB
// https://dev.mysql.com/doc/dev/mysql-server/latest/page_protocol_com_query_response_text_resultset_row.html
type TextResultsetRowPacket struct {
	// Values 为 nil 的元素代表该字段是 NULL
	Values [][]byte
}

func (b *TextResultsetRowPacket) Build() []byte {
	// 减少切片扩容
	p := make([]byte, 4, 32)
	for _, v := range b.Values {
		if v == nil {
			// 字段值为 NULL 返回 0xFB
			p = append(p, 0xFB)
			continue
		}
		// 字段值 string<lenenc>
		p = append(p, encoding.LengthEncodeString(string(v))...)
	}
	return p
}
