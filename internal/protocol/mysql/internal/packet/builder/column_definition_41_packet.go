package builder

import (
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/internal/packet"
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/internal/packet/encoding"
)

// ColumnDefinition41Packet 字段描述包构建器
// https://dev.mysql.com/doc/dev/mysql-server/latest/page_protocol_com_query_response_text_resultset_column_definition.html
type ColumnDefinition41Packet struct {
	Column packet.Column
}

func (b *ColumnDefinition41Packet) Build() []byte {
	// 减少切片扩容
	p := make([]byte, 4, 48)

	col := b.Column
	charset := col.Charset
	if charset == 0 {
		charset = packet.CharSetUtf8GeneralCi
	}

	// catalog string<lenenc> 目录，恒为 def
	p = append(p, encoding.LengthEncodeString("def")...)

	// schema string<lenenc> 数据库
	p = append(p, encoding.LengthEncodeString(col.Schema)...)

	// table string<lenenc> 虚拟数据表名
	p = append(p, encoding.LengthEncodeString(col.Table)...)

	// org_table string<lenenc> 物理数据表名
	p = append(p, encoding.LengthEncodeString(col.OrgTable)...)

	// name string<lenenc> 虚拟字段名
	p = append(p, encoding.LengthEncodeString(col.Name)...)

	// org_name string<lenenc> 物理字段名
	p = append(p, encoding.LengthEncodeString(col.OrgName)...)

	// length of fixed length fields 固定是 0x0c
	p = append(p, 0x0C)

	// character_set int<2> 编码
	p = append(p, encoding.FixedLengthInteger(uint64(charset), 2)...)

	// column_length int<4> 字段类型最大长度
	p = append(p, encoding.FixedLengthInteger(uint64(col.Length), 4)...)

	// type int<1> 字段类型
	p = append(p, byte(col.Type))

	// flags int<2> 标志
	p = append(p, encoding.FixedLengthInteger(uint64(col.Flags), 2)...)

	// decimals int<1> 小数点
	p = append(p, col.Decimals)

	// 填充结束包
	p = append(p, 0, 0)

	return p
}
