package packet

// Column 结果集中一个字段的描述
// 结果集中的字段描述不携带默认值
// https://dev.mysql.com/doc/dev/mysql-server/latest/page_protocol_com_query_response_text_resultset_column_definition.html
type Column struct {
	// Schema 数据库名，合成的结果集里一般为空
	Schema   string
	Table    string
	OrgTable string
	Name     string
	OrgName  string
	// Charset 为 0 的时候使用连接默认的字符集
	Charset  uint32
	Length   uint32
	Type     MySQLType
	Flags    uint16
	Decimals byte
}

// NewStringColumn 合成结果集用的默认字段描述
// 规则直接给出的数据没有类型信息，统一按字符串返回
func NewStringColumn(name string) Column {
	return Column{
		Name:    name,
		OrgName: name,
		Charset: CharSetUtf8GeneralCi,
		Length:  MySqlMaxLengthVarChar,
		Type:    MySQLTypeString,
	}
}

// ColumnType database/sql 的 ColumnType 满足这个接口
type ColumnType interface {
	Name() string
	DatabaseTypeName() string
}

// NewDriverColumn 依据上游驱动返回的元数据构造字段描述
// 类型映射不到的都按字符串处理，客户端拿到的都是文本协议的值
func NewDriverColumn(col ColumnType) Column {
	return Column{
		Name:    col.Name(),
		OrgName: col.Name(),
		Charset: CharSetUtf8GeneralCi,
		Length:  TypeMaxLength(col.DatabaseTypeName()),
		Type:    MapDatabaseTypeName(col.DatabaseTypeName()),
	}
}
