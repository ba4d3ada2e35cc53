package encoding

import (
	"bytes"

	"github.com/meoying/mysqlmimic/internal/errs"
)

// LengthEncodeString 对字符串进行 string<lenenc> 编码
// https://dev.mysql.com/doc/dev/mysql-server/latest/page_protocol_basic_dt_strings.html#sect_protocol_basic_dt_string_le
func LengthEncodeString(str string) []byte {
	// 将字符串的长度以 int<lenenc> 编码形式作为前缀与字符串内容拼接
	return append(LengthEncodeInteger(uint64(len(str))), []byte(str)...)
}

// ReadLengthEncodeString 解析 string<lenenc>
// 第二个返回值是整个编码占用的字节数
func ReadLengthEncodeString(b []byte) (string, int, error) {
	length, n, err := ReadLengthEncodeInteger(b)
	if err != nil {
		return "", 0, err
	}
	// 声明的长度超出了载荷本身
	if uint64(len(b)-n) < length {
		return "", 0, errs.ErrPktMalformed
	}
	return string(b[n : n+int(length)]), n + int(length), nil
}

// NullTerminatedString Strings that are terminated by a 00 byte.
func NullTerminatedString(str string) []byte {
	return append([]byte(str), 0x00)
}

// ReadNullTerminatedString 读取以 00 字节结尾的字符串
// 第二个返回值包含了结尾的 00 字节
func ReadNullTerminatedString(b []byte) (string, int, error) {
	idx := bytes.IndexByte(b, 0x00)
	if idx < 0 {
		return "", 0, errs.ErrPktMalformed
	}
	return string(b[:idx]), idx + 1, nil
}
