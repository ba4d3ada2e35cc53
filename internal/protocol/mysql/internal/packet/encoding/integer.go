package encoding

import (
	"encoding/binary"

	"github.com/meoying/mysqlmimic/internal/errs"
)

// FixedLengthInteger 用于编码指定长度的整数
// byteSize的合法取值1,2,3,4,6,8
// https://dev.mysql.com/doc/dev/mysql-server/latest/page_protocol_basic_dt_integers.html#sect_protocol_basic_dt_int_fixed
func FixedLengthInteger(value uint64, byteSize int) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, value)
	return b[:byteSize]
}

// ReadFixedLengthInteger 按小端序读取 byteSize 个字节的整数
func ReadFixedLengthInteger(b []byte, byteSize int) (uint64, error) {
	if len(b) < byteSize {
		return 0, errs.ErrPktMalformed
	}
	var value uint64
	for i := 0; i < byteSize; i++ {
		value |= uint64(b[i]) << (8 * i)
	}
	return value, nil
}

// LengthEncodeInteger 对数字进行 int<lenenc> 编码
// https://dev.mysql.com/doc/dev/mysql-server/latest/page_protocol_basic_dt_integers.html#sect_protocol_basic_dt_int_le
func LengthEncodeInteger(value uint64) []byte {
	// 减少切片扩容按4+8容量去声明
	b := make([]byte, 0, 12)
	switch {
	case value < 0xFB:
		// [0, 251)	编码方式 1-byte integer
		b = append(b, byte(value))
	case value <= 0xFFFF:
		// [251, 2^16) 编码方式 0xFC + 2-byte integer
		b = append(b, 0xFC)
		b = append(b, FixedLengthInteger(value, 2)...)
	case value <= 0xFFFFFF:
		// [2^16, 2^24) 编码方式	0xFD + 3-byte integer
		b = append(b, 0xFD)
		b = append(b, FixedLengthInteger(value, 3)...)
	default:
		// [2^24, 2^64)	编码方式 0xFE + 8-byte integer
		b = append(b, 0xFE)
		b = append(b, FixedLengthInteger(value, 8)...)
	}
	return b
}

// ReadLengthEncodeInteger 解析 int<lenenc>
// 第二个返回值是整个编码占用的字节数
func ReadLengthEncodeInteger(b []byte) (uint64, int, error) {
	if len(b) == 0 {
		return 0, 0, errs.ErrPktMalformed
	}
	switch b[0] {
	case 0xFC:
		value, err := ReadFixedLengthInteger(b[1:], 2)
		return value, 3, err
	case 0xFD:
		value, err := ReadFixedLengthInteger(b[1:], 3)
		return value, 4, err
	case 0xFE:
		value, err := ReadFixedLengthInteger(b[1:], 8)
		return value, 9, err
	case 0xFB:
		// 0xFB 在这个位置不是合法的整数首字节，它只会作为行数据中的 NULL 出现
		return 0, 0, errs.ErrPktMalformed
	default:
		// [0, 251) 第一个字节就是数字
		return uint64(b[0]), 1, nil
	}
}
