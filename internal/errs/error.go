package errs

import (
	"errors"
)

var ErrInvalidConn = errors.New("异常连接")
var ErrPktSync = errors.New("报文乱序")
var ErrPktTooLarge = errors.New("报文过大")
var ErrPktMalformed = errors.New("报文格式非法")

// ErrClientQuit 客户端主动发送了 QUIT 命令，属于正常退出
var ErrClientQuit = errors.New("客户端退出")

// ErrAccessDenied 鉴权失败
var ErrAccessDenied = errors.New("鉴权失败")

// ErrShortRead 报文头或者报文体还没读完对端就关闭了
var ErrShortRead = errors.New("读到了不完整的报文")
