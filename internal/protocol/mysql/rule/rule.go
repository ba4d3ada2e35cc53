package rule

import (
	"context"

	"github.com/meoying/mysqlmimic/internal/datasource"
)

// Value 规则槽位上的一个取值
// 三种形态：缺省（nil）、字面量、或者 Callable
// 字面量的具体类型由槽位自己解释
type Value any

// Callable 槽位取值的可执行形态
// 规则命中的时候才会被调用，调用发生在连接自己的 goroutine 上
type Callable interface {
	Apply(ctx *Context) (any, error)
}

// CallableFunc 把普通函数适配成 Callable
type CallableFunc func(ctx *Context) (any, error)

func (f CallableFunc) Apply(ctx *Context) (any, error) {
	return f(ctx)
}

// Context 一次规则调用能看到的东西
type Context struct {
	context.Context
	// Query 本条命令的载荷，查询文本或者库名
	Query string
	// Captures 正则 match 的捕获组，第 0 个是整个匹配
	Captures []string
	// Session 当前连接的会话，钩子可以读写变量袋
	Session *Session
}

// Capture 返回第 idx 个捕获组，越界返回空串
func (c *Context) Capture(idx int) string {
	if idx < 0 || idx >= len(c.Captures) {
		return ""
	}
	return c.Captures[idx]
}

// Rule 规则就是一个匹配器加一组钩子
// 槽位全部可缺省，缺省的槽位什么都不做
// 规则在启动的时候装配好，运行期是只读的，可以被所有连接共享
type Rule struct {
	// Command 命令编号，缺省表示不按命令过滤
	// 字面量是整数，Callable 要返回一个整数
	Command Value

	// Match 缺省时只按 Command 过滤
	// 字面量字符串要求和载荷完全相等
	// *regexp.Regexp 要求能匹配，捕获组会传给后面的钩子
	Match Value

	// Before 命中之后最先执行，返回值被丢弃
	// 失败的话直接回 ERR 并终结本条命令
	Before Value

	// Rewrite 改写转发出去的查询
	// 缺省并且 Match 是正则的时候，转发的是第一个捕获组
	Rewrite Value

	// DBH 本条规则专用的上游，只在转发这一步生效
	DBH datasource.DataSource

	// DSN 转发前先连它，并且换掉连接的活动上游
	DSN         Value
	DSNUser     string
	DSNPassword string

	// Error 解析出非空的 (message, code, sqlstate) 就回 ERR
	// 优先级比 OK 高，两者都会压制转发
	Error Value

	// OK 真值回一个裸 OK，OKSpec 可以带上详细字段
	OK Value

	// Columns 合成结果集的字段名
	Columns Value

	// Data 合成结果集的数据，支持映射、平铺序列、序列的序列和标量
	Data Value

	// After 终结检查之前最后执行，返回值被丢弃
	After Value

	// Forward 显式要求转发
	Forward bool
}

// ErrorSpec Error 槽位解析出来的三元组
type ErrorSpec struct {
	Msg      string
	Code     uint16
	SQLState string
}

// OKSpec OK 槽位解析出来的四元组
type OKSpec struct {
	Msg          string
	AffectedRows uint64
	LastInsertID uint64
	Warnings     uint16
}

// resolve 统一处理槽位的三种形态
func resolve(v Value, ctx *Context) (any, error) {
	switch c := v.(type) {
	case nil:
		return nil, nil
	case Callable:
		return c.Apply(ctx)
	default:
		return v, nil
	}
}
