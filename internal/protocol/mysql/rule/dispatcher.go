package rule

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/meoying/mysqlmimic/internal/datasource"
)

// Dispatcher 按顺序把一条客户端命令喂给规则列表
// 规则列表在启动时装配好，运行期只读，所有连接共享同一个 Dispatcher
type Dispatcher struct {
	rules  []Rule
	logger *slog.Logger
}

func NewDispatcher(rules []Rule, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		rules:  rules,
		logger: logger,
	}
}

// Dispatch 走一遍规则列表，返回本条命令的终结响应
// 返回 nil 表示没有任何规则终结这条命令，由调用方决定兜底行为
// 一条命令至多产生一个终结响应
func (d *Dispatcher) Dispatch(ctx context.Context, sess *Session, command byte, query string) *Response {
	for i := range d.rules {
		r := &d.rules[i]
		last := i == len(d.rules)-1
		resp := d.apply(ctx, sess, r, last, command, query)
		if resp != nil {
			return resp
		}
		// 命中但是什么都没产生的规则不终结，继续往后走
	}
	return nil
}

// Forward 没有任何规则接手时的兜底转发
func (d *Dispatcher) Forward(ctx context.Context, sess *Session, query string) *Response {
	return d.forward(ctx, sess.Handle, query)
}

// apply 对一条规则跑完整个钩子管线
// 返回 nil 表示这条规则没有命中、或者命中了但没有终结命令
func (d *Dispatcher) apply(ctx context.Context, sess *Session, r *Rule, last bool, command byte, query string) *Response {
	ictx := &Context{
		Context: ctx,
		Query:   query,
		Session: sess,
	}

	// 命令门槛
	if r.Command != nil {
		cmd, err := d.resolveCommand(r.Command, ictx)
		if err != nil {
			return ruleErrResponse(err)
		}
		if cmd != command {
			return nil
		}
	}

	// 匹配门槛，正则的捕获组喂给后面所有钩子
	var isRegex bool
	if r.Match != nil {
		m, err := resolve(r.Match, ictx)
		if err != nil {
			return ruleErrResponse(err)
		}
		switch matcher := m.(type) {
		case string:
			if matcher != query {
				return nil
			}
		case *regexp.Regexp:
			sub := matcher.FindStringSubmatch(query)
			if sub == nil {
				return nil
			}
			isRegex = true
			ictx.Captures = sub
		default:
			return ruleErrResponse(fmt.Errorf("rule: match 槽位解析出了 %T，只认识字符串和正则", m))
		}
	}

	var resp *Response

	// before 失败的话直接终结，但 after 还是要跑
	if r.Before != nil {
		if _, err := resolve(r.Before, ictx); err != nil {
			resp = ruleErrResponse(err)
		}
	}

	if resp == nil {
		resp = d.applyResponse(ictx, r, last, isRegex, query)
	}

	// after 在终结检查之前跑，返回值丢弃
	// 这个时候响应可能已经定下来了，after 自己的失败只能记日志
	if r.After != nil {
		if _, err := resolve(r.After, ictx); err != nil {
			if resp == nil {
				resp = ruleErrResponse(err)
			} else {
				d.logger.Error("after 钩子执行失败", "错误", err)
			}
		}
	}

	return resp
}

// applyResponse 跑 rewrite 之后的产出步骤，返回终结响应或者 nil
func (d *Dispatcher) applyResponse(ictx *Context, r *Rule, last bool, isRegex bool, query string) *Response {
	// 转发出去的查询：rewrite 优先
	// 正则匹配并且没有 rewrite 的时候默认用第一个捕获组
	forwarded := query
	if r.Rewrite != nil {
		rewritten, err := resolve(r.Rewrite, ictx)
		if err != nil {
			return ruleErrResponse(err)
		}
		if rewritten != nil {
			forwarded = fmt.Sprint(rewritten)
		}
	} else if isRegex && len(ictx.Captures) > 1 {
		forwarded = ictx.Captures[1]
	}

	// error 比 ok 优先，两者都压制转发
	if r.Error != nil {
		spec, err := d.resolveError(r.Error, ictx)
		if err != nil {
			return ruleErrResponse(err)
		}
		if spec != nil {
			return &Response{Err: spec}
		}
	}

	if r.OK != nil {
		spec, err := d.resolveOK(r.OK, ictx)
		if err != nil {
			return ruleErrResponse(err)
		}
		if spec != nil {
			return &Response{OK: spec}
		}
	}

	// columns 和 data 合起来是一个结果集
	var names []string
	hasColumns := false
	if r.Columns != nil {
		resolved, err := resolve(r.Columns, ictx)
		if err != nil {
			return ruleErrResponse(err)
		}
		if resolved != nil {
			names, err = toNames(resolved)
			if err != nil {
				return ruleErrResponse(err)
			}
			hasColumns = true
		}
	}
	if r.Data != nil {
		data, err := resolve(r.Data, ictx)
		if err != nil {
			return ruleErrResponse(err)
		}
		rs, err := buildResultSet(data, names)
		if err != nil {
			return ruleErrResponse(err)
		}
		return &Response{ResultSet: rs}
	}
	if hasColumns {
		rs, err := buildResultSet(nil, names)
		if err != nil {
			return ruleErrResponse(err)
		}
		return &Response{ResultSet: rs}
	}

	// 转发是终结步骤
	// 只有在还没有任何产出、并且规则表达了转发意图（或者已经走到底）的时候才会发生
	if r.DBH != nil || r.DSN != nil || r.Forward || last {
		handle := ictx.Session.Handle
		if r.DSN != nil {
			dsn, err := resolve(r.DSN, ictx)
			if err != nil {
				return ruleErrResponse(err)
			}
			if dsn != nil {
				if err := ictx.Session.Connect(fmt.Sprint(dsn), r.DSNUser, r.DSNPassword); err != nil {
					return driverErrResponse(err)
				}
				handle = ictx.Session.Handle
			}
		}
		if r.DBH != nil {
			handle = r.DBH
		}
		return d.forward(ictx.Context, handle, forwarded)
	}

	return nil
}

func (d *Dispatcher) forward(ctx context.Context, handle datasource.DataSource, query string) *Response {
	if handle == nil {
		return &Response{Err: &ErrorSpec{
			Msg:      "No handle; cannot forward",
			Code:     1235,
			SQLState: "42000",
		}}
	}
	return forwardQuery(ctx, handle, query)
}

func (d *Dispatcher) resolveCommand(v Value, ictx *Context) (byte, error) {
	resolved, err := resolve(v, ictx)
	if err != nil {
		return 0, err
	}
	switch c := resolved.(type) {
	case byte:
		return c, nil
	case int:
		return byte(c), nil
	case int64:
		return byte(c), nil
	case uint64:
		return byte(c), nil
	case float64:
		return byte(c), nil
	default:
		return 0, fmt.Errorf("rule: command 槽位解析出了 %T，需要一个整数", resolved)
	}
}

func (d *Dispatcher) resolveError(v Value, ictx *Context) (*ErrorSpec, error) {
	resolved, err := resolve(v, ictx)
	if err != nil {
		return nil, err
	}
	switch e := resolved.(type) {
	case nil:
		return nil, nil
	case ErrorSpec:
		return &e, nil
	case *ErrorSpec:
		return e, nil
	case string:
		return &ErrorSpec{Msg: e, Code: 1105, SQLState: "HY000"}, nil
	default:
		return nil, fmt.Errorf("rule: error 槽位解析出了 %T", resolved)
	}
}

func (d *Dispatcher) resolveOK(v Value, ictx *Context) (*OKSpec, error) {
	resolved, err := resolve(v, ictx)
	if err != nil {
		return nil, err
	}
	switch o := resolved.(type) {
	case nil:
		return nil, nil
	case OKSpec:
		return &o, nil
	case *OKSpec:
		return o, nil
	case bool:
		if o {
			return &OKSpec{}, nil
		}
		return nil, nil
	case int:
		if o != 0 {
			return &OKSpec{}, nil
		}
		return nil, nil
	case string:
		if o != "" {
			return &OKSpec{Msg: o}, nil
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("rule: ok 槽位解析出了 %T", resolved)
	}
}

func toNames(v any) ([]string, error) {
	switch names := v.(type) {
	case []string:
		return names, nil
	case []any:
		res := make([]string, 0, len(names))
		for _, n := range names {
			res = append(res, fmt.Sprint(n))
		}
		return res, nil
	case string:
		return []string{names}, nil
	default:
		return nil, fmt.Errorf("rule: columns 槽位解析出了 %T", v)
	}
}

// ruleErrResponse 用户钩子抛出来的错误转成 ERR 响应
// 连接本身还能继续用
func ruleErrResponse(err error) *Response {
	return &Response{Err: &ErrorSpec{
		Msg:      err.Error(),
		Code:     1105,
		SQLState: "HY000",
	}}
}
