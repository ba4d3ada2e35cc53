package rule

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/meoying/mysqlmimic/internal/datasource"
)

// Defaults 启动参数里带进来的上游信息
// 每个会话的变量袋都用这份数据做初始化
type Defaults struct {
	DSN            string
	User           string
	Password       string
	RemoteDSN      string
	RemoteUser     string
	RemotePassword string
}

// Session 一个客户端连接的会话状态
// 整个生命周期都只在连接自己的 goroutine 上被访问，不需要锁
// 连接断开的时候整个丢弃
type Session struct {
	// User 握手鉴权通过的用户名
	User string
	// Database 握手或者 INIT_DB 选中的库
	Database string

	// Handle 当前活动的上游，可能为 nil
	Handle datasource.DataSource

	opener datasource.Opener
	vars   map[string]any
}

func NewSession(defaults Defaults, opener datasource.Opener) *Session {
	return &Session{
		opener: opener,
		vars: map[string]any{
			"dsn":                 defaults.DSN,
			"dsn_user":            defaults.User,
			"dsn_password":        defaults.Password,
			"remote_dsn":          defaults.RemoteDSN,
			"remote_dsn_user":     defaults.RemoteUser,
			"remote_dsn_password": defaults.RemotePassword,
		},
	}
}

// Var 读取变量袋
func (s *Session) Var(name string) any {
	return s.vars[name]
}

// VarString 以字符串形式读取变量袋，不存在的时候返回空串
func (s *Session) VarString(name string) string {
	v, ok := s.vars[name]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// SetVar 写入变量袋
// 写 dsn 的副作用是立刻按新的 dsn 重连，并且换掉活动上游
// 这个副作用是约定的一部分，钩子就是靠它来切换上游的
func (s *Session) SetVar(name string, value any) error {
	s.vars[name] = value
	if name == "dsn" {
		return s.Connect(s.VarString("dsn"), s.VarString("dsn_user"), s.VarString("dsn_password"))
	}
	return nil
}

// Connect 打开一个新上游并替换当前活动上游
// 旧的上游会被关掉
func (s *Session) Connect(dsn, user, password string) error {
	if s.opener == nil {
		return fmt.Errorf("rule: 会话没有配置 Opener，连不上 %q", dsn)
	}
	handle, err := s.opener.Open(dsn, user, password)
	if err != nil {
		return err
	}
	var old error
	if s.Handle != nil {
		old = s.Handle.Close()
	}
	s.Handle = handle
	return old
}

// Close 释放会话占用的所有资源
func (s *Session) Close() error {
	var err error
	if s.Handle != nil {
		err = multierr.Append(err, s.Handle.Close())
		s.Handle = nil
	}
	s.vars = nil
	return err
}
