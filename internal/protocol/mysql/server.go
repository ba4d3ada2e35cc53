package mysql

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"

	"github.com/ecodeclub/ekit/syncx"
	"github.com/hashicorp/go-multierror"

	"github.com/meoying/mysqlmimic/internal/datasource"
	"github.com/meoying/mysqlmimic/internal/errs"
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/internal/cmd"
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/internal/connection"
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/rule"
)

// Server 对外伪装成一个 MySQL 服务端
// 它本身不存任何数据，每条命令要么由规则合成响应，要么转发给上游
type Server struct {
	addr     string
	logger   *slog.Logger
	mu       sync.Mutex
	listener net.Listener

	conns      syncx.Map[uint32, *connection.Conn]
	executors  map[byte]cmd.Executor
	fallback   cmd.Executor
	dispatcher *rule.Dispatcher

	defaults      rule.Defaults
	opener        datasource.Opener
	authenticator connection.Authenticator
	// defaultDS 启动参数给的默认上游，每个连接都 Clone 一份自己用
	defaultDS datasource.DataSource

	// 关闭
	closeOnce sync.Once
	closed    atomic.Bool
}

// Authenticator 鉴权策略，见 connection 包
type Authenticator = connection.Authenticator

type Option func(s *Server)

// WithDefaults 启动参数里的上游 DSN 和凭证
// 每个会话的变量袋都用它初始化
func WithDefaults(defaults rule.Defaults) Option {
	return func(s *Server) {
		s.defaults = defaults
	}
}

// WithOpener 替换上游的打开方式，主要给测试用
func WithOpener(opener datasource.Opener) Option {
	return func(s *Server) {
		s.opener = opener
	}
}

// WithAuthenticator 替换鉴权策略
// 默认策略是参考密码等于用户名
func WithAuthenticator(auth Authenticator) Option {
	return func(s *Server) {
		s.authenticator = auth
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer rules 在这之后就是只读的了
func NewServer(addr string, rules []rule.Rule, opts ...Option) *Server {
	s := &Server{
		logger:        slog.Default(),
		addr:          addr,
		opener:        datasource.DefaultOpener(),
		authenticator: connection.NativePasswordAuthenticator(connection.SameAsUsername),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dispatcher = rule.NewDispatcher(rules, s.logger)

	baseExecutor := &cmd.BaseExecutor{}
	s.executors = map[byte]cmd.Executor{
		cmd.CmdPing.Byte():      cmd.NewPingExecutor(baseExecutor),
		cmd.CmdQuery.Byte():     cmd.NewQueryExecutor(s.dispatcher, baseExecutor),
		cmd.CmdInitDB.Byte():    cmd.NewInitDBExecutor(s.dispatcher, baseExecutor),
		cmd.CmdFieldList.Byte(): cmd.NewFieldListExecutor(s.dispatcher, baseExecutor),
	}
	s.fallback = cmd.NewFallbackExecutor(s.dispatcher, baseExecutor)
	return s
}

func (s *Server) Start() error {
	// 默认上游在监听之前打开，之后每个连接 Clone
	if s.defaults.DSN != "" {
		ds, err := s.opener.Open(s.defaults.DSN, s.defaults.User, s.defaults.Password)
		if err != nil {
			return err
		}
		s.defaultDS = ds
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	s.logger.Info("开始监听", "地址", s.addr)
	var id uint32 = 1
	for {
		rawConn, err1 := listener.Accept()
		if err1 != nil {
			var opErr *net.OpError
			if errors.As(err1, &opErr) && opErr.Temporary() {
				continue
			}
			if s.closed.Load() {
				// 忽略因为 listener.Close() 导致的 err1
				return nil
			}
			return err1
		}
		conn, sess := s.newConn(id, rawConn)
		s.conns.Store(id, conn)
		id++
		go func() {
			// 连接退出的时候释放它占用的所有资源
			defer func() {
				s.conns.Delete(conn.ID())
				_ = conn.Close()
				_ = sess.Close()
			}()
			err2 := conn.Loop()
			switch {
			case err2 == nil, errors.Is(err2, errs.ErrClientQuit):
				s.logger.Debug("客户端正常退出", "连接", conn.ID())
			case errors.Is(err2, errs.ErrAccessDenied):
				s.logger.Debug("客户端鉴权失败", "连接", conn.ID())
			default:
				// 单个连接出错不影响别的连接，也不影响 accept 循环
				s.logger.Error("退出命令处理循环出错", "连接", conn.ID(), "错误", err2)
			}
		}()
	}
}

// newConn 为一个刚 accept 的连接准备会话和命令回调
func (s *Server) newConn(id uint32, rawConn net.Conn) (*connection.Conn, *rule.Session) {
	sess := rule.NewSession(s.defaults, s.opener)
	if s.defaultDS != nil {
		handle, err := s.defaultDS.Clone()
		if err != nil {
			s.logger.Error("克隆默认上游失败", "错误", err)
		} else {
			sess.Handle = handle
		}
	}
	conn := connection.NewConn(id, rawConn, s.authenticator, func(ctx context.Context, c *connection.Conn, payload []byte) error {
		return s.onCmd(ctx, c, sess, payload)
	})
	// 对端地址在进命令循环之前就记到变量袋里
	_ = sess.SetVar("host", conn.RemoteIP())
	return conn, sess
}

func (s *Server) onCmd(ctx context.Context, conn *connection.Conn, sess *rule.Session, payload []byte) error {
	if len(payload) == 0 {
		return errs.ErrPktMalformed
	}
	sess.User = conn.Username()
	if sess.Database == "" {
		sess.Database = conn.Database()
	}

	// 第一个字节是命令
	tag := payload[0]
	if tag == cmd.CmdQuit.Byte() {
		return errs.ErrClientQuit
	}
	exec, ok := s.executors[tag]
	if !ok {
		exec = s.fallback
	}
	cmdCtx := &cmd.Context{
		Context: ctx,
		Conn:    conn,
		Session: sess,
	}
	return exec.Exec(cmdCtx, payload)
}

// Addr 实际监听的地址
// Start 把监听建立起来之前返回 nil
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close 是幂等的，只有第一次调用会真正关闭，后续调用直接返回 nil
func (s *Server) Close() error {
	var err *multierror.Error
	s.closeOnce.Do(func() {
		s.closed.Store(true)

		s.mu.Lock()
		if s.listener != nil {
			err = multierror.Append(err, s.listener.Close())
		}
		s.mu.Unlock()

		// 目前只是关闭了 value，但是并没有删除掉对应的键值对
		s.conns.Range(func(key uint32, value *connection.Conn) bool {
			err = multierror.Append(err, value.Close())
			return true
		})

		if s.defaultDS != nil {
			err = multierror.Append(err, s.defaultDS.Close())
		}
	})
	return err.ErrorOrNil()
}
