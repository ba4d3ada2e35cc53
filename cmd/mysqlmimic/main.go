package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	// 上游驱动按需注册，DSN 解析规则见 internal/datasource
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/meoying/mysqlmimic/internal/protocol/mysql"
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/rule"
	"github.com/meoying/mysqlmimic/internal/rulecfg"
)

func main() {
	var (
		port      = pflag.Int("port", 23306, "监听端口")
		iface     = pflag.String("interface", "127.0.0.1", "监听地址，0.0.0.0 表示全部网卡")
		dsn       = pflag.String("dsn", "", "默认上游的 DSN")
		dsnUser   = pflag.String("dsn_user", "", "默认上游的用户名")
		dsnPass   = pflag.String("dsn_password", "", "默认上游的密码")
		rdsn      = pflag.String("remote_dsn", "", "远端上游的 DSN")
		rdsnUser  = pflag.String("remote_dsn_user", "", "远端上游的用户名")
		rdsnPass  = pflag.String("remote_dsn_password", "", "远端上游的密码")
		cfgFiles  = pflag.StringArray("config", nil, "规则文件路径，可以出现多次")
		debugMode = pflag.Bool("debug", false, "输出 debug 日志")
	)
	pflag.Parse()

	level := slog.LevelInfo
	if *debugMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	rules, err := rulecfg.LoadFiles(*cfgFiles...)
	if err != nil {
		logger.Error("加载规则文件失败", "错误", err)
		os.Exit(1)
	}

	addr := net.JoinHostPort(*iface, strconv.Itoa(*port))
	server := mysql.NewServer(addr, rules,
		mysql.WithLogger(logger),
		mysql.WithDefaults(rule.Defaults{
			DSN:            *dsn,
			User:           *dsnUser,
			Password:       *dsnPass,
			RemoteDSN:      *rdsn,
			RemoteUser:     *rdsnUser,
			RemotePassword: *rdsnPass,
		}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Start 出错会把 ctx 取消掉，收到信号也会走到 Close
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return server.Start()
	})
	eg.Go(func() error {
		<-ctx.Done()
		return server.Close()
	})
	if err := eg.Wait(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
