package cmd

import (
	"bytes"
	"context"
	"net"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meoying/mysqlmimic/internal/protocol/mysql/internal/connection"
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/rule"
)

// fakeConn 只用来收集服务端写出去的报文
type fakeConn struct {
	w bytes.Buffer
}

func (c *fakeConn) Read(b []byte) (int, error)  { return 0, nil }
func (c *fakeConn) Write(b []byte) (int, error) { return c.w.Write(b) }
func (c *fakeConn) Close() error                { return nil }
func (c *fakeConn) LocalAddr() net.Addr         { return &net.TCPAddr{} }
func (c *fakeConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 54321}
}
func (c *fakeConn) SetDeadline(t time.Time) error      { return nil }
func (c *fakeConn) SetReadDeadline(t time.Time) error  { return nil }
func (c *fakeConn) SetWriteDeadline(t time.Time) error { return nil }

// readPackets 把写出去的字节流拆回一个个 payload，头部的 sequence 不保留
func readPackets(t *testing.T, raw []byte) [][]byte {
	t.Helper()
	var packets [][]byte
	for len(raw) > 0 {
		require.GreaterOrEqual(t, len(raw), 4)
		length := int(uint32(raw[0]) | uint32(raw[1])<<8 | uint32(raw[2])<<16)
		require.GreaterOrEqual(t, len(raw), 4+length)
		packets = append(packets, raw[4:4+length])
		raw = raw[4+length:]
	}
	return packets
}

func newTestContext(fc *fakeConn) *Context {
	conn := connection.NewConn(1, fc, connection.NativePasswordAuthenticator(connection.SameAsUsername), nil)
	return &Context{
		Context: context.Background(),
		Conn:    conn,
		Session: rule.NewSession(rule.Defaults{}, nil),
	}
}

func TestQueryExecutor_resultSet(t *testing.T) {
	base := &BaseExecutor{}
	dispatcher := rule.NewDispatcher([]rule.Rule{
		{
			Command: int(CmdQuery),
			Match:   regexp.MustCompile("^hello$"),
			Data:    []any{"world"},
		},
	}, nil)
	exec := NewQueryExecutor(dispatcher, base)

	fc := &fakeConn{}
	err := exec.Exec(newTestContext(fc), append([]byte{CmdQuery.Byte()}, "hello"...))
	require.NoError(t, err)

	packets := readPackets(t, fc.w.Bytes())
	// 字段数量包 + 1 个字段描述包 + eof包 + 1 行数据 + eof包
	require.Len(t, packets, 5)
	assert.Equal(t, []byte{0x01}, packets[0])
	assert.Equal(t, byte(0xFE), packets[2][0])
	assert.Equal(t, []byte{0x05, 'w', 'o', 'r', 'l', 'd'}, packets[3])
	assert.Equal(t, byte(0xFE), packets[4][0])
}

func TestQueryExecutor_noHandle(t *testing.T) {
	base := &BaseExecutor{}
	exec := NewQueryExecutor(rule.NewDispatcher(nil, nil), base)

	fc := &fakeConn{}
	err := exec.Exec(newTestContext(fc), append([]byte{CmdQuery.Byte()}, "SELECT 1"...))
	require.NoError(t, err)

	packets := readPackets(t, fc.w.Bytes())
	require.Len(t, packets, 1)
	assert.Equal(t, byte(0xFF), packets[0][0])
	// error_code 1235
	assert.Equal(t, []byte{0xD3, 0x04}, packets[0][1:3])
}

func TestInitDBExecutor(t *testing.T) {
	base := &BaseExecutor{}
	exec := NewInitDBExecutor(rule.NewDispatcher(nil, nil), base)

	fc := &fakeConn{}
	ctx := newTestContext(fc)
	err := exec.Exec(ctx, append([]byte{CmdInitDB.Byte()}, "demo"...))
	require.NoError(t, err)
	assert.Equal(t, "demo", ctx.Session.Database)

	packets := readPackets(t, fc.w.Bytes())
	require.Len(t, packets, 1)
	assert.Equal(t, byte(0x00), packets[0][0])
}

func TestFallbackExecutor_unknownCommand(t *testing.T) {
	base := &BaseExecutor{}
	exec := NewFallbackExecutor(rule.NewDispatcher(nil, nil), base)

	fc := &fakeConn{}
	err := exec.Exec(newTestContext(fc), []byte{0x1F})
	require.NoError(t, err)

	packets := readPackets(t, fc.w.Bytes())
	require.Len(t, packets, 1)
	assert.Equal(t, byte(0xFF), packets[0][0])
	// error_code 1047
	assert.Equal(t, []byte{0x17, 0x04}, packets[0][1:3])
}
