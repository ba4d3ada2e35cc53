package rule

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/meoying/mysqlmimic/internal/datasource"
	"github.com/meoying/mysqlmimic/internal/datasource/mocks"
)

const cmdQuery byte = 0x03

func newTestSession() *Session {
	return NewSession(Defaults{}, nil)
}

func TestDispatcher_Dispatch_data(t *testing.T) {
	d := NewDispatcher([]Rule{
		{
			Command: int(cmdQuery),
			Match:   regexp.MustCompile("^hello$"),
			Data:    []any{"world"},
		},
	}, nil)

	resp := d.Dispatch(context.Background(), newTestSession(), cmdQuery, "hello")
	require.NotNil(t, resp)
	require.NotNil(t, resp.ResultSet)
	assert.Len(t, resp.ResultSet.Columns, 1)
	assert.Equal(t, "0", resp.ResultSet.Columns[0].Name)
	assert.Equal(t, []Row{{[]byte("world")}}, resp.ResultSet.Rows)

	// 没匹配上的查询谁也不接手
	assert.Nil(t, d.Dispatch(context.Background(), newTestSession(), cmdQuery, "hi"))
}

func TestDispatcher_Dispatch_literalMatchOK(t *testing.T) {
	d := NewDispatcher([]Rule{
		{
			Command: int(cmdQuery),
			Match:   "SET SQL_AUTO_IS_NULL=0;",
			OK:      1,
		},
	}, nil)

	resp := d.Dispatch(context.Background(), newTestSession(), cmdQuery, "SET SQL_AUTO_IS_NULL=0;")
	require.NotNil(t, resp)
	require.NotNil(t, resp.OK)

	// 字面量匹配要求完全相等
	assert.Nil(t, d.Dispatch(context.Background(), newTestSession(), cmdQuery, "SET SQL_AUTO_IS_NULL=0"))
}

func TestDispatcher_Forward_noHandle(t *testing.T) {
	d := NewDispatcher(nil, nil)
	resp := d.Forward(context.Background(), newTestSession(), "SELECT 1")
	require.NotNil(t, resp)
	require.NotNil(t, resp.Err)
	assert.Equal(t, uint16(1235), resp.Err.Code)
	assert.Equal(t, "42000", resp.Err.SQLState)
	assert.Equal(t, "No handle; cannot forward", resp.Err.Msg)
}

func TestDispatcher_Dispatch_mappingData(t *testing.T) {
	d := NewDispatcher([]Rule{
		{
			Command: int(cmdQuery),
			Match:   regexp.MustCompile("^SHOW VARS$"),
			Data:    map[string]any{"a": "1", "b": "2"},
		},
	}, nil)

	resp := d.Dispatch(context.Background(), newTestSession(), cmdQuery, "SHOW VARS")
	require.NotNil(t, resp)
	require.NotNil(t, resp.ResultSet)
	assert.Len(t, resp.ResultSet.Columns, 2)
	assert.Equal(t, []Row{
		{[]byte("a"), []byte("1")},
		{[]byte("b"), []byte("2")},
	}, resp.ResultSet.Rows)
}

func TestDispatcher_Dispatch_errorWinsOverOK(t *testing.T) {
	d := NewDispatcher([]Rule{
		{
			Match: "SELECT * FROM missing",
			Error: ErrorSpec{Msg: "Table 'missing' doesn't exist", Code: 1146, SQLState: "42S02"},
			OK:    1,
		},
	}, nil)

	resp := d.Dispatch(context.Background(), newTestSession(), cmdQuery, "SELECT * FROM missing")
	require.NotNil(t, resp)
	require.NotNil(t, resp.Err)
	assert.Nil(t, resp.OK)
	assert.Equal(t, uint16(1146), resp.Err.Code)
}

func TestDispatcher_Dispatch_errorCallableNil(t *testing.T) {
	// error 钩子解析出 nil 的时候不拦截，轮到 ok
	d := NewDispatcher([]Rule{
		{
			Match: "SELECT 1",
			Error: CallableFunc(func(ctx *Context) (any, error) {
				return nil, nil
			}),
			OK: 1,
		},
	}, nil)

	resp := d.Dispatch(context.Background(), newTestSession(), cmdQuery, "SELECT 1")
	require.NotNil(t, resp)
	assert.Nil(t, resp.Err)
	require.NotNil(t, resp.OK)
}

func TestDispatcher_Dispatch_beforeFailure(t *testing.T) {
	afterRan := false
	d := NewDispatcher([]Rule{
		{
			Match: "DROP TABLE t",
			Before: CallableFunc(func(ctx *Context) (any, error) {
				return nil, assert.AnError
			}),
			OK: 1,
			After: CallableFunc(func(ctx *Context) (any, error) {
				afterRan = true
				return nil, nil
			}),
		},
	}, nil)

	resp := d.Dispatch(context.Background(), newTestSession(), cmdQuery, "DROP TABLE t")
	require.NotNil(t, resp)
	require.NotNil(t, resp.Err)
	assert.Contains(t, resp.Err.Msg, assert.AnError.Error())
	// before 失败也不影响 after 执行
	assert.True(t, afterRan)
}

func TestDispatcher_Dispatch_capturesAndVars(t *testing.T) {
	var gotCapture string
	d := NewDispatcher([]Rule{
		{
			Command: int(cmdQuery),
			Match:   regexp.MustCompile(`^GREET (\w+)$`),
			Before: CallableFunc(func(ctx *Context) (any, error) {
				gotCapture = ctx.Capture(1)
				return nil, ctx.Session.SetVar("last_greeted", ctx.Capture(1))
			}),
			Data: CallableFunc(func(ctx *Context) (any, error) {
				return "hello " + ctx.Capture(1), nil
			}),
		},
	}, nil)

	sess := newTestSession()
	resp := d.Dispatch(context.Background(), sess, cmdQuery, "GREET Tom")
	require.NotNil(t, resp)
	require.NotNil(t, resp.ResultSet)
	assert.Equal(t, "Tom", gotCapture)
	assert.Equal(t, "Tom", sess.VarString("last_greeted"))
	assert.Equal(t, []Row{{[]byte("hello Tom")}}, resp.ResultSet.Rows)
}

func TestDispatcher_Dispatch_walkContinues(t *testing.T) {
	// 第一条规则命中但什么都不产生，轮到第二条
	d := NewDispatcher([]Rule{
		{
			Match: regexp.MustCompile("^SELECT"),
		},
		{
			Match: "SELECT 2",
			OK:    true,
		},
	}, nil)

	resp := d.Dispatch(context.Background(), newTestSession(), cmdQuery, "SELECT 2")
	require.NotNil(t, resp)
	require.NotNil(t, resp.OK)
}

func TestDispatcher_Dispatch_forwardRewriteDefault(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handle := mocks.NewMockDataSource(ctrl)
	handle.EXPECT().
		Exec(gomock.Any(), datasource.Query{SQL: "DELETE FROM t"}).
		Return(sqlmock.NewResult(0, 3), nil)

	// 正则匹配并且没有 rewrite，转发的是第一个捕获组
	d := NewDispatcher([]Rule{
		{
			Command: int(cmdQuery),
			Match:   regexp.MustCompile(`^FORWARD (.+)$`),
			Forward: true,
		},
	}, nil)

	sess := newTestSession()
	sess.Handle = handle
	resp := d.Dispatch(context.Background(), sess, cmdQuery, "FORWARD DELETE FROM t")
	require.NotNil(t, resp)
	require.NotNil(t, resp.OK)
	assert.Equal(t, uint64(3), resp.OK.AffectedRows)
}

func TestDispatcher_Forward_queryRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()
	mock.ExpectQuery("SELECT name FROM user").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Tom").AddRow(nil))
	rows, err := db.Query("SELECT name FROM user")
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	handle := mocks.NewMockDataSource(ctrl)
	handle.EXPECT().
		Query(gomock.Any(), datasource.Query{SQL: "SELECT name FROM user"}).
		Return(rows, nil)

	d := NewDispatcher(nil, nil)
	sess := newTestSession()
	sess.Handle = handle
	resp := d.Forward(context.Background(), sess, "SELECT name FROM user")
	require.NotNil(t, resp)
	require.NotNil(t, resp.ResultSet)
	assert.Len(t, resp.ResultSet.Columns, 1)
	assert.Equal(t, "name", resp.ResultSet.Columns[0].Name)
	assert.Equal(t, []Row{{[]byte("Tom")}, {nil}}, resp.ResultSet.Rows)
}

func TestDispatcher_Dispatch_lastRuleForwardsWithoutHandle(t *testing.T) {
	// 走到最后一条命中的规则，什么都没产生就尝试转发
	d := NewDispatcher([]Rule{
		{
			Match: regexp.MustCompile("^SELECT"),
		},
	}, nil)

	resp := d.Dispatch(context.Background(), newTestSession(), cmdQuery, "SELECT 1")
	require.NotNil(t, resp)
	require.NotNil(t, resp.Err)
	assert.Equal(t, uint16(1235), resp.Err.Code)
}

func TestDispatcher_Dispatch_columnsOnly(t *testing.T) {
	d := NewDispatcher([]Rule{
		{
			Command: int(0x04),
			Match:   "user",
			Columns: []string{"id", "name"},
		},
	}, nil)

	resp := d.Dispatch(context.Background(), newTestSession(), 0x04, "user")
	require.NotNil(t, resp)
	require.NotNil(t, resp.ResultSet)
	assert.Len(t, resp.ResultSet.Columns, 2)
	assert.Empty(t, resp.ResultSet.Rows)
}
