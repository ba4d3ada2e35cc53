package datasource

import (
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDSN(t *testing.T) {
	testcases := []struct {
		name       string
		dsn        string
		user       string
		password   string
		wantDriver string
		wantDSN    string
		wantErr    bool
	}{
		{
			name:       "sqlite3 前缀",
			dsn:        "sqlite3:///tmp/demo.db",
			wantDriver: "sqlite3",
			wantDSN:    "/tmp/demo.db",
		},
		{
			name:       "mysql 注入凭证",
			dsn:        "tcp(127.0.0.1:3306)/demo",
			user:       "root",
			password:   "secret",
			wantDriver: "mysql",
			wantDSN:    "root:secret@tcp(127.0.0.1:3306)/demo",
		},
		{
			name:       "mysql 自带凭证",
			dsn:        "demo:demo@tcp(127.0.0.1:3306)/demo",
			wantDriver: "mysql",
			wantDSN:    "demo:demo@tcp(127.0.0.1:3306)/demo",
		},
		{
			name:    "空 DSN",
			dsn:     "",
			wantErr: true,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			driverName, dataSourceName, err := ResolveDSN(tc.dsn, tc.user, tc.password)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantDriver, driverName)
			assert.Equal(t, tc.wantDSN, dataSourceName)
		})
	}
}

func TestTranslateError(t *testing.T) {
	t.Run("mysql 驱动错误保留原始错误码", func(t *testing.T) {
		code, state, msg := TranslateError(&mysql.MySQLError{
			Number:   1146,
			SQLState: [5]byte{'4', '2', 'S', '0', '2'},
			Message:  "Table 'demo.t' doesn't exist",
		})
		assert.Equal(t, uint16(1146), code)
		assert.Equal(t, "42S02", state)
		assert.Equal(t, "Table 'demo.t' doesn't exist", msg)
	})

	t.Run("驱动没给 SQLState 的兜底", func(t *testing.T) {
		code, state, _ := TranslateError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
		assert.Equal(t, uint16(1062), code)
		assert.Equal(t, "HY000", state)
	})

	t.Run("普通错误", func(t *testing.T) {
		code, state, msg := TranslateError(assert.AnError)
		assert.Equal(t, uint16(2000), code)
		assert.Equal(t, "HY000", state)
		assert.Equal(t, assert.AnError.Error(), msg)
	})
}
