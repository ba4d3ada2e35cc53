package rulecfg

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meoying/mysqlmimic/internal/protocol/mysql/rule"
)

func TestBuild(t *testing.T) {
	cfg := Config{
		Rules: []RuleConfig{
			{
				Command: "query",
				MatchRe: "^hello$",
				Data:    []any{"world"},
			},
			{
				Command: 3,
				Match:   "SET SQL_AUTO_IS_NULL=0;",
				OK:      true,
			},
			{
				MatchRe: "^SELECT \\* FROM missing$",
				Error: &ErrorConfig{
					Code:     1146,
					SQLState: "42S02",
					Message:  "Table 'missing' doesn't exist",
				},
			},
			{
				MatchRe: "^USE (.+)$",
				DSN:     "root:root@tcp(127.0.0.1:3306)/",
				DSNUser: "root",
			},
		},
	}
	rules, err := Build(cfg)
	require.NoError(t, err)
	require.Len(t, rules, 4)

	assert.Equal(t, 3, rules[0].Command)
	_, isRegexp := rules[0].Match.(*regexp.Regexp)
	assert.True(t, isRegexp)

	assert.Equal(t, 3, rules[1].Command)
	assert.Equal(t, "SET SQL_AUTO_IS_NULL=0;", rules[1].Match)
	assert.Equal(t, true, rules[1].OK)

	spec, ok := rules[2].Error.(rule.ErrorSpec)
	require.True(t, ok)
	assert.Equal(t, uint16(1146), spec.Code)
	assert.Equal(t, "42S02", spec.SQLState)

	assert.Equal(t, "root:root@tcp(127.0.0.1:3306)/", rules[3].DSN)
	assert.Equal(t, "root", rules[3].DSNUser)
}

func TestBuild_invalid(t *testing.T) {
	testcases := []struct {
		name string
		rc   RuleConfig
	}{
		{
			name: "match 和 match_re 二选一",
			rc:   RuleConfig{Match: "a", MatchRe: "b"},
		},
		{
			name: "正则非法",
			rc:   RuleConfig{MatchRe: "("},
		},
		{
			name: "命令名不认识",
			rc:   RuleConfig{Command: "nope"},
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(Config{Rules: []RuleConfig{tc.rc}})
			assert.Error(t, err)
		})
	}
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.yaml")
	second := filepath.Join(dir, "second.yaml")
	require.NoError(t, os.WriteFile(first, []byte(`
rules:
  - command: query
    match_re: "^hello$"
    data:
      - world
  - command: query
    match: "SET SQL_AUTO_IS_NULL=0;"
    ok: true
`), 0o644))
	require.NoError(t, os.WriteFile(second, []byte(`
rules:
  - command: query
    match_re: "^SHOW VARS$"
    data:
      a: "1"
      b: "2"
`), 0o644))

	rules, err := LoadFiles(first, second)
	require.NoError(t, err)
	// 文件的先后就是规则的先后
	require.Len(t, rules, 3)
	assert.Equal(t, []any{"world"}, rules[0].Data)
	assert.Equal(t, true, rules[1].OK)
	assert.Equal(t, map[string]any{"a": "1", "b": "2"}, rules[2].Data)

	_, err = LoadFiles(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
