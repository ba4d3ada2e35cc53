package rulecfg

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/meoying/mysqlmimic/internal/protocol/mysql/rule"
)

// Config 一个规则文件的内容
// 文件只能表达字面量槽位，Callable 槽位要用代码注册
type Config struct {
	Rules []RuleConfig `mapstructure:"rules"`
}

// RuleConfig 规则文件里的一条规则
// 字段含义和 rule.Rule 一一对应
type RuleConfig struct {
	// Command 数字或者命令名，比如 3 或者 query
	Command any `mapstructure:"command"`
	// Match 要求载荷完全相等
	Match string `mapstructure:"match"`
	// MatchRe 正则匹配，捕获组会传给后续槽位
	MatchRe string `mapstructure:"match_re"`
	Rewrite string `mapstructure:"rewrite"`
	// Error 非空就回 ERR
	Error *ErrorConfig `mapstructure:"error"`
	// OK true 回裸 OK，映射可以带 message/affected/insert_id/warnings
	OK          any      `mapstructure:"ok"`
	Columns     []string `mapstructure:"columns"`
	Data        any      `mapstructure:"data"`
	DSN         string   `mapstructure:"dsn"`
	DSNUser     string   `mapstructure:"dsn_user"`
	DSNPassword string   `mapstructure:"dsn_password"`
	Forward     bool     `mapstructure:"forward"`
}

type ErrorConfig struct {
	Code     uint16 `mapstructure:"code"`
	SQLState string `mapstructure:"sqlstate"`
	Message  string `mapstructure:"message"`
}

// commandNames 规则文件里允许用命令名代替数字
var commandNames = map[string]byte{
	"quit":       0x01,
	"init_db":    0x02,
	"query":      0x03,
	"field_list": 0x04,
	"ping":       0x0E,
}

// LoadFiles 按给定顺序加载规则文件
// 多个文件的规则首尾相接，文件内的顺序保持不变
func LoadFiles(paths ...string) ([]rule.Rule, error) {
	var rules []rule.Rule
	for _, path := range paths {
		v := viper.New()
		v.SetConfigType("yaml")
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "读取规则文件 %s 失败", path)
		}
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			return nil, errors.Wrapf(err, "解析规则文件 %s 失败", path)
		}
		built, err := Build(cfg)
		if err != nil {
			return nil, errors.Wrapf(err, "规则文件 %s 非法", path)
		}
		rules = append(rules, built...)
	}
	return rules, nil
}

// Build 把文件内容编译成只读的规则列表
func Build(cfg Config) ([]rule.Rule, error) {
	rules := make([]rule.Rule, 0, len(cfg.Rules))
	for i, rc := range cfg.Rules {
		r, err := buildRule(rc)
		if err != nil {
			return nil, errors.Wrapf(err, "第 %d 条规则非法", i+1)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func buildRule(rc RuleConfig) (rule.Rule, error) {
	var r rule.Rule

	if rc.Command != nil {
		command, err := parseCommand(rc.Command)
		if err != nil {
			return r, err
		}
		r.Command = int(command)
	}

	if rc.Match != "" && rc.MatchRe != "" {
		return r, fmt.Errorf("match 和 match_re 只能二选一")
	}
	if rc.Match != "" {
		r.Match = rc.Match
	}
	if rc.MatchRe != "" {
		re, err := regexp.Compile(rc.MatchRe)
		if err != nil {
			return r, errors.Wrap(err, "match_re 不是合法的正则")
		}
		r.Match = re
	}

	if rc.Rewrite != "" {
		r.Rewrite = rc.Rewrite
	}
	if rc.Error != nil {
		spec := rule.ErrorSpec{
			Msg:      rc.Error.Message,
			Code:     rc.Error.Code,
			SQLState: rc.Error.SQLState,
		}
		if spec.Code == 0 {
			spec.Code = 1105
		}
		if spec.SQLState == "" {
			spec.SQLState = "HY000"
		}
		r.Error = spec
	}
	if rc.OK != nil {
		ok, err := parseOK(rc.OK)
		if err != nil {
			return r, err
		}
		r.OK = ok
	}
	if rc.Columns != nil {
		r.Columns = rc.Columns
	}
	if rc.Data != nil {
		r.Data = normalizeData(rc.Data)
	}
	if rc.DSN != "" {
		r.DSN = rc.DSN
		r.DSNUser = rc.DSNUser
		r.DSNPassword = rc.DSNPassword
	}
	r.Forward = rc.Forward
	return r, nil
}

func parseCommand(v any) (byte, error) {
	switch c := v.(type) {
	case int:
		return byte(c), nil
	case int64:
		return byte(c), nil
	case float64:
		return byte(c), nil
	case string:
		command, ok := commandNames[strings.ToLower(c)]
		if !ok {
			return 0, fmt.Errorf("不认识的命令名 %q", c)
		}
		return command, nil
	default:
		return 0, fmt.Errorf("command 字段解析出了 %T", v)
	}
}

func parseOK(v any) (any, error) {
	switch o := v.(type) {
	case bool, int, string:
		return o, nil
	case map[string]any:
		var spec rule.OKSpec
		if msg, ok := o["message"]; ok {
			spec.Msg = fmt.Sprint(msg)
		}
		if affected, ok := o["affected"]; ok {
			spec.AffectedRows = toUint64(affected)
		}
		if insertID, ok := o["insert_id"]; ok {
			spec.LastInsertID = toUint64(insertID)
		}
		if warnings, ok := o["warnings"]; ok {
			spec.Warnings = uint16(toUint64(warnings))
		}
		return spec, nil
	default:
		return nil, fmt.Errorf("ok 字段解析出了 %T", v)
	}
}

func toUint64(v any) uint64 {
	switch n := v.(type) {
	case int:
		return uint64(n)
	case int64:
		return uint64(n)
	case float64:
		return uint64(n)
	default:
		return 0
	}
}

// normalizeData YAML 解析出来的嵌套映射键可能不是 string，统一转一遍
func normalizeData(v any) any {
	switch d := v.(type) {
	case map[any]any:
		res := make(map[string]any, len(d))
		for k, val := range d {
			res[fmt.Sprint(k)] = val
		}
		return res
	default:
		return v
	}
}
