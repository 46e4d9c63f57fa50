package config

import (
	"encoding/json"
)

// Config: 运行期只读配置（一次解析，运行期不变）。
// JSON/YAML 使用 snake_case；未知字段在解析期失败。
type Config struct {
	Inputs      []string `json:"inputs"`
	Concurrency int      `json:"concurrency"`
	Logging     Logging  `json:"logging"`

	// 组件名选择（空则使用默认名）。
	Components Components `json:"components"`

	Report Report `json:"report"`

	// 各组件 Options 子树，原样 JSON 传入工厂。
	Options Options `json:"options"`
}

// Logging: 日志等级与目录；轮转策略为固定默认。
type Logging struct {
	Level string `json:"level"`
	Dir   string `json:"dir"`
}

// Components: 组件名选择（注册表中的实现名）。
type Components struct {
	Reader     string `json:"reader"`
	Loader     string `json:"loader"`
	Classifier string `json:"classifier"`
	Assembler  string `json:"assembler"`
	Writer     string `json:"writer"`
}

// Report: 是否写出逐数字报告。nil 表示未设置（Merge 不覆盖）。
type Report struct {
	Enabled *bool `json:"enabled,omitempty"`
}

// On 返回报告开关的有效值。
func (r Report) On() bool { return r.Enabled != nil && *r.Enabled }

// Options: 各组件的原样 JSON Options。
type Options struct {
	Reader     json.RawMessage `json:"reader,omitempty"`
	Loader     json.RawMessage `json:"loader,omitempty"`
	Classifier json.RawMessage `json:"classifier,omitempty"`
	Assembler  json.RawMessage `json:"assembler,omitempty"`
	Writer     json.RawMessage `json:"writer,omitempty"`
}
