package config

import (
	"encoding/json"
	"math"

	"gopkg.in/yaml.v3"
)

// DefaultTemplateConfig 返回一个“可运行”的默认配置模板：
// - 输入由命令行位置参数提供，模板中不设；
// - 报告默认关闭，开启后写入 ./out；
// - 选项给出全部键与中性默认值。
func DefaultTemplateConfig() Config {
	d := Defaults()
	off := false
	cfg := Config{
		Concurrency: 4,
		Logging:     d.Logging,
		Components:  d.Components,
		Report:      Report{Enabled: &off},
	}
	cfg.Options.Reader = json.RawMessage(`{"buf_size": 65536, "root": ""}`)
	cfg.Options.Loader = json.RawMessage(`{"max_bytes": 67108864, "buf_size": 65536}`)
	cfg.Options.Classifier = json.RawMessage(`{"filler": "."}`)
	cfg.Options.Assembler = json.RawMessage(`{"parts_only": false}`)
	cfg.Options.Writer = json.RawMessage(`{
  "output_dir": "out",
  "atomic": true,
  "perm_file": 0,
  "perm_dir": 0,
  "buf_size": 65536
}`)
	return cfg
}

// MarshalYAML 将 Config 渲染为 YAML（经 JSON 规整，键名与 LoadFile 所接受的一致）。
func MarshalYAML(c Config) ([]byte, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return yaml.Marshal(intify(doc))
}

// intify 将 JSON 解码得到的整值 float64 还原为 int64，避免 YAML 输出科学计数法。
func intify(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = intify(e)
		}
	case []any:
		for i, e := range t {
			t[i] = intify(e)
		}
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return int64(t)
		}
	}
	return v
}
