package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPrefix 为全部环境变量覆盖的前缀。
const EnvPrefix = "PARTSCAN_"

// DefaultFiles 为未显式指定配置时在工作目录中按序查找的文件名。
var DefaultFiles = []string{"partscan.yaml", "partscan.yml", "partscan.json"}

// Defaults 返回带有安全默认值的 Config 雏形。
func Defaults() Config {
	return Config{
		Concurrency: 1,
		Logging:     Logging{Level: "info", Dir: "logs"},
		Components: Components{
			Reader:     "fs",
			Loader:     "text",
			Classifier: "symbol",
			Assembler:  "report",
			Writer:     "fs",
		},
		Options: Options{
			Writer: json.RawMessage(`{"output_dir":"out"}`),
		},
	}
}

// LoadJSON 从文件路径或原始 JSON 解析 Config（严格拒绝未知字段）。
func LoadJSON(path string, raw []byte) (Config, error) {
	var cfg Config
	var r io.Reader
	switch {
	case len(raw) > 0:
		r = bytes.NewReader(raw)
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return cfg, err
		}
		defer f.Close()
		r = f
	default:
		return cfg, errors.New("no config source provided")
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile 按扩展名解析配置文件：.yaml/.yml 先经 yaml.v3 规整为 JSON，再走与 LoadJSON 相同的严格解码；
// 其余扩展名按 JSON 处理。
func LoadFile(path string) (Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		raw, err := yamlToJSON(b)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
		return LoadJSON("", raw)
	default:
		return LoadJSON(path, nil)
	}
}

// yamlToJSON 将 YAML 文档转换为等价 JSON；空文档返回 "{}"。
func yamlToJSON(b []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return []byte("{}"), nil
	}
	if _, ok := doc.(map[string]any); !ok {
		return nil, fmt.Errorf("yaml: top level must be a mapping, got %T", doc)
	}
	return json.Marshal(doc)
}

// Discover 在 dir 中按 DefaultFiles 顺序查找首个存在的配置文件。
func Discover(dir string) (string, bool) {
	for _, name := range DefaultFiles {
		p := filepath.Join(dir, name)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, true
		}
	}
	return "", false
}

// Merge 按优先级合并（后者覆盖前者）。
// 仅标量/字符串/原样 JSON 为“替换”；不做深度合并。
func Merge(base, over Config) Config {
	out := base
	if len(over.Inputs) > 0 {
		out.Inputs = cloneStrings(over.Inputs)
	}
	if over.Concurrency != 0 {
		out.Concurrency = over.Concurrency
	}
	if lv := strings.TrimSpace(over.Logging.Level); lv != "" {
		out.Logging.Level = lv
	}
	if d := strings.TrimSpace(over.Logging.Dir); d != "" {
		out.Logging.Dir = d
	}

	// 组件名（空不覆盖）
	out.Components.Reader = pick(out.Components.Reader, over.Components.Reader)
	out.Components.Loader = pick(out.Components.Loader, over.Components.Loader)
	out.Components.Classifier = pick(out.Components.Classifier, over.Components.Classifier)
	out.Components.Assembler = pick(out.Components.Assembler, over.Components.Assembler)
	out.Components.Writer = pick(out.Components.Writer, over.Components.Writer)

	if over.Report.Enabled != nil {
		v := *over.Report.Enabled
		out.Report.Enabled = &v
	}

	// Options（完整替换对应键）
	out.Options.Reader = pickRaw(out.Options.Reader, over.Options.Reader)
	out.Options.Loader = pickRaw(out.Options.Loader, over.Options.Loader)
	out.Options.Classifier = pickRaw(out.Options.Classifier, over.Options.Classifier)
	out.Options.Assembler = pickRaw(out.Options.Assembler, over.Options.Assembler)
	out.Options.Writer = pickRaw(out.Options.Writer, over.Options.Writer)
	return out
}

// EnvOverlay 从环境变量构建一个 Config 覆盖（仅解析有限键集合）。
// 规则：前缀 PARTSCAN_；集合之外的键忽略。
// 支持：CONCURRENCY, LOG_LEVEL, LOG_DIR, REPORT, COMPONENTS_*, OPTIONS_<STAGE>_JSON。
// 值格式错误（非整数/非布尔/非法 JSON）返回错误。
func EnvOverlay(environ []string) (Config, error) {
	var over Config
	for _, kv := range environ {
		if !strings.HasPrefix(kv, EnvPrefix) {
			continue
		}
		eq := strings.IndexByte(kv, '=')
		if eq <= len(EnvPrefix) {
			continue
		}
		key := kv[:eq]
		val := kv[eq+1:]
		nk := strings.TrimPrefix(key, EnvPrefix)
		if strings.TrimSpace(val) == "" {
			// 空值视为未设置，避免清空文件配置
			continue
		}
		switch nk {
		case "CONCURRENCY":
			v, err := atoi(val)
			if err != nil {
				return Config{}, fmt.Errorf("%s: %w", key, err)
			}
			over.Concurrency = v
		case "LOG_LEVEL":
			over.Logging.Level = strings.TrimSpace(val)
		case "LOG_DIR":
			over.Logging.Dir = strings.TrimSpace(val)
		case "REPORT":
			b, err := strconv.ParseBool(strings.TrimSpace(val))
			if err != nil {
				return Config{}, fmt.Errorf("%s: %w", key, err)
			}
			over.Report.Enabled = &b
		case "COMPONENTS_READER":
			over.Components.Reader = strings.TrimSpace(val)
		case "COMPONENTS_LOADER":
			over.Components.Loader = strings.TrimSpace(val)
		case "COMPONENTS_CLASSIFIER":
			over.Components.Classifier = strings.TrimSpace(val)
		case "COMPONENTS_ASSEMBLER":
			over.Components.Assembler = strings.TrimSpace(val)
		case "COMPONENTS_WRITER":
			over.Components.Writer = strings.TrimSpace(val)
		default:
			stage, ok := strings.CutPrefix(nk, "OPTIONS_")
			if !ok {
				continue
			}
			stage, ok = strings.CutSuffix(stage, "_JSON")
			if !ok {
				continue
			}
			if !json.Valid([]byte(val)) {
				return Config{}, fmt.Errorf("%s: invalid JSON", key)
			}
			raw := json.RawMessage(val)
			switch stage {
			case "READER":
				over.Options.Reader = raw
			case "LOADER":
				over.Options.Loader = raw
			case "CLASSIFIER":
				over.Options.Classifier = raw
			case "ASSEMBLER":
				over.Options.Assembler = raw
			case "WRITER":
				over.Options.Writer = raw
			}
		}
	}
	return over, nil
}

func pick(cur, over string) string {
	if t := strings.TrimSpace(over); t != "" {
		return t
	}
	return cur
}

func pickRaw(cur, over json.RawMessage) json.RawMessage {
	if len(over) > 0 {
		return cloneRaw(over)
	}
	return cur
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneRaw(in json.RawMessage) json.RawMessage {
	if len(in) == 0 {
		return nil
	}
	out := make([]byte, len(in))
	copy(out, in)
	return out
}

func atoi(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &n)
	if err != nil {
		return 0, err
	}
	return n, nil
}
