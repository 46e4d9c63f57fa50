package registry

import (
	"bytes"
	"encoding/json"

	"partscan/pkg/contract"
	rpt "partscan/plugins/assembler/report"
	csym "partscan/plugins/classifier/symbol"
	ltxt "partscan/plugins/loader/text"
	rfs "partscan/plugins/reader/filesystem"
	wfs "partscan/plugins/writer/filesystem"
)

// strictUnmarshal: 使用 DisallowUnknownFields 严格解码，拒绝未知字段。
func strictUnmarshal(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		// 保持零值（默认选项）
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// NewReader 工厂签名：接收原样 JSON Options。
type NewReader func(raw json.RawMessage) (contract.Reader, error)

// NewLoader 工厂签名：接收原样 JSON Options。
type NewLoader func(raw json.RawMessage) (contract.Loader, error)

// NewClassifier 工厂签名：接收原样 JSON Options。
type NewClassifier func(raw json.RawMessage) (contract.Classifier, error)

// NewAssembler 工厂签名：接收原样 JSON Options。
type NewAssembler func(raw json.RawMessage) (contract.Assembler, error)

// NewWriter 工厂签名：接收原样 JSON Options。
type NewWriter func(raw json.RawMessage) (contract.Writer, error)

// Reader 工厂注册表（显式、零反射）。
var Reader = map[string]NewReader{
	// fs: billy 文件系统/STDIN Reader
	"fs": func(raw json.RawMessage) (contract.Reader, error) {
		var opts rfs.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return rfs.New(&opts), nil
	},
}

// Loader 工厂注册表。
var Loader = map[string]NewLoader{
	// text: 按行切分的矩形网格
	"text": func(raw json.RawMessage) (contract.Loader, error) {
		var opts ltxt.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return ltxt.New(&opts), nil
	},
}

// Classifier 工厂注册表。
var Classifier = map[string]NewClassifier{
	// symbol: 非数字且非填充字符即符号（开放字母表）
	"symbol": func(raw json.RawMessage) (contract.Classifier, error) {
		var opts csym.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return csym.New(&opts)
	},
}

// Assembler 工厂注册表。
var Assembler = map[string]NewAssembler{
	// report: 每个数字的三行窗口 + 判定 + 合计
	"report": func(raw json.RawMessage) (contract.Assembler, error) {
		var opts rpt.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return rpt.New(&opts), nil
	},
}

// Writer 工厂注册表。
var Writer = map[string]NewWriter{
	// fs: 文件系统 Writer（扁平输出，原子替换可配置）
	"fs": func(raw json.RawMessage) (contract.Writer, error) {
		var opts wfs.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return wfs.New(&opts)
	},
}
