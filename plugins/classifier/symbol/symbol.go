package symbol

import (
	"errors"

	"partscan/pkg/contract"
)

// Options 为符号分类器的可选配置。
type Options struct {
	// Filler: 空白填充字符（单字节）。默认 "."。
	Filler string `json:"filler"`
}

// Classifier: 窗口内任一字节既非数字也非填充字符即为零件号。
// 开放字母表：空白/控制字符同样计为符号。
type Classifier struct {
	filler byte
}

// New 创建分类器；Filler 必须恰为一个字节。
func New(opts *Options) (*Classifier, error) {
	c := &Classifier{filler: '.'}
	if opts != nil && opts.Filler != "" {
		if len(opts.Filler) != 1 {
			return nil, errors.New("symbol: filler must be a single byte")
		}
		c.filler = opts.Filler[0]
	}
	return c, nil
}

var _ contract.Classifier = (*Classifier)(nil)

// Classify 检查三段切片（缺失的邻行跳过）。
func (c *Classifier) Classify(nc contract.NumberContext) (uint64, bool) {
	if s, ok := nc.Prev.Get(); ok && c.hasSymbol(s) {
		return nc.Value, true
	}
	if c.hasSymbol(nc.Curr) {
		return nc.Value, true
	}
	if s, ok := nc.Next.Get(); ok && c.hasSymbol(s) {
		return nc.Value, true
	}
	return 0, false
}

// IsSymbol 报告单个字节是否为符号。
func (c *Classifier) IsSymbol(b byte) bool {
	return b != c.filler && (b < '0' || b > '9')
}

func (c *Classifier) hasSymbol(s string) bool {
	for i := 0; i < len(s); i++ {
		if c.IsSymbol(s[i]) {
			return true
		}
	}
	return false
}
