package contract

import (
	"errors"
	"fmt"
)

// 最小错误分类（哨兵）。
var (
	// ErrMalformedGrid: 输入为空、行长不一致或超出读取上限。
	ErrMalformedGrid = errors.New("malformed grid")
	// ErrNumberParse: 数字区间无法解析为整数（意味着定位器缺陷，不可恢复）。
	ErrNumberParse = errors.New("number parse")
	// ErrPathInvalid: 目标标识映射为无效/越界路径（例如绝对路径或 '..' 逃逸）。
	ErrPathInvalid = errors.New("path invalid")
	// ErrInvariantViolation: 领域不变量违例（通用哨兵）。
	ErrInvariantViolation = errors.New("invariant violation")
)

// MalformedGridError 描述形状违例；Row/Want/Got 仅在行长不一致时有意义。
type MalformedGridError struct {
	Reason string
	Row    int
	Want   int
	Got    int
}

func (e *MalformedGridError) Error() string {
	if e.Want != e.Got {
		return fmt.Sprintf("malformed grid: %s (row %d: want %d columns, got %d)", e.Reason, e.Row, e.Want, e.Got)
	}
	return "malformed grid: " + e.Reason
}

func (e *MalformedGridError) Unwrap() error { return ErrMalformedGrid }

// NumberParseError 携带出错的区间与原始字符。
type NumberParseError struct {
	Run    DigitRun
	Digits string
	Err    error
}

func (e *NumberParseError) Error() string {
	return fmt.Sprintf("number parse: row %d [%d,%d) %q: %v", e.Run.Row, e.Run.Start, e.Run.End, e.Digits, e.Err)
}

// Unwrap 同时暴露哨兵与底层错误（strconv.NumError 等）。
func (e *NumberParseError) Unwrap() []error { return []error{ErrNumberParse, e.Err} }
