package schematic

import (
	"errors"
	"strconv"

	"partscan/pkg/contract"
)

var errNotDigitRun = errors.New("run is out of bounds or contains non-digit bytes")

// WindowOf 返回裁剪到 [0, width) 的左右各扩一列窗口。
func WindowOf(run contract.DigitRun, width int) contract.Window {
	return contract.Window{From: max(run.Start-1, 0), To: min(run.End+1, width)}
}

// Extract 为 run 构造 NumberContext：上一行（row==0 时缺失）、本行、下一行（末行时缺失）
// 在同一窗口上的切片，以及解析后的数值。
// 区间越界或含非数字字节返回 *contract.NumberParseError（定位器缺陷，调用方应视为致命）。
func Extract(g contract.Grid, run contract.DigitRun) (contract.NumberContext, error) {
	line, ok := g.Row(run.Row)
	if !ok || run.Start < 0 || run.End > len(line) || run.Start >= run.End {
		return contract.NumberContext{}, &contract.NumberParseError{Run: run, Err: errNotDigitRun}
	}
	digits := line[run.Start:run.End]
	v, err := ParseValue(digits)
	if err != nil {
		return contract.NumberContext{}, &contract.NumberParseError{Run: run, Digits: digits, Err: err}
	}

	w := WindowOf(run, g.Width())
	nc := contract.NumberContext{
		Run:    run,
		Value:  v,
		Window: w,
		Curr:   line[w.From:w.To],
	}
	if prev, ok := g.Row(run.Row - 1); ok {
		nc.Prev = contract.Some(prev[w.From:w.To])
	}
	if next, ok := g.Row(run.Row + 1); ok {
		nc.Next = contract.Some(next[w.From:w.To])
	}
	return nc, nil
}

// ParseValue 以十进制解析纯数字串；前导零无意义，全零为 0。
// 拒绝符号位与任何非数字字节（strconv 会接受的 "+1" 在此非法）。
func ParseValue(digits string) (uint64, error) {
	if digits == "" {
		return 0, errNotDigitRun
	}
	for i := 0; i < len(digits); i++ {
		if !IsDigit(digits[i]) {
			return 0, errNotDigitRun
		}
	}
	return strconv.ParseUint(digits, 10, 64)
}
