package schematic

import (
	"iter"

	"partscan/pkg/contract"
)

// IsDigit 仅接受 ASCII 十进制数字。
func IsDigit(c byte) bool { return c >= '0' && c <= '9' }

// Runs 惰性产出 line 中每个极大数字区间，自左向右、互不重叠。
// 两态扫描（区间内/外）：首列与末列与内部列同等处理，无特例分支。
func Runs(row int, line string) iter.Seq[contract.DigitRun] {
	return func(yield func(contract.DigitRun) bool) {
		start, in := 0, false
		for col := 0; col < len(line); col++ {
			d := IsDigit(line[col])
			switch {
			case d && !in:
				start, in = col, true
			case !d && in:
				in = false
				if !yield(contract.DigitRun{Row: row, Start: start, End: col}) {
					return
				}
			}
		}
		if in {
			yield(contract.DigitRun{Row: row, Start: start, End: len(line)})
		}
	}
}

// LocateAll 按行主序收集整个网格的数字区间。
func LocateAll(g contract.Grid) []contract.DigitRun {
	var out []contract.DigitRun
	for i, line := range g.Rows() {
		for r := range Runs(i, line) {
			out = append(out, r)
		}
	}
	return out
}
