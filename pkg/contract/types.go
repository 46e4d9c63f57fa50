package contract

// FileID: 逻辑输入ID（通常为路径，需规范化，跨平台一致）。
type FileID string

// Grid: 矩形字符网格（schematic）。加载后只读。
// 约束：
// - 至少一行，Width >= 1；
// - 每行字节长度均为 Width；
// - 列运算按字节进行（开放字母表，非 ASCII 字节同样视为普通字符）。
type Grid struct {
	rows  []string
	width int
}

// NewGrid 在调用方已完成形状校验后构造 Grid（Loader 专用）。
// 不复制 rows；调用方交出所有权后不得再修改。
func NewGrid(rows []string) Grid {
	w := 0
	if len(rows) > 0 {
		w = len(rows[0])
	}
	return Grid{rows: rows, width: w}
}

// Height 返回行数 H。
func (g Grid) Height() int { return len(g.rows) }

// Width 返回列数 W。
func (g Grid) Width() int { return g.width }

// Row 返回第 i 行；越界时返回 ("", false)。
func (g Grid) Row(i int) (string, bool) {
	if i < 0 || i >= len(g.rows) {
		return "", false
	}
	return g.rows[i], true
}

// Rows 返回全部行的副本切片（字符串本身不可变）。
func (g Grid) Rows() []string {
	out := make([]string, len(g.rows))
	copy(out, g.rows)
	return out
}

// DigitRun: 单行内的极大连续数字区间，半开区间 [Start, End)。
type DigitRun struct {
	Row   int
	Start int
	End   int
}

// Len 返回数字个数。
func (r DigitRun) Len() int { return r.End - r.Start }

// Window: 裁剪后的列窗口 [From, To)。
type Window struct {
	From int
	To   int
}

// Neighbor: 相邻行切片的显式可选值。
// Present=false 表示该方向无行（网格顶/底），与空串语义不同。
type Neighbor struct {
	Text    string
	Present bool
}

// Get 以 comma-ok 形式取值。
func (n Neighbor) Get() (string, bool) { return n.Text, n.Present }

// Some 构造存在的邻行切片。
func Some(s string) Neighbor { return Neighbor{Text: s, Present: true} }

// None 表示缺失的邻行。
func None() Neighbor { return Neighbor{} }

// NumberContext: 单个数字及其 3 行窗口视图（分类器输入）。
type NumberContext struct {
	Run    DigitRun
	Value  uint64
	Window Window
	Prev   Neighbor
	Curr   string
	Next   Neighbor
}

// Finding: 分类结果（供报告使用；不影响求和）。
type Finding struct {
	Context NumberContext
	Part    bool
}
