package schematic

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partscan/pkg/contract"
)

func grid(t *testing.T, s string) contract.Grid {
	t.Helper()
	return contract.NewGrid(strings.Split(strings.TrimSpace(s), "\n"))
}

// UT-LOC-01: 极大区间、首末列、单字符区间
func TestRuns(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []contract.DigitRun
	}{
		{"空行", "", nil},
		{"无数字", ".....", nil},
		{"全数字", "123", []contract.DigitRun{{Row: 3, Start: 0, End: 3}}},
		{"首列起始", "467..114..", []contract.DigitRun{{Row: 3, Start: 0, End: 3}, {Row: 3, Start: 5, End: 8}}},
		{"末列结束", "......755", []contract.DigitRun{{Row: 3, Start: 6, End: 9}}},
		{"单字符", "1.2*3", []contract.DigitRun{{Row: 3, Start: 0, End: 1}, {Row: 3, Start: 2, End: 3}, {Row: 3, Start: 4, End: 5}}},
		{"单列", "7", []contract.DigitRun{{Row: 3, Start: 0, End: 1}}},
		{"符号分隔", "12#34", []contract.DigitRun{{Row: 3, Start: 0, End: 2}, {Row: 3, Start: 3, End: 5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := slices.Collect(Runs(3, tt.line))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Runs(%q) mismatch (-want +got):\n%s", tt.line, diff)
			}
		})
	}
}

// UT-LOC-02: 惰性序列可提前终止
func TestRunsEarlyStop(t *testing.T) {
	n := 0
	for r := range Runs(0, "1.2.3.4") {
		n++
		if r.Start == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

// UT-LOC-03: 区间不变量（随机化行）
func TestRunsInvariants(t *testing.T) {
	lines := []string{"0.00..9", "9999", "..1..", "a1b22c333", "\t12 3"}
	for _, line := range lines {
		prevEnd := -1
		covered := 0
		for r := range Runs(0, line) {
			require.Less(t, prevEnd, r.Start, "区间需严格递增且不重叠")
			require.Less(t, r.Start, r.End)
			for c := r.Start; c < r.End; c++ {
				require.True(t, IsDigit(line[c]))
			}
			if r.Start > 0 {
				require.False(t, IsDigit(line[r.Start-1]), "左侧需非数字")
			}
			if r.End < len(line) {
				require.False(t, IsDigit(line[r.End]), "右侧需非数字")
			}
			covered += r.Len()
			prevEnd = r.End
		}
		digits := 0
		for i := 0; i < len(line); i++ {
			if IsDigit(line[i]) {
				digits++
			}
		}
		assert.Equal(t, digits, covered, "每个数字恰好覆盖一次: %q", line)
	}
}

// UT-LOC-04: 整网格收集按行主序
func TestLocateAll(t *testing.T) {
	g := grid(t, "1..\n.22\n...")
	want := []contract.DigitRun{{Row: 0, Start: 0, End: 1}, {Row: 1, Start: 1, End: 3}}
	if diff := cmp.Diff(want, LocateAll(g)); diff != "" {
		t.Fatalf("LocateAll mismatch (-want +got):\n%s", diff)
	}
}

// UT-EXT-01: 窗口裁剪与可选邻行
func TestExtract(t *testing.T) {
	g := grid(t, `
467..114..
...*......
..35..633.`)

	tests := []struct {
		name string
		run  contract.DigitRun
		want contract.NumberContext
	}{
		{
			name: "首行首列",
			run:  contract.DigitRun{Row: 0, Start: 0, End: 3},
			want: contract.NumberContext{
				Run: contract.DigitRun{Row: 0, Start: 0, End: 3}, Value: 467,
				Window: contract.Window{From: 0, To: 4},
				Prev:   contract.None(), Curr: "467.", Next: contract.Some("...*"),
			},
		},
		{
			name: "中间行",
			run:  contract.DigitRun{Row: 0, Start: 5, End: 8},
			want: contract.NumberContext{
				Run: contract.DigitRun{Row: 0, Start: 5, End: 8}, Value: 114,
				Window: contract.Window{From: 4, To: 9},
				Prev:   contract.None(), Curr: ".114.", Next: contract.Some("....."),
			},
		},
		{
			name: "末行",
			run:  contract.DigitRun{Row: 2, Start: 2, End: 4},
			want: contract.NumberContext{
				Run: contract.DigitRun{Row: 2, Start: 2, End: 4}, Value: 35,
				Window: contract.Window{From: 1, To: 5},
				Prev:   contract.Some("..*."), Curr: ".35.", Next: contract.None(),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(g, tt.run)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Extract mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// UT-EXT-02: 末列数字的窗口不越界
func TestExtractRightEdge(t *testing.T) {
	g := grid(t, "..\n.9\n..")
	nc, err := Extract(g, contract.DigitRun{Row: 1, Start: 1, End: 2})
	require.NoError(t, err)
	assert.Equal(t, contract.Window{From: 0, To: 2}, nc.Window)
	assert.Equal(t, ".9", nc.Curr)
	assert.Equal(t, contract.Some(".."), nc.Prev)
	assert.Equal(t, contract.Some(".."), nc.Next)
}

// UT-EXT-03: 单行网格两侧邻行均缺失
func TestExtractSingleRow(t *testing.T) {
	g := grid(t, "123")
	nc, err := Extract(g, contract.DigitRun{Row: 0, Start: 0, End: 3})
	require.NoError(t, err)
	assert.False(t, nc.Prev.Present)
	assert.False(t, nc.Next.Present)
	assert.Equal(t, "123", nc.Curr)
	assert.Equal(t, uint64(123), nc.Value)
}

// UT-EXT-04: 非法区间视为解析错误
func TestExtractErrors(t *testing.T) {
	g := grid(t, "12.\n...")
	runs := []contract.DigitRun{
		{Row: 5, Start: 0, End: 1},
		{Row: 0, Start: 0, End: 4},
		{Row: 0, Start: 1, End: 1},
		{Row: 0, Start: 1, End: 3},
	}
	for _, r := range runs {
		_, err := Extract(g, r)
		require.Error(t, err, "run %+v", r)
		assert.True(t, errors.Is(err, contract.ErrNumberParse))
	}
}

// UT-EXT-05: 数值解析
func TestParseValue(t *testing.T) {
	v, err := ParseValue("007")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), v)

	v, err = ParseValue("000")
	require.NoError(t, err)
	assert.Zero(t, v)

	for _, bad := range []string{"", "+1", "1a", "99999999999999999999999"} {
		_, err := ParseValue(bad)
		assert.Error(t, err, bad)
	}
}

func BenchmarkRuns(b *testing.B) {
	line := strings.Repeat("467..114..*", 64)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for range Runs(0, line) {
		}
	}
}
