package report

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partscan/pkg/contract"
)

func finding(row, start, end int, v uint64, part bool, prev contract.Neighbor, curr string, next contract.Neighbor) contract.Finding {
	return contract.Finding{
		Context: contract.NumberContext{
			Run:   contract.DigitRun{Row: row, Start: start, End: end},
			Value: v, Prev: prev, Curr: curr, Next: next,
		},
		Part: part,
	}
}

func render(t *testing.T, a contract.Assembler, fs []contract.Finding) string {
	t.Helper()
	r, err := a.Assemble(context.Background(), "grid.txt", fs)
	require.NoError(t, err)
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(b)
}

// TestAssembleEmpty 无数字时仅输出合计
func TestAssembleEmpty(t *testing.T) {
	assert.Equal(t, "# grid.txt\n\nparts: 0/0\nsum: 0\n", render(t, New(nil), nil))
}

// TestAssemble 渲染窗口与判定
func TestAssemble(t *testing.T) {
	fs := []contract.Finding{
		finding(0, 0, 3, 467, true, contract.None(), "467.", contract.Some("...*")),
		finding(0, 5, 8, 114, false, contract.None(), ".114.", contract.Some(".....")),
	}
	want := "# grid.txt\n" +
		"\n467 @ row 0 cols [0,3): part\n467.\n...*\n" +
		"\n114 @ row 0 cols [5,8): skip\n.114.\n.....\n" +
		"\nparts: 1/2\nsum: 467\n"
	assert.Equal(t, want, render(t, New(nil), fs))

	partsOnly := render(t, New(&Options{PartsOnly: true}), fs)
	assert.NotContains(t, partsOnly, "114 @")
	assert.Contains(t, partsOnly, "parts: 1/2\nsum: 467\n")
}

// TestAssembleOrder 逆序或重叠返回不变量错误
func TestAssembleOrder(t *testing.T) {
	cases := [][]contract.Finding{
		{finding(1, 0, 1, 1, false, contract.None(), "1", contract.None()), finding(0, 0, 1, 2, false, contract.None(), "2", contract.None())},
		{finding(0, 0, 3, 1, false, contract.None(), "1", contract.None()), finding(0, 2, 4, 2, false, contract.None(), "2", contract.None())},
	}
	for _, fs := range cases {
		_, err := New(nil).Assemble(context.Background(), "g", fs)
		assert.True(t, errors.Is(err, contract.ErrInvariantViolation), "got %v", err)
	}
}

// TestAssembleCanceled 已取消的 ctx
func TestAssembleCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(nil).Assemble(ctx, "g", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
