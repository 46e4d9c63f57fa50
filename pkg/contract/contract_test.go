package contract

import (
	"errors"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNormalizeFileID 验证路径规范化逻辑。
func TestNormalizeFileID(t *testing.T) {
	wpath := filepath.Join("a", "b", "c")
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"本地路径", wpath, "a/b/c"},
		{"相对父目录", "./x/../y", "y"},
		{"空串", "", "."},
		{"Windows路径", "C:\\Users\\test\\grid.txt", "C:/Users/test/grid.txt"},
		{"清理多余斜杠", "path//to///grid.txt", "path/to/grid.txt"},
		{"Windows根", "C:\\", "C:"},
		{"混合分隔符", "C:\\Users/test\\Documents/grid.txt", "C:/Users/test/Documents/grid.txt"},
		{"中文路径", "项目\\数据/示例.txt", "项目/数据/示例.txt"},
		{"Unix绝对路径", "/home/user/../admin/grid.txt", "/home/admin/grid.txt"},
		{"复杂父目录", "a\\b\\c\\..\\..\\..\\..\\d", "../d"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeFileID(tt.input); string(got) != tt.expected {
				t.Errorf("NormalizeFileID(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

// BenchmarkNormalizeFileID 性能基准测试
func BenchmarkNormalizeFileID(b *testing.B) {
	paths := []string{
		"C:\\Users\\test\\Documents\\grid.txt",
		"data/../../test/data/grid.txt",
		"path//to///many////slashes/grid.txt",
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, p := range paths {
			NormalizeFileID(p)
		}
	}
}

// TestGridAccessors 验证只读访问与越界行为。
func TestGridAccessors(t *testing.T) {
	g := NewGrid([]string{"1.", ".*"})
	assert.Equal(t, 2, g.Height())
	assert.Equal(t, 2, g.Width())

	row, ok := g.Row(1)
	require.True(t, ok)
	assert.Equal(t, ".*", row)

	_, ok = g.Row(-1)
	assert.False(t, ok)
	_, ok = g.Row(2)
	assert.False(t, ok)

	// Rows 返回副本，修改不影响网格
	rows := g.Rows()
	rows[0] = "xx"
	row, _ = g.Row(0)
	assert.Equal(t, "1.", row)

	empty := NewGrid(nil)
	assert.Equal(t, 0, empty.Height())
	assert.Equal(t, 0, empty.Width())
}

// TestNeighbor 缺失与空串需可区分。
func TestNeighbor(t *testing.T) {
	s, ok := Some("").Get()
	assert.True(t, ok)
	assert.Equal(t, "", s)

	_, ok = None().Get()
	assert.False(t, ok)

	assert.Equal(t, 3, DigitRun{Row: 0, Start: 2, End: 5}.Len())
}

// TestErrors 验证哨兵错误链与消息。
func TestErrors(t *testing.T) {
	var err error = &MalformedGridError{Reason: "ragged rows", Row: 2, Want: 10, Got: 9}
	assert.True(t, errors.Is(err, ErrMalformedGrid))
	assert.Contains(t, err.Error(), "row 2")

	err = &MalformedGridError{Reason: "empty input"}
	assert.Equal(t, "malformed grid: empty input", err.Error())

	_, perr := strconv.ParseUint("x", 10, 64)
	err = &NumberParseError{Run: DigitRun{Row: 1, Start: 0, End: 1}, Digits: "x", Err: perr}
	assert.True(t, errors.Is(err, ErrNumberParse))
	assert.True(t, errors.Is(err, strconv.ErrSyntax))

	var target *NumberParseError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "x", target.Digits)
}
