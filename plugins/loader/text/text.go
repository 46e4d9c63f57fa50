package text

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"partscan/pkg/contract"
)

// Options 为文本 Loader 的可选配置（最小必要）。
type Options struct {
	// MaxBytes: 输入字节上限。0 表示不限制；超出视为畸形输入。
	MaxBytes int64 `json:"max_bytes"`
	// BufSize: 读缓冲区大小（字节）。默认 64KiB。
	BufSize int `json:"buf_size"`
}

// Loader 将文本块加载为矩形网格。
type Loader struct {
	maxBytes int64
	bufSize  int
}

// New 创建文本 Loader。
func New(opts *Options) *Loader {
	l := &Loader{bufSize: 64 * 1024}
	if opts != nil {
		if opts.MaxBytes > 0 {
			l.maxBytes = opts.MaxBytes
		}
		if opts.BufSize > 0 {
			l.bufSize = opts.BufSize
		}
	}
	return l
}

var _ contract.Loader = (*Loader)(nil)

// Load 读取全部输入，整体去首尾空白后按行切分（\n 或 \r\n），并校验矩形形状。
func (l *Loader) Load(ctx context.Context, fileID contract.FileID, r io.Reader) (contract.Grid, error) {
	if err := ctxErr(ctx); err != nil {
		return contract.Grid{}, err
	}
	src := io.Reader(bufio.NewReaderSize(r, l.bufSize))
	if l.maxBytes > 0 {
		// 多读一个字节用于判定超限
		src = io.LimitReader(src, l.maxBytes+1)
	}
	b, err := io.ReadAll(src)
	if err != nil {
		return contract.Grid{}, fmt.Errorf("read %s: %w", fileID, err)
	}
	if l.maxBytes > 0 && int64(len(b)) > l.maxBytes {
		return contract.Grid{}, &contract.MalformedGridError{Reason: fmt.Sprintf("input exceeds %d bytes", l.maxBytes)}
	}
	if err := ctxErr(ctx); err != nil {
		return contract.Grid{}, err
	}
	rows, err := splitRows(string(b))
	if err != nil {
		return contract.Grid{}, err
	}
	return contract.NewGrid(rows), nil
}

// splitRows 切分并校验：非空、各行等长。
func splitRows(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, &contract.MalformedGridError{Reason: "empty input"}
	}
	rows := strings.Split(s, "\n")
	for i, row := range rows {
		rows[i] = strings.TrimSuffix(row, "\r")
	}
	w := len(rows[0])
	for i, row := range rows {
		if len(row) != w {
			return nil, &contract.MalformedGridError{Reason: "ragged rows", Row: i, Want: w, Got: len(row)}
		}
	}
	return rows, nil
}

func ctxErr(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
