package filesystem

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"partscan/pkg/contract"
)

// Options 为 FileSystem Reader 的可选配置（最小必要）。
type Options struct {
	// BufSize 为读缓冲区大小（字节）。默认 64KiB。
	BufSize int `json:"buf_size"`
	// Root: 可选根目录；非空时输入路径按该目录解析（chroot）。
	Root string `json:"root"`
}

// FileSystem 实现基于 billy 文件系统与 STDIN 的 Reader。
// 仅接受常规文件（允许指向常规文件的符号链接）；目录与设备文件报错。
type FileSystem struct {
	fs      billy.Filesystem
	bufSize int
}

// New 创建基于本地文件系统的 Reader。
func New(opts *Options) *FileSystem {
	var fsys billy.Filesystem = &nativeFS{}
	if opts != nil && strings.TrimSpace(opts.Root) != "" {
		fsys = osfs.New(opts.Root)
	}
	return NewWithFS(fsys, opts)
}

// NewWithFS 使用给定的 billy 文件系统（例如 memfs）创建 Reader。
func NewWithFS(fsys billy.Filesystem, opts *Options) *FileSystem {
	const defaultBuf = 64 * 1024
	b := defaultBuf
	if opts != nil && opts.BufSize > 0 {
		b = opts.BufSize
	}
	return &FileSystem{fs: fsys, bufSize: b}
}

var _ contract.Reader = (*FileSystem)(nil)

// Iterate 对每个 root 调用一次 yield。
// roots 为空或仅包含 "-" 时读取 STDIN。
func (r *FileSystem) Iterate(ctx context.Context, roots []string, yield func(fileID contract.FileID, rc io.ReadCloser) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(roots) == 0 || (len(roots) == 1 && roots[0] == "-") {
		// STDIN 不归本 Reader 所有，关闭为 no-op
		return yield(contract.FileID("stdin"), newBufferedCloser(io.NopCloser(os.Stdin), r.bufSize))
	}
	if len(roots) > 1 {
		for _, s := range roots {
			if s == "-" {
				return errors.New("stdin '-' cannot be mixed with other roots")
			}
		}
	}
	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.iterateOne(root, yield); err != nil {
			return err
		}
	}
	return nil
}

func (r *FileSystem) iterateOne(root string, yield func(contract.FileID, io.ReadCloser) error) error {
	// Stat 跟随符号链接
	info, err := r.fs.Stat(root)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return &os.PathError{Op: "open", Path: root, Err: errors.New("is a directory")}
	}
	if !info.Mode().IsRegular() {
		return &os.PathError{Op: "open", Path: root, Err: errors.New("not a regular file")}
	}
	f, err := r.fs.Open(root)
	if err != nil {
		return err
	}
	brc := newBufferedCloser(f, r.bufSize)
	if err := yield(contract.NormalizeFileID(root), brc); err != nil {
		_ = brc.Close()
		return fmt.Errorf("%s: %w", root, err)
	}
	return nil
}

// nativeFS 是行为与本地文件系统一致的 billy.Filesystem（相对路径按 cwd 解析）。
type nativeFS struct {
	osfs.ChrootOS
}

// Chroot 返回以 path 为根的新文件系统。
//
//nolint:ireturn // billy.Filesystem 为上游接口签名
func (n *nativeFS) Chroot(path string) (billy.Filesystem, error) {
	return osfs.New(path), nil
}

// Root 返回根路径。
func (n *nativeFS) Root() string { return "/" }

// bufferedCloser 将 bufio.Reader 与底层 Closer 组合为 ReadCloser。
type bufferedCloser struct {
	*bufio.Reader
	c io.Closer
}

func newBufferedCloser(c io.ReadCloser, bufSize int) *bufferedCloser {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	return &bufferedCloser{Reader: bufio.NewReaderSize(c, bufSize), c: c}
}

func (b *bufferedCloser) Close() error { return b.c.Close() }
