package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"partscan/pkg/contract"
)

// Options 控制报告内容。
type Options struct {
	// PartsOnly: 仅输出零件号（默认输出全部数字）。
	PartsOnly bool `json:"parts_only"`
}

type assembler struct {
	partsOnly bool
}

// New 创建文本报告装配器。
func New(opts *Options) contract.Assembler {
	a := &assembler{}
	if opts != nil {
		a.partsOnly = opts.PartsOnly
	}
	return a
}

// Assemble 按 (Row, Start) 严格升序渲染每个数字的三行窗口与判定，末尾附合计。
// 发现逆序或重叠即返回 ErrInvariantViolation。
func (a *assembler) Assemble(ctx context.Context, fileID contract.FileID, findings []contract.Finding) (io.Reader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", fileID)

	var total uint64
	parts := 0
	prev := contract.DigitRun{Row: -1}
	for _, f := range findings {
		run := f.Context.Run
		if run.Row < prev.Row || (run.Row == prev.Row && run.Start < prev.End) {
			return nil, fmt.Errorf("%w: finding row %d col %d out of order", contract.ErrInvariantViolation, run.Row, run.Start)
		}
		prev = run
		if f.Part {
			total += f.Context.Value
			parts++
		} else if a.partsOnly {
			continue
		}
		writeFinding(&b, f)
	}
	fmt.Fprintf(&b, "\nparts: %d/%d\nsum: %d\n", parts, len(findings), total)
	return strings.NewReader(b.String()), nil
}

// writeFinding 输出标题行与存在的窗口行（缺失邻行不输出）。
func writeFinding(b *strings.Builder, f contract.Finding) {
	nc := f.Context
	verdict := "skip"
	if f.Part {
		verdict = "part"
	}
	fmt.Fprintf(b, "\n%d @ row %d cols [%d,%d): %s\n", nc.Value, nc.Run.Row, nc.Run.Start, nc.Run.End, verdict)
	if s, ok := nc.Prev.Get(); ok {
		b.WriteString(s)
		b.WriteByte('\n')
	}
	b.WriteString(nc.Curr)
	b.WriteByte('\n')
	if s, ok := nc.Next.Get(); ok {
		b.WriteString(s)
		b.WriteByte('\n')
	}
}
