package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/bits"
	"path"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"partscan/internal/diag"
	"partscan/internal/schematic"
	"partscan/pkg/contract"
)

// - 单点并发：仅此层管理并发；原子组件均为同步、无内部并发。
// - 行级并行：每个 worker 只读访问本行与相邻两行；合计为可交换的原子累加。
// - 首错取消：任一行出错即取消整体；errgroup 排空后返回首错。
// - 报告有序：各行的发现按行下标存放，装配时按 (Row, Start) 升序展开，与并发度无关。

// Components 聚合运行所需的原子组件。
type Components struct {
	Reader     contract.Reader
	Loader     contract.Loader
	Classifier contract.Classifier
	// Assembler/Writer 仅在 Settings.Report 时使用
	Assembler contract.Assembler
	Writer    contract.Writer
}

// Settings 运行期配置（最小必要）。
type Settings struct {
	// 输入路径；空或 "-" 表示标准输入
	Inputs []string
	// Concurrency: 行扫描并发上限；<=1 时严格顺序执行
	Concurrency int
	// Report: 扫描成功后装配并写出 <base>.report.txt
	Report bool
}

// Result 为单个输入的扫描结果。
type Result struct {
	FileID contract.FileID
	// Sum: 全部零件号之和
	Sum uint64
	// Numbers: 定位到的数字总数；Parts: 其中零件号个数
	Numbers int
	Parts   int
	Rows    int
	Width   int
}

// ReportSuffix 报告产物的文件名后缀。
const ReportSuffix = ".report.txt"

var errMultipleInputs = errors.New("more than one input yielded")

// Run 执行完整流水线：Reader → Loader → (Locator → Extractor → Classifier)×rows → Aggregator [→ Assembler → Writer]。
func Run(ctx context.Context, comp Components, set Settings, logger *diag.Logger) (Result, error) {
	if err := sanity(comp, set); err != nil {
		return Result{}, fmt.Errorf("sanity: %w", err)
	}

	var (
		res  Result
		seen bool
	)
	rtimer := logger.Start("reader", "iterate")
	err := comp.Reader.Iterate(ctx, set.Inputs, func(fileID contract.FileID, rc io.ReadCloser) error {
		defer rc.Close()
		if seen {
			return fmt.Errorf("%w: %w", contract.ErrInvariantViolation, errMultipleInputs)
		}
		seen = true
		r, err := runFile(ctx, comp, set, logger, fileID, rc)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		if !isStageError(err) {
			diag.Record(logger, "reader", "", err)
		}
		return Result{}, err
	}
	rtimer.Finish("iterate", 1)
	diag.IncOp("reader", "finish", "success")
	return res, nil
}

func runFile(ctx context.Context, comp Components, set Settings, logger *diag.Logger, fileID contract.FileID, r io.Reader) (Result, error) {
	fid := string(fileID)

	ltimer := logger.StartWith("loader", "load", fid)
	g, err := comp.Loader.Load(ctx, fileID, r)
	if err != nil {
		diag.Record(logger, "loader", fid, err)
		return Result{}, stageErr("loader load", err)
	}
	ltimer.Finish("load", int64(g.Height()))
	diag.IncOp("loader", "finish", "success")

	stimer := logger.StartWith("scanner", "scan", fid)
	rows, sum, err := Scan(ctx, g, comp.Classifier, set.Concurrency)
	if err != nil {
		diag.Record(logger, "scanner", fid, err)
		return Result{}, stageErr("scan", err)
	}
	res := Result{FileID: fileID, Sum: sum, Rows: g.Height(), Width: g.Width()}
	for _, fs := range rows {
		for _, f := range fs {
			res.Numbers++
			if f.Part {
				res.Parts++
			}
		}
	}
	stimer.Finish("scan", int64(res.Numbers))
	diag.IncOp("scanner", "finish", "success")
	logger.DebugStart("aggregator", "sum", fid, map[string]string{
		"sum":   fmt.Sprint(res.Sum),
		"parts": fmt.Sprint(res.Parts),
	})

	if set.Report {
		if err := writeReport(ctx, comp, logger, fileID, flatten(rows, res.Numbers)); err != nil {
			return Result{}, err
		}
	}
	return res, nil
}

// Scan 按行扫描 g：定位数字区间、提取上下文、分类并累加零件号。
// 返回按行下标分组的发现（行内按 Start 升序）与合计；合计溢出 uint64 视为不变量破坏。
func Scan(ctx context.Context, g contract.Grid, cls contract.Classifier, concurrency int) ([][]contract.Finding, uint64, error) {
	rows := make([][]contract.Finding, g.Height())
	var total atomic.Uint64

	scanRow := func(ctx context.Context, i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, _ := g.Row(i)
		var local uint64
		var out []contract.Finding
		for run := range schematic.Runs(i, line) {
			nc, err := schematic.Extract(g, run)
			if err != nil {
				return err
			}
			v, ok := cls.Classify(nc)
			if ok {
				var carry uint64
				if local, carry = bits.Add64(local, v, 0); carry != 0 {
					return overflowErr(i)
				}
			}
			out = append(out, contract.Finding{Context: nc, Part: ok})
		}
		rows[i] = out
		return addTotal(&total, local, i)
	}

	if concurrency <= 1 {
		for i := 0; i < g.Height(); i++ {
			if err := scanRow(ctx, i); err != nil {
				return nil, 0, err
			}
		}
		return rows, total.Load(), nil
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)
	for i := 0; i < g.Height(); i++ {
		if gctx.Err() != nil {
			break
		}
		eg.Go(func() error { return scanRow(gctx, i) })
	}
	if err := eg.Wait(); err != nil {
		return nil, 0, err
	}
	// 首错之外的取消（父 ctx 在派发途中被取消）
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	return rows, total.Load(), nil
}

func addTotal(total *atomic.Uint64, v uint64, row int) error {
	for {
		cur := total.Load()
		next, carry := bits.Add64(cur, v, 0)
		if carry != 0 {
			return overflowErr(row)
		}
		if total.CompareAndSwap(cur, next) {
			return nil
		}
	}
}

func overflowErr(row int) error {
	return fmt.Errorf("%w: sum overflows uint64 at row %d", contract.ErrInvariantViolation, row)
}

func flatten(rows [][]contract.Finding, n int) []contract.Finding {
	out := make([]contract.Finding, 0, n)
	for _, fs := range rows {
		out = append(out, fs...)
	}
	return out
}

func writeReport(ctx context.Context, comp Components, logger *diag.Logger, fileID contract.FileID, findings []contract.Finding) error {
	fid := string(fileID)
	atimer := logger.StartWith("assembler", "assemble", fid)
	rd, err := comp.Assembler.Assemble(ctx, fileID, findings)
	if err != nil {
		diag.Record(logger, "assembler", fid, err)
		return stageErr("assembler assemble", err)
	}
	atimer.Finish("assemble", int64(len(findings)))
	diag.IncOp("assembler", "finish", "success")

	id := ReportID(fileID)
	wtimer := logger.StartWith("writer", "write", string(id))
	if err := comp.Writer.Write(ctx, id, rd); err != nil {
		diag.Record(logger, "writer", string(id), err)
		return stageErr("writer write", err)
	}
	wtimer.Finish("write", 1)
	diag.IncOp("writer", "finish", "success")
	return nil
}

// ReportID 由输入 FileID 推导报告产物名：去扩展名后追加 ReportSuffix。
func ReportID(fileID contract.FileID) contract.ArtifactID {
	base := path.Base(string(contract.NormalizeFileID(string(fileID))))
	if ext := path.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return contract.ArtifactID(base + ReportSuffix)
}

// stageError 标记已在阶段内记录过日志的错误，避免 reader 层重复记录。
type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string { return e.stage + ": " + e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

func stageErr(stage string, err error) error { return &stageError{stage: stage, err: err} }

func isStageError(err error) bool {
	var se *stageError
	return errors.As(err, &se)
}

func sanity(c Components, s Settings) error {
	if c.Reader == nil || c.Loader == nil || c.Classifier == nil {
		return errors.New("nil component")
	}
	if s.Report && (c.Assembler == nil || c.Writer == nil) {
		return errors.New("report enabled without assembler/writer")
	}
	if len(s.Inputs) > 1 {
		return fmt.Errorf("expected a single input, got %d", len(s.Inputs))
	}
	if s.Concurrency < 0 {
		return fmt.Errorf("invalid concurrency %d", s.Concurrency)
	}
	return nil
}
