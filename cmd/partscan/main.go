package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	cfgpkg "partscan/internal/config"
	"partscan/internal/diag"
	"partscan/internal/pipeline"
)

var pipelineRun = pipeline.Run

// 退出码：0 成功；1 参数错误或运行失败；3 配置错误。
const (
	exitOK     = 0
	exitRun    = 1
	exitConfig = 3
)

const argsErrorMessage = "ERROR: No valid arguments provided. Please provide the data file path."

// errArgs 表示位置参数个数不为 1（--init-config 模式除外）。
var errArgs = errors.New("invalid arguments")

// exitError 携带 RunE 内部决定的退出码；消息已在返回前输出。
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit %d", e.code) }

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run 解析参数并执行；stdout 只承载结果（合计或参数错误提示），诊断写 stderr 与日志文件。
func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd(stdout, stderr)
	// nil 会让 cobra 回退到 os.Args
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// 参数个数错误与旗标解析错误同属参数错误
	if !errors.Is(err, errArgs) {
		fprintf(stderr, "%v\n", err)
	}
	fprintf(stdout, "%s\n", argsErrorMessage)
	return exitRun
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var initDir string
	cmd := &cobra.Command{
		Use:   "partscan <input-path>",
		Short: "Sum the part numbers of an engine schematic grid",
		Long: "partscan reads a rectangular character grid and prints the sum of every number\n" +
			"that touches a symbol, diagonals included. Use \"-\" to read standard input.",
		Args: func(cmd *cobra.Command, args []string) error {
			if initDir != "" && len(args) <= 1 {
				return nil
			}
			if len(args) != 1 {
				return errArgs
			}
			return nil
		},
		SilenceErrors:     true,
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			if initDir != "" {
				// 兼容 "--init-config DIR"（无 '=' 时 pflag 取默认值，DIR 落入位置参数）
				dir := initDir
				if dir == "." && len(args) == 1 {
					dir = args[0]
				}
				return exitWith(initConfig(dir, stderr))
			}
			return exitWith(execute(cmd.Context(), args[0], stdout, stderr))
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.Flags().StringVar(&initDir, "init-config", "", "write a default partscan.yaml into the given directory (default .) and exit")
	cmd.Flags().Lookup("init-config").NoOptDefVal = "."
	return cmd
}

func exitWith(code int) error {
	if code == exitOK {
		return nil
	}
	return &exitError{code: code}
}

// execute 加载配置（默认 → 文件 → ENV → CLI），装配并运行流水线。
func execute(ctx context.Context, input string, stdout, stderr io.Writer) int {
	start := time.Now()
	cfg, err := loadConfig(input)
	if err != nil {
		fprintf(stderr, "config: %v\n", err)
		return exitConfig
	}
	if err := cfgpkg.Validate(cfg); err != nil {
		fprintf(stderr, "config validation failed: %v\n", err)
		_ = dumpConfig(stderr, cfg)
		return exitConfig
	}

	logger := diag.NewLogger(uuid.NewString(), cfg.Logging.Level, cfg.Logging.Dir)
	defer func() { _ = logger.Sync() }()

	comp, set, err := cfgpkg.Assemble(cfg)
	if err != nil {
		fprintf(stderr, "assemble failed: %v\n", err)
		logger.Error("pipeline", string(diag.Classify(err)), "assemble failed", &start)
		return exitConfig
	}
	logger.DebugStart("config", "effective", "", map[string]string{
		"input":       cfg.Inputs[0],
		"concurrency": fmt.Sprint(cfg.Concurrency),
		"reader":      cfg.Components.Reader,
		"loader":      cfg.Components.Loader,
		"classifier":  cfg.Components.Classifier,
		"report":      fmt.Sprint(cfg.Report.On()),
	})

	t := logger.Start("pipeline", "run")
	res, err := pipelineRun(ctx, comp, set, logger)
	if err != nil {
		code := string(diag.Classify(err))
		logger.Error("pipeline", code, "first error", &start)
		diag.IncOp("pipeline", "error", "error")
		if code != string(diag.CodeUnknown) {
			diag.IncError("pipeline", code)
		}
		if !errors.Is(err, context.Canceled) {
			fprintf(stderr, "run failed: %v\n", err)
		}
		return exitRun
	}
	t.Finish("run", int64(res.Parts))
	diag.IncOp("pipeline", "finish", "success")
	fprintf(stdout, "%d\n", res.Sum)
	return exitOK
}

// loadConfig 合并配置来源；优先级 CLI > ENV > 文件 > 默认。
// 文件来源：PARTSCAN_CONFIG_JSON（内联）或 PARTSCAN_CONFIG_FILE，缺省时在工作目录查找 partscan.{yaml,yml,json}。
func loadConfig(input string) (cfgpkg.Config, error) {
	cfg := cfgpkg.Defaults()
	var (
		base cfgpkg.Config
		err  error
		have bool
	)
	switch {
	case os.Getenv(cfgpkg.EnvPrefix+"CONFIG_JSON") != "":
		base, err = cfgpkg.LoadJSON("", []byte(os.Getenv(cfgpkg.EnvPrefix+"CONFIG_JSON")))
		have = true
	case os.Getenv(cfgpkg.EnvPrefix+"CONFIG_FILE") != "":
		base, err = cfgpkg.LoadFile(os.Getenv(cfgpkg.EnvPrefix + "CONFIG_FILE"))
		have = true
	default:
		if p, ok := cfgpkg.Discover("."); ok {
			base, err = cfgpkg.LoadFile(p)
			have = true
		}
	}
	if err != nil {
		return cfgpkg.Config{}, err
	}
	if have {
		cfg = cfgpkg.Merge(cfg, base)
	}

	over, err := cfgpkg.EnvOverlay(os.Environ())
	if err != nil {
		return cfgpkg.Config{}, err
	}
	cfg = cfgpkg.Merge(cfg, over)
	return cfgpkg.Merge(cfg, cfgpkg.Config{Inputs: []string{input}}), nil
}

// initConfig 在 dir 下生成 partscan.yaml 模板；已存在则失败，不覆盖。
func initConfig(dir string, stderr io.Writer) int {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fprintf(stderr, "init-config: %v\n", err)
		return exitConfig
	}
	b, err := cfgpkg.MarshalYAML(cfgpkg.DefaultTemplateConfig())
	if err != nil {
		fprintf(stderr, "init-config: %v\n", err)
		return exitConfig
	}
	path := filepath.Join(dir, cfgpkg.DefaultFiles[0])
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		fprintf(stderr, "init-config: %v\n", err)
		return exitConfig
	}
	defer f.Close()
	if _, err := f.Write(b); err != nil {
		fprintf(stderr, "init-config: %v\n", err)
		return exitConfig
	}
	return exitOK
}

func fprintf(w io.Writer, format string, a ...any) { _, _ = fmt.Fprintf(w, format, a...) }

func dumpConfig(w io.Writer, c cfgpkg.Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	fprintf(w, "effective config:\n%s\n", strings.TrimSpace(string(b)))
	return nil
}
