package config

import (
	"errors"
	"fmt"
	"strings"

	"partscan/internal/pipeline"
	"partscan/pkg/registry"
)

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate 对最小必要边界做静态校验。
func Validate(cfg Config) error {
	if len(cfg.Inputs) != 1 {
		return fmt.Errorf("config: exactly one input required, got %d", len(cfg.Inputs))
	}
	if strings.TrimSpace(cfg.Inputs[0]) == "" {
		return errors.New("config: input path cannot be empty")
	}
	if cfg.Concurrency < 1 {
		return errors.New("config: concurrency must be >= 1")
	}
	if lv := strings.ToLower(strings.TrimSpace(cfg.Logging.Level)); lv != "" && !validLevels[lv] {
		return fmt.Errorf("config: unknown log level %q", cfg.Logging.Level)
	}
	// 组件名若为空，使用默认名（由 Defaults() 提供）。此处只要最终有值即可。
	d := Defaults().Components
	if name := effName(cfg.Components.Reader, d.Reader); registry.Reader[name] == nil {
		return fmt.Errorf("config: reader %q not registered", name)
	}
	if name := effName(cfg.Components.Loader, d.Loader); registry.Loader[name] == nil {
		return fmt.Errorf("config: loader %q not registered", name)
	}
	if name := effName(cfg.Components.Classifier, d.Classifier); registry.Classifier[name] == nil {
		return fmt.Errorf("config: classifier %q not registered", name)
	}
	if name := effName(cfg.Components.Assembler, d.Assembler); registry.Assembler[name] == nil {
		return fmt.Errorf("config: assembler %q not registered", name)
	}
	if name := effName(cfg.Components.Writer, d.Writer); registry.Writer[name] == nil {
		return fmt.Errorf("config: writer %q not registered", name)
	}
	return nil
}

// Assemble 构造 Components 与 Settings。
// 严格 Options 解析在 registry（工厂）层进行；此处只传 raw JSON。
// Assembler/Writer 仅在报告开启时构造。
func Assemble(cfg Config) (pipeline.Components, pipeline.Settings, error) {
	if err := Validate(cfg); err != nil {
		return pipeline.Components{}, pipeline.Settings{}, err
	}

	d := Defaults().Components
	var comp pipeline.Components
	var err error
	if comp.Reader, err = registry.Reader[effName(cfg.Components.Reader, d.Reader)](cfg.Options.Reader); err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("config: reader options: %w", err)
	}
	if comp.Loader, err = registry.Loader[effName(cfg.Components.Loader, d.Loader)](cfg.Options.Loader); err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("config: loader options: %w", err)
	}
	if comp.Classifier, err = registry.Classifier[effName(cfg.Components.Classifier, d.Classifier)](cfg.Options.Classifier); err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("config: classifier options: %w", err)
	}
	if cfg.Report.On() {
		if comp.Assembler, err = registry.Assembler[effName(cfg.Components.Assembler, d.Assembler)](cfg.Options.Assembler); err != nil {
			return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("config: assembler options: %w", err)
		}
		if comp.Writer, err = registry.Writer[effName(cfg.Components.Writer, d.Writer)](cfg.Options.Writer); err != nil {
			return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("config: writer options: %w", err)
		}
	}

	set := pipeline.Settings{
		Inputs:      cloneStrings(cfg.Inputs),
		Concurrency: cfg.Concurrency,
		Report:      cfg.Report.On(),
	}
	return comp, set, nil
}

func effName(got, def string) string {
	if strings.TrimSpace(got) == "" {
		return def
	}
	return strings.TrimSpace(got)
}
