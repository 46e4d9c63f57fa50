package diag

import (
	"fmt"
	"sync"
)

// 进程内最小指标（名称沿用 op_total / error_total / op_duration_ms）：
// - op_total{comp,stage,result}
// - error_total{comp,code}
// - op_duration_ms{comp,stage}（累计毫秒）

// Metrics 为某一时刻的指标快照。
type Metrics struct {
	Ops        map[string]int64
	Errors     map[string]int64
	DurationMS map[string]int64
}

var (
	metricsMu sync.Mutex
	metrics   = newMetrics()
)

func newMetrics() Metrics {
	return Metrics{Ops: map[string]int64{}, Errors: map[string]int64{}, DurationMS: map[string]int64{}}
}

// IncOp 累加操作计数（result=success|error）。
func IncOp(comp, stage, result string) {
	metricsMu.Lock()
	metrics.Ops[fmt.Sprintf("%s/%s/%s", comp, stage, result)]++
	metricsMu.Unlock()
}

// IncError 按分类累加错误计数。
func IncError(comp, code string) {
	metricsMu.Lock()
	metrics.Errors[comp+"/"+code]++
	metricsMu.Unlock()
}

// ObserveDuration 记录阶段耗时（毫秒）。
func ObserveDuration(comp, stage string, durMS int64) {
	metricsMu.Lock()
	metrics.DurationMS[comp+"/"+stage] += durMS
	metricsMu.Unlock()
}

// Snapshot 返回当前指标的深拷贝。
func Snapshot() Metrics {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	out := newMetrics()
	for k, v := range metrics.Ops {
		out.Ops[k] = v
	}
	for k, v := range metrics.Errors {
		out.Errors[k] = v
	}
	for k, v := range metrics.DurationMS {
		out.DurationMS[k] = v
	}
	return out
}

// ResetMetrics 清空全部计数（测试用）。
func ResetMetrics() {
	metricsMu.Lock()
	metrics = newMetrics()
	metricsMu.Unlock()
}
