package contract

import (
	"context"
	"io"
)

// Assembler: 将单个输入的分类结果装配为报告文本。
// 约束：
//  1. findings 已按 (Row, Start) 严格升序；
//  2. 顺序违规返回 ErrInvariantViolation；
//  3. 不引入跨文件状态。
type Assembler interface {
	Assemble(ctx context.Context, fileID FileID, findings []Finding) (io.Reader, error)
}
