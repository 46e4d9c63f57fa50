package contract

import (
	"context"
	"io"
)

// Loader: 将原始文本加载为矩形 Grid。
// 约束：
// 1) 整体裁剪首尾空白后按行切分（\n 或 \r\n）；
// 2) 空输入或行长不一致返回 *MalformedGridError；
// 3) 开放字母表：除行分隔外的字符原样保留；
// 4) 无内部并发、幂等。
type Loader interface {
	Load(ctx context.Context, fileID FileID, r io.Reader) (Grid, error)
}
