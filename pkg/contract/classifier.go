package contract

// Classifier: 判定数字是否为零件号。
// 合格时返回 (Value, true)；不合格为正常结果 (0, false)，不是错误。
// 实现必须是纯函数，可被多个行 worker 并发调用。
type Classifier interface {
	Classify(nc NumberContext) (uint64, bool)
}
