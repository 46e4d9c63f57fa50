// Package schematic 实现网格扫描核心：数字区间定位（Runs）与三行上下文提取（Extract）。
//
// 两者均为纯函数，只读访问 contract.Grid，可被多个行 worker 并发调用。
package schematic
