//go:build windows

package filesystem

// syncDir 在 Windows 上为 no-op（目录无法 fsync）。
func syncDir(string) error { return nil }
