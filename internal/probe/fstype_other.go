//go:build !linux

package probe

func fsType(string) string { return "" }
