//go:build windows

package main

import "syscall"

// enableConsoleUTF8 switches the console output code page to UTF-8
func enableConsoleUTF8() {
	kernel32 := syscall.NewLazyDLL("kernel32.dll")
	setConsoleOutputCP := kernel32.NewProc("SetConsoleOutputCP")
	setConsoleOutputCP.Call(uintptr(65001)) // CP_UTF8
}
