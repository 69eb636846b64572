//go:build !windows

package main

func enableConsoleUTF8() {}
