package main

import "dbbrowser/cmd"

func main() {
	enableConsoleUTF8()
	cmd.Execute()
}
