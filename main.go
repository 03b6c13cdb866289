package main

import "github.com/0xEljh/timesync/cmd"

func main() {
	cmd.Execute()
}
