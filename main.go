package main

import "github.com/kezhenxu94/after-hours/cmd"

func main() {
	cmd.Execute()
}
