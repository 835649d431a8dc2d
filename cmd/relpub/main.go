package main

import "relpub/internal/cmd"

func main() {
	cmd.Execute()
}
