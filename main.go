package main

import "github.com/solvaholic/gh-issue-dash/cmd"

func main() {
	cmd.Execute()
}
