package main

import "go-approvals/internal/cli"

func main() {
	cli.Execute()
}
