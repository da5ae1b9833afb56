package main

import "hazard-admin/internal/cli"

func main() {
	cli.Execute()
}
