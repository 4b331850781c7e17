package main

import "pkgfilehash/internal/cli"

func main() {
	cli.Execute()
}
