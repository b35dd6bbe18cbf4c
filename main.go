package main

import "github.com/pulumi/cbom-tools/internal/cmd"

func main() {
	cmd.Execute()
}
