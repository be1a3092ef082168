package main

import "github.com/mvp-joe/typeshape/internal/cli"

func main() {
	cli.Execute()
}
