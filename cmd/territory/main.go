package main

import "github.com/mvp-joe/territory/internal/cli"

func main() {
	cli.Execute()
}
