package main

import "github.com/vietddude/artbid/internal/cli"

func main() {
	cli.Execute()
}
