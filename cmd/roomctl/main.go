package main

import (
	"github.com/projectr/roomserver/internal/cli"
)

func main() {
	cli.Execute()
}
