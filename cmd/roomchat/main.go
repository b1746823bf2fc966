package main

import (
	"github.com/dkaymak/roomchat/internal/cli"
)

func main() {
	cli.Execute()
}
