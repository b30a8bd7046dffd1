package main

import (
	"os"

	"github.com/lotas/ticketdeck/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
