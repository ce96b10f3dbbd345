// procdash is a real-time dashboard server for PM2-managed processes.
package main

import (
	"os"

	"github.com/procdash/procdash/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
