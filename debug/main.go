package main

import (
	"os"

	"github.com/emrgen/taxonomy/internal/server"
)

func main() {
	httpPort := os.Getenv("HTTP_PORT")
	if httpPort == "" {
		httpPort = "4030"
	}

	if err := server.Start(httpPort); err != nil {
		return
	}
}
