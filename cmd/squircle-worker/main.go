// Command squircle-worker is the path-generation worker spawned by the
// engine. It reads length-prefixed requests from stdin, computes superellipse
// outlines, and writes responses to stdout. Logs go to stderr so they never
// corrupt the message stream.
package main

import (
	"log"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ljmurray/squircle/internal/worker"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.JSONFormatter{})

	agent := worker.NewAgent(os.Stdin, os.Stdout, logger)
	if err := agent.Serve(); err != nil {
		log.Fatalf("serve: %v", err)
	}
}
