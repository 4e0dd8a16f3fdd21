// Command asyncdraw renders declarative scene files with the asyncdraw
// pipeline.
//
// Usage:
//
//	asyncdraw render scene.yaml -o scene.png --scale 2
//	asyncdraw watch scene.yaml -o scene.png
//	asyncdraw tree scene.toml
//
// Settings come from flags, ASYNCDRAW_* environment variables and an
// optional YAML config file ($HOME/.asyncdraw.yaml or --config).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	root, _ := newRootCmd()
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
