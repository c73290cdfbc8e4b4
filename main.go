/*
Renders the demo scene: a lit icosphere and a cloud of cubes animated by a
compute shader.
*/
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/droune2001/vulkan-sub000/engine"
	"github.com/droune2001/vulkan-sub000/engine/config"
	"github.com/droune2001/vulkan-sub000/engine/core"
	"github.com/droune2001/vulkan-sub000/testbed"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		core.LogError("configuration: %s", err)
		return 1
	}

	tb := testbed.NewTestGame(cfg)
	e, err := engine.New(tb.Game)
	if err != nil {
		core.LogError("%s", err)
		return 1
	}

	if err := e.Initialize(); err != nil {
		core.LogError("initialization failed: %s", err)
		_ = e.Shutdown()
		return 1
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	go func() {
		<-sigCh
		e.RequestQuit()
	}()

	code := 0
	if err := e.Run(); err != nil {
		core.LogError("render loop terminated: %s", err)
		code = 1
	}
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown: %s", err)
		code = 1
	}
	return code
}
