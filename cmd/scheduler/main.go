package main

import (
	"context"
	"medbot/internal/app/deps"
	"medbot/internal/app/services"
	"medbot/internal/scheduler"
	"os/signal"
	"syscall"
)

func main() {
	deps, shutdownDeps := deps.InitDeps()
	defer shutdownDeps()

	services := services.InitServices(deps)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	scheduler.New(deps.Logger, services.SendDueReminders, deps.Config.SchedulerInterval).Run(ctx)
}
