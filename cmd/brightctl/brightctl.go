package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kiosk404/brightchat/internal/brightctl/cmd"
	"github.com/kiosk404/brightchat/internal/brightctl/cmd/util"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := cmd.NewDefaultBrightCtlCommand()
	err := command.ExecuteContext(ctx)
	stop()
	util.CheckErr(err)
}
