package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/kiosk404/brightchat/internal/brightstub"
)

func main() {
	brightstub.NewApp("brightstub").Run()
}
