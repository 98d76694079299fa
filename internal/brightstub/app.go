// Package brightstub is a scripted Bright-Chat agent server. It replays
// scenario files as execution streams so the client can be exercised
// without a real agent runtime.
package brightstub

import (
	"github.com/MakeNowJust/heredoc/v2"

	"github.com/kiosk404/brightchat/internal/brightstub/options"
	"github.com/kiosk404/brightchat/pkg/app"
	"github.com/kiosk404/brightchat/pkg/logger"
)

const AppName = "brightstub"

func NewApp(basename string) *app.App {
	opts := options.NewOptions()
	application := app.NewApp(AppName,
		basename,
		app.WithOptions(opts),
		app.WithDescription(heredoc.Doc(`
			brightstub serves scripted Bright-Chat agents.

			Every *.json file of the scenario directory becomes an agent whose
			chat endpoint replays the scripted frames as an execution stream.`)),
		app.WithDefaultValidArgs(),
		app.WithRunFunc(run(opts)),
	)
	return application
}

func run(opts *options.Options) app.RunFunc {
	return func(basename string) error {
		if err := opts.LogOptions.Apply(); err != nil {
			return err
		}
		defer logger.FlushLog()

		return Run(opts)
	}
}
