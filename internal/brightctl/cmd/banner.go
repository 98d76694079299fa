package cmd

import (
	"fmt"

	"github.com/kiosk404/brightchat/pkg/version"
)

const bannerText = `
  ____       _       _     _    ____ _           _
 | __ ) _ __(_) __ _| |__ | |_ / ___| |__   __ _| |_
 |  _ \\| '__| |/ _' | '_ \\| __| |   | '_ \\ / _' | __|
 | |_) | |  | | (_| | | | | |_| |___| | | | (_| | |_
 |____/|_|  |_|\\__, |_| |_|\\__|\\____|_| |_|\\__,_|\\__|
               |___/
`

// Banner returns the CLI banner string.
func Banner() string {
	return fmt.Sprintf("%s\n  Version: %s\n", bannerText, version.Get().String())
}
