// Command resembl is the thin urfave/cli/v2 command tree over the
// similarity-search engine implemented by internal/search.
package main

import (
	"fmt"
	"os"

	"github.com/maci0/resembl/internal/search"
)

func main() {
	env := newAppEnv()
	app := buildApp(env)

	err := app.Run(os.Args)
	if env.logger != nil {
		_ = env.logger.Sync()
	}
	if env.backend != nil {
		_ = env.backend.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(search.ExitCode(err))
	}
}
