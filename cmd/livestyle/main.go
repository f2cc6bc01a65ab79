// Command livestyle drives the LiveStyle sync engine from event documents.
package main

import (
	"context"
	"log"
	"os"

	"pkt.systems/psi"
	"pkt.systems/pslog"

	"github.com/roach88/livestyle/internal/cli"
)

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)

	root := cli.NewRootCommand()
	root.SetArgs(os.Args[1:])

	err := root.ExecuteContext(ctx)
	if err != nil && !cli.IsReported(err) {
		logger.With("err", err).Error("livestyle command failed")
	}
	return cli.GetExitCode(err)
}
