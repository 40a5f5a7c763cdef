package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := logrus.New()
	if err := newRootCommand(logger).ExecuteContext(ctx); err != nil {
		logger.WithError(err).Error("schemamodel failed")
		stop()
		os.Exit(1)
	}
}
