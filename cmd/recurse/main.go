package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

var logger *logrus.Entry

func init() {
	logger = logrus.WithField("package", "main")
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.WithError(err).Debug("command failed")
		os.Exit(1)
	}
}
