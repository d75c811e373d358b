package controllers

import (
	"context"

	"server/src/utils"

	"github.com/sirupsen/logrus"
)

func loggerFor(ctx context.Context) *logrus.Logger {
	return utils.LoggerFromContext(ctx)
}
