package main

import (
	"errors"
	"log"
	"net/http"
	"os"

	"server/src/api"
	"server/src/config"
	"server/src/utils"
	aws_handler "server/src/utils/aws"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("./settings", os.Getenv("ENV"))
	if err != nil {
		log.Println(err, "Error while loading config")
		return
	}

	errC, err := run(cfg)
	if err != nil {
		log.Println(err, "Couldn't run")
		return
	}

	if err := <-errC; err != nil {
		log.Println(err, "Error while running")
	}
}

func run(cfg *config.Config) (<-chan error, error) {
	errC := make(chan error, 1)

	logger := utils.NewLogger(logrus.InfoLevel, false, "")

	// The aggregator consumer key may live in Secrets Manager instead of the
	// config file.
	if secretID := cfg.ExternalClients.SnapTrade.SecretID; secretID != "" &&
		cfg.ExternalClients.SnapTrade.ConsumerKey == "" {
		awsHandler, err := aws_handler.NewAWSHandler(cfg.ExternalClients.SnapTrade.Region)
		if err != nil {
			return nil, err
		}
		consumerKey, err := awsHandler.SecretManager.GetSecretValue(secretID)
		if err != nil {
			return nil, err
		}
		cfg.ExternalClients.SnapTrade.ConsumerKey = consumerKey
	}

	server, err := api.NewServer(cfg, logger)
	if err != nil {
		return nil, err
	}
	httpServer := api.NewHTTPServer(cfg, server)

	go func() {
		logger.WithField("addr", httpServer.Addr).Info("Starting server")

		// "ListenAndServe always returns a non-nil error. After Shutdown or Close, the returned error is
		// ErrServerClosed."
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("An error raised while setting up server")
			errC <- err
		}
	}()
	return errC, nil
}
