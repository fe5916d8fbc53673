// Package classification Suara Kampus Band Manager Service.
//
// Backend for the Suara Kampus band club dashboard: events, lineups,
// setlists and notifications.
//
//	Version: 0.1.0
//
//	Consumes:
//	  - application/json
//
//	Produces:
//	  - application/json
//
//	SecurityDefinitions:
//	  oauth2:
//	    type: oauth2
//	    tokenUrl: /tokens
//	    flow: password
//
// swagger:meta
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-mail/mail"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/suara-kampus/band-manager/internal/log"
	"github.com/suara-kampus/band-manager/internal/middleware"
	"github.com/suara-kampus/band-manager/internal/server"
	"github.com/suara-kampus/band-manager/pkg/config"
	"github.com/suara-kampus/band-manager/pkg/event"
	"github.com/suara-kampus/band-manager/pkg/notification"
	"github.com/suara-kampus/band-manager/pkg/push"
	"github.com/suara-kampus/band-manager/pkg/storage"
	"github.com/suara-kampus/band-manager/pkg/token"
	"github.com/suara-kampus/band-manager/pkg/user"
)

func main() {
	logger := slog.New(log.New(slog.NewJSONHandler(os.Stdout, nil)))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("Exiting", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx := context.Background()

	cfg, err := config.New()
	if err != nil {
		return err
	}

	db, err := storage.NewDatabase(logger, cfg.Postgresql)
	if err != nil {
		return fmt.Errorf("failed to setup database: %v", err)
	}

	redisClient, err := storage.NewRedis(cfg.Redis.Host, cfg.Redis.Port)
	if err != nil {
		return fmt.Errorf("failed to setup redis: %v", err)
	}

	dialer := mail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
	userRepository := user.NewRepository(db)
	userService := user.NewService(cfg.UIURL, uint(cfg.Authentication.PasswordTokenTtlSeconds), userRepository, dialer)

	tokenRepository := token.NewRepository(redisClient)
	tokenService := token.NewService(
		logger,
		tokenRepository,
		cfg.Authentication.PrivateKey,
		cfg.Authentication.AccessTokenExpirationSeconds,
		cfg.Authentication.RefreshTokenSecretKey,
		cfg.Authentication.RefreshTokenExpirationSeconds,
	)

	eventRepository := event.NewRepository(db)
	eventService := event.NewService(eventRepository)

	fcmSender, webPushSender, err := pushSenders(ctx, logger, cfg.Push)
	if err != nil {
		return err
	}
	pushRepository := push.NewRepository(db)
	pushService := push.NewService(logger, pushRepository, fcmSender, webPushSender)

	notificationRepository := notification.NewRepository(db)
	broker := notification.NewBroker()
	dispatcher := notification.NewDispatcher(logger, notificationRepository, broker, pushService)

	var ledger notification.Ledger = notification.NewOpenLedger()
	if cfg.Reminder.DedupEnabled {
		ledger = notification.NewRedisLedger(redisClient)
	}
	scanner := notification.NewScanner(logger, notificationRepository, dispatcher, ledger)

	amqpConnection, err := amqp.Dial(cfg.RabbitMq.GetUrl())
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %v", err)
	}
	defer func() { _ = amqpConnection.Close() }()

	amqpChannel, err := amqpConnection.Channel()
	if err != nil {
		return fmt.Errorf("failed to open rabbitmq channel: %v", err)
	}

	scanConsumer := notification.NewScanConsumer(logger, amqpChannel, scanner)
	if err := scanConsumer.Consume(ctx); err != nil {
		return fmt.Errorf("failed to start scan consumer: %v", err)
	}

	authentication := middleware.NewAuthentication(logger, &cfg.Authentication.PrivateKey.PublicKey, userService)
	authorization := middleware.NewAuthorization(logger, userService)

	handlers := server.Handlers{
		User:         user.NewHandler(userService, tokenService),
		Event:        event.NewHandler(eventService),
		Notification: notification.NewHandler(notificationRepository, scanner, broker, cfg.BaseURL, cfg.CronSecret),
		Push:         push.NewHandler(pushService),
	}

	r := server.GetEngine(logger, cfg.BasePath, cfg.CronSecret, authentication, authorization, handlers)
	return r.Run()
}

func pushSenders(ctx context.Context, logger *slog.Logger, cfg config.Push) (push.FCMSender, push.WebPushSender, error) {
	var fcmSender push.FCMSender = push.NewDisabledFCMSender()
	if cfg.FCMCredentialsFile != "" {
		sender, err := push.NewFCMSender(ctx, cfg.FCMCredentialsFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to setup fcm: %v", err)
		}
		fcmSender = sender
	} else {
		logger.Warn("FCM credentials not configured, fcm pushes are disabled")
	}

	var webPushSender push.WebPushSender = push.NewDisabledWebPushSender()
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		webPushSender = push.NewWebPushSender(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubscriber)
	} else {
		logger.Warn("VAPID keys not configured, web pushes are disabled")
	}

	return fcmSender, webPushSender, nil
}
