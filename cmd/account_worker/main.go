package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-accounts/config"
	"github.com/oksasatya/user-accounts/internal/infrastructure/search"
	"github.com/oksasatya/user-accounts/internal/interface/consumer"
	"github.com/oksasatya/user-accounts/pkg/helpers"
	"github.com/oksasatya/user-accounts/pkg/mailer"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-worker", cfg.Env)
	if cfg.RabbitMQURL == "" || cfg.RabbitMQAccountQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	proc := &consumer.AccountEventProcessor{
		Branding: consumer.Branding{
			CompanyName: cfg.CompanyName,
			AppName:     cfg.AppName,
			SupportURL:  cfg.SupportURL,
		},
		Logger:        logger,
		Timeout:       15 * time.Second,
		RetryDelay:    5 * time.Second,
		MaxDeliveries: 10,
	}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 && cfg.ESAccountsIndex != "" {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			log.Fatalf("elasticsearch client: %v", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = helpers.PingES(pingCtx, es)
		cancel()
		if err != nil {
			logger.WithError(err).Warn("elasticsearch unavailable; account indexing disabled")
		} else {
			index := search.NewAccountIndex(es, cfg.ESAccountsIndex, logger)
			if err := index.Ensure(ctx); err != nil {
				log.Fatalf("ensure index %s: %v", cfg.ESAccountsIndex, err)
			}
			proc.Index = index
		}
	}

	if cfg.MailSendEnabled {
		mg, err := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
		if err != nil {
			log.Fatalf("mailgun: %v", err)
		}
		proc.Mail = mg
	} else {
		logger.Info("MAIL_SEND_ENABLED=false; account emails disabled")
	}

	cons, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQAccountQueue, 16)
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}
	defer cons.Close()

	msgs, err := cons.Deliveries()
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	done := make(chan struct{})
	go func() {
		proc.Run(ctx, msgs)
		close(done)
	}()

	helpers.LogInfo(logger, "account worker listening", logrus.Fields{
		"queue":    cfg.RabbitMQAccountQueue,
		"indexing": proc.Index != nil,
		"mail":     proc.Mail != nil,
	})
	select {
	case <-ctx.Done():
		logger.Info("shutting down...")
	case <-done:
		logger.Warn("delivery channel closed")
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
