package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailinh-coffee/coffeeshop-backend/internal/aws"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/config"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	clients, err := aws.NewAWSClients(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("init aws clients")
	}

	p := NewProcessor(clients.DynamoDB, cfg.Tables.Orders)

	// RUN_LOCAL=true processes one fabricated event and exits, for poking
	// at the handler without a queue.
	if os.Getenv("RUN_LOCAL") == "true" {
		body := os.Getenv("LOCAL_SQS_BODY")
		if body == "" {
			body = `{"type":"order.paid","order_id":"local-order-1"}`
		}
		ev := events.SQSEvent{Records: []events.SQSMessage{{Body: body}}}
		if err := p.Handle(ctx, ev); err != nil {
			log.Fatal().Err(err).Msg("local handler")
		}
		return
	}

	lambda.Start(p.Handle)
}
