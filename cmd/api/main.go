package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailinh-coffee/coffeeshop-backend/internal/auth"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/aws"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/config"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/handlers"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/orders"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/payment"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/payment/momo"
	paypalgw "github.com/hailinh-coffee/coffeeshop-backend/internal/payment/paypal"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/payment/vnpay"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/products"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/promo"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/reviews"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/revenue"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/users"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/validation"
)

func buildAPI(ctx context.Context, cfg *config.Config, clients *aws.AWSClients) (*handlers.API, error) {
	orderStore := orders.NewStore(clients.DynamoDB, cfg.Tables.Orders)
	promoStore := promo.NewStore(clients.DynamoDB, cfg.Tables.PromoCodes)

	api := &handlers.API{
		Cfg:        cfg,
		Validator:  validation.New(),
		Issuer:     auth.NewIssuer(cfg.Auth.JWTSecret),
		OrderStore: orderStore,
		Orders:     orders.NewService(orderStore),
		PromoStore: promoStore,
		Promo:      promo.NewEvaluator(promoStore),
		Products:   products.NewStore(clients.DynamoDB, cfg.Tables.Products),
		Users:      users.NewStore(clients.DynamoDB, cfg.Tables.Users),
		Revenue:    revenue.NewService(orderStore),
		Publisher:  aws.NewPublisher(clients.SQS, cfg.Queue.OrderEventsURL),
		Metrics:    aws.NewMetrics(clients.CloudWatch, cfg.Metrics.Namespace),
		Gateways:   map[string]payment.Gateway{orders.MethodCOD: payment.COD{}},
	}
	api.Reviews = reviews.NewService(
		reviews.NewStore(clients.DynamoDB, cfg.Tables.Reviews),
		orderStore,
		api.Products,
	)

	if cfg.VNPay.Configured() {
		api.VNPay = vnpay.New(cfg.VNPay, cfg.VNPayReturnURL())
		api.Gateways[orders.MethodVNPay] = api.VNPay
	} else {
		api.Gateways[orders.MethodVNPay] = &payment.Disabled{Provider: "vnpay", EnvHint: "VNP_TMNCODE, VNP_HASHSECRET, VNP_URL"}
		log.Warn().Msg("vnpay gateway disabled: credentials not configured")
	}

	if cfg.MoMo.Configured() {
		api.MoMo = momo.New(cfg.MoMo, cfg.MoMoReturnURL(), cfg.MoMoNotifyURL())
		api.Gateways[orders.MethodMoMo] = api.MoMo
	} else {
		api.Gateways[orders.MethodMoMo] = &payment.Disabled{Provider: "momo", EnvHint: "MOMO_PARTNER_CODE, MOMO_ACCESS_KEY, MOMO_SECRET_KEY, MOMO_ENDPOINT"}
		log.Warn().Msg("momo gateway disabled: credentials not configured")
	}

	if cfg.PayPal.Configured() {
		pp, err := paypalgw.New(cfg.PayPal, cfg.USDToVNDRate, cfg.PayPalReturnURL(), cfg.PayPalCancelURL())
		if err != nil {
			return nil, fmt.Errorf("init paypal: %w", err)
		}
		api.PayPal = pp
		api.Gateways[orders.MethodPayPal] = pp
	} else {
		api.Gateways[orders.MethodPayPal] = &payment.Disabled{Provider: "paypal", EnvHint: "PAYPAL_CLIENT_ID, PAYPAL_CLIENT_SECRET"}
		log.Warn().Msg("paypal gateway disabled: credentials not configured")
	}

	return api, nil
}

func setupRouter(api *handlers.API) *gin.Engine {
	if !api.Cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	api.Register(r)
	return r
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	clients, err := aws.NewAWSClients(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("init aws clients")
	}

	api, err := buildAPI(ctx, cfg, clients)
	if err != nil {
		log.Fatal().Err(err).Msg("build api")
	}
	r := setupRouter(api)

	if os.Getenv("RUN_LOCAL") == "true" {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		log.Info().Str("addr", addr).Msg("running local server")
		if err := r.Run(addr); err != nil {
			log.Fatal().Err(err).Msg("local server")
		}
		return
	}

	adapter := ginadapter.New(r)
	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
