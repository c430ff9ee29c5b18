package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type App struct {
	// DB
	PGDSN string `envconfig:"PG_DSN" required:"true"`
	// JWT
	JWTSecret    string `envconfig:"JWT_SECRET" required:"true"`
	JWTExpireMin int    `envconfig:"JWT_EXPIRE_MIN" default:"60"`
	// Network
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	// Events
	RabbitURL      string `envconfig:"RABBIT_URL" required:"true"`
	EventsExchange string `envconfig:"EVENTS_EXCHANGE" default:"etour.events"`
	// Payment gateway. When PaymentsEnabled is false (or no secret key is
	// configured) enrollments are granted without a payment leg.
	PaymentsEnabled bool          `envconfig:"PAYMENTS_ENABLED" default:"true"`
	OmisePublicKey  string        `envconfig:"OMISE_PUBLIC_KEY" default:""`
	OmiseSecretKey  string        `envconfig:"OMISE_SECRET_KEY" default:""`
	WebhookSecret   string        `envconfig:"PAYMENT_WEBHOOK_SECRET" default:""`
	GatewayTimeout  time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"15s"`
	// ReturnURL is where the gateway sends the payer back after an
	// authorize-redirect flow completes.
	ReturnURL string `envconfig:"CHECKOUT_RETURN_URL" default:""`
}

func Load() (App, error) {
	var c App
	err := envconfig.Process("", &c)
	return c, err
}
