package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/GradMERN/e-guide-Backend/internal/notifier"
	"github.com/GradMERN/e-guide-Backend/internal/repository"
	"github.com/GradMERN/e-guide-Backend/internal/worker"
	"github.com/GradMERN/e-guide-Backend/pkg/db"
	"github.com/GradMERN/e-guide-Backend/pkg/obs"
)

type Cfg struct {
	PGDSN     string `envconfig:"PG_DSN" required:"true"`
	RabbitURL string `envconfig:"RABBIT_URL" required:"true"`

	Exchange string   `envconfig:"EVENTS_EXCHANGE" default:"etour.events"`
	Queue    string   `envconfig:"NOTIFY_QUEUE" default:"notification.q"`
	Bindings []string `envconfig:"NOTIFY_BINDINGS" default:"enrollment.*,payment.*"`
	Prefetch int      `envconfig:"NOTIFY_PREFETCH" default:"16"`
	DLXName  string   `envconfig:"NOTIFY_DLX" default:"notification.dlx"`
	DLXQueue string   `envconfig:"NOTIFY_DLQ" default:"notification.q.dlq"`
}

func main() {
	_ = godotenv.Load()
	var cfg Cfg
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal(err)
	}

	shutdown := obs.InitTracer("notify")
	defer func() { _ = shutdown(context.Background()) }()

	gdb := db.Open(cfg.PGDSN)
	notifications := repository.NewNotificationRepo(gdb)
	if err := notifications.Migrate(); err != nil {
		log.Fatal(err)
	}

	n := notifier.Fanout{
		notifier.NewConsole(),
		notifier.NewRecorder(notifications),
	}

	cons := worker.NewConsumer(worker.Config{
		RabbitURL:   cfg.RabbitURL,
		Exchange:    cfg.Exchange,
		Queue:       cfg.Queue,
		Bindings:    cfg.Bindings,
		Prefetch:    cfg.Prefetch,
		UseDLX:      true,
		DLXName:     cfg.DLXName,
		DLXQueue:    cfg.DLXQueue,
		ServiceName: "notify",
	}, n)

	for {
		if err := cons.Connect(); err != nil {
			log.Printf("[notify] connect failed: %v; retry in 2s", err)
			time.Sleep(2 * time.Second)
			continue
		}
		break
	}
	defer cons.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := cons.Run(ctx); err != nil {
			log.Printf("[notify] run error: %v", err)
		}
	}()

	log.Printf("[notify] started. queue=%s exchange=%s bindings=%v", cfg.Queue, cfg.Exchange, cfg.Bindings)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	cancel()
	time.Sleep(200 * time.Millisecond)
}
