package application

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/psds-microservice/tracker-service/internal/config"
	"github.com/psds-microservice/tracker-service/internal/freshdesk"
	"github.com/psds-microservice/tracker-service/internal/handler"
	"github.com/psds-microservice/tracker-service/internal/kafka"
	"github.com/psds-microservice/tracker-service/internal/notify"
	"github.com/psds-microservice/tracker-service/internal/router"
	"github.com/psds-microservice/tracker-service/internal/sdk"
	"github.com/psds-microservice/tracker-service/internal/service"
	"github.com/psds-microservice/tracker-service/internal/tracker"
)

// API приложение: HTTP сервер трекеров (режим api).
type API struct {
	cfg      *config.Config
	httpSrv  *http.Server
	app      *service.TrackerApp
	producer *kafka.Producer
}

// NewAPI создаёт приложение для режима api.
func NewAPI(cfg *config.Config) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	registry, err := tracker.LoadRegistry()
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	fd := freshdesk.NewClient(cfg.Freshdesk.Subdomain, cfg.Freshdesk.APIKey, cfg.RequestTimeout)
	if !fd.Configured() {
		log.Printf("freshdesk: FRESHDESK_SUBDOMAIN/FRESHDESK_API_KEY not set, ticket requests will fail")
	}

	app, err := service.NewTrackerApp(service.Deps{
		Registry: registry,
		SDK: &sdk.Client{
			Request:   fd,
			Interface: notify.New(producer),
			IParams:   cfg.IParams(),
		},
		Uploader:     fd,
		Events:       producer,
		DemoData:     cfg.DemoData,
		ReadyTimeout: cfg.RequestTimeout,
		SessionTTL:   cfg.SessionTTL,
	})
	if err != nil {
		return nil, err
	}

	h := router.New(router.Handlers{
		Templates:   handler.NewTemplateHandler(app),
		Sessions:    handler.NewSessionHandler(app),
		Attachments: handler.NewAttachmentHandler(fd),
		Readiness:   handler.Readiness{Templates: func() int { return len(registry.Names()) }},
		UploadLimit: cfg.UploadLimit,
	})

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &API{
		cfg:      cfg,
		httpSrv:  httpSrv,
		app:      app,
		producer: producer,
	}, nil
}

// Run запускает HTTP сервер, блокируется до отмены ctx.
func (a *API) Run(ctx context.Context) error {
	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	log.Printf("HTTP server listening on %s", a.httpSrv.Addr)
	log.Printf("  Swagger UI:    %s/swagger", base)
	log.Printf("  Swagger spec:  %s/swagger/openapi.json", base)
	log.Printf("  Health:        %s/health", base)
	log.Printf("  Ready:         %s/ready", base)
	log.Printf("  Metrics:       %s/metrics", base)
	log.Printf("  API v1:        %s/api/v1/", base)
	if a.producer.Enabled() {
		log.Printf("kafka: producing tracker events to %s", a.cfg.Kafka.Topic)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		a.app.Close()
		_ = a.producer.Close()
		return fmt.Errorf("http: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := a.httpSrv.Shutdown(shutdownCtx)
	a.app.Close()
	if cerr := a.producer.Close(); cerr != nil {
		log.Printf("kafka: close: %v", cerr)
	}
	if err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
