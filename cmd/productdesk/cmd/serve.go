package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"ProductDesk/internal/admin"
	"ProductDesk/internal/catalog"
	"ProductDesk/internal/config"
	"ProductDesk/pkg/kit"
)

const sweepEvery = time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the product management page",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	_ = viper.BindPFlag(config.KeyHTTPAddr, serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	log, err := kit.NewLogger(service, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	client, err := catalog.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
	if err != nil {
		return fmt.Errorf("init product api client: %w", err)
	}
	client.Metrics = kit.NewClientMetrics(reg, "product_api")

	sessions := admin.NewSessions(func() *admin.Page {
		return admin.NewPage(client, log.Named("page"))
	}, cfg.Limits.SessionTTL)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go sessions.SweepEvery(ctx, sweepEvery, func(n int) {
		log.Debug("idle sessions dropped", zap.Int("count", n), zap.Int("live", sessions.Len()))
	})

	key := []byte(cfg.SessionKey)
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(config.MinSessionKeyLen)
		log.Warn("SESSION_KEY not set: using a random key, sessions end on restart")
	}

	s := &admin.Server{Sessions: sessions, Store: admin.NewCookieStore(key), Log: log}
	h := admin.NewHandler(s, client, admin.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
		WriteRate:      cfg.Limits.WriteRatePerSec,
		WriteBurst:     cfg.Limits.WriteBurst,
	})

	log.Info("product api", zap.String("base_url", cfg.API.BaseURL), zap.Duration("timeout", cfg.API.Timeout))
	if err := kit.RunHTTPServer(ctx, cfg.HTTPAddr, h, log); err != nil {
		return fmt.Errorf("http server stopped: %w", err)
	}
	return nil
}
