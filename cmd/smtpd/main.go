// Command smtpd runs a sans-I/O SMTP server over real TCP/TLS
// connections: one goroutine per connection, each driving an
// internal/smtp.Server against an internal/transport.Conn. AUTH PLAIN
// and LOGIN are checked against an in-memory bcrypt credential store
// (see internal/demoauth); MAIL FROM/RCPT TO accept any address, since
// relay policy is left to the host embedding this package.
package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/infodancer/mailproto/internal/config"
	"github.com/infodancer/mailproto/internal/demoauth"
	"github.com/infodancer/mailproto/internal/logging"
	"github.com/infodancer/mailproto/internal/metrics"
	"github.com/infodancer/mailproto/internal/server"
	"github.com/infodancer/mailproto/internal/smtp"
	"github.com/infodancer/mailproto/internal/transport"
	"github.com/prometheus/client_golang/prometheus"
)

// demoCredentials seeds the in-memory AuthProvider this binary ships
// with. A real deployment replaces demoauth.Store with a host-owned
// credential database.
var demoCredentials = map[string]string{
	"alice": "wonderland",
	"bob":   "hunter2",
}

func main() {
	flags := config.ParseFlags("./smtpd.toml")

	cfg, err := config.LoadSmtp(flags.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	cfg = config.ApplyFlags(cfg, flags, config.ModeSmtp)

	if err := cfg.Validate(config.ModeSmtp, config.ModeSmtps); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.LogLevel)

	var tlsConfig *tls.Config
	if cfg.TLS.CertFile != "" && cfg.TLS.KeyFile != "" {
		tlsConfig, err = transport.DefaultTLSConfig(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.TLS.MinTLSVersion())
		if err != nil {
			fmt.Fprintf(os.Stderr, "error loading TLS certificate: %v\n", err)
			os.Exit(1)
		}
		logger.Info("TLS configured", slog.String("cert", cfg.TLS.CertFile))
	}

	var collector metrics.Collector = &metrics.NoopCollector{}
	if cfg.Metrics.Enabled {
		collector = metrics.NewPrometheusCollector(prometheus.DefaultRegisterer, "smtp")
	}

	srv, err := server.New(server.Config{Cfg: &cfg, TLSConfig: tlsConfig, Logger: logger})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating server: %v\n", err)
		os.Exit(1)
	}
	authStore, err := demoauth.NewStore(demoCredentials)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error seeding demo credential store: %v\n", err)
		os.Exit(1)
	}

	srv.SetHandler(newSmtpHandler(&cfg, tlsConfig, logger, collector, authStore))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received signal, shutting down", "signal", sig.String())
		cancel()
	}()

	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewHTTPServer(cfg.Metrics.Address, cfg.Metrics.Path)
		go func() {
			if err := metricsServer.Start(ctx); err != nil && err != context.Canceled {
				logger.Error("metrics server error", "error", err)
			}
		}()
		logger.Info("metrics server started", "address", cfg.Metrics.Address, "path", cfg.Metrics.Path)
	}

	logger.Info("starting smtpd", "hostname", cfg.Hostname, "listeners", len(cfg.Listeners))

	if err := srv.Run(ctx); err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}

	logger.Info("smtp server stopped")
}

// newSmtpHandler builds the server.ConnectionHandler that wires one
// accepted connection to a fresh internal/smtp.Server for its
// lifetime.
func newSmtpHandler(cfg *config.Config, tlsConfig *tls.Config, logger *slog.Logger, collector metrics.Collector, authStore *demoauth.Store) server.ConnectionHandler {
	features := make([]string, 0, len(cfg.EsmtpFeatures))
	for name := range cfg.EsmtpFeatures {
		features = append(features, name)
	}

	return func(ctx context.Context, nc net.Conn, mode config.ListenerMode) {
		collector.ConnectionOpened()
		defer collector.ConnectionClosed()

		t := transport.NewConn(nc, cfg.Timeouts.CommandTimeout(), cfg.Timeouts.IdleTimeout())
		sess := smtp.NewSession(cfg.Hostname)
		sess.Pedantic = cfg.Pedantic
		sess.EsmtpFeatures = features
		sess.TLS = mode == config.ModeSmtps
		if mode == config.ModeSmtps {
			collector.TLSConnectionEstablished()
		}

		handlers := smtp.Handlers{
			OnAuth: func(e *smtp.AuthEvent) {
				if !authStore.Check(e.UID, e.PWD) {
					collector.AuthAttempt(e.UID, false)
					e.Reject(535, "Authentication failed")
					return
				}
				collector.AuthAttempt(e.UID, true)
				e.Accept()
			},
			OnCommand:  func(verb string) { collector.CommandProcessed(verb) },
			OnMailFrom: func(e *smtp.MailFromEvent) { e.Accept() },
			OnRcptTo:   func(e *smtp.RcptToEvent) { e.Accept() },
			OnComplete: func(e *smtp.CompleteEvent) { e.Accept() },
			OnStartTlsBegin: func() error {
				if tlsConfig == nil {
					return fmt.Errorf("smtpd: STARTTLS requested but no TLS certificate configured")
				}
				err := t.StartTLSServer(tlsConfig)
				if err == nil {
					collector.TLSConnectionEstablished()
				}
				return err
			},
		}

		srv := smtp.NewServer(sess, handlers, t.Write)
		if err := srv.SendGreeting(); err != nil {
			logger.Debug("greeting failed", "error", err)
			return
		}

		for {
			line, err := t.Read()
			if err != nil {
				logger.Debug("connection ended", "error", err)
				return
			}
			if err := srv.Receive(line); err != nil {
				logger.Debug("session ended", "error", err)
				return
			}
		}
	}
}
