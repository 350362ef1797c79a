// Command pop3d runs a sans-I/O POP3 server over real TCP/TLS
// connections: one goroutine per connection, each driving an
// internal/pop3.Server against an internal/transport.Conn.
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
	"github.com/infodancer/mailproto/internal/pop3"
	"github.com/infodancer/mailproto/internal/server"
	"github.com/infodancer/mailproto/internal/transport"
	"github.com/prometheus/client_golang/prometheus"
)

// demoCredentials seeds the in-memory AuthProvider this binary ships
// with. A real deployment replaces demoauth.Store with a host-owned
// credential database and a maildrop it can actually report stats on.
var demoCredentials = map[string]string{
	"mrose": "tanstaaf",
}

func main() {
	flags := config.ParseFlags("./pop3d.toml")

	cfg, err := config.LoadPop3(flags.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	cfg = config.ApplyFlags(cfg, flags, config.ModePop3)

	if err := cfg.Validate(config.ModePop3, config.ModePop3s); err != nil {
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
		collector = metrics.NewPrometheusCollector(prometheus.DefaultRegisterer, "pop3")
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

	srv.SetHandler(newPop3Handler(&cfg, tlsConfig, logger, collector, authStore))

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

	logger.Info("starting pop3d", "hostname", cfg.Hostname, "listeners", len(cfg.Listeners))

	if err := srv.Run(ctx); err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}

	logger.Info("pop3 server stopped")
}

// newPop3Handler builds the server.ConnectionHandler that wires one
// accepted connection to a fresh internal/pop3.Server for its
// lifetime.
func newPop3Handler(cfg *config.Config, tlsConfig *tls.Config, logger *slog.Logger, collector metrics.Collector, authStore *demoauth.Store) server.ConnectionHandler {
	return func(ctx context.Context, nc net.Conn, mode config.ListenerMode) {
		collector.ConnectionOpened()
		defer collector.ConnectionClosed()

		t := transport.NewConn(nc, cfg.Timeouts.CommandTimeout(), cfg.Timeouts.IdleTimeout())
		sess := pop3.NewSession(cfg.Hostname)
		sess.Pedantic = cfg.Pedantic
		sess.TLS = mode == config.ModePop3s
		if mode == config.ModePop3s {
			collector.TLSConnectionEstablished()
		}

		handlers := pop3.Handlers{
			OnCommand: func(verb string) { collector.CommandProcessed(verb) },
			OnApopChallenge: func(e *pop3.ApopChallengeEvent) {
				// APOP's digest check needs the plaintext password at
				// verification time, which a bcrypt-hashed store can't
				// supply; advertise no challenge so clients fall back to
				// USER/PASS, which the store can check directly.
				e.Accept()
			},
			OnUser: func(e *pop3.UserEvent) {
				e.Accept()
			},
			OnPass: func(e *pop3.PassEvent) {
				if !authStore.Check(e.User, e.Pass) {
					collector.AuthAttempt(e.User, false)
					e.Reject(0, "")
					return
				}
				collector.AuthAttempt(e.User, true)
				e.Accept()
			},
			OnLockMaildrop: func(e *pop3.LockMaildropEvent) {
				e.AcceptStats(0, 0)
			},
			OnStartTlsBegin: func() error {
				if tlsConfig == nil {
					return fmt.Errorf("pop3d: STLS requested but no TLS certificate configured")
				}
				err := t.StartTLSServer(tlsConfig)
				if err == nil {
					collector.TLSConnectionEstablished()
				}
				return err
			},
		}

		srv := pop3.NewServer(sess, handlers, t.Write)
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
