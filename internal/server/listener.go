package server

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net"
	"time"

	"github.com/infodancer/mailproto/internal/config"
)

// ConnectionHandler processes one accepted connection to completion.
// It owns the protocol-level Server/Client wiring; this package only
// owns accept/limit/TLS-listen plumbing.
type ConnectionHandler func(ctx context.Context, conn net.Conn, mode config.ListenerMode)

// ListenerConfig configures a single Listener.
type ListenerConfig struct {
	Address        string
	Mode           config.ListenerMode
	TLSConfig      *tls.Config
	IdleTimeout    time.Duration
	CommandTimeout time.Duration
	LogTransaction bool
	Logger         *slog.Logger
	Limiter        *ConnectionLimiter
	Handler        ConnectionHandler
}

// Listener accepts connections on one address and dispatches each to
// its configured ConnectionHandler in its own goroutine.
type Listener struct {
	cfg ListenerConfig
	ln  net.Listener
}

// NewListener builds a Listener from cfg. The underlying socket is
// not opened until Start is called.
func NewListener(cfg ListenerConfig) *Listener {
	return &Listener{cfg: cfg}
}

// Address returns the configured listen address.
func (l *Listener) Address() string { return l.cfg.Address }

// Start opens the listening socket and accepts connections until ctx
// is canceled or a fatal accept error occurs.
func (l *Listener) Start(ctx context.Context) error {
	var ln net.Listener
	var err error

	implicitTLS := l.cfg.Mode == config.ModeSmtps || l.cfg.Mode == config.ModePop3s
	if implicitTLS {
		if l.cfg.TLSConfig == nil {
			return errNoTLSConfig(l.cfg.Address)
		}
		ln, err = tls.Listen("tcp", l.cfg.Address, l.cfg.TLSConfig)
	} else {
		ln, err = net.Listen("tcp", l.cfg.Address)
	}
	if err != nil {
		return err
	}
	l.ln = ln

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return err
			}
		}

		if l.cfg.Limiter != nil && !l.cfg.Limiter.TryAcquire() {
			_ = conn.Close()
			continue
		}

		go l.handle(ctx, conn)
	}
}

func (l *Listener) handle(ctx context.Context, conn net.Conn) {
	defer func() {
		if l.cfg.Limiter != nil {
			l.cfg.Limiter.Release()
		}
		_ = conn.Close()
	}()

	if l.cfg.Logger != nil && l.cfg.LogTransaction {
		l.cfg.Logger.Debug("connection accepted",
			slog.String("remote", conn.RemoteAddr().String()),
			slog.String("mode", string(l.cfg.Mode)))
	}

	l.cfg.Handler(ctx, conn, l.cfg.Mode)
}

// Close stops accepting new connections.
func (l *Listener) Close() error {
	if l.ln == nil {
		return nil
	}
	return l.ln.Close()
}
