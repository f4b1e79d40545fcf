package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"sync"

	_ "github.com/microsoft/go-mssqldb"

	"ShortageWatcher/internal/config"
	"ShortageWatcher/internal/domain"
	"ShortageWatcher/internal/ports"
)

const driverName = "sqlserver"

// Connector lazily opens one SQL Server pool and reuses it for the process lifetime.
type Connector struct {
	cfg    config.DatabaseConfig
	open   func(driver, dsn string) (*sql.DB, error)
	logger *slog.Logger

	mu sync.Mutex
	db *sql.DB
}

var _ ports.ConnectionProvider = (*Connector)(nil)

// Option customizes a Connector.
type Option func(*Connector)

// WithOpener replaces sql.Open, mainly for tests.
func WithOpener(open func(driver, dsn string) (*sql.DB, error)) Option {
	return func(c *Connector) {
		c.open = open
	}
}

// NewConnector prepares a connector; nothing is dialed until DB is called.
func NewConnector(cfg config.DatabaseConfig, log *slog.Logger, opts ...Option) *Connector {
	c := &Connector{cfg: cfg, open: sql.Open, logger: log}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DB returns the cached pool, connecting and pinging on first use.
// A failed attempt leaves nothing cached so the next caller tries again.
func (c *Connector) DB(ctx context.Context) (*sql.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return c.db, nil
	}

	c.info("connecting to database", "server", c.cfg.Server, "database", c.cfg.Name)

	db, err := c.open(driverName, DSN(c.cfg))
	if err != nil {
		return nil, &domain.ConnectionError{Server: c.cfg.Server, Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &domain.ConnectionError{Server: c.cfg.Server, Err: fmt.Errorf("ping: %w", err)}
	}

	c.info("database connected", "server", c.cfg.Server)
	c.db = db
	return db, nil
}

// Close releases the pool if one was opened.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	if err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	c.info("database connection closed")
	return nil
}

// DSN renders the sqlserver:// connection URL understood by go-mssqldb.
func DSN(cfg config.DatabaseConfig) string {
	host := cfg.Server
	if cfg.Port != 0 {
		host = net.JoinHostPort(cfg.Server, strconv.Itoa(cfg.Port))
	}

	query := url.Values{}
	if cfg.Name != "" {
		query.Set("database", cfg.Name)
	}
	query.Set("encrypt", strconv.FormatBool(cfg.Encrypt))
	query.Set("TrustServerCertificate", strconv.FormatBool(cfg.TrustServerCertificate))

	u := url.URL{
		Scheme:   driverName,
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     host,
		RawQuery: query.Encode(),
	}
	return u.String()
}

func (c *Connector) info(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}
