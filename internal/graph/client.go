// Package graph exports the relational store into Neo4j.
//
// Nodes: Protocol, AgendaItem, Speaker, Speech. Relationships:
//
//	(AgendaItem)-[:PART_OF]->(Protocol)   via agenda_item.protocol_id
//	(Speech)-[:HELD_BY]->(Speaker)        via speech.speaker_id
//	(Speech)-[:ABOUT]->(AgendaItem)       via equal match_ag
//
// Every write is a MERGE keyed on the node id, so an export can be
// repeated over the same store.
package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/roach88/plenar/internal/config"
	"github.com/roach88/plenar/internal/logger"
)

// ErrDisabled is returned by Open when no Neo4j URI is configured.
var ErrDisabled = errors.New("graph export disabled: no neo4j uri configured")

const connectTimeout = 10 * time.Second

// Client holds a verified Neo4j driver.
type Client struct {
	Driver   neo4j.DriverWithContext
	Database string
	log      *logger.Logger
}

// Open connects to Neo4j and verifies connectivity.
func Open(ctx context.Context, cfg config.Neo4j, log *logger.Logger) (*Client, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}
	if log == nil {
		log = logger.Nop()
	}

	auth := neo4j.BasicAuth(cfg.User, cfg.Password, "")
	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth, func(c *neo4j.Config) {
		c.SocketConnectTimeout = connectTimeout
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: init driver: %w", err)
	}

	vctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := driver.VerifyConnectivity(vctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j: verify connectivity: %w", err)
	}

	return &Client{
		Driver:   driver,
		Database: cfg.Database,
		log:      log.With("client", "neo4j"),
	}, nil
}

// Close releases the driver.
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.Driver == nil {
		return nil
	}
	err := c.Driver.Close(ctx)
	c.Driver = nil
	return err
}
