// Package jsonld converts domain entities to and from the schema.org JSON-LD
// objects stored by the item store, and builds the partial payloads used to
// update them.
//
// Fields that are core schema.org concepts travel as first-class keys; every
// other domain field is carried in additionalProperty under the app:
// namespace. The codec performs no I/O. Decoding never fails: unknown types
// and malformed values fall back to safe defaults. The only hard error is a
// calendar triage without a date.
package jsonld

import (
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Senticor-ai/project-sub002/internal/canonid"
)

const (
	DefaultNamespace     = "app"
	DefaultSchemaVersion = 2
)

// Config parameterises a Codec. Zero fields take defaults.
type Config struct {
	Namespace     string
	SchemaVersion int
	NewUUID       func() string
	Now           func() time.Time
	Logger        *slog.Logger
}

// Codec is immutable and safe for concurrent use.
type Codec struct {
	namespace     string
	schemaVersion int
	newUUID       func() string
	now           func() time.Time
	log           *slog.Logger
}

func New(cfg Config) Codec {
	c := Codec{
		namespace:     cfg.Namespace,
		schemaVersion: cfg.SchemaVersion,
		newUUID:       cfg.NewUUID,
		now:           cfg.Now,
		log:           cfg.Logger,
	}
	if c.namespace == "" {
		c.namespace = DefaultNamespace
	}
	if c.schemaVersion == 0 {
		c.schemaVersion = DefaultSchemaVersion
	}
	if c.newUUID == nil {
		c.newUUID = uuid.NewString
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.log == nil {
		c.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

func (c Codec) Namespace() string  { return c.namespace }
func (c Codec) SchemaVersion() int { return c.schemaVersion }

// NewID mints a canonical id for an entity of type t.
func (c Codec) NewID(t canonid.EntityType) canonid.ID {
	return canonid.New(c.namespace, t, c.newUUID())
}
