package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Senticor-ai/project-sub002/internal/config"
	"github.com/Senticor-ai/project-sub002/internal/domain"
	"github.com/Senticor-ai/project-sub002/internal/jsonld"
	itemsdk "github.com/Senticor-ai/project-sub002/sdk/go"
)

// ErrNotAction is returned when a command needs an action item but the
// stored item decodes to another variant.
var ErrNotAction = errors.New("item is not an action")

// Overrides are values from flags or GTD_* environment variables. Non-empty
// fields win over gtd.yml.
type Overrides struct {
	StoreURL  string
	Source    string
	APIKey    string
	Namespace string
	Addr      string
	BasePath  string
}

// ResolveConfig loads gtd.yml from workspace when present, falls back to
// defaults otherwise, and applies overrides. The result is validated.
func ResolveConfig(workspace string, o Overrides) (*config.Config, error) {
	cfg, err := config.LoadOptional(workspace)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if o.StoreURL != "" {
		cfg.Store.BaseURL = o.StoreURL
	}
	if o.Source != "" {
		cfg.Store.Source = o.Source
	}
	if o.APIKey != "" {
		cfg.Store.APIKey = o.APIKey
	}
	if o.Namespace != "" {
		cfg.Codec.Namespace = o.Namespace
	}
	if o.Addr != "" {
		cfg.Server.Addr = o.Addr
	}
	if o.BasePath != "" {
		cfg.Server.BasePath = o.BasePath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewLogger builds a text logger at the named level.
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// Session bundles what a CLI command needs to talk to the item store.
type Session struct {
	Config *config.Config
	Codec  jsonld.Codec
	Client *itemsdk.Client
	Logger *slog.Logger
}

func NewSession(cfg *config.Config, logger *slog.Logger) Session {
	codecCfg := cfg.CodecConfig()
	codecCfg.Logger = logger
	client := itemsdk.New(cfg.Store.BaseURL)
	client.APIKey = cfg.Store.APIKey
	if cfg.Store.Timeout > 0 {
		client.Timeout = cfg.Store.Timeout
		client.HTTPClient.Timeout = cfg.Store.Timeout
	}
	return Session{
		Config: cfg,
		Codec:  jsonld.New(codecCfg),
		Client: client,
		Logger: logger,
	}
}

// FetchEntity loads an item and decodes it through the codec.
func (s Session) FetchEntity(ctx context.Context, id string) (itemsdk.Record, domain.Entity, error) {
	rec, err := s.Client.GetItem(ctx, id)
	if err != nil {
		return itemsdk.Record{}, nil, err
	}
	ir, err := rec.ItemRecord()
	if err != nil {
		return itemsdk.Record{}, nil, err
	}
	return rec, s.Codec.FromJSONLD(ir), nil
}

// FetchAction is FetchEntity for commands that only apply to action items.
func (s Session) FetchAction(ctx context.Context, id string) (itemsdk.Record, *domain.ActionItem, error) {
	rec, ent, err := s.FetchEntity(ctx, id)
	if err != nil {
		return itemsdk.Record{}, nil, err
	}
	a, ok := domain.AsAction(ent)
	if !ok {
		return itemsdk.Record{}, nil, fmt.Errorf("%s: %w", id, ErrNotAction)
	}
	return rec, a, nil
}
