package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Senticor-ai/project-sub002/internal/app"
	"github.com/Senticor-ai/project-sub002/internal/config"
	"github.com/Senticor-ai/project-sub002/internal/db"
	"github.com/Senticor-ai/project-sub002/internal/domain"
	"github.com/Senticor-ai/project-sub002/internal/engine"
	"github.com/Senticor-ai/project-sub002/internal/migrate"
	"github.com/Senticor-ai/project-sub002/internal/server"
	itemsdk "github.com/Senticor-ai/project-sub002/sdk/go"
)

const rootLong = `gtd captures and organises Getting Things Done items in a schema.org
JSON-LD item store.
- Inbox: raw captures waiting to be clarified ('gtd capture').
- Buckets: next, waiting, calendar, someday for actions; reference for
  material worth keeping; project for multi-step outcomes.
- Triage: moves an inbox item to a bucket ('gtd items triage').
- Store: any server speaking the item API; 'gtd serve' runs a local one.`

type cli struct {
	v *viper.Viper
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd(viper.New()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:           "gtd",
		Short:         "GTD item CLI",
		Long:          rootLong,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.StringP("workspace", "w", ".", "workspace directory (holds gtd.yml and .gtd/)")
	flags.Bool("json", false, "output JSON")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("store-url", "", "item store base URL (overrides gtd.yml)")
	flags.String("source", "", "source recorded on created items (overrides gtd.yml)")
	flags.String("api-key", "", "item store API key")
	for _, name := range []string{"workspace", "json", "log-level", "store-url", "source", "api-key"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}
	v.SetEnvPrefix("GTD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	c := &cli{v: v}
	root.AddCommand(c.captureCmd())
	root.AddCommand(c.projectCmd())
	root.AddCommand(c.referenceCmd())
	root.AddCommand(c.itemsCmd())
	root.AddCommand(c.serveCmd())
	root.AddCommand(c.configCmd())
	return root
}

func (c *cli) overrides() app.Overrides {
	return app.Overrides{
		StoreURL: c.v.GetString("store-url"),
		Source:   c.v.GetString("source"),
		APIKey:   c.v.GetString("api-key"),
	}
}

func (c *cli) logger(cmd *cobra.Command) (*slog.Logger, error) {
	return app.NewLogger(cmd.ErrOrStderr(), c.v.GetString("log-level"))
}

func (c *cli) session(cmd *cobra.Command) (app.Session, error) {
	cfg, err := app.ResolveConfig(c.v.GetString("workspace"), c.overrides())
	if err != nil {
		return app.Session{}, err
	}
	logger, err := c.logger(cmd)
	if err != nil {
		return app.Session{}, err
	}
	return app.NewSession(cfg, logger), nil
}

func (c *cli) captureCmd() *cobra.Command {
	var kind, from, subject, link string
	cmd := &cobra.Command{
		Use:   "capture <text>",
		Short: "Capture a thought into the inbox",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.session(cmd)
			if err != nil {
				return err
			}
			src := domain.CaptureSource{
				Kind:    domain.CaptureKind(kind),
				From:    optionalString(from),
				Subject: optionalString(subject),
				URL:     optionalString(link),
			}
			item := s.Codec.BuildNewInboxJSONLD(strings.Join(args, " "), src)
			rec, err := s.Client.CreateItem(cmd.Context(), s.Config.Store.Source, item)
			if err != nil {
				return err
			}
			s.Logger.Debug("captured", "item_id", rec.ItemID, "canonical_id", rec.CanonicalID)
			return c.printRecord(cmd, rec)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", string(domain.CaptureThought), "capture kind: thought, email, meeting, voice, import, url")
	cmd.Flags().StringVar(&from, "from", "", "sender, for email captures")
	cmd.Flags().StringVar(&subject, "subject", "", "subject, for email captures")
	cmd.Flags().StringVar(&link, "url", "", "source URL")
	return cmd
}

func (c *cli) projectCmd() *cobra.Command {
	prj := &cobra.Command{Use: "project", Short: "Manage projects"}
	var name, outcome string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.session(cmd)
			if err != nil {
				return err
			}
			rec, err := s.Client.CreateItem(cmd.Context(), s.Config.Store.Source, s.Codec.BuildNewProjectJSONLD(name, outcome))
			if err != nil {
				return err
			}
			return c.printRecord(cmd, rec)
		},
	}
	create.Flags().StringVar(&name, "name", "", "project name")
	create.Flags().StringVar(&outcome, "outcome", "", "desired outcome")
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("outcome")
	prj.AddCommand(create)
	return prj
}

func (c *cli) referenceCmd() *cobra.Command {
	ref := &cobra.Command{
		Use:   "reference",
		Short: "Manage reference material",
		Long:  "Reference items are kept for lookup, not acted on. A reference is generic material, a person, or an organisation document.",
	}
	var name, kind, link, email, docType string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a reference item",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.session(cmd)
			if err != nil {
				return err
			}
			var item any
			switch domain.ReferenceKind(kind) {
			case domain.KindReference:
				item = s.Codec.BuildNewReferenceJSONLD(name, optionalString(link))
			case domain.KindPerson:
				item = s.Codec.BuildNewPersonJSONLD(name, optionalString(email))
			case domain.KindOrgDoc:
				item = s.Codec.BuildNewOrgDocJSONLD(name, domain.OrgDocType(docType))
			default:
				return fmt.Errorf("invalid --kind %q (reference, person, orgdoc)", kind)
			}
			rec, err := s.Client.CreateItem(cmd.Context(), s.Config.Store.Source, item)
			if err != nil {
				return err
			}
			return c.printRecord(cmd, rec)
		},
	}
	create.Flags().StringVar(&name, "name", "", "display name")
	create.Flags().StringVar(&kind, "kind", string(domain.KindReference), "reference, person or orgdoc")
	create.Flags().StringVar(&link, "url", "", "link, for generic references")
	create.Flags().StringVar(&email, "email", "", "email, for people")
	create.Flags().StringVar(&docType, "doc-type", "", "document type, for organisation documents")
	_ = create.MarkFlagRequired("name")
	ref.AddCommand(create)
	return ref
}

func (c *cli) serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local item store",
		Long:  "Runs a development item store backed by SQLite in the workspace. OpenAPI is served under the base path and Prometheus metrics at /metrics.",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := c.v.GetString("workspace")
			o := c.overrides()
			o.Addr, o.BasePath = addr, basePath
			cfg, err := app.ResolveConfig(workspace, o)
			if err != nil {
				return err
			}
			logger, err := c.logger(cmd)
			if err != nil {
				return err
			}
			conn, err := db.Open(db.Config{Workspace: workspace})
			if err != nil {
				return err
			}
			defer conn.Close()
			version, err := migrate.Migrate(cmd.Context(), conn)
			if err != nil {
				return err
			}
			e := engine.New(conn, cfg)
			e.Logger = logger

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			handler, err := server.New(server.Config{Engine: e, BasePath: cfg.Server.BasePath, Logger: logger, Registry: reg})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: cfg.Server.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			logger.Info("serving item store", "addr", cfg.Server.Addr, "base_path", cfg.Server.BasePath, "db", db.Path(workspace), "schema_version", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Serving item store on http://%s%s (OpenAPI at %s/openapi.json, Swagger UI at /docs)\n", cfg.Server.Addr, cfg.Server.BasePath, cfg.Server.BasePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from gtd.yml)")
	cmd.Flags().StringVar(&basePath, "base-path", "", "API base path (default from gtd.yml)")
	return cmd
}

func (c *cli) configCmd() *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create gtd.yml",
	}
	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the resolved config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.ResolveConfig(c.v.GetString("workspace"), c.overrides())
			if err != nil {
				return err
			}
			if c.v.GetBool("json") {
				return printJSON(cmd.OutOrStdout(), cfg)
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	})
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default gtd.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(c.v.GetString("workspace"))
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cfgCmd.AddCommand(initCmd)
	return cfgCmd
}

func (c *cli) printRecord(cmd *cobra.Command, rec itemsdk.Record) error {
	if c.v.GetBool("json") {
		return printJSON(cmd.OutOrStdout(), rec)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", rec.CanonicalID, rec.ItemID)
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
