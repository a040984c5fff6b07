package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Senticor-ai/project-sub002/internal/canonid"
	"github.com/Senticor-ai/project-sub002/internal/domain"
	"github.com/Senticor-ai/project-sub002/internal/jsonld"
	"github.com/Senticor-ai/project-sub002/internal/opt"
	itemsdk "github.com/Senticor-ai/project-sub002/sdk/go"
)

func (c *cli) itemsCmd() *cobra.Command {
	items := &cobra.Command{
		Use:   "items",
		Short: "List, inspect and organise items",
	}
	items.AddCommand(c.itemsListCmd())
	items.AddCommand(c.itemsGetCmd())
	items.AddCommand(c.itemsTriageCmd())
	items.AddCommand(c.itemsEditCmd())
	items.AddCommand(c.itemsReadCmd())
	items.AddCommand(c.itemsArchiveCmd())
	items.AddCommand(c.itemsEventsCmd())
	return items
}

func (c *cli) itemsListCmd() *cobra.Command {
	var opts itemsdk.ListOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.session(cmd)
			if err != nil {
				return err
			}
			page, err := s.Client.ListItems(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if c.v.GetBool("json") {
				return printJSON(cmd.OutOrStdout(), page)
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"ID", "Type", "Bucket", "Name", "Updated"})
			for _, rec := range page.Items {
				ir, err := rec.ItemRecord()
				if err != nil {
					s.Logger.Warn("skipping unreadable item", "item_id", rec.ItemID, "err", err)
					continue
				}
				ent := s.Codec.FromJSONLD(ir)
				tw.AppendRow(table.Row{rec.CanonicalID, ir.Item.Type, ent.EntityBucket(), domain.DisplayName(ent), rec.UpdatedAt})
			}
			tw.Render()
			if page.NextCursor != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "next page: --cursor %q\n", page.NextCursor)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Bucket, "bucket", "", "bucket filter")
	cmd.Flags().StringVar(&opts.Type, "type", "", "@type filter")
	cmd.Flags().BoolVar(&opts.IncludeArchived, "all", false, "include archived items")
	cmd.Flags().IntVar(&opts.Limit, "limit", 50, "page size")
	cmd.Flags().StringVar(&opts.Cursor, "cursor", "", "page cursor from a previous listing")
	return cmd
}

func (c *cli) itemsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a stored item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.session(cmd)
			if err != nil {
				return err
			}
			rec, err := s.Client.GetItem(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	}
}

func (c *cli) itemsTriageCmd() *cobra.Command {
	var to, date, at, project, energy, note string
	var contexts []string
	cmd := &cobra.Command{
		Use:   "triage <id>",
		Short: "Move an action to another bucket",
		Long:  "Targets: next, waiting, calendar, someday, reference, archive. Calendar needs --date unless the item already has a start or scheduled date.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.session(cmd)
			if err != nil {
				return err
			}
			rec, item, err := s.FetchAction(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			t, err := triageFromFlags(cmd, to, project, energy, contexts)
			if err != nil {
				return err
			}
			t.Date = optionalString(date)
			t.Time = optionalString(at)
			t.Note = optionalString(note)
			patch, err := s.Codec.BuildTriagePatch(item, t)
			if err != nil {
				return err
			}
			updated, err := s.Client.PatchItem(cmd.Context(), rec.ItemID, patch)
			if err != nil {
				return err
			}
			return c.printRecord(cmd, updated)
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "target bucket")
	cmd.Flags().StringVar(&date, "date", "", "calendar date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&at, "time", "", "calendar time (HH:MM)")
	cmd.Flags().StringVar(&project, "project", "", "project canonical id")
	cmd.Flags().StringSliceVar(&contexts, "context", nil, "context canonical ids")
	cmd.Flags().StringVar(&energy, "energy", "", "energy level: low, medium, high")
	cmd.Flags().StringVar(&note, "note", "", "note recorded with an archive")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func (c *cli) itemsEditCmd() *cobra.Command {
	var name, description, due, start, delegate, outcome, status string
	var tags []string
	var focus bool
	var clearFields []string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change individual fields of an item",
		Long:  "Only the flags given are sent. --clear takes field names (name, description, tags, due, start, delegate) to remove.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.session(cmd)
			if err != nil {
				return err
			}
			changed := cmd.Flags().Changed
			var e jsonld.ItemEdit
			if changed("name") {
				e.Name = opt.Some(name)
			}
			if changed("description") {
				e.Description = opt.Some(description)
			}
			if changed("tags") {
				e.Tags = opt.Some(tags)
			}
			if changed("due") {
				e.DueDate = opt.Some(due)
			}
			if changed("start") {
				e.StartDate = opt.Some(start)
			}
			if changed("delegate") {
				e.DelegatedTo = opt.Some(delegate)
			}
			if changed("focus") {
				e.IsFocused = opt.Some(focus)
			}
			if changed("outcome") {
				e.DesiredOutcome = opt.Some(outcome)
			}
			if changed("status") {
				e.ProjectStatus = opt.Some(domain.ProjectStatus(status))
			}
			for _, field := range clearFields {
				switch strings.TrimSpace(field) {
				case "name":
					e.Name = opt.Null[string]()
				case "description":
					e.Description = opt.Null[string]()
				case "tags":
					e.Tags = opt.Null[[]string]()
				case "due":
					e.DueDate = opt.Null[string]()
				case "start":
					e.StartDate = opt.Null[string]()
				case "delegate":
					e.DelegatedTo = opt.Null[string]()
				default:
					return fmt.Errorf("cannot clear %q", field)
				}
			}
			patch := jsonld.BuildItemEditPatch(e)
			if patch.IsEmpty() {
				return fmt.Errorf("nothing to change")
			}
			updated, err := s.Client.PatchItem(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			return c.printRecord(cmd, updated)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "name (blank clears)")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "tags")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&delegate, "delegate", "", "person the action is delegated to")
	cmd.Flags().BoolVar(&focus, "focus", false, "mark as focused")
	cmd.Flags().StringVar(&outcome, "outcome", "", "project desired outcome")
	cmd.Flags().StringVar(&status, "status", "", "project status: active, completed, on-hold, archived")
	cmd.Flags().StringSliceVar(&clearFields, "clear", nil, "fields to remove")
	return cmd
}

func (c *cli) itemsReadCmd() *cobra.Command {
	var reference, bucket, project, energy string
	var contexts []string
	cmd := &cobra.Command{
		Use:   "read <id>",
		Short: "Turn an action into a read action for a reference item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.session(cmd)
			if err != nil {
				return err
			}
			rec, item, err := s.FetchAction(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			t, err := triageFromFlags(cmd, bucket, project, energy, contexts)
			if err != nil {
				return err
			}
			patch, err := jsonld.BuildReadActionPatch(item, canonid.ID(reference), t)
			if err != nil {
				return err
			}
			updated, err := s.Client.PatchItem(cmd.Context(), rec.ItemID, patch)
			if err != nil {
				return err
			}
			return c.printRecord(cmd, updated)
		},
	}
	cmd.Flags().StringVar(&reference, "reference", "", "canonical id of the reference to read")
	cmd.Flags().StringVar(&bucket, "bucket", "", "target bucket (default: keep the current one)")
	cmd.Flags().StringVar(&project, "project", "", "project canonical id")
	cmd.Flags().StringSliceVar(&contexts, "context", nil, "context canonical ids")
	cmd.Flags().StringVar(&energy, "energy", "", "energy level: low, medium, high")
	_ = cmd.MarkFlagRequired("reference")
	return cmd
}

func (c *cli) itemsArchiveCmd() *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   "archive <id>",
		Short: "Archive an action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.session(cmd)
			if err != nil {
				return err
			}
			rec, item, err := s.FetchAction(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			updated, err := s.Client.ArchiveItem(cmd.Context(), s.Codec, rec.ItemID, item, optionalString(note))
			if err != nil {
				return err
			}
			return c.printRecord(cmd, updated)
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "reason for archiving")
	return cmd
}

func (c *cli) itemsEventsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "events <id>",
		Short: "Show the change log of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.session(cmd)
			if err != nil {
				return err
			}
			evts, err := s.Client.ItemEvents(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			if c.v.GetBool("json") {
				return printJSON(cmd.OutOrStdout(), evts)
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"TS", "Type", "Source", "Bucket"})
			for _, evt := range evts {
				tw.AppendRow(table.Row{evt.TS, evt.Type, evt.Source, evt.Payload["bucket"]})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "max events")
	return cmd
}

// triageFromFlags collects the triage choices shared by triage and read.
func triageFromFlags(cmd *cobra.Command, to, project, energy string, contexts []string) (jsonld.Triage, error) {
	t := jsonld.Triage{
		Target:      jsonld.TriageTarget(to),
		EnergyLevel: domain.EnergyLevel(energy),
	}
	switch t.EnergyLevel {
	case "", domain.EnergyLow, domain.EnergyMedium, domain.EnergyHigh:
	default:
		return jsonld.Triage{}, fmt.Errorf("invalid --energy %q (low, medium, high)", energy)
	}
	if project != "" {
		id := canonid.ID(project)
		t.ProjectID = &id
	}
	if cmd.Flags().Changed("context") {
		t.Contexts = toIDs(contexts)
	}
	return t, nil
}

func toIDs(in []string) []canonid.ID {
	out := make([]canonid.ID, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, canonid.ID(s))
		}
	}
	return out
}
