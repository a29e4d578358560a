// Package tags implements the n8n tag management commands.
package tags

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/flowtag/internal/appcontext"
	"github.com/agentstation/flowtag/internal/cmd/emoji"
	"github.com/agentstation/flowtag/internal/cmd/output"
	"github.com/agentstation/flowtag/internal/cmd/table"
	"github.com/agentstation/flowtag/internal/n8n"
	"github.com/agentstation/flowtag/pkg/errors"
	"github.com/agentstation/flowtag/pkg/tagger"
)

// NewCommand creates the tags command with its subcommands.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tags",
		GroupID: "management",
		Short:   "Manage n8n tags",
		Long: `Tags lists and edits the tags of the n8n instance through the public API.

Attach adds tags to a single workflow with the same read-modify-write
update apply uses, so tags already on the workflow are kept.`,
		Example: `  flowtag tags list
  flowtag tags create speech-processing
  flowtag tags rename 3 stt
  flowtag tags attach 1a2b3c voice-ai stt`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newListCommand(app))
	cmd.AddCommand(newCreateCommand(app))
	cmd.AddCommand(newGetCommand(app))
	cmd.AddCommand(newRenameCommand(app))
	cmd.AddCommand(newDeleteCommand(app))
	cmd.AddCommand(newAttachCommand(app))

	return cmd
}

func client(app appcontext.Interface) (*n8n.Client, error) {
	return app.Client(app.Settings())
}

func renderTags(cmd *cobra.Command, app appcontext.Interface, tags []n8n.Tag, doc any) error {
	return output.Render(cmd.OutOrStdout(), app.OutputFormat(), doc, func(wide bool) output.Data {
		return table.TagsToTableData(tags, wide)
	})
}

func newListCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all tags",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := client(app)
			if err != nil {
				return err
			}
			tags, err := c.ListTags(cmd.Context())
			if err != nil {
				return err
			}
			app.Logger().Debug().Int("count", len(tags)).Msg("Listed tags")
			if tags == nil {
				tags = []n8n.Tag{}
			}
			return renderTags(cmd, app, tags, tags)
		},
	}
}

func newCreateCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client(app)
			if err != nil {
				return err
			}
			tag, err := c.CreateTag(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			app.Logger().Info().Str("tag_id", tag.ID).Str("name", tag.Name).Msg("Created tag")
			return renderTags(cmd, app, []n8n.Tag{*tag}, tag)
		},
	}
}

func newGetCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client(app)
			if err != nil {
				return err
			}
			tag, err := c.GetTag(cmd.Context(), args[0])
			if err != nil {
				if errors.IsNotFound(err) {
					return errors.NewNotFoundError("tag", args[0])
				}
				return err
			}
			return renderTags(cmd, app, []n8n.Tag{*tag}, tag)
		},
	}
}

func newRenameCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a tag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client(app)
			if err != nil {
				return err
			}
			tag, err := c.RenameTag(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			app.Logger().Info().Str("tag_id", tag.ID).Str("name", tag.Name).Msg("Renamed tag")
			return renderTags(cmd, app, []n8n.Tag{*tag}, tag)
		},
	}
}

func newDeleteCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client(app)
			if err != nil {
				return err
			}
			if err := c.DeleteTag(cmd.Context(), args[0]); err != nil {
				return err
			}
			app.Logger().Info().Str("tag_id", args[0]).Msg("Deleted tag")
			fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted tag %s\n", emoji.Success, args[0])
			return nil
		},
	}
}

func newAttachCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "attach <workflow-id> <tag>...",
		Short: "Add tags to a workflow, keeping its existing tags",
		Long: `Attach adds tags to one workflow. Each tag is given by id or by name;
names are resolved against the tag list of the instance.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := client(app)
			if err != nil {
				return err
			}

			all, err := c.ListTags(ctx)
			if err != nil {
				return err
			}
			ids, err := ResolveTags(all, args[1:])
			if err != nil {
				return err
			}

			backend := tagger.NewAPIBackend(c, app.Logger())
			out := backend.Apply(ctx, []tagger.Assignment{{
				Name:     args[0],
				RemoteID: args[0],
				LabelIDs: ids,
			}})
			if out[0].Err != nil {
				return out[0].Err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Workflow %s now has %d tags\n", emoji.Success, args[0], len(out[0].TagIDs))
			return nil
		},
	}
}

// ResolveTags maps each reference to a tag id. A reference matching a tag
// id is used as is; otherwise it must match a tag name. Duplicates are
// dropped.
func ResolveTags(tags []n8n.Tag, refs []string) ([]string, error) {
	byID := make(map[string]bool, len(tags))
	byName := make(map[string]string, len(tags))
	for _, t := range tags {
		byID[t.ID] = true
		byName[t.Name] = t.ID
	}

	seen := make(map[string]bool, len(refs))
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		id := ref
		if !byID[ref] {
			var ok bool
			if id, ok = byName[ref]; !ok {
				return nil, errors.NewNotFoundError("tag", ref)
			}
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}
