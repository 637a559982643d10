package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jacentio/slotstore/api"
	"github.com/jacentio/slotstore/store"
)

// NewInitCommand creates the init command.
func NewInitCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init <type>...",
		Short: "Create empty object stores for types",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, closeFn, err := openStore(cmd.Context(), cmd, opts, true, args...)
			defer closeErr(closeFn, &err)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.Format, s.Types())
		},
	}
}

// NewListCommand creates the list command.
func NewListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <type>",
		Short: "List all records of a type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, closeFn, err := openStore(cmd.Context(), cmd, opts, false, args[0])
			defer closeErr(closeFn, &err)
			if err != nil {
				return err
			}
			records, err := s.FindAll(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.Format, records)
		},
	}
}

// NewGetCommand creates the get command.
func NewGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <type> <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, closeFn, err := openStore(cmd.Context(), cmd, opts, false, args[0])
			defer closeErr(closeFn, &err)
			if err != nil {
				return err
			}
			rec, err := s.FindByID(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.Format, rec)
		},
	}
}

// NewSaveCommand creates the save command.
func NewSaveCommand(opts *RootOptions) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "save <type> <json|->",
		Short: "Insert or replace a record",
		Long:  "Insert or replace a record. The record is a JSON object given inline or on stdin with '-'.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			body := args[1]
			if body == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				body = string(data)
			}

			var rec store.Record
			if err := json.Unmarshal([]byte(body), &rec); err != nil {
				return fmt.Errorf("invalid record: %w", err)
			}
			if rec == nil {
				return fmt.Errorf("invalid record: must be a JSON object")
			}
			if id != "" {
				rec[store.IDField] = id
			}

			s, closeFn, err := openStore(cmd.Context(), cmd, opts, false, args[0])
			defer closeErr(closeFn, &err)
			if err != nil {
				return err
			}
			saved, err := s.Save(cmd.Context(), args[0], rec)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.Format, saved)
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "record id (overrides any id in the JSON)")

	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <type> <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, closeFn, err := openStore(cmd.Context(), cmd, opts, false, args[0])
			defer closeErr(closeFn, &err)
			if err != nil {
				return err
			}
			deleted, err := s.Delete(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.Format, map[string]string{"id": deleted})
		},
	}
}

// NewFindCommand creates the find command.
func NewFindCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "find <type> <property> <value>",
		Short: "List records whose property equals value",
		Long: `List records whose property strictly equals value.
The value is read as a JSON literal when it parses as one (1, true, "1"),
otherwise as a plain string.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, closeFn, err := openStore(cmd.Context(), cmd, opts, false, args[0])
			defer closeErr(closeFn, &err)
			if err != nil {
				return err
			}
			records, err := s.FindByProperty(cmd.Context(), args[0], args[1], api.ParseValue(args[2]))
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.Format, records)
		},
	}
}

// closeErr runs closeFn and keeps the first error.
func closeErr(closeFn func() error, err *error) {
	if cerr := closeFn(); cerr != nil && *err == nil {
		*err = cerr
	}
}

// writeOutput renders a result in the requested format.
func writeOutput(w io.Writer, format string, v any) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	switch val := v.(type) {
	case []store.Record:
		for _, rec := range val {
			if err := writeRecordLine(w, rec); err != nil {
				return err
			}
		}
		return nil
	case store.Record:
		return writeRecordLine(w, val)
	case []string:
		_, err := fmt.Fprintln(w, strings.Join(val, "\n"))
		return err
	case map[string]string:
		_, err := fmt.Fprintf(w, "deleted %s\n", val["id"])
		return err
	}
	_, err := fmt.Fprintf(w, "%v\n", v)
	return err
}

// writeRecordLine prints "<id>\t<json>".
func writeRecordLine(w io.Writer, rec store.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	key, _, _ := store.IDKey(rec.ID())
	_, err = fmt.Fprintf(w, "%s\t%s\n", key, data)
	return err
}
