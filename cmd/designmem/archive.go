package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/HendryAvila/designmem/internal/design"
	"github.com/HendryAvila/designmem/internal/memory"
)

var (
	showJSON   bool
	exportPath string
)

var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print an archived session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openArchive()
		if err != nil {
			return err
		}
		defer store.Close()

		doc, err := store.GetMemory(args[0])
		if errors.Is(err, memory.ErrNotFound) {
			return fmt.Errorf("session %s is not archived", args[0])
		}
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if showJSON {
			data, err := doc.ToJSON()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(w, string(data))
			return err
		}
		fmt.Fprintf(w, "Session %s (created %s)\n", doc.SessionID, doc.CreatedAt.Format("2006-01-02 15:04:05"))
		for _, c := range doc.Commands {
			rel := c.Relationships
			fmt.Fprintf(w, "%3d. %-20s %s/%s", c.Sequence, c.NodeID(), rel.Category, rel.WorkflowStage)
			if len(rel.DependsOn) > 0 {
				fmt.Fprintf(w, "  <- %s", strings.Join(rel.DependsOn, ", "))
			}
			fmt.Fprintln(w)
		}
		printAnalysis(w, doc.Analysis)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump every archived session as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openArchive()
		if err != nil {
			return err
		}
		defer store.Close()

		data, err := store.Export()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if exportPath != "" {
			f, err := os.Create(exportPath)
			if err != nil {
				return fmt.Errorf("creating export file: %w", err)
			}
			defer f.Close()
			w = f
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("writing export: %w", err)
		}
		if exportPath != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d sessions to %s\n", len(data.Sessions), exportPath)
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <export.json>",
	Short: "Load sessions from an export file; archived ids are skipped",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading export file: %w", err)
		}
		var data memory.ExportData
		if err := json.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("parsing %s: %w", args[0], err)
		}

		store, err := openArchive()
		if err != nil {
			return err
		}
		defer store.Close()

		res, err := store.Import(&data)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d sessions (%d commands), skipped %d already archived\n",
			res.SessionsImported, res.CommandsImported, res.SessionsSkipped)
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print the full design memory as JSON")
	exportCmd.Flags().StringVarP(&exportPath, "output", "o", "", "Write to this file instead of stdout")
}

// openArchive opens the archive for the archive subcommands, which have
// nothing to do without it.
func openArchive() (*memory.Store, error) {
	if !cfg.Archive.Enabled {
		return nil, errors.New("the design archive is disabled (archive.enabled: false)")
	}
	store, err := memory.New(cfg.Memory())
	if err != nil {
		return nil, fmt.Errorf("opening design archive: %w", err)
	}
	return store, nil
}

// printAnalysis writes a plain-text summary of a session analysis.
func printAnalysis(w io.Writer, a *design.Analysis) {
	if a == nil {
		return
	}
	fmt.Fprintf(w, "Categories: %s\n", counts(a.CategoryHistogram))
	fmt.Fprintf(w, "Stages:     %s\n", counts(a.StageHistogram))
	if len(a.LongestDependencyChain) > 0 {
		fmt.Fprintf(w, "Longest dependency chain (%d): %s\n",
			len(a.LongestDependencyChain), strings.Join(a.LongestDependencyChain, " -> "))
	}
	for _, wf := range a.Workflows {
		fmt.Fprintf(w, "Workflow %s: %s [%s]\n", wf.Type, wf.Description, strings.Join(wf.Members, ", "))
	}
}

func counts[K ~string](m map[K]int) string {
	if len(m) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	for i, k := range keys {
		keys[i] = fmt.Sprintf("%s=%d", k, m[K(k)])
	}
	return strings.Join(keys, " ")
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
