package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/atinylittleshell/gshcomp/internal/catalog"
	"github.com/atinylittleshell/gshcomp/internal/completion"
	"github.com/atinylittleshell/gshcomp/internal/history"
	"github.com/atinylittleshell/gshcomp/internal/styles"
	"github.com/dustin/go-humanize"
	"github.com/rivo/uniseg"
)

const columnGap = 2

type row struct {
	label       string
	description string
	kind        completion.Kind
}

// writeRows prints label/description columns, aligning descriptions by
// display width.
func writeRows(w io.Writer, palette *styles.Palette, rows []row) {
	width := 0
	for _, r := range rows {
		width = max(width, uniseg.StringWidth(r.label))
	}

	for _, r := range rows {
		line := palette.Kind(r.kind, r.label)
		if r.description != "" {
			pad := width - uniseg.StringWidth(r.label) + columnGap
			line += strings.Repeat(" ", pad) + palette.Description(r.description)
		}
		fmt.Fprintln(w, line)
	}
}

func writeCompletions(w io.Writer, colors bool, results []completion.Completion) {
	rows := make([]row, 0, len(results))
	for _, c := range results {
		rows = append(rows, row{label: c.Text, description: c.Description, kind: c.Kind})
	}
	writeRows(w, styles.NewPalette(w, colors), rows)
}

func writeJSON(w io.Writer, results []completion.Completion) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}

func writeCatalog(w io.Writer, colors bool, cat *catalog.Catalog, args []string) error {
	palette := styles.NewPalette(w, colors)

	if len(args) == 0 {
		var rows []row
		for _, name := range cat.AllCommands() {
			def, _ := cat.GetCommand(name)
			rows = append(rows, row{label: name, description: def.Description, kind: completion.KindCommand})
		}
		writeRows(w, palette, rows)
		return nil
	}

	def, ok := cat.GetCommand(args[0])
	if ok && len(args) == 2 {
		def, ok = cat.GetSubcommand(args[0], args[1])
	}
	if !ok {
		return fmt.Errorf("unknown command %q", strings.Join(args, " "))
	}

	if def.Description != "" {
		fmt.Fprintln(w, def.Description)
	}

	if len(def.Options) > 0 {
		fmt.Fprintln(w, palette.Header("Options:"))
		rows := make([]row, 0, len(def.Options))
		for _, opt := range def.Options {
			rows = append(rows, row{label: "  " + optionLabel(opt), description: opt.Description, kind: completion.KindOption})
		}
		writeRows(w, palette, rows)
	}

	if len(def.Subcommands) > 0 {
		names := make([]string, 0, len(def.Subcommands))
		for name := range def.Subcommands {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Fprintln(w, palette.Header("Subcommands:"))
		rows := make([]row, 0, len(names))
		for _, name := range names {
			rows = append(rows, row{label: "  " + name, description: def.Subcommands[name].Description, kind: completion.KindSubcommand})
		}
		writeRows(w, palette, rows)
	}
	return nil
}

func optionLabel(opt catalog.Option) string {
	var names []string
	if opt.Short != "" {
		names = append(names, opt.Short)
	}
	if opt.Long != "" {
		names = append(names, opt.Long)
	}
	label := strings.Join(names, ", ")
	if opt.TakesValue {
		label += " <value>"
	}
	return label
}

// writeHistory prints entries oldest first with their id, age and any
// failure.
func writeHistory(w io.Writer, colors bool, entries []history.HistoryEntry) {
	rows := make([]row, 0, len(entries))
	for _, entry := range entries {
		description := humanize.Time(entry.CreatedAt)
		if entry.ExitCode.Valid && entry.ExitCode.Int32 != 0 {
			description += fmt.Sprintf(" (exit %d)", entry.ExitCode.Int32)
		}
		label := fmt.Sprintf("%d  %s", entry.ID, entry.Command)
		rows = append(rows, row{label: label, description: description, kind: completion.KindHistory})
	}
	writeRows(w, styles.NewPalette(w, colors), rows)
}
