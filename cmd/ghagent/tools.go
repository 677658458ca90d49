/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"io"
	"strings"

	"chainguard.dev/ghagent/agents/toolcall"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

func newTable(w io.Writer, headers ...string) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
				Formatting: tw.CellFormatting{AutoFormat: tw.Off},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
			MaxWidth: 120,
		}),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{Left: tw.On, Top: tw.Off, Right: tw.On, Bottom: tw.Off},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}

func printTools(w io.Writer) error {
	table := newTable(w, "Tool", "Parameters", "Description")
	for _, def := range toolcall.Catalog() {
		params := make([]string, 0, len(def.Parameters))
		for _, p := range def.Parameters {
			name := p.Name
			if !p.Required {
				name += "?"
			}
			params = append(params, name)
		}
		if err := table.Append([]string{def.Name, strings.Join(params, ", "), def.Description}); err != nil {
			return err
		}
	}
	return table.Render()
}
