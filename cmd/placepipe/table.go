package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"placepipe/internal/callback"
)

// renderResult prints the extraction outcome: content metadata first, then
// the place table.
func renderResult(w io.Writer, payload callback.Payload) {
	if payload.ContentInfo != nil {
		fmt.Fprintf(w, "Title:    %s\n", payload.ContentInfo.Title)
		fmt.Fprintf(w, "URL:      %s\n", payload.ContentInfo.ContentURL)
		if payload.ContentInfo.Uploader != "" {
			fmt.Fprintf(w, "Uploader: %s\n", payload.ContentInfo.Uploader)
		}
		fmt.Fprintln(w)
	}

	if len(payload.Places) == 0 {
		fmt.Fprintln(w, "No places found.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Name", "Category", "Address"})
	for i, place := range payload.Places {
		address := place.RoadAddress
		if address == "" {
			address = place.Address
		}
		t.AppendRow(table.Row{i + 1, place.Name, place.Category, address})
	}

	if isatty.IsTerminal(os.Stdout.Fd()) {
		t.SetStyle(table.StyleLight)
	} else {
		t.SetStyle(table.StyleDefault)
		t.Style().Options.DrawBorder = false
	}
	t.Style().Format.Header = text.FormatTitle
	t.Render()
}
