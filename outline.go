package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/iedon/docnav-go/toc"
)

func newOutlineCmd(a *app) *cobra.Command {
	var (
		asJSON bool
		asText bool
	)
	cmd := &cobra.Command{
		Use:   "outline [file]",
		Short: "Print the table of contents parsed from a host page or outline file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				outline toc.Outline
				err     error
			)
			if len(args) == 1 {
				outline, err = readOutline(args[0], asText)
			} else {
				svc, serr := a.service()
				if serr != nil {
					return serr
				}
				outline, err = svc.Outline(cmd.Context())
			}
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(outline)
			}
			return writeOutline(cmd.OutOrStdout(), outline)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
	cmd.Flags().BoolVar(&asText, "text", false, "treat the file as plain outline text instead of an HTML host page")
	return cmd
}

func readOutline(path string, plain bool) (toc.Outline, error) {
	f, err := os.Open(path)
	if err != nil {
		return toc.Outline{}, err
	}
	defer f.Close()

	if plain {
		data, err := io.ReadAll(f)
		if err != nil {
			return toc.Outline{}, fmt.Errorf("read %s: %w", path, err)
		}
		return toc.Parse(string(data)), nil
	}

	doc, err := toc.ParsePage(f)
	if err != nil {
		return toc.Outline{}, fmt.Errorf("parse %s: %w", path, err)
	}
	source := toc.FindByID(doc, toc.SourceElementID)
	if source == nil {
		return toc.Outline{}, fmt.Errorf("%s: %w", path, toc.ErrSourceMissing)
	}
	return toc.Parse(toc.TextContent(source)), nil
}

func writeOutline(w io.Writer, outline toc.Outline) error {
	for _, sec := range outline.Sections {
		if _, err := fmt.Fprintln(w, sec.Title); err != nil {
			return err
		}
		for _, entry := range sec.Entries {
			if _, err := fmt.Fprintf(w, "  %s -> %s\n", entry.Title, entry.Href); err != nil {
				return err
			}
		}
	}
	return nil
}
