package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func newDocsCmd() *cobra.Command {
	var dir, format string
	cmd := &cobra.Command{
		Use:    "gen-docs",
		Short:  "Generate man pages or markdown for every linksync command",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return genDocs(cmd.Root(), dir, format)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "docs", "output directory")
	cmd.Flags().StringVar(&format, "format", "man", "output format (man or markdown)")
	return cmd
}

func genDocs(root *cobra.Command, dir, format string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	// Stable output between runs, so generated docs diff cleanly.
	root.DisableAutoGenTag = true

	switch format {
	case "man":
		return doc.GenManTree(root, &doc.GenManHeader{
			Title:   "LINKSYNC",
			Section: "1",
			Source:  "linksync " + version,
			Manual:  "linksync manual",
		}, dir)
	case "markdown", "md":
		// Cross-links between pages resolve relative to dir.
		link := func(name string) string { return strings.ToLower(filepath.Base(name)) }
		return doc.GenMarkdownTreeCustom(root, dir, func(string) string { return "" }, link)
	default:
		return fmt.Errorf("unknown format %q (use man or markdown)", format)
	}
}
