package main

import (
	"errors"
	"fmt"

	"beta-dashboard/dashboard"
	"beta-dashboard/loader"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <regional|beta> <file>",
	Short: "Validate a JSON document before uploading it",
	Long: `Parses a regional summary or bank beta document and lists every problem found.
Exits non-zero when the document would be rejected by the dashboard.`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"regional", "beta"},
	RunE:      runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	kind, path := args[0], args[1]
	out := cmd.OutOrStdout()

	var err error
	switch kind {
	case "regional":
		var doc *loader.RegionalDocument
		if doc, err = loader.LoadRegionalFile(path); err == nil {
			fmt.Fprintf(out, "%s: ok, %d regional rows, glossary for %d languages\n", path, len(doc.Regional), len(doc.Reference))
			return nil
		}
	case "beta":
		var doc *loader.BankBetaDocument
		if doc, err = loader.LoadBankBetaFile(path); err == nil {
			groups := dashboard.GroupByIndex(doc.Rows)
			fmt.Fprintf(out, "%s: ok, %d banks in %d index groups\n", path, len(doc.Rows), len(groups))
			for _, g := range groups {
				fmt.Fprintf(out, "  %s (%s) beta %s [%s]: %d banks\n", g.Index, g.Country, g.IndexBeta, g.Band, len(g.Rows))
			}
			return nil
		}
	default:
		return fmt.Errorf("unknown document kind %q (want regional or beta)", kind)
	}

	switch {
	case loader.IsParseError(err):
		fmt.Fprintf(out, "%s: rejected\n", path)
		var pe *loader.ParseError
		if errors.As(err, &pe) {
			for _, p := range pe.Problems() {
				fmt.Fprintf(out, "  - %v\n", p)
			}
		}
	case loader.IsMissingFile(err):
		fmt.Fprintf(out, "%s: not found\n", path)
	}
	return err
}
