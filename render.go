package main

import (
	"fmt"
	"io"
	"os"

	"beta-dashboard/dashboard"
	"beta-dashboard/loader"
	"beta-dashboard/models"
	"beta-dashboard/reference"
	"beta-dashboard/report"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var renderOpts struct {
	lang     string
	country  string
	bank     string
	regional string
	beta     string
	format   string
	output   string
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the dashboard without a browser",
	Long: `Builds the dashboard from the built-in tables, the discovered bank beta file and
any documents given with --regional / --beta, then writes it as terminal tables,
CSV, PDF or JSON.

Example:
  betadash render --beta data/beta_comparison.json --country India --lang ta`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	f := renderCmd.Flags()
	f.StringVar(&renderOpts.lang, "lang", "", "language code: en, ta or hi (default from config)")
	f.StringVar(&renderOpts.country, "country", dashboard.All, "country filter")
	f.StringVar(&renderOpts.bank, "bank", dashboard.All, "bank filter")
	f.StringVar(&renderOpts.regional, "regional", "", "regional summary JSON document")
	f.StringVar(&renderOpts.beta, "beta", "", "bank beta JSON document (replaces the discovered one)")
	f.StringVar(&renderOpts.format, "format", "text", "output format: text, csv, pdf or json")
	f.StringVarP(&renderOpts.output, "output", "o", "", "output file (default stdout)")
}

func buildState() *dashboard.State {
	var discovered *loader.BankBetaDocument
	if renderOpts.beta == "" {
		if doc, err := discoverBankBeta(); err == nil {
			discovered = doc
		} else if !loader.IsMissingFile(err) {
			logger.Debug("ignoring auto-discovered bank beta file", zap.Error(err))
		}
	}
	state := dashboard.New(reference.Default(), discovered)

	if renderOpts.regional != "" {
		state = state.WithRegional(loader.LoadRegionalFile(renderOpts.regional))
	}
	if renderOpts.beta != "" {
		state = state.WithBankBeta(loader.LoadBankBetaFile(renderOpts.beta))
	}
	for _, w := range state.Warnings() {
		logger.Warn("document rejected", zap.String("document", w.Document), zap.String("error", w.Message))
	}
	return state
}

func runRender(cmd *cobra.Command, args []string) error {
	lang := cfg.DefaultLanguage()
	if renderOpts.lang != "" {
		l, ok := models.ParseLanguage(renderOpts.lang)
		if !ok {
			return fmt.Errorf("unsupported language %q", renderOpts.lang)
		}
		lang = l
	}
	filter := dashboard.Filter{Country: renderOpts.country, Bank: renderOpts.bank}
	state := buildState()

	var out io.Writer = cmd.OutOrStdout()
	if renderOpts.output != "" {
		f, err := os.Create(renderOpts.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch renderOpts.format {
	case "text":
		return report.RenderTerminal(out, state.View(lang, filter))
	case "csv":
		return report.WriteBanksCSV(out, state.View(lang, filter).Filtered)
	case "pdf":
		if lang != models.English {
			logger.Info("pdf output is English only", zap.String("requested", string(lang)))
		}
		return report.WritePDF(out, state.View(models.English, filter))
	case "json":
		enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(state.View(lang, filter))
	default:
		return fmt.Errorf("unknown format %q (want text, csv, pdf or json)", renderOpts.format)
	}
}
