// Command swiftbind inspects a compiled Swift library and reports the
// demangled entities its public symbols encode.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	swiftbind "github.com/appsworld/swiftbind"
	"github.com/appsworld/swiftbind/pkg/machosym"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "swiftbind",
		Short:         "Recover typed Swift entities from compiled binaries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(inspectCmd())
	return root
}

func inspectCmd() *cobra.Command {
	var (
		configPath string
		arch       string
		asJSON     bool
		verbose    bool
	)
	cmd := &cobra.Command{
		Use:   "inspect <macho-file>",
		Short: "List and demangle the public Swift symbols of a Mach-O file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			if arch != "" {
				cfg.Arch = arch
			}

			log := zap.NewNop()
			if verbose {
				log, err = zap.NewDevelopment()
				if err != nil {
					return fmt.Errorf("build logger: %w", err)
				}
				defer log.Sync()
			}

			symbols, err := machosym.List(args[0], cfg.Arch)
			if err != nil {
				return err
			}
			symbols = machosym.Filter(symbols, cfg.Modules)

			demangler := swiftbind.New(
				swiftbind.WithLogger(log),
				swiftbind.WithWorkers(cfg.Workers),
			)
			results := demangler.Run(symbols)

			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), results); err != nil {
					return err
				}
			} else {
				writeSummary(cmd.OutOrStdout(), results)
			}

			if high := results.HighSeverityErrors(); len(high) > 0 {
				return fmt.Errorf("%d high severity demangling failures", len(high))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a swiftbind.yaml config")
	cmd.Flags().StringVar(&arch, "arch", "", "architecture slice of a fat binary (arm64, x86_64)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit results as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log per-symbol progress")
	return cmd
}

type report struct {
	Functions              []functionEntry    `json:"functions,omitempty"`
	MetadataAccessors      []typeEntry        `json:"metadataAccessors,omitempty"`
	DispatchThunks         []functionEntry    `json:"dispatchThunks,omitempty"`
	WitnessTables          []conformanceEntry `json:"witnessTables,omitempty"`
	ConformanceDescriptors []conformanceEntry `json:"conformanceDescriptors,omitempty"`
	Errors                 []errorEntry       `json:"errors,omitempty"`
}

type functionEntry struct {
	Symbol    string `json:"symbol"`
	Signature string `json:"signature"`
}

type typeEntry struct {
	Symbol string `json:"symbol"`
	Type   string `json:"type"`
}

type conformanceEntry struct {
	Symbol   string `json:"symbol"`
	Type     string `json:"type"`
	Protocol string `json:"protocol"`
	Module   string `json:"module,omitempty"`
}

type errorEntry struct {
	Symbol   string `json:"symbol"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

func buildReport(results *swiftbind.Results) report {
	var rep report
	for _, fn := range results.Functions {
		rep.Functions = append(rep.Functions, functionEntry{
			Symbol:    fn.Symbol,
			Signature: fn.Function.String(),
		})
	}
	for _, acc := range results.MetadataAccessors {
		rep.MetadataAccessors = append(rep.MetadataAccessors, typeEntry{
			Symbol: acc.Symbol,
			Type:   acc.AccessedType.String(),
		})
	}
	for _, thunk := range results.DispatchThunks {
		rep.DispatchThunks = append(rep.DispatchThunks, functionEntry{
			Symbol:    thunk.Symbol,
			Signature: thunk.Function.String(),
		})
	}
	for _, wt := range results.WitnessTables {
		rep.WitnessTables = append(rep.WitnessTables, conformanceEntry{
			Symbol:   wt.Symbol,
			Type:     wt.ImplementingType.String(),
			Protocol: wt.ProtocolType.String(),
		})
	}
	for _, desc := range results.ConformanceDescriptors {
		rep.ConformanceDescriptors = append(rep.ConformanceDescriptors, conformanceEntry{
			Symbol:   desc.Symbol,
			Type:     desc.ImplementingType.String(),
			Protocol: desc.ProtocolType.String(),
			Module:   desc.Module,
		})
	}
	for _, e := range results.Errors {
		rep.Errors = append(rep.Errors, errorEntry{
			Symbol:   e.Symbol,
			Message:  e.Message,
			Severity: e.Severity.String(),
		})
	}
	return rep
}

func writeJSON(w io.Writer, results *swiftbind.Results) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(buildReport(results))
}

func writeSummary(w io.Writer, results *swiftbind.Results) {
	rep := buildReport(results)
	for _, fn := range rep.Functions {
		fmt.Fprintf(w, "func      %s\n", fn.Signature)
	}
	for _, thunk := range rep.DispatchThunks {
		fmt.Fprintf(w, "thunk     %s\n", thunk.Signature)
	}
	for _, acc := range rep.MetadataAccessors {
		fmt.Fprintf(w, "metadata  %s\n", acc.Type)
	}
	for _, wt := range rep.WitnessTables {
		fmt.Fprintf(w, "witness   %s : %s\n", wt.Type, wt.Protocol)
	}
	for _, desc := range rep.ConformanceDescriptors {
		fmt.Fprintf(w, "conforms  %s : %s (%s)\n", desc.Type, desc.Protocol, desc.Module)
	}
	for _, e := range rep.Errors {
		fmt.Fprintf(w, "error     [%s] %s\n", e.Severity, e.Message)
	}
}
