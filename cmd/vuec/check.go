package main

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/recera/vuec/cmd/vuec/internal/template"
	"github.com/recera/vuec/cmd/vuec/internal/ui"
)

func newCheckCommand() *cobra.Command {
	var strict bool
	var all bool

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Report template diagnostics",
		Long: `Parses every template under the given files or directories (the configured
source directory by default) and reports the warnings of each file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd)
			if err != nil {
				return err
			}
			defer p.Close()

			paths := args
			if len(paths) == 0 {
				paths = []string{p.sourceDir()}
			}
			files, err := collectFiles(p, paths)
			if err != nil {
				return err
			}

			reports := checkFiles(p.processor, files)
			fmt.Fprint(cmd.OutOrStdout(), ui.RenderReport(reports, all))

			summary := ui.Summarize(reports)
			if summary.Errors > 0 {
				return fmt.Errorf("%d of %d files could not be parsed", summary.Errors, summary.Files)
			}
			if strict && summary.Warnings > 0 {
				return fmt.Errorf("found %d warnings", summary.Warnings)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with an error when any warning is reported")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "List files without diagnostics too")

	return cmd
}

// collectFiles expands directories into their template files. Explicit file
// arguments are kept whatever their extension.
func collectFiles(p *project, paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		found, err := p.processor.FindFiles(path)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	sort.Strings(files)
	return files, nil
}

// checkFiles parses files and converts the outcomes to reports. Components
// without a template are left out.
func checkFiles(processor *template.Processor, files []string) []ui.FileReport {
	var reports []ui.FileReport
	for _, o := range processor.ProcessFiles(files) {
		if errors.Is(o.Err, template.ErrNoTemplate) {
			continue
		}
		report := ui.FileReport{Path: o.Path, Err: o.Err}
		if o.Result != nil {
			report.Warnings = o.Result.Warnings()
			report.Cached = o.Result.Cached
		}
		reports = append(reports, report)
	}
	return reports
}
