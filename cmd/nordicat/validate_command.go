package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/quakeline/nordic-etl/internal/nordic"
)

func newValidateCommand() *cobra.Command {
	var showErrors bool

	cmd := &cobra.Command{
		Use:   "validate <file-or-directory>",
		Short: "Check bulletins against the 80-column format and report problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := collectSFiles(args[0])
			if err != nil {
				return err
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.SetStyle(table.StyleRounded)
			tw.AppendHeader(table.Row{"File", "Lines", "Records", "Errors"})
			tw.SetColumnConfigs([]table.ColumnConfig{
				{Number: 2, Align: text.AlignRight},
				{Number: 3, Align: text.AlignRight},
				{Number: 4, Align: text.AlignRight},
			})

			totalErrors := 0
			for _, path := range paths {
				report, err := validateFile(path)
				if err != nil {
					return err
				}
				tw.AppendRow(table.Row{
					filepath.Base(path), report.lines, report.records, len(report.errors),
				})
				totalErrors += len(report.errors)
				if showErrors {
					for _, msg := range report.errors {
						fmt.Fprintln(cmd.ErrOrStderr(), msg)
					}
				}
			}
			tw.Render()

			if totalErrors > 0 {
				return fmt.Errorf("%d invalid line(s)", totalErrors)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showErrors, "errors", "e", false, "Print each line error to stderr")
	return cmd
}

type fileReport struct {
	lines   int
	records int
	errors  []string
}

func validateFile(path string) (fileReport, error) {
	raw, err := readLines(path)
	if err != nil {
		return fileReport{}, err
	}
	var report fileReport
	for i, line := range raw {
		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		report.lines++
		if _, err := nordic.Decode(line); err != nil {
			report.errors = append(report.errors,
				fmt.Sprintf("%s:%d: %v", filepath.Base(path), i+1, err))
			continue
		}
		report.records++
	}
	return report, nil
}
