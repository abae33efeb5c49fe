package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/quakeline/nordic-etl/internal/catalog"
	"github.com/quakeline/nordic-etl/internal/domain"
	"github.com/quakeline/nordic-etl/internal/inventory"
)

func newConvertCommand() *cobra.Command {
	var (
		outDir        string
		layout        string
		inventoryPath string
		network       string
		channelPrefix string
		authority     string
		dbPath        string
		verbose       bool
		skipExisting  bool
	)

	cmd := &cobra.Command{
		Use:   "convert <file-or-directory>",
		Short: "Assemble bulletins into JSON event files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newCLILogger(verbose)

			var channels []domain.WaveformID
			if inventoryPath != "" {
				var err error
				channels, err = inventory.Load(inventoryPath)
				if err != nil {
					return err
				}
			}

			var store *catalog.Store
			if dbPath != "" {
				var err error
				store, err = catalog.Open(dbPath, nil)
				if err != nil {
					return err
				}
				defer store.Close()
			}

			assembler := domain.NewAssembler(domain.Options{
				Authority:            authority,
				DefaultNetwork:       network,
				DefaultChannelPrefix: channelPrefix,
				Verbose:              verbose,
			}, channels, nil, logger)

			paths, err := collectSFiles(args[0])
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return domain.ErrNoEvents
			}

			ctx := cmd.Context()
			converted, skipped := 0, 0
			for _, path := range paths {
				lines, err := readLines(path)
				if err != nil {
					logger.Warn("skipping unreadable file", "path", path, "error", err)
					continue
				}
				ev, err := assembler.AssembleFile(domain.SourceFile{
					Name:  filepath.Base(path),
					Lines: lines,
				})
				if err != nil {
					logger.Warn("skipping file", "path", path, "error", err)
					continue
				}

				target, err := eventPath(outDir, layout, ev)
				if err != nil {
					return err
				}
				if skipExisting {
					if done, err := alreadyConverted(ctx, store, ev, target); err != nil {
						return err
					} else if done {
						skipped++
						continue
					}
				}
				if err := writeEvent(target, ev); err != nil {
					return err
				}
				if store != nil {
					if _, err := store.Save(ctx, ev); err != nil {
						return err
					}
				}
				converted++
			}
			if converted == 0 && skipped == 0 {
				return domain.ErrNoEvents
			}
			fmt.Fprintf(cmd.OutOrStdout(), "converted %d event(s), skipped %d\n", converted, skipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory for event JSON files")
	cmd.Flags().StringVar(&layout, "layout", "flat", "Output tree layout: flat, yyyy, yyyy-mm or yyyy-mm-dd")
	cmd.Flags().StringVar(&inventoryPath, "inventory", "", "TOML station inventory for channel-id resolution")
	cmd.Flags().StringVar(&network, "network", "UK", "Default network code for synthesized channel ids")
	cmd.Flags().StringVar(&channelPrefix, "channel-prefix", "BH", "Default channel prefix for synthesized channel ids")
	cmd.Flags().StringVar(&authority, "authority", "local", "Authority namespace for generated resource ids")
	cmd.Flags().StringVar(&dbPath, "db", "", "Also record events in a SQLite catalog at this path")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Report per-line and resolution diagnostics")
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "Skip events already converted or cataloged")

	return cmd
}

// eventPath places an event's JSON file under the output tree. Dated layouts
// derive their directories from the event id, which encodes the source
// file's timestamp.
func eventPath(outDir, layout string, ev domain.Event) (string, error) {
	name := string(ev.ResourceID) + ".json"
	if layout == "flat" {
		return filepath.Join(outDir, name), nil
	}
	ts, err := time.Parse("2006-01-02T15-04-05", string(ev.ResourceID))
	if err != nil {
		return "", fmt.Errorf("event id %q has no timestamp: %w", ev.ResourceID, err)
	}
	var sub string
	switch layout {
	case "yyyy":
		sub = ts.Format("2006")
	case "yyyy-mm":
		sub = filepath.Join(ts.Format("2006"), ts.Format("2006-01"))
	case "yyyy-mm-dd":
		sub = filepath.Join(ts.Format("2006"), ts.Format("2006-01"), ts.Format("2006-01-02"))
	default:
		return "", fmt.Errorf("unknown layout %q", layout)
	}
	return filepath.Join(outDir, sub, name), nil
}

func alreadyConverted(ctx context.Context, store *catalog.Store, ev domain.Event, target string) (bool, error) {
	if store != nil {
		return store.Has(ctx, ev.ResourceID)
	}
	_, err := os.Stat(target)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func writeEvent(target string, ev domain.Event) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(ev, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(target, append(data, '\n'), 0o644)
}
