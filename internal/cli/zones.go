package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"hazard-admin/internal/services"
	"hazard-admin/internal/transfer"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func listCmd(a *app) *cobra.Command {
	var severities, types []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored hazard zones",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd.Context(), func(s *services.ZoneStore) error {
				zones := s.Filter(severities, types)
				if len(zones) == 0 {
					fmt.Fprintln(out(cmd), "(no hazard zones)")
					return nil
				}

				tw := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSEVERITY\tRADIUS (m)\tCENTER")
				for _, z := range zones {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.0f\t%.4f, %.4f\n",
						z.ID, z.Name, z.Type, z.Severity, z.Radius, z.Center.Lat, z.Center.Lng)
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().StringSliceVar(&severities, "severity", nil, "only zones with these severities")
	cmd.Flags().StringSliceVar(&types, "type", nil, "only zones of these hazard types")
	return cmd
}

func exportCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all zones as " + transfer.FileName,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd.Context(), func(s *services.ZoneStore) error {
				b, err := transfer.Export(s.List(), a.clock.Now())
				if err != nil {
					return err
				}
				if output == "-" {
					_, err = out(cmd).Write(append(b, '\n'))
					return err
				}
				if err := os.WriteFile(output, b, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				fmt.Fprintf(out(cmd), "exported %d hazard zones to %s\n", len(s.List()), output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", transfer.FileName, "destination file, or - for stdout")
	return cmd
}

func importCmd(a *app) *cobra.Command {
	var limit int64

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all zones with the contents of an exported file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader
			if args[0] == "-" {
				r = cmd.InOrStdin()
			} else {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			zones, err := transfer.Import(r, limit)
			if err != nil {
				return err
			}

			return a.withStore(cmd.Context(), func(s *services.ZoneStore) error {
				if err := s.ReplaceAll(cmd.Context(), zones); err != nil {
					return describeError(err)
				}
				fmt.Fprintf(out(cmd), "Successfully imported %d hazard zones\n", len(zones))
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&limit, "max-bytes", 5<<20, "refuse documents larger than this")
	return cmd
}

func deleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete zones by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(s *services.ZoneStore) error {
				for _, id := range args {
					if err := s.Delete(cmd.Context(), id); err != nil {
						return err
					}
					fmt.Fprintf(out(cmd), "deleted %s\n", id)
				}
				return nil
			})
		},
	}
}

func clearCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored zone",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to clear without --yes")
			}
			return a.withStore(cmd.Context(), func(s *services.ZoneStore) error {
				n := len(s.List())
				if err := s.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(out(cmd), "cleared %d hazard zones\n", n)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm clearing all zones")
	return cmd
}

func catalogCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the severity and hazard type catalog in effect",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd.Context(), func(s *services.ZoneStore) error {
				enc := yaml.NewEncoder(out(cmd))
				enc.SetIndent(2)
				if err := enc.Encode(s.Catalog()); err != nil {
					return err
				}
				return enc.Close()
			})
		},
	}
}

// describeError spells out every validation problem on its own line.
func describeError(err error) error {
	var verr *services.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	return fmt.Errorf("import rejected:\n  %s", strings.Join(verr.Problems, "\n  "))
}
