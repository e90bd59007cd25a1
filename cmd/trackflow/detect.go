package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trackflow/tracking-service/internal/core/carrier"
)

func newDetectCmd() *cobra.Command {
	var carriersFile string

	cmd := &cobra.Command{
		Use:   "detect <tracking-number>",
		Short: "Print the carrier a tracking number belongs to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadCarriers(carriersFile)
			if err != nil {
				return err
			}

			number := carrier.Normalize(args[0])
			code, ok := table.Detect(number)
			if !ok {
				return fmt.Errorf("no carrier matches %q", number)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", code, table.Name(code))
			return err
		},
	}
	cmd.Flags().StringVar(&carriersFile, "carriers", "", "YAML carrier table (defaults to the built-in table)")
	return cmd
}
