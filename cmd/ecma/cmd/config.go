package cmd

import (
	"fmt"

	"github.com/cwbudde/go-ecma/internal/interp/realm"
	"github.com/spf13/cobra"
)

var configSchemaCmd = &cobra.Command{
	Use:   "config-schema",
	Short: "Print the JSON Schema for realm configuration",
	Long: `Print the JSON Schema describing the YAML configuration accepted
by "ecma run --config", so a host can validate its configuration file
before loading it.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		schema, err := realm.DescribeConfigSchema()
		if err != nil {
			return err
		}
		fmt.Println(schema)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configSchemaCmd)
}
