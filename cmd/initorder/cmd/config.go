package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/GoCodeAlone/initorder"
	"github.com/GoCodeAlone/initorder/app"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration sections",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	cmd.AddCommand(NewConfigDescribeCommand())
	cmd.AddCommand(NewConfigSampleCommand())
	return cmd
}

// NewConfigDescribeCommand lists every documented config field.
func NewConfigDescribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "List every documented config field with its default",
		RunE: func(cmd *cobra.Command, args []string) error {
			sections := app.ConfigSections()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SECTION\tFIELD\tDEFAULT\tREQUIRED\tDESCRIPTION")
			for _, name := range initorder.SectionNames(sections) {
				docs, err := initorder.DescribeConfig(sections[name])
				if err != nil {
					return fmt.Errorf("section %s: %w", name, err)
				}
				for _, doc := range docs {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", name, doc.Field, doc.Default, doc.Required, doc.Description)
				}
			}
			return tw.Flush()
		},
	}
}

// NewConfigSampleCommand writes a sample config file holding every default.
func NewConfigSampleCommand() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Generate a sample config file (yaml, toml or json)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "" {
				if err := initorder.SaveSampleConfig(app.ConfigSections(), format, output); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Sample %s config written to %s\n", format, output)
				return nil
			}
			data, err := initorder.GenerateSampleConfig(app.ConfigSections(), format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format (yaml, toml, json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}
