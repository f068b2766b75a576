package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/keshon/dtscommands/internal/command/general"
	"github.com/keshon/dtscommands/internal/core"
	"github.com/keshon/dtscommands/internal/docs"
)

var (
	readmeTemplate string
	readmeOut      string
	readmePrefix   string
)

var readmeCmd = &cobra.Command{
	Use:   "readme",
	Short: "Generate README.md with the command reference",
	RunE: func(cmd *cobra.Command, _ []string) error {
		r := core.New(core.Options{Logger: zerolog.Nop()})
		defer r.Close()
		if err := general.Register(r, general.Deps{Prefix: readmePrefix}); err != nil {
			return err
		}
		sections := docs.CommandSections(r.Registry(), readmePrefix, general.CategoryWeights)
		if err := docs.Render(readmeTemplate, readmeOut, appName, sections); err != nil {
			return err
		}
		cmd.Printf("wrote %s\n", readmeOut)
		return nil
	},
}

func init() {
	readmeCmd.Flags().StringVar(&readmeTemplate, "template", "", "template file (built-in when empty)")
	readmeCmd.Flags().StringVarP(&readmeOut, "out", "o", "README.md", "output file")
	readmeCmd.Flags().StringVar(&readmePrefix, "prefix", "!", "text command prefix shown in the reference")
}
