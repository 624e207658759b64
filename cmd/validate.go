package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smazurov/switchlight/internal/script"
)

// CreateValidateScriptCmd creates the validate-script command.
func CreateValidateScriptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-script [file]",
		Short: "Check a light script without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			s, err := script.Load(args[0])
			if err != nil {
				return err
			}
			cues, _ := s.Cues()
			name := s.Name
			if name == "" {
				name = args[0]
			}
			loop := "once"
			if s.LoopMs != 0 {
				loop = fmt.Sprintf("every %dms", s.LoopMs)
			}
			fmt.Fprintf(c.OutOrStdout(), "%s: %d steps over %dms, runs %s\n", name, len(cues), s.LengthMs(), loop)
			return nil
		},
	}
}
