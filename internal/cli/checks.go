package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newChecksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "checks",
		Short: "List the available checks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			infos, err := newAppService(0).ListChecks()
			if err != nil {
				return err
			}
			for _, info := range infos {
				fmt.Printf("%-36s %-10s %s\n", info.ID, info.Kind, info.Header)
			}
			return nil
		},
	}
}
