package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newPoolsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pools [config.json | -]",
		Short: "Print the resolved pool table, one pool per line followed by its execution streams",
		Args:  inputArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, table, err := a.resolve(cmd, args[0])
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			for _, p := range table.Pools {
				fields := append([]string{p.Name}, p.Members...)
				buf.WriteString(strings.Join(fields, " "))
				buf.WriteByte('\n')
			}
			if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
				return fmt.Errorf("writing pools: %w", err)
			}
			return nil
		},
	}
}
