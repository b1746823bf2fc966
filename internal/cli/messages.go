package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMessagesCmd() *cobra.Command {
	var page, limit int

	cmd := &cobra.Command{
		Use:   "messages <code>",
		Short: "Fetch a page of a room's message history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/messages/%s?page=%d", args[0], page)
			if limit > 0 {
				path += fmt.Sprintf("&limit=%d", limit)
			}

			var result MessagesPage
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number (1 is the newest)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Messages per page (server default when 0)")

	return cmd
}
