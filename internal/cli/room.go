package cli

import (
	"github.com/spf13/cobra"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room management commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomJoinCmd())
	cmd.AddCommand(newRoomGetCmd())
	cmd.AddCommand(newRoomGenerateCodeCmd())

	return cmd
}

func newRoomCreateCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "create <code>",
		Short: "Create a room with the given code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"room_code": args[0]}
			if password != "" {
				req["password"] = password
			}
			var result Room

			if err := client.Post("/api/rooms/create", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Room password (optional)")

	return cmd
}

func newRoomJoinCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "join <code>",
		Short: "Join an existing room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"room_code": args[0]}
			if password != "" {
				req["password"] = password
			}
			var result Room

			if err := client.Post("/api/rooms/join", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Room password (optional)")

	return cmd
}

func newRoomGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "Show room details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Room

			if err := client.Get("/api/rooms/"+args[0], &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomGenerateCodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate-code",
		Short: "Generate an unused room code",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GeneratedCode

			if err := client.Get("/api/rooms/generate-code", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
