package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Create and join rooms",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomJoinCmd())

	return cmd
}

func newRoomCreateCmd() *cobra.Command {
	var nickname string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new room and take the host seat",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result RoomResult
			body := map[string]string{"nickname": nickname}

			if err := client.Post("/api/v1/rooms", body, &result); err != nil {
				return err
			}

			if err := saveResult(result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&nickname, "nickname", "", "Display name for the room")

	return cmd
}

func newRoomJoinCmd() *cobra.Command {
	var nickname string

	cmd := &cobra.Command{
		Use:   "join <code>",
		Short: "Join an existing room by code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.ToUpper(strings.TrimSpace(args[0]))

			var result RoomResult
			body := map[string]string{"nickname": nickname}

			if err := client.Post(fmt.Sprintf("/api/v1/rooms/%s/join", code), body, &result); err != nil {
				return err
			}

			if err := saveResult(result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&nickname, "nickname", "", "Display name for the room")

	return cmd
}

func saveResult(result RoomResult) error {
	return cfg.SaveSession(Session{
		RoomCode: result.RoomCode,
		Token:    result.Token,
		Side:     result.Side,
		WSURL:    result.WSURL,
	})
}
