package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/adamavenir/agentjob/internal/comms"
	"github.com/adamavenir/agentjob/internal/config"
)

const (
	commsMessageTimeout  = 5 * time.Second
	commsRegisterTimeout = 2 * time.Second
)

// NewCommsCmd creates the comms command group.
func NewCommsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comms",
		Short: "Talk to the agent coordination server",
	}

	cmd.AddCommand(
		newCommsSendCmd(),
		newCommsUnreadCmd(),
		newCommsRegisterCmd(),
		newCommsCompleteCmd(),
	)

	return cmd
}

func commsClient() (*comms.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return comms.NewClient(cfg.CommsServer)
}

func newCommsSendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send --from <sender> <message...>",
		Short: "Relay a message to other registered agents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sender, _ := cmd.Flags().GetString("from")
			if sender == "" {
				return writeCommandError(cmd, fmt.Errorf("--from is required"))
			}

			client, err := commsClient()
			if err != nil {
				return writeCommandError(cmd, err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commsMessageTimeout)
			defer cancel()

			if err := client.SendMessage(ctx, sender, strings.Join(args, " ")); err != nil {
				return writeCommandError(cmd, err)
			}

			jsonMode, _ := cmd.Flags().GetBool("json")
			if jsonMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{"sent": true})
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Message sent.")
			return nil
		},
	}

	cmd.Flags().String("from", "", "sender name")

	return cmd
}

func newCommsUnreadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unread <name>",
		Short: "Fetch and drain queued messages for an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := commsClient()
			if err != nil {
				return writeCommandError(cmd, err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commsMessageTimeout)
			defer cancel()

			messages, err := client.Unread(ctx, args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}

			jsonMode, _ := cmd.Flags().GetBool("json")
			if jsonMode {
				return writeIndented(cmd, messages)
			}

			out := cmd.OutOrStdout()
			if len(messages) == 0 {
				fmt.Fprintln(out, "No unread messages.")
				return nil
			}
			for _, msg := range messages {
				fmt.Fprintf(out, "[%s] %s: %s\n", msg.CreatedAt, msg.Sender, renderMessage(msg.Message))
			}
			return nil
		},
	}
}

func newCommsRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register --name <name>",
		Short: "Register an agent with the coordination server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			if name == "" {
				return writeCommandError(cmd, fmt.Errorf("--name is required"))
			}
			sessionID, _ := cmd.Flags().GetString("session-id")
			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			subagentType, _ := cmd.Flags().GetString("type")
			prompt, _ := cmd.Flags().GetString("prompt")

			client, err := commsClient()
			if err != nil {
				return writeCommandError(cmd, err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commsRegisterTimeout)
			defer cancel()

			if err := client.Register(ctx, sessionID, name, subagentType); err != nil {
				return writeCommandError(cmd, err)
			}
			if prompt != "" {
				if err := client.SetInitialPrompt(ctx, sessionID, name, prompt); err != nil {
					return writeCommandError(cmd, err)
				}
			}

			jsonMode, _ := cmd.Flags().GetBool("json")
			if jsonMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{
					"session_id": sessionID,
					"name":       name,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (session %s)\n", name, sessionID)
			return nil
		},
	}

	cmd.Flags().String("session-id", "", "session id (generated when omitted)")
	cmd.Flags().String("name", "", "agent nickname")
	cmd.Flags().String("type", "general-purpose", "agent type")
	cmd.Flags().String("prompt", "", "initial assignment text to record")

	return cmd
}

func newCommsCompleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete --session-id <id> --name <name>",
		Short: "Report an agent's completion to the coordination server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, _ := cmd.Flags().GetString("session-id")
			name, _ := cmd.Flags().GetString("name")
			if sessionID == "" || name == "" {
				return writeCommandError(cmd, fmt.Errorf("--session-id and --name are required"))
			}
			status, _ := cmd.Flags().GetString("status")
			finalResponse, _ := cmd.Flags().GetString("final-response")

			client, err := commsClient()
			if err != nil {
				return writeCommandError(cmd, err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commsRegisterTimeout)
			defer cancel()

			err = client.UpdateCompletion(ctx, comms.CompletionUpdate{
				SessionID:     sessionID,
				Name:          name,
				Status:        status,
				FinalResponse: finalResponse,
			})
			if err != nil {
				// A 404 means the agent was never registered; nothing to do.
				var apiErr *comms.APIError
				if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
					return writeCommandError(cmd, err)
				}
			}

			jsonMode, _ := cmd.Flags().GetBool("json")
			if jsonMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{"completed": true})
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Completion recorded.")
			return nil
		},
	}

	cmd.Flags().String("session-id", "", "session id used at registration")
	cmd.Flags().String("name", "", "agent nickname")
	cmd.Flags().String("status", "completed", "completion status")
	cmd.Flags().String("final-response", "", "final response text")

	return cmd
}

// renderMessage flattens a relayed message for terminal display. Plain
// strings print as-is; structured messages fall back to compact JSON.
func renderMessage(raw json.RawMessage) string {
	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}
	var structured comms.StructuredMessage
	if err := json.Unmarshal(raw, &structured); err == nil && structured.Content != "" {
		if structured.Type != "" {
			return fmt.Sprintf("(%s) %s", structured.Type, structured.Content)
		}
		return structured.Content
	}
	return string(raw)
}
