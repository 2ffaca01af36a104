package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wolfman30/meeting-assistant/internal/app/bootstrap"
	appconfig "github.com/wolfman30/meeting-assistant/internal/config"
	"github.com/wolfman30/meeting-assistant/internal/slots"
	"github.com/wolfman30/meeting-assistant/pkg/logging"
)

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "schedulectl",
		Short: "Schedule meetings by talking to the dialogue engine",
		Long: `schedulectl runs the meeting dialogue locally.

Examples:
  schedulectl chat                                  # interactive session
  schedulectl extract "meet Bob next friday at 3pm" # show parsed slots`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(newChatCmd(&logLevel), newExtractCmd())
	return root
}

func newChatCmd(logLevel *string) *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive scheduling session",
		Long: `Read utterances from stdin, one per line, and print the assistant's reply.
Session storage and the meeting archive follow the usual environment
variables (SESSION_BACKEND, REDIS_ADDR, DATABASE_URL, TIMEZONE).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := appconfig.Load()
			logger := logging.NewWithOptions(logging.Options{
				Level:  *logLevel,
				Format: "text",
				Output: cmd.ErrOrStderr(),
			})
			rt, err := bootstrap.BuildRuntime(cmd.Context(), cfg, nil, logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			return chat(cmd.Context(), rt, sessionID, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "resume an existing session")
	return cmd
}

func chat(ctx context.Context, rt *bootstrap.Runtime, sessionID string, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	fmt.Fprintf(out, "session %s\n", sessionID)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "quit", "exit":
			return nil
		}

		reply, err := rt.Engine.HandleTurn(ctx, sessionID, line)
		if err != nil {
			return fmt.Errorf("schedulectl: %w", err)
		}
		fmt.Fprintf(out, "%s\n", reply.Prompt)
	}
}

func newExtractCmd() *cobra.Command {
	var (
		at       string
		timezone string
	)

	cmd := &cobra.Command{
		Use:   "extract TEXT",
		Short: "Print the slots parsed from an utterance as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := time.LoadLocation(timezone)
			if err != nil {
				return fmt.Errorf("schedulectl: timezone: %w", err)
			}
			ref := time.Now().In(loc)
			if at != "" {
				if ref, err = time.ParseInLocation(time.RFC3339, at, loc); err != nil {
					return fmt.Errorf("schedulectl: --at: %w", err)
				}
				ref = ref.In(loc)
			}

			extracted := slots.Extract(strings.Join(args, " "), ref, slots.DefaultDateResolver())
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(extracted)
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "reference time in RFC3339 (default now)")
	cmd.Flags().StringVar(&timezone, "tz", "UTC", "timezone weekdays are resolved in")
	return cmd
}
