package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/signscribe/internal/sign"
	"github.com/ayusman/signscribe/internal/store"
	"github.com/ayusman/signscribe/internal/transcript"
)

func signsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signs",
		Short: "List the sign vocabulary in rule order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printSigns(cmd.OutOrStdout(), sign.NewClassifier(sign.DefaultThresholds()))
			return nil
		},
	}
}

// printSigns lists the rules in evaluation order. The first match wins, so a
// sign listed after a broader rule may never be produced.
func printSigns(w io.Writer, c *sign.Classifier) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tSIGN\tKIND")
	for i, r := range c.Rules() {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, r.Sign, r.Sign.Kind())
	}
	tw.Flush()
}

func sessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List recorded recognition sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			sessions, err := s.Sessions().List()
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions recorded.")
				return nil
			}
			printSessions(cmd.OutOrStdout(), sessions)
			return nil
		},
	}
}

func printSessions(w io.Writer, sessions []*store.Session) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tDURATION\tSIGNS")
	for _, s := range sessions {
		duration := "running"
		if s.EndedAt != nil {
			duration = s.EndedAt.Sub(s.StartedAt).Round(time.Second).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", s.ID, s.StartedAt.Format("2006-01-02 15:04:05"), duration, s.SignCount)
	}
	tw.Flush()
}

func exportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Export the signs confirmed in a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			if _, err := s.Sessions().GetByID(args[0]); err != nil {
				return fmt.Errorf("session %s: %w", args[0], err)
			}
			events, err := s.Events().GetBySessionID(args[0])
			if err != nil {
				return err
			}
			return writeExport(cmd.OutOrStdout(), format, events)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text, events or json")
	return cmd
}

// writeExport renders a session's events. The text format replays the signs
// into a transcript; manual spaces and deletions are not recorded, so it is
// the raw sign sequence.
func writeExport(w io.Writer, format string, events []store.SignEvent) error {
	switch format {
	case "text":
		t := transcript.New(len(events))
		for _, e := range events {
			if s, ok := sign.Parse(e.Sign); ok {
				t.AppendSign(s)
			}
		}
		_, err := fmt.Fprintln(w, t.Text())
		return err
	case "events":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, e := range events {
			fmt.Fprintf(tw, "%s\t%s\n", e.ConfirmedAt.Format("15:04:05.000"), e.Sign)
		}
		return tw.Flush()
	case "json":
		if events == nil {
			events = []store.SignEvent{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(events)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
