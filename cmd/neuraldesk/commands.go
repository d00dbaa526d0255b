package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HendryAvila/neuraldesk/internal/assistant"
	"github.com/HendryAvila/neuraldesk/internal/calendar"
	"github.com/HendryAvila/neuraldesk/internal/domain"
	ndserver "github.com/HendryAvila/neuraldesk/internal/server"
	"github.com/HendryAvila/neuraldesk/internal/session"
)

// withApp opens the session, runs fn and closes it, flushing every
// dashboard write.
func withApp(fn func(app *ndserver.App) error) (err error) {
	app, err := ndserver.NewApp(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing storage: %w", cerr)
		}
	}()
	return fn(app)
}

func runServe(cmd *cobra.Command, args []string) error {
	return withApp(func(app *ndserver.App) error {
		s := ndserver.New(app)
		logger.Info("serving MCP on stdio", zap.String("version", ndserver.Version))

		// Stdout carries the protocol; ServeStdio stops on SIGINT/SIGTERM.
		return server.ServeStdio(s)
	})
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	return withApp(func(app *ndserver.App) error {
		snap := app.Dashboard.RefreshSnapshot()
		out, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling snapshot: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	})
}

func runAsk(cmd *cobra.Command, args []string) error {
	user, _ := cmd.Flags().GetString("user")
	if user == "" {
		user = cfg.Assistant.UserName
	}
	return withApp(func(app *ndserver.App) error {
		reply := app.Assistant.Reply(app.Dashboard.State(), assistant.Request{
			Question: strings.Join(args, " "),
			UserName: user,
		})
		fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
		return nil
	})
}

func runChat(cmd *cobra.Command, args []string) error {
	return withApp(func(app *ndserver.App) error {
		project := app.Dashboard.ActiveProject()
		if cmd.Flags().Changed("project") {
			id, _ := cmd.Flags().GetString("project")
			project = domain.ProjectRef(strings.TrimSpace(id))
		}

		out := cmd.OutOrStdout()
		printed := 0
		_, err := app.Chat.Send(cmd.Context(), project, strings.Join(args, " "), func(sofar string) {
			fmt.Fprint(out, sofar[printed:])
			printed = len(sofar)
		})
		if printed > 0 {
			fmt.Fprintln(out)
		}
		if err != nil {
			return fmt.Errorf("chat: %w (partial reply kept in the transcript)", err)
		}
		return nil
	})
}

func runCalendarSync(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("--email must not be empty")
	}
	return withApp(func(app *ndserver.App) error {
		final, n, err := calendar.Sync(cmd.Context(), app.Dashboard, app.Calendar, app.Calendar.Connect(email))
		if err != nil {
			return fmt.Errorf("%s: %w", calendar.Describe(final), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s. %d events imported.\n", calendar.Describe(final), n)
		return nil
	})
}

func runCalendarDisconnect(cmd *cobra.Command, args []string) error {
	return withApp(func(app *ndserver.App) error {
		calendar.Disconnect(app.Dashboard)
		fmt.Fprintln(cmd.OutOrStdout(), "Calendar disconnected.")
		return nil
	})
}

func runMemoryReset(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")
	return withApp(func(app *ndserver.App) error {
		if all {
			app.Sessions.ClearAll()
			app.Assistant.Forget("")
			fmt.Fprintln(cmd.OutOrStdout(), "Memory cleared for every project.")
			return nil
		}
		key := session.ProjectKey(app.Dashboard.ActiveProject())
		app.Sessions.Memory.Reset(key)
		app.Sessions.Transcript.Reset(key)
		app.Assistant.Forget(key)
		fmt.Fprintf(cmd.OutOrStdout(), "Memory cleared for %s.\n", key)
		return nil
	})
}
