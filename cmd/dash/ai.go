package main

import (
	"github.com/spf13/cobra"

	"github.com/abatilo/dash/internal/assistant"
	"github.com/abatilo/dash/internal/config"
)

// getAssistant picks the API assistant for the remote backend and the
// offline one otherwise.
func getAssistant(cfg config.Config) assistant.Assistant {
	if cfg.Backend == config.BackendRemote {
		return assistant.NewRemote(getClient(cfg))
	}
	return assistant.NewLocal(getStore(cfg))
}

// askCmd implements 'dash ask'.
func askCmd() *cobra.Command {
	var extra string
	cmd := &cobra.Command{
		Use:   "ask <query>",
		Short: "Ask the assistant a productivity question",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a := getAssistant(loadConfig())
			reply, err := a.Ask(cmd.Context(), args[0], extra)
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatChat(reply))
		},
	}
	cmd.Flags().StringVar(&extra, "context", "", "Extra context to send along with the query")
	return cmd
}

// insightsCmd implements 'dash insights'.
func insightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Show productivity insights",
		Run: func(cmd *cobra.Command, _ []string) {
			a := getAssistant(loadConfig())
			insights, err := a.Insights(cmd.Context())
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatInsights(insights))
		},
	}
}
