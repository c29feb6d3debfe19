package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"rfpgpt/internal/config"
	"rfpgpt/internal/logger"
)

var (
	cfgPath string
	verbose bool
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "rfpgpt",
		Short: "Document-grounded question answering and RFP generation",
		Long: "rfpgpt ingests PDF documents into a vector store, answers questions " +
			"grounded in them, and generates Request For Proposal documents.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetVerbose(verbose)
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newIngestCmd(), newAskCmd(), newRFPCmd(), newChatCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.AppConfig, error) {
	if cfgPath != "" {
		return config.Load(cfgPath)
	}
	cfg, path, err := config.LoadDefault()
	if err != nil {
		return nil, err
	}
	logger.Debug("using config at %s", path)
	return cfg, nil
}
