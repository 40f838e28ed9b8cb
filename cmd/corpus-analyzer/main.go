// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the corpus-analyzer CLI.
// Implements: prd001-corpus-scan, prd002-triple-extraction,
//             prd003-classification, prd004-temporal-trends,
//             prd005-results-store (CLI surface).
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the corpus-analyzer CLI.
var rootCmd = &cobra.Command{
	Use:   "corpus-analyzer",
	Short: "Pattern-based analytics over scientific XML corpora",
	Long: `corpus-analyzer runs a pattern-based analysis pipeline over scientific
article corpora. It scans XML articles into metadata records, extracts
semantic triples at paragraph and sentence level, compares a rule-based
classifier against a statistical one, tracks keyword trends over
publication time, and indexes everything in a searchable SQLite store.

Each pipeline stage is a subcommand: scan, extract, classify, trends, and
store. Stages communicate through YAML artifacts under corpus/ and
analysis/, so each stage can be rerun independently.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./corpus-analyzer.yaml or ~/.config/corpus-analyzer/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("corpus-analyzer")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "corpus-analyzer"))
		}
	}

	viper.SetEnvPrefix("CORPUS_ANALYZER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
