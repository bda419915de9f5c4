package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "vrexx",
	Short: "Real-estate agent: mortgage calculator and price-filtered semantic property search.",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		// .env is optional; real environment variables win.
		_ = godotenv.Load()
		return nil
	},
	SilenceUsage: true,
}

func init() {
	viper.SetDefault("env", "local")

	rootCmd.PersistentFlags().String("env", "", `environment, selects config/{env}.yaml ("local", "dev", "prod")`)
	rootCmd.PersistentFlags().String("config", "", "explicit config file path, overrides --env lookup")

	if err := viper.BindPFlag("env", rootCmd.PersistentFlags().Lookup("env")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")); err != nil {
		panic(err)
	}

	viper.SetEnvPrefix("vrx")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindEnv("env", "VRX_ENV", "ENV"); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(serveCmd, askCmd, addPropertyCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
