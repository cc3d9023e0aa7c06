package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "modeshift",
	Short: "Configuration-migration and validation tool",
	Long: "Modeshift rewrites old mode identifiers to their new names across a project's\n" +
		"config and rule files, validates the service registry against a compatibility\n" +
		"contract, runs the integration-test entry point, and writes a migration report\n" +
		"with rollback instructions. A timestamped backup is taken before any write.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .modeshift.yaml)")
	rootCmd.PersistentFlags().String("plan", "", "migration plan document (default migration.toml)")
	rootCmd.PersistentFlags().String("registry", "", "service registry document (default services.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("plan_path", rootCmd.PersistentFlags().Lookup("plan"))
	_ = viper.BindPFlag("registry_path", rootCmd.PersistentFlags().Lookup("registry"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".modeshift")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("MODESHIFT")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}
