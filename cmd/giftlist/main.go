package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/MarcoPoloResearchLab/giftlist/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: .env not loaded: %v\n", err)
	}

	rootCmd := newRootCommand(config.NewViper())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error: "+describeError(err))
		os.Exit(1)
	}
}

func newRootCommand(configViper *viper.Viper) *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:           "giftlist",
		Short:         "Shareable gift registry lists kept in a local profile",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(configViper, cfgFile)
		},
	}

	setupFlags(rootCmd, configViper, &cfgFile)

	app := &application{viper: configViper}
	rootCmd.AddCommand(
		newCreateCommand(app),
		newShowCommand(app),
		newListsCommand(app),
		newGiftCommand(app),
		newTokenCommand(app),
		newImportCommand(app),
	)
	return rootCmd
}

func setupFlags(cmd *cobra.Command, configViper *viper.Viper, cfgFile *string) {
	defaults := config.NewViper()
	flags := cmd.PersistentFlags()
	flags.StringVar(cfgFile, "config", "", "Path to configuration file")
	flags.String("profile", defaults.GetString("profile.path"), "SQLite file holding this profile's lists and creator token")
	flags.Bool("memory", defaults.GetBool("profile.memory"), "Use a throwaway in-memory profile")
	flags.String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	flags.String("log-format", defaults.GetString("log.format"), "Log format (console, json)")
	flags.String("ids", defaults.GetString("ids.scheme"), "List id scheme (hash, uuid)")
	flags.String("share-base-url", defaults.GetString("share.base_url"), "Base URL used to build share links")
	flags.String("token", "", "Act with this creator token instead of the profile's own")
	flags.StringP("output", "o", defaults.GetString("output.format"), "Output format (text, json)")

	bindFlag(cmd, configViper, "profile.path", "profile")
	bindFlag(cmd, configViper, "profile.memory", "memory")
	bindFlag(cmd, configViper, "log.level", "log-level")
	bindFlag(cmd, configViper, "log.format", "log-format")
	bindFlag(cmd, configViper, "ids.scheme", "ids")
	bindFlag(cmd, configViper, "share.base_url", "share-base-url")
	bindFlag(cmd, configViper, "owner.token", "token")
	bindFlag(cmd, configViper, "output.format", "output")
}

func bindFlag(cmd *cobra.Command, configViper *viper.Viper, key, flag string) {
	if err := configViper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig(configViper *viper.Viper, cfgFile string) error {
	if cfgFile == "" {
		return nil
	}
	configViper.SetConfigFile(cfgFile)
	return configViper.ReadInConfig()
}
