package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errValidationFailed signals that at least one dataset had errors. The report
// has already been printed, so main only sets the exit status.
var errValidationFailed = errors.New("validation failed")

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "turncheck",
		Short:         "turncheck validates multi-turn conversation datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// reinitialize the logger because we can now parse --log-level and co
			// from the command line flag
			return initLogger()
		},
	}

	rootCmd.PersistentFlags().Bool("with-caller", false, "Log caller")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (json, text)")
	rootCmd.PersistentFlags().String("log-file", "", "Log file (default: stderr)")
	rootCmd.PersistentFlags().String("app-config", "", "Path to the turncheck config file (default ./turncheck.yaml or ~/.turncheck/turncheck.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Verbose output")

	rootCmd.AddCommand(
		newValidateCommand(),
		newCreateExamplesCommand(),
		newSchemaCommand(),
		newHistoryCommand(),
		newVersionCommand(),
	)
	return rootCmd
}

func initViper(rootCmd *cobra.Command, configPath string) error {
	viper.SetEnvPrefix("turncheck")

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("turncheck")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.turncheck")

		xdgConfigPath, err := os.UserConfigDir()
		if err == nil {
			viper.AddConfigPath(xdgConfigPath + "/turncheck")
		}
	}

	err := viper.ReadInConfig()
	// if the file does not exist, continue normally
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
	} else if err != nil {
		return errors.Wrap(err, "could not read turncheck config")
	}
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return err
	}

	if err := initLogger(); err != nil {
		return err
	}
	log.Debug().
		Str("config", viper.ConfigFileUsed()).
		Msg("Loaded configuration")

	return nil
}

// appConfigFromArgs finds --app-config before cobra parses the flags, so that the
// config file can provide flag defaults.
func appConfigFromArgs(args []string) string {
	for idx, arg := range args {
		if arg == "--app-config" && len(args) > idx+1 {
			return args[idx+1]
		}
		if strings.HasPrefix(arg, "--app-config=") {
			return strings.TrimPrefix(arg, "--app-config=")
		}
	}
	return ""
}

func main() {
	rootCmd := newRootCommand()
	if err := initViper(rootCmd, appConfigFromArgs(os.Args[1:])); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errValidationFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
