// Package cmd holds the interview-coach command line.
package cmd

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cfg "github.com/maastricht-university/interview-coach/config"
	"github.com/maastricht-university/interview-coach/logging"
)

// app is the state every subcommand shares once the root pre-run has loaded
// configuration.
type app struct {
	cfgFile string
	v       *viper.Viper
	conf    *cfg.Root
	log     *logrus.Logger
}

// NewRootCommand builds the command tree. Each call returns an independent
// tree so tests can execute it repeatedly.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "coach",
		Short:         "Evaluate recorded interview answers",
		Long:          "Transcribes a recorded interview answer, scores the emotion in what was said and asks a language model for structured feedback.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := cfg.LoadWith(a.v, a.cfgFile)
			if err != nil {
				return err
			}
			a.conf = conf
			a.log = logging.NewWithWriter(cmd.ErrOrStderr(), conf.Pipeline.LogLvl, conf.Pipeline.LogFormat)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: config/$CONFIG_ENV/config.yaml or ./config.yaml)")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-format", "", "log format (text or json)")
	_ = a.v.BindPFlag("pipeline.log_level", pf.Lookup("log-level"))
	_ = a.v.BindPFlag("pipeline.log_format", pf.Lookup("log-format"))

	root.AddCommand(newServeCommand(a), newEvaluateCommand(a), newConfigCommand(a))
	return root
}

func Execute() {
	root := NewRootCommand()
	if err := root.ExecuteContext(context.Background()); err != nil {
		root.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
