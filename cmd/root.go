package cmd

import (
	"errors"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "fare-mailer"
)

type Config struct {
	OffersFile     string `mapstructure:"offers-file"`
	RecipientsFile string `mapstructure:"recipients-file"`
	MergeFile      string `mapstructure:"merge-file"`
	AttachmentsDir string `mapstructure:"attachments-dir"`
	LedgerFile     string `mapstructure:"ledger-file"`
	Templates      *struct {
		Subject string
		Body    string
	}
	Mail *MailConfig `mapstructure:"mail"`
}

type MailConfig struct {
	From          string `mapstructure:"from"`
	FromName      string `mapstructure:"from-name"`
	Region        string `mapstructure:"region"`
	AccessKeyFile string `mapstructure:"access-key-file"`
	SecretKeyFile string `mapstructure:"secret-key-file"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "fare-mailer matches recipients to the cheapest flight offers and mails each of them exactly once",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is fare-mailer.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Credentials may live in a local .env, same as the config file.
	godotenv.Load()

	viper.SetDefault("offers-file", "data/raw/offers.csv")
	viper.SetDefault("recipients-file", "data/processed/recipients.csv")
	viper.SetDefault("merge-file", "data/processed/mail_merge.csv")
	viper.SetDefault("attachments-dir", "data/attachments")
	viper.SetDefault("ledger-file", "state/sent_log.csv")
	viper.SetDefault("templates.subject", "templates/subject.txt")
	viper.SetDefault("templates.body", "templates/body.txt")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Every key has a default, so a missing config file is fine. A config
	// file parsed with error is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
