package cmd

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/akarpov/fare-mailer/internal/dispatch"
	"github.com/akarpov/fare-mailer/internal/ledger"
	"github.com/akarpov/fare-mailer/internal/logger"
	"github.com/akarpov/fare-mailer/internal/mailer"
	"github.com/akarpov/fare-mailer/internal/mailmerge"
	"github.com/akarpov/fare-mailer/internal/secrets"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var sendPrompt = promptui.Select{
	Label: "Send for real?",
	Items: []string{PromptYes, PromptNo},
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Dispatch personalized mail for the merge artifact (preview unless --send)",
	Run: func(cmd *cobra.Command, _ []string) {
		send(cmd)
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().Bool("send", false, "real send emails (not just preview)")
	sendCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation before a real send")
}

func send(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	commit := cmd.Flag("send").Value.String() == "true"

	logger.Info("starting the fare-mailer send",
		zap.String("version", version),
		zap.Bool("commit", commit),
	)

	records, err := mailmerge.ReadArtifact(config.MergeFile)
	if err != nil {
		var missing *mailmerge.MissingArtifactError
		if errors.As(err, &missing) {
			logger.Fatal("merge artifact is missing",
				zap.Error(err),
				zap.String("hint", "run `fare-mailer prepare` to produce it"),
			)
		}
		logger.Fatal("reading merge artifact", zap.Error(err))
	}

	activeRecords := records[:0]
	for _, r := range records {
		if r.Active {
			activeRecords = append(activeRecords, r)
		}
	}
	records = activeRecords

	logger.Info("loaded merge artifact",
		zap.String("path", config.MergeFile),
		zap.Int("records", len(records)),
	)

	subjectTpl, err := os.ReadFile(config.Templates.Subject)
	if err != nil {
		logger.Fatal("reading subject template", zap.Error(err))
	}
	bodyTpl, err := os.ReadFile(config.Templates.Body)
	if err != nil {
		logger.Fatal("reading body template", zap.Error(err))
	}

	journal, err := ledger.Open(config.LedgerFile)
	if err != nil {
		logger.Fatal("opening dispatch ledger", zap.Error(err))
	}
	defer journal.Close()

	logger.Info("dispatch ledger loaded",
		zap.String("path", config.LedgerFile),
		zap.Int("sent_pairs", journal.SentCount()),
	)

	var transport dispatch.Transport
	if commit {
		if cmd.Flag("yes").Value.String() == "false" {
			_, action, err := sendPrompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
			if action != PromptYes {
				logger.Info("exiting", zap.String("reason", "got no from prompt"))
				return
			}
		}

		transport, err = buildTransport(ctx, config)
		if err != nil {
			logger.Fatal("building mail transport", zap.Error(err))
		}
	}

	dispatcher := &dispatch.Dispatcher{
		Ledger:         journal,
		Transport:      transport,
		SubjectTpl:     string(subjectTpl),
		BodyTpl:        string(bodyTpl),
		AttachmentsDir: config.AttachmentsDir,
		Commit:         commit,
		Logger:         logger,
	}

	summary, err := dispatcher.Run(ctx, records)
	if err != nil {
		logger.Fatal("dispatch run failed", zap.Error(err))
	}

	mode := "preview"
	if commit {
		mode = "send"
	}
	logger.Info("run finished",
		zap.String("mode", mode),
		zap.Int("processed", summary.Processed),
		zap.Int("sent", summary.Sent),
		zap.Int("skipped_duplicates", summary.Skipped),
		zap.String("ledger", config.LedgerFile),
	)
}

func buildTransport(ctx context.Context, config *Config) (dispatch.Transport, error) {
	if config.Mail == nil {
		return nil, errors.New("mail section is required for a real send")
	}

	accessKey, err := secrets.Load(secrets.Source{
		Name: "aws access key",
		File: config.Mail.AccessKeyFile,
		Env:  "AWS_ACCESS_KEY_ID",
	})
	if err != nil {
		return nil, err
	}

	secretKey, err := secrets.Load(secrets.Source{
		Name: "aws secret key",
		File: config.Mail.SecretKeyFile,
		Env:  "AWS_SECRET_ACCESS_KEY",
	})
	if err != nil {
		return nil, err
	}

	return mailer.NewSES(ctx, mailer.Config{
		From:      config.Mail.From,
		FromName:  config.Mail.FromName,
		Region:    config.Mail.Region,
		AccessKey: accessKey,
		SecretKey: secretKey,
	})
}
