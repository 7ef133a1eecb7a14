package cmd

import (
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/akarpov/fare-mailer/internal/logger"
	"github.com/akarpov/fare-mailer/internal/mailmerge"
	"github.com/akarpov/fare-mailer/internal/matching"
	"github.com/akarpov/fare-mailer/internal/offers"
	"github.com/akarpov/fare-mailer/internal/recipients"
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Match every active recipient against the offer dataset and write the mail merge artifact",
	Run: func(cmd *cobra.Command, _ []string) {
		prepare(cmd)
	},
}

func init() {
	rootCmd.AddCommand(prepareCmd)
}

func prepare(_ *cobra.Command) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the fare-mailer prepare", zap.String("version", version))

	set, err := offers.Load(config.OffersFile)
	if err != nil {
		logger.Fatal("loading offers dataset", zap.Error(err), zap.String("path", config.OffersFile))
	}

	detected := make([]string, 0, len(set.Columns))
	for field, column := range set.Columns {
		detected = append(detected, string(field)+"="+column)
	}
	logger.Info("loaded offers dataset",
		zap.Int("offers", set.Len()),
		zap.Strings("detected_columns", detected),
	)

	specs, err := recipients.Load(config.RecipientsFile)
	if err != nil {
		logger.Fatal("loading recipients", zap.Error(err), zap.String("path", config.RecipientsFile))
	}

	active := recipients.Active(specs)
	logger.Info("loaded recipients",
		zap.Int("total", len(specs)),
		zap.Int("active", len(active)),
	)

	now := time.Now()
	records := make([]mailmerge.Record, 0, len(active))
	for _, spec := range active {
		records = append(records, matching.Match(now, spec, set, logger))
	}

	if err := mailmerge.WriteArtifact(config.MergeFile, records); err != nil {
		logger.Fatal("writing merge artifact", zap.Error(err), zap.String("path", config.MergeFile))
	}

	matched := 0
	for i := range records {
		if records[i].CheapestPrice != "" {
			matched++
		}
	}

	logger.Info("merge artifact written",
		zap.String("path", config.MergeFile),
		zap.Int("rows", len(records)),
		zap.Int("matched", matched),
	)
}
