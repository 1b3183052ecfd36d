package app

import (
	"context"
	"fmt"

	"attendance-bot/internal/config"
	"attendance-bot/internal/mirror"
	awsconfig "attendance-bot/pkg/aws"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/sirupsen/logrus"
)

// NewNotifier builds the mirror chain configured in cfg, wrapped in a
// Dispatcher. With nothing configured every event goes to mirror.Nop.
func NewNotifier(ctx context.Context, cfg *config.BotConfig) (*mirror.Dispatcher, error) {
	var targets mirror.Fanout

	if cfg.NotionEnabled() {
		targets = append(targets, mirror.NewNotionClient(mirror.NotionConfig{
			APIKey:         cfg.NotionAPIKey,
			DatabaseID:     cfg.NotionDatabaseID,
			TaskDatabaseID: cfg.NotionTaskDatabaseID,
			BaseURL:        cfg.NotionBaseURL,
		}))
		logrus.Info("Notion mirror enabled")
	}

	if cfg.QueueEnabled() {
		awsCfg, err := awsconfig.NewAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
		}
		sender := mirror.NewSQSSender(sqs.NewFromConfig(awsCfg))
		targets = append(targets, mirror.NewQueuePublisher(sender, cfg.SyncQueueURL))
		logrus.WithField("queue", cfg.SyncQueueURL).Info("Sync queue publisher enabled")
	}

	var next mirror.Notifier = mirror.Nop{}
	switch len(targets) {
	case 0:
	case 1:
		next = targets[0]
	default:
		next = targets
	}

	return mirror.NewDispatcher(next, mirror.DefaultTimeout), nil
}
