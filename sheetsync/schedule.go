package sheetsync

import (
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartSyncSchedule runs the sync job on the configured cron expression,
// purge off. Returns nil when no schedule is configured.
func StartSyncSchedule(config *FeedConfig) (*cron.Cron, error) {
	if config == nil || config.CronExpr == "" {
		return nil, nil
	}

	scheduler := cron.New()
	_, err := scheduler.AddFunc(config.CronExpr, func() {
		if _, err := SyncRunFunc(SyncRequest{}); err != nil {
			logrus.Warnf("scheduled sheet sync failed: %v", err)
		}
	})
	if err != nil {
		return nil, err
	}
	scheduler.Start()
	logrus.Infof("sheet sync scheduled: %s", config.CronExpr)
	return scheduler, nil
}
