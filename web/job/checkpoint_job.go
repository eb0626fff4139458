// Package job holds the cron jobs the server schedules while it runs.
package job

import (
	"github.com/nbazone/nbazone/database"
	"github.com/nbazone/nbazone/logger"
	"github.com/nbazone/nbazone/util/common"
)

// CheckpointJob folds the sqlite write-ahead log back into the database file.
type CheckpointJob struct{}

func NewCheckpointJob() *CheckpointJob {
	return new(CheckpointJob)
}

func (j *CheckpointJob) Run() {
	defer common.Recover("checkpoint job")

	if err := database.Checkpoint(); err != nil {
		logger.Warning("database checkpoint failed:", err)
	}
}
