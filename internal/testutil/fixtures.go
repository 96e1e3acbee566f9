package testutil

import (
	"drivesync/internal/models"
)

// CreateTestJob creates a shared-path job with default values
func CreateTestJob(overrides ...func(*models.SyncJob)) *models.SyncJob {
	job := &models.SyncJob{
		ID:     "test-job",
		Path:   "Backup/Photos",
		Drives: []string{"BACKUP_A", "BACKUP_B"},
	}

	for _, override := range overrides {
		override(job)
	}

	return job
}

// CreateTestSnapshot creates a snapshot from label/mount pairs given as
// "LABEL", "/mount", "LABEL2", "/mount2", ...
func CreateTestSnapshot(labelMounts ...string) *models.Snapshot {
	snapshot := &models.Snapshot{}
	for i := 0; i+1 < len(labelMounts); i += 2 {
		snapshot.Drives = append(snapshot.Drives, models.Drive{
			Label:  labelMounts[i],
			Mount:  labelMounts[i+1],
			FSType: "ext4",
		})
	}
	return snapshot
}
