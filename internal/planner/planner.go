package planner

import (
	"path"
	"path/filepath"
	"strings"

	"drivesync/internal/models"
	"drivesync/internal/sanitizer"
)

// JobPlan is the resolved star topology of one job: Endpoints[0] is the hub.
type JobPlan struct {
	JobID     string
	Mode      models.SyncMode
	Endpoints []models.Endpoint
	// Missing lists declared labels that are not currently mounted.
	Missing []string
	// Args are the global arguments followed by the job arguments.
	Args []string
}

// Skipped reports whether fewer than two endpoints are available.
func (p *JobPlan) Skipped() bool {
	return len(p.Endpoints) < 2
}

// Hub returns the source endpoint of every pair.
func (p *JobPlan) Hub() (models.Endpoint, bool) {
	if len(p.Endpoints) == 0 {
		return models.Endpoint{}, false
	}
	return p.Endpoints[0], true
}

// Pairs yields hub -> destination pairs in declared order. Non-hub endpoints
// are never paired with each other.
func (p *JobPlan) Pairs() []models.Pair {
	hub, ok := p.Hub()
	if !ok || p.Skipped() {
		return nil
	}
	pairs := make([]models.Pair, 0, len(p.Endpoints)-1)
	for _, dest := range p.Endpoints[1:] {
		args := make([]string, 0, len(p.Args)+len(dest.Args))
		args = append(args, p.Args...)
		args = append(args, dest.Args...)
		pairs = append(pairs, models.Pair{
			Source:      hub,
			Destination: dest,
			Mode:        p.Mode,
			Args:        args,
		})
	}
	return pairs
}

// Planner turns jobs into plans against one drive snapshot.
type Planner struct {
	snapshot     *models.Snapshot
	remotePrefix string
	globalMode   models.SyncMode
	globalArgs   []string
}

func New(snapshot *models.Snapshot, remotePrefix string, globalMode models.SyncMode, globalArgs []string) *Planner {
	return &Planner{
		snapshot:     snapshot,
		remotePrefix: remotePrefix,
		globalMode:   globalMode,
		globalArgs:   globalArgs,
	}
}

// Plan keeps the declared entries that are mounted or remote, in order.
func (p *Planner) Plan(job *models.SyncJob) *JobPlan {
	plan := &JobPlan{
		JobID: job.ID,
		Mode:  job.EffectiveMode(p.globalMode),
	}
	plan.Args = append(plan.Args, p.globalArgs...)
	plan.Args = append(plan.Args, job.Args...)

	for _, entry := range job.Entries() {
		endpoint, ok := p.resolve(entry)
		if !ok {
			plan.Missing = append(plan.Missing, entry.Drive)
			continue
		}
		plan.Endpoints = append(plan.Endpoints, endpoint)
	}
	return plan
}

// resolve checks remote aliases first; they never consult the snapshot.
func (p *Planner) resolve(entry models.PathEntry) (models.Endpoint, bool) {
	if p.IsRemote(entry.Drive) {
		alias := strings.TrimPrefix(entry.Drive, p.remotePrefix)
		return models.Endpoint{
			Label:  entry.Drive,
			Path:   RemotePath(alias, entry.Path),
			Remote: true,
			Args:   entry.Args,
		}, true
	}

	if drive, ok := p.snapshot.Lookup(entry.Drive); ok {
		return models.Endpoint{
			Label: entry.Drive,
			Path:  LocalPath(drive.Mount, entry.Path),
			Args:  entry.Args,
		}, true
	}

	return models.Endpoint{}, false
}

// IsRemote reports whether label names an rclone remote.
func (p *Planner) IsRemote(label string) bool {
	return p.remotePrefix != "" && strings.HasPrefix(label, p.remotePrefix) && len(label) > len(p.remotePrefix)
}

// LocalPath joins a mount root and a relative path with host rules.
func LocalPath(mount, rel string) string {
	if rel == "" {
		return mount
	}
	return filepath.Join(mount, rel)
}

// RemotePath builds "alias:rel". The part after the colon uses forward
// slashes and never gains a leading separator the user did not write.
func RemotePath(alias, rel string) string {
	root := alias + ":"
	rel = sanitizer.RemotePath(rel)
	if rel == "" {
		return root
	}
	leading := strings.HasPrefix(rel, "/")
	joined := path.Clean(rel)
	if !leading {
		joined = strings.TrimPrefix(joined, "/")
	}
	if joined == "." {
		return root
	}
	return root + joined
}
