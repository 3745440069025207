package jobs

import (
	"context"

	"github.com/emrgen/taxonomy/internal/store"
	"github.com/sirupsen/logrus"
)

// StatsTask logs a periodic heartbeat with coarse store counts.
type StatsTask struct {
	store store.Store
	cron  string
}

func NewStatsTask(interval string, store store.Store) *StatsTask {
	return &StatsTask{
		store: store,
		cron:  interval,
	}
}

func (s *StatsTask) ID() string {
	return "stats"
}

func (s *StatsTask) Schedule() string {
	return s.cron
}

func (s *StatsTask) Run() {
	taxa, err := s.store.ListTaxa(context.Background())
	if err != nil {
		logrus.Errorf("stats task: %v", err)
		return
	}

	logrus.Infof("stats: %d taxa", len(taxa))
}
