package scheduler

import "time"

const defaultJobTimeout = 30 * time.Second

type Config struct {
	Timezone     string
	JobTimeout   time.Duration
	DisabledJobs []string
}

func (c Config) withDefaults() Config {
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaultJobTimeout
	}
	return c
}

func (c Config) disabled(name string) bool {
	for _, disabled := range c.DisabledJobs {
		if disabled == name {
			return true
		}
	}
	return false
}
