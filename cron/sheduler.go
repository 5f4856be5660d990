package cron

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// StartCron schedules every registered job and starts the scheduler.
func StartCron() (*cron.Cron, error) {
	c := cron.New()
	for name, j := range Jobs() {
		run := j.Run
		jobName := name
		_, err := c.AddFunc(j.Schedule, func() {
			log.Printf("cron: running %s", jobName)
			run()
		})
		if err != nil {
			return nil, fmt.Errorf("register job %s: %w", name, err)
		}
	}
	c.Start()
	return c, nil
}
