// Package schedule runs recurring jobs on cron schedules for the watch
// command. Each job runs at most once at a time.
package schedule
