// Package watch triggers recompiles when graph files change or on a cron
// schedule. Triggers from every source are handled one at a time by Loop.
package watch
