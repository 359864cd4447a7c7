// Package poller drives the dashboard's fixed-period poll loops.
//
// This package is internal to telemetryboard. A [Scheduler] runs any number
// of independent [Loop] values, each on its own wall-clock ticker. A tick
// never waits for the previous tick of the same loop: slow or failed ticks
// do not delay or skip later ones, and overlapping ticks simply race.
//
// Users of the telemetryboard library should not need to interact with this
// package directly. Loops are configured through the main package.
package poller
