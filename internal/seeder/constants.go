package seeder

import "time"

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
	progressEvery           = 100
)

// Runner configuration constants.
const (
	PercentageMultiplier = 100
	SettleDelay          = 500 * time.Millisecond
)
