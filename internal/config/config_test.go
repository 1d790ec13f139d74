package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProcessEnvironmentVariables_Defaults(t *testing.T) {
	env, err := ProcessEnvironmentVariables()
	assert.NoError(t, err)

	assert.Equal(t, "9446", env.Port)
	assert.Equal(t, "@every 1h", env.Scheduler.TickSpec)
	assert.Equal(t, 4, env.Scheduler.Workers)
	assert.Equal(t, 3, env.Scheduler.CatchUpCap)
	assert.Equal(t, 5, env.Scheduler.PauseThreshold)
	assert.Equal(t, 30*time.Second, env.Scheduler.PassTimeout)
	assert.Equal(t, 2*time.Minute, env.Scheduler.ClaimTTL)
}

func TestProcessEnvironmentVariables_Overrides(t *testing.T) {
	t.Setenv("SCHEDULER_WORKERS", "8")
	t.Setenv("SCHEDULER_CATCH_UP_CAP", "10")
	t.Setenv("SCHEDULER_PASS_TIMEOUT", "45s")

	env, err := ProcessEnvironmentVariables()
	assert.NoError(t, err)
	assert.Equal(t, 8, env.Scheduler.Workers)
	assert.Equal(t, 10, env.Scheduler.CatchUpCap)
	assert.Equal(t, 45*time.Second, env.Scheduler.PassTimeout)
}

func TestProcessEnvironmentVariables_BadInt(t *testing.T) {
	t.Setenv("SCHEDULER_WORKERS", "lots")

	_, err := ProcessEnvironmentVariables()
	assert.Error(t, err)
}

func TestSchedulerConfigValidate(t *testing.T) {
	valid := SchedulerConfig{
		TickSpec:       "@every 1h",
		Workers:        1,
		CatchUpCap:     1,
		PauseThreshold: 1,
		PassTimeout:    time.Second,
		ClaimTTL:       time.Second,
	}
	assert.NoError(t, valid.Validate())

	noWorkers := valid
	noWorkers.Workers = 0
	assert.Error(t, noWorkers.Validate())

	noCap := valid
	noCap.CatchUpCap = 0
	assert.Error(t, noCap.Validate())

	noTimeout := valid
	noTimeout.PassTimeout = 0
	assert.Error(t, noTimeout.Validate())
}
