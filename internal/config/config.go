package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	PostgresAddress  string
	PostgresPort     string
	PostgresDB       string
	PostgresUsername string
	PostgresPassword string

	Scheduler SchedulerConfig
}

// SchedulerConfig carries every knob of the recurring transaction scheduler.
// It is injected explicitly into the loop and the runner at construction;
// nothing in the scheduler reads configuration from ambient state.
type SchedulerConfig struct {
	// TickSpec is a robfig/cron spec (e.g. "@every 1h") driving sweeps.
	TickSpec string
	// Workers bounds how many rules are processed concurrently per sweep.
	Workers int
	// CatchUpCap is the maximum number of backlogged occurrences a single
	// pass will materialize; older ones are skipped.
	CatchUpCap int
	// PauseThreshold is the consecutive failure count at which a rule is paused.
	PauseThreshold int
	// PassTimeout is the wall-clock budget for one rule's pass.
	PassTimeout time.Duration
	// ClaimTTL is how long a rule claim stays exclusive before an expired
	// lease may be taken over by another worker.
	ClaimTTL time.Duration
}

func ProcessEnvironmentVariables() (*Config, error) {
	// .env is for local development only; absence is not an error.
	_ = godotenv.Load()

	// In all cases the default behavior should be for the docker compose setup
	env := Config{
		Port:             "9446",
		PostgresAddress:  "localhost",
		PostgresPort:     "5433",
		PostgresDB:       "postgres",
		PostgresUsername: "postgres",
		PostgresPassword: "testpassword",
		Scheduler: SchedulerConfig{
			TickSpec:       "@every 1h",
			Workers:        4,
			CatchUpCap:     3,
			PauseThreshold: 5,
			PassTimeout:    30 * time.Second,
			ClaimTTL:       2 * time.Minute,
		},
	}

	setString(&env.Port, "PORT")
	setString(&env.PostgresAddress, "POSTGRES_ADDRESS")
	setString(&env.PostgresPort, "POSTGRES_PORT")
	setString(&env.PostgresDB, "POSTGRES_DB")
	setString(&env.PostgresUsername, "POSTGRES_USERNAME")
	setString(&env.PostgresPassword, "POSTGRES_PASSWORD")

	setString(&env.Scheduler.TickSpec, "SCHEDULER_TICK_SPEC")
	if err := setInt(&env.Scheduler.Workers, "SCHEDULER_WORKERS"); err != nil {
		return nil, err
	}
	if err := setInt(&env.Scheduler.CatchUpCap, "SCHEDULER_CATCH_UP_CAP"); err != nil {
		return nil, err
	}
	if err := setInt(&env.Scheduler.PauseThreshold, "SCHEDULER_PAUSE_THRESHOLD"); err != nil {
		return nil, err
	}
	if err := setDuration(&env.Scheduler.PassTimeout, "SCHEDULER_PASS_TIMEOUT"); err != nil {
		return nil, err
	}
	if err := setDuration(&env.Scheduler.ClaimTTL, "SCHEDULER_CLAIM_TTL"); err != nil {
		return nil, err
	}

	if err := env.Scheduler.Validate(); err != nil {
		return nil, err
	}

	return &env, nil
}

func (c SchedulerConfig) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("scheduler: workers must be >= 1, got %d", c.Workers)
	}
	if c.CatchUpCap < 1 {
		return fmt.Errorf("scheduler: catch-up cap must be >= 1, got %d", c.CatchUpCap)
	}
	if c.PauseThreshold < 1 {
		return fmt.Errorf("scheduler: pause threshold must be >= 1, got %d", c.PauseThreshold)
	}
	if c.PassTimeout <= 0 {
		return fmt.Errorf("scheduler: pass timeout must be positive, got %s", c.PassTimeout)
	}
	if c.ClaimTTL <= 0 {
		return fmt.Errorf("scheduler: claim TTL must be positive, got %s", c.ClaimTTL)
	}
	return nil
}

func setString(target *string, key string) {
	if value := os.Getenv(key); len(value) != 0 {
		*target = value
	}
}

func setInt(target *int, key string) error {
	value := os.Getenv(key)
	if len(value) == 0 {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*target = parsed
	return nil
}

func setDuration(target *time.Duration, key string) error {
	value := os.Getenv(key)
	if len(value) == 0 {
		return nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*target = parsed
	return nil
}
