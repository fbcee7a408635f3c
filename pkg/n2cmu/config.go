package n2cmu

import (
	"flag"
	"os"
	"strconv"
	"time"
)

// Config defines the link settings of a Coprocessor.
type Config struct {
	Baud         int
	ResetDelay   time.Duration
	Timeout      time.Duration
	PollInterval time.Duration
	ExactSync    bool
	TrainTimeout time.Duration
}

var defaultConfig = Config{
	Baud:         DefaultBaud,
	ResetDelay:   DefaultResetDelay,
	Timeout:      DefaultTimeout,
	PollInterval: DefaultPollInterval,
}

func init() {
	if val := os.Getenv("N2CMU_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			defaultConfig.Timeout = d
		}
	}
	if val := os.Getenv("N2CMU_TRAIN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			defaultConfig.TrainTimeout = d
		}
	}
	if val := os.Getenv("N2CMU_EXACT_SYNC"); val != "" {
		if en, err := strconv.ParseBool(val); err == nil {
			defaultConfig.ExactSync = en
		}
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.IntVar(&defaultConfig.Baud, "baud", defaultConfig.Baud, "Serial baud rate.")
	flag.DurationVar(&defaultConfig.ResetDelay, "reset-delay", defaultConfig.ResetDelay, "Settle time after CPU reset.")
	flag.DurationVar(&defaultConfig.Timeout, "timeout", defaultConfig.Timeout, "Read timeout, 0 waits forever.")
	flag.DurationVar(&defaultConfig.TrainTimeout, "train-timeout", defaultConfig.TrainTimeout, "Training status timeout, 0 waits forever.")
	flag.DurationVar(&defaultConfig.PollInterval, "poll", defaultConfig.PollInterval, "Read availability polling interval.")
	flag.BoolVar(&defaultConfig.ExactSync, "exact-sync", defaultConfig.ExactSync, "Wait for exactly the value size to be buffered.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewCoprocessor creates a Coprocessor over the channel using the config.
func (c *Config) NewCoprocessor(ch Channel) *Coprocessor {
	p := New(ch)
	p.Baud = c.Baud
	p.ResetDelay = c.ResetDelay
	p.TrainTimeout = c.TrainTimeout
	p.Codec.Timeout = c.Timeout
	p.Codec.PollInterval = c.PollInterval
	if c.ExactSync {
		p.Codec.Sync = SyncExact
	}
	return p
}
