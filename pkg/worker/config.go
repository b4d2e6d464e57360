package worker

import (
	"fmt"
	"runtime"
	"time"

	"github.com/coder/quartz"
	"github.com/creasty/defaults"
	"go.uber.org/zap"

	"github.com/jzx17/stealpool/pkg/types"
)

// reservedCPUs is the number of CPUs left to the rest of the process by default
const reservedCPUs = 2

// Config defines configuration for the stealing worker pool.
// Zero fields are filled from the default tags when the pool is created.
type Config struct {
	// Workers is the number of workers; zero selects DefaultWorkerCount()
	Workers int

	// IdleSpins is the number of empty dispatch rounds a worker yields through
	// before parking. A negative value disables parking.
	IdleSpins int `default:"64"`

	// IdleSleep is how long a parked worker sleeps before polling again
	IdleSleep time.Duration `default:"50us"`

	// PinWorkers binds every worker thread to one CPU of the process affinity set
	PinWorkers bool

	// MetricsNamespace is the Prometheus namespace used by NewCollector
	MetricsNamespace string `default:"stealpool"`

	// Clock for time operations (optional, defaults to real clock)
	Clock quartz.Clock `default:"-"`

	// Logger receives lifecycle tracing (optional, defaults to a no-op logger)
	Logger *zap.Logger `default:"-"`

	// ErrorHandler is called with every task failure
	ErrorHandler types.ErrorHandler `default:"-"`
}

// DefaultWorkerCount returns the available parallelism minus a small reserve, at least 1
func DefaultWorkerCount() int {
	n := runtime.NumCPU() - reservedCPUs
	if n < 1 {
		return 1
	}
	return n
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	config := &Config{}
	if err := config.applyDefaults(); err != nil {
		panic(err)
	}
	return config
}

// applyDefaults fills zero fields
func (c *Config) applyDefaults() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("apply config defaults: %w", err)
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkerCount()
	}
	if c.Clock == nil {
		c.Clock = quartz.NewReal()
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", types.ErrInvalidConfig, c.Workers)
	}
	if c.IdleSleep < 0 {
		return fmt.Errorf("%w: idle sleep must not be negative, got %v", types.ErrInvalidConfig, c.IdleSleep)
	}
	return nil
}
