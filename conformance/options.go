package conformance

import (
	"io"
	"log/slog"

	"github.com/roach88/pinvec"
	"github.com/roach88/pinvec/internal/testutil"
)

// Factory produces a fresh, empty container for one scenario.
type Factory = func() pinvec.PinnedVec[int]

// DefaultSweepLimit bounds how many values of m and p are tried per base
// length. Ranges at or below the limit are swept exhaustively.
const DefaultSweepLimit = 24

// Option configures a verification run.
type Option func(*config)

type config struct {
	name       string
	logger     *slog.Logger
	sweepLimit int
	lengths    []int
	guarantees map[pinvec.Guarantee]bool
	ids        IDGenerator
}

func defaultConfig() config {
	enabled := make(map[pinvec.Guarantee]bool)
	for _, g := range pinvec.AllGuarantees() {
		enabled[g] = true
	}
	return config{
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		sweepLimit: DefaultSweepLimit,
		guarantees: enabled,
		ids:        testutil.UUIDGenerator{},
	}
}

func newConfig(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithName labels the report with the implementation under test.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

// WithLogger routes progress logging to logger. Logging is discarded by
// default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSweepLimit sets how many m and p values are tried per base length.
// Values below 8 are raised to 8 so boundary positions are always covered.
func WithSweepLimit(limit int) Option {
	return func(c *config) { c.sweepLimit = max(limit, 8) }
}

// WithLengths replaces the generated length plan with explicit base
// lengths. Negative lengths are dropped.
func WithLengths(lengths ...int) Option {
	return func(c *config) { c.lengths = append([]int(nil), lengths...) }
}

// WithGuarantees restricts the run to the given guarantees. The G1 growth
// checks made while building containers only run when G1 is selected.
func WithGuarantees(gs ...pinvec.Guarantee) Option {
	return func(c *config) {
		c.guarantees = make(map[pinvec.Guarantee]bool)
		for _, g := range gs {
			c.guarantees[g] = true
		}
	}
}

// WithIDGenerator sets the source of report run IDs.
func WithIDGenerator(ids IDGenerator) Option {
	return func(c *config) {
		if ids != nil {
			c.ids = ids
		}
	}
}
