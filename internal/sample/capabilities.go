package sample

import (
	"os"
	"runtime"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EnvSampler selects the sampling strategy: "auto", "parallel" or "serial".
const EnvSampler = "LUT_MCP_SAMPLER"

// Strategy names.
const (
	StrategyAuto     = "auto"
	StrategySerial   = "serial"
	StrategyParallel = "parallel"
)

// AcceleratorCPU is the only accelerator this package drives.
const AcceleratorCPU = "cpu"

// Capabilities describes the compute available to the sampler. It is
// detected once per process and never changes afterwards.
type Capabilities struct {
	// Accelerator is the device doing the math. Always "cpu"; a missing GPU
	// is not an error.
	Accelerator string `json:"accelerator"`
	// Workers is the number of goroutines Parallel spreads rows across.
	Workers int `json:"workers"`
	// Strategy is the requested strategy, "auto" unless overridden.
	Strategy string `json:"strategy"`
}

// Detect returns the process-wide capabilities, reading EnvSampler on first
// use.
var Detect = sync.OnceValue(func() Capabilities {
	c := detect(os.Getenv(EnvSampler))
	log.WithFields(log.Fields{
		"accelerator": c.Accelerator,
		"workers":     c.Workers,
		"strategy":    c.Strategy,
	}).Debug("detected sampler capabilities")
	return c
})

func detect(strategy string) Capabilities {
	c := Capabilities{
		Accelerator: AcceleratorCPU,
		Workers:     runtime.GOMAXPROCS(0),
		Strategy:    StrategyAuto,
	}

	switch s := strings.ToLower(strings.TrimSpace(strategy)); s {
	case "", StrategyAuto:
	case StrategySerial, StrategyParallel:
		c.Strategy = s
	default:
		log.WithField("value", strategy).Warnf("unknown %s, using %s", EnvSampler, StrategyAuto)
	}
	return c
}

// New returns the sampler the capabilities call for. In auto mode a single
// worker gets Serial and anything more gets Parallel.
func New(c Capabilities) Sampler {
	switch c.Strategy {
	case StrategySerial:
		return Serial{}
	case StrategyParallel:
		return Parallel{}
	}
	if c.Workers > 1 {
		return Parallel{}
	}
	return Serial{}
}

var defaultSampler = sync.OnceValue(func() Sampler { return New(Detect()) })

// Default returns the process-wide sampler chosen from Detect.
func Default() Sampler {
	return defaultSampler()
}
