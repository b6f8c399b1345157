package simulation

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/electometer/smart-meter/internal/config"
	"github.com/electometer/smart-meter/internal/domain"
)

// Params shapes the synthetic readings.
type Params struct {
	BasePower      float64 // watts
	JitterMin      float64 // lower bound of the uniform power jitter
	JitterMax      float64 // upper bound (exclusive)
	NominalVoltage float64
	VoltageJitter  float64 // voltage is drawn from nominal +/- this value
	TheftProb      float64 // chance that a reading is forced to zero power
}

func DefaultParams() Params {
	return Params{
		BasePower:      300,
		JitterMin:      -50,
		JitterMax:      200,
		NominalVoltage: 230,
		VoltageJitter:  5,
		TheftProb:      0.01,
	}
}

func ParamsFromConfig(s config.Simulation) Params {
	return Params{
		BasePower:      s.BasePower,
		JitterMin:      s.JitterMin,
		JitterMax:      s.JitterMax,
		NominalVoltage: s.NominalVoltage,
		VoltageJitter:  s.VoltageJitter,
		TheftProb:      s.TheftProb,
	}
}

// Generator fabricates power/voltage/current triples. It is safe for concurrent use.
type Generator struct {
	params Params
	mu     sync.Mutex
	rnd    *rand.Rand
}

func NewGenerator(p Params, src rand.Source) *Generator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Generator{params: p, rnd: rand.New(src)}
}

func (g *Generator) float() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Float64()
}

// Power draws base + U[JitterMin, JitterMax), never negative, rounded to 2 dp.
// With probability TheftProb it returns exactly 0.
func (g *Generator) Power() float64 {
	p := g.params
	power := math.Max(0, p.BasePower+p.JitterMin+g.float()*(p.JitterMax-p.JitterMin))
	if g.float() < p.TheftProb {
		return 0
	}
	return round(power, 2)
}

// Voltage draws nominal +/- VoltageJitter, rounded to 1 dp.
func (g *Generator) Voltage() float64 {
	p := g.params
	return round(p.NominalVoltage+g.float()*2*p.VoltageJitter-p.VoltageJitter, 1)
}

// Current derives I = P / V rounded to 2 dp; zero voltage yields zero current.
func Current(power, voltage float64) float64 {
	if voltage == 0 {
		return 0
	}
	return round(power/voltage, 2)
}

// Reading fabricates one sample for meterID at ts.
func (g *Generator) Reading(meterID string, ts time.Time) domain.Reading {
	power := g.Power()
	voltage := g.Voltage()
	return domain.Reading{
		MeterID:    meterID,
		Timestamp:  ts,
		PowerWatts: power,
		Voltage:    voltage,
		Current:    Current(power, voltage),
	}
}

// Float returns the next value of the random stream in [0, 1).
func (g *Generator) Float() float64 { return g.float() }

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
