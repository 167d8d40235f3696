package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spaolacci/murmur3"
)

// coinsSuffix keeps the coin-count stream apart from the spawn stream
const coinsSuffix = "coins"

// Luck is the deterministic generator. Its output is a pure function of the
// serialized key and the salt; there is no hidden seed.
type Luck struct {
	salt             string
	spawnProbability float64
	coinMultiplier   int
}

// NewLuck creates a generator. Non-positive arguments fall back to defaults.
func NewLuck(salt string, spawnProbability float64, coinMultiplier int) *Luck {
	if spawnProbability <= 0 {
		spawnProbability = DefaultSpawnProbability
	}
	if coinMultiplier <= 0 {
		coinMultiplier = DefaultCoinMultiplier
	}
	return &Luck{
		salt:             salt,
		spawnProbability: spawnProbability,
		coinMultiplier:   coinMultiplier,
	}
}

// NewLuckFromConfig creates the generator described by a world config
func NewLuckFromConfig(config *GameConfig) *Luck {
	return NewLuck(config.Salt, config.SpawnProbability, config.CoinMultiplier)
}

// Value maps a key to [0,1)
func (l *Luck) Value(parts ...any) float64 {
	key := KeyString(parts...)
	if l.salt != "" {
		key += "," + l.salt
	}
	return float64(murmur3.Sum32([]byte(key))) / (math.MaxUint32 + 1.0)
}

// SpawnDecision reports whether cell (i, j) holds a cache
func (l *Luck) SpawnDecision(i, j int) bool {
	return l.Value(i, j) < l.spawnProbability
}

// InitialCoinCount returns how many coins cell (i, j) starts with
func (l *Luck) InitialCoinCount(i, j int) int {
	return int(math.Floor(l.Value(i, j, coinsSuffix) * float64(l.coinMultiplier)))
}

// SpawnProbability returns the configured spawn threshold
func (l *Luck) SpawnProbability() float64 {
	return l.spawnProbability
}

// KeyString serializes key parts as a comma-joined list, e.g. "5,5,coins"
func KeyString(parts ...any) string {
	out := make([]string, len(parts))
	for i, p := range parts {
		switch v := p.(type) {
		case string:
			out[i] = v
		case int:
			out[i] = strconv.Itoa(v)
		case int64:
			out[i] = strconv.FormatInt(v, 10)
		case int32:
			out[i] = strconv.FormatInt(int64(v), 10)
		case float64:
			out[i] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			out[i] = strconv.FormatBool(v)
		default:
			out[i] = fmt.Sprint(v)
		}
	}
	return strings.Join(out, ",")
}
