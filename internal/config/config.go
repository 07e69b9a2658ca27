package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"LineDuel/internal/state"
)

// Config is everything a relay or a peer reads from the environment.
type Config struct {
	Addr             string // relay listen address, e.g. ":8888"
	Arena            string
	Codec            string // "json" or "msgpack"
	MinSegmentLength float64
	GridCellSize     float64 // 0 scans the opponent trail linearly
	SendQueue        int
	ReconnectDelay   time.Duration
	MDNS             bool
	ExportDir        string
	LogLevel         zerolog.Level
	LogPretty        bool
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables and defaults.
func FromEnv() (Config, error) {
	var (
		c   Config
		err error
	)
	c.Addr = getEnv("DUEL_ADDR", ":8888")
	c.Arena = strings.ToUpper(getEnv("DUEL_ARENA", "MAIN"))
	c.Codec = strings.ToLower(getEnv("DUEL_CODEC", "json"))
	c.ExportDir = getEnv("DUEL_EXPORT_DIR", ".")

	if c.MinSegmentLength, err = getFloat("DUEL_MIN_SEGMENT", 6); err != nil {
		return Config{}, err
	}
	if c.GridCellSize, err = getFloat("DUEL_GRID_CELL", 0); err != nil {
		return Config{}, err
	}
	if c.SendQueue, err = getInt("DUEL_SEND_QUEUE", 256); err != nil {
		return Config{}, err
	}
	if c.ReconnectDelay, err = getDuration("DUEL_RECONNECT", time.Second); err != nil {
		return Config{}, err
	}
	if c.MDNS, err = getBool("DUEL_MDNS", true); err != nil {
		return Config{}, err
	}
	if c.LogPretty, err = getBool("LOG_PRETTY", false); err != nil {
		return Config{}, err
	}
	if c.LogLevel, err = zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	switch c.Codec {
	case "json", "msgpack":
	default:
		return Config{}, fmt.Errorf("DUEL_CODEC: unknown codec %q", c.Codec)
	}
	if c.MinSegmentLength <= 0 {
		return Config{}, fmt.Errorf("DUEL_MIN_SEGMENT must be positive, got %v", c.MinSegmentLength)
	}
	if c.GridCellSize < 0 || (c.GridCellSize > 0 && c.GridCellSize < state.MinGridCellSize) {
		return Config{}, fmt.Errorf("DUEL_GRID_CELL must be 0 or at least %v, got %v", state.MinGridCellSize, c.GridCellSize)
	}
	return c, nil
}

// Port returns the numeric port of Addr.
func (c Config) Port() (int, error) {
	_, p, err := net.SplitHostPort(c.Addr)
	if err != nil {
		return 0, fmt.Errorf("DUEL_ADDR: %w", err)
	}
	return strconv.Atoi(p)
}

// SetupLogging applies the log level and output format to the global logger.
func (c Config) SetupLogging() {
	zerolog.SetGlobalLevel(c.LogLevel)
	if c.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getFloat(k string, def float64) (float64, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return f, nil
}

func getInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}

func getBool(k string, def bool) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", k, err)
	}
	return b, nil
}

func getDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}
