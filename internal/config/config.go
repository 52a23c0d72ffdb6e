package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by EPBOX_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("EPBOX_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 50
	}
	return rps
}

func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 100
	}
	return burst
}

// QuadratureSteps returns the Simpson step-count override, forced even.
// 0 means use the engine default.
func QuadratureSteps() int {
	steps, err := strconv.Atoi(os.Getenv("QUAD_STEPS"))
	if err != nil || steps <= 0 {
		return 0
	}
	if steps%2 != 0 {
		steps++
	}
	return steps
}

func MaxSweeps() int {
	sweeps, err := strconv.Atoi(os.Getenv("MAX_SWEEPS"))
	if err != nil || sweeps <= 0 {
		return 0
	}
	return sweeps
}
