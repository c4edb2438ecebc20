package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application's configuration values.
type Config struct {
	HostIP                string  // Host IP for the server
	RESTPort              int     // Port for the REST API
	GinMode               string  // Mode for the Gin framework (e.g., release, debug, test)
	JWTSecret             string  // Secret key for signing simulation control tokens
	JWTIssuer             string  // Issuer claim for control tokens
	MongoURI              string  // MongoDB connection URI, empty disables generation history
	DBName                string  // Name of the database
	RedisAddr             string  // Redis address, empty disables the leaderboard
	RedisPassword         string  // Redis password
	LeaderboardTTLSeconds int     // Expiration of leaderboard keys
	GridRows              int     // Rows of the default maze
	GridCols              int     // Columns of the default maze
	ViewportWidth         float64 // Pixel width of the play area
	ViewportHeight        float64 // Pixel height of the play area
	Population            int     // Agents per generation
	MutationRate          float64 // Per-gene mutation probability
	Speed                 int     // Ticks per frame
	FPS                   int     // Frames per second of the frame driver
	Seed                  int64   // Random seed, 0 for a time based seed
}

// Load initializes and returns the application configuration.
// It loads environment variables from a .env file when present.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("[APP] [INFO] .env file not found or could not be loaded: %v", err)
	}

	return Config{
		HostIP:                getEnvWithDefault("HOST_IP", "0.0.0.0"),
		RESTPort:              getEnvAsIntWithDefault("REST_PORT", 8080),
		GinMode:               getEnvWithDefault("GIN_MODE", "release"),
		JWTSecret:             mustGetEnv("JWT_SECRET"),
		JWTIssuer:             getEnvWithDefault("JWT_ISSUER", "vinom-evolve"),
		MongoURI:              getEnvWithDefault("MONGO_URI", ""),
		DBName:                getEnvWithDefault("DB_NAME", "vinom_evolve"),
		RedisAddr:             getEnvWithDefault("REDIS_ADDR", ""),
		RedisPassword:         getEnvWithDefault("REDIS_PASSWORD", ""),
		LeaderboardTTLSeconds: getEnvAsIntWithDefault("LEADERBOARD_TTL_SECONDS", 7*24*60*60),
		GridRows:              getEnvAsIntWithDefault("GRID_ROWS", 21),
		GridCols:              getEnvAsIntWithDefault("GRID_COLS", 31),
		ViewportWidth:         getEnvAsFloatWithDefault("VIEWPORT_WIDTH", 930),
		ViewportHeight:        getEnvAsFloatWithDefault("VIEWPORT_HEIGHT", 630),
		Population:            getEnvAsIntWithDefault("POPULATION", 100),
		MutationRate:          getEnvAsFloatWithDefault("MUTATION_RATE", 0.001),
		Speed:                 getEnvAsIntWithDefault("SPEED", 1),
		FPS:                   getEnvAsIntWithDefault("FPS", 30),
		Seed:                  int64(getEnvAsIntWithDefault("SEED", 0)),
	}
}

// mustGetEnv retrieves the value of an environment variable or logs a fatal error if not set.
func mustGetEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		log.Fatalf("[APP] [FATAL] Environment variable %s is not set", key)
	}
	return value
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsIntWithDefault retrieves an integer environment variable, falling back to defaultValue when unset.
// A value that cannot be parsed is fatal.
func getEnvAsIntWithDefault(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be an integer: %v", key, err)
	}
	return value
}

// getEnvAsFloatWithDefault retrieves a float environment variable, falling back to defaultValue when unset.
func getEnvAsFloatWithDefault(key string, defaultValue float64) float64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be a number: %v", key, err)
	}
	return value
}
