package util

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var environmentLogger = log.With().Str("logger_name", "util::environment").Logger()

type captureServerEnvironment struct {
	PersistMethod string
	RedisHost     string
	RedisPort     string
	RedisPW       string
	RedisDB       string
	PostgresHost  string
	PostgresPort  string
	PostgresDB    string
	PostgresUser  string
	PostgresPW    string
	RestPort      string
	LogLevel      string
}

// Env is a helper object for accessing environment variables.
var Env = &captureServerEnvironment{
	PersistMethod: "PERSIST_METHOD",
	RedisHost:     "REDIS_HOST",
	RedisPort:     "REDIS_PORT",
	RedisPW:       "REDIS_PW",
	RedisDB:       "REDIS_DB",
	PostgresHost:  "POSTGRES_HOST",
	PostgresPort:  "POSTGRES_PORT",
	PostgresDB:    "POSTGRES_DB",
	PostgresUser:  "POSTGRES_USER",
	PostgresPW:    "POSTGRES_PASSWORD",
	RestPort:      "REST_PORT",
	LogLevel:      "LOG_LEVEL",
}

func (c *captureServerEnvironment) GetPersistMethod() string {
	method := os.Getenv(c.PersistMethod)
	if method == "" {
		return "memory"
	}
	return method
}

func (c *captureServerEnvironment) GetRedisHost() string {
	host := os.Getenv(c.RedisHost)
	if host == "" {
		msg := fmt.Sprintf("%s is not defined", c.RedisHost)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return host
}

func (c *captureServerEnvironment) GetRedisPort() int {
	portStr := os.Getenv(c.RedisPort)
	if portStr == "" {
		msg := fmt.Sprintf("%s is not defined", c.RedisPort)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	portNum, err := strconv.Atoi(portStr)
	if err != nil {
		msg := fmt.Sprintf("Invalid Redis port %s", portStr)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return portNum
}

func (c *captureServerEnvironment) GetRedisPW() string {
	return os.Getenv(c.RedisPW)
}

func (c *captureServerEnvironment) GetRedisDB() int {
	dbStr := os.Getenv(c.RedisDB)
	if dbStr == "" {
		return 0
	}
	dbNum, err := strconv.Atoi(dbStr)
	if err != nil {
		msg := fmt.Sprintf("Invalid Redis db %s", dbStr)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return dbNum
}

func (c *captureServerEnvironment) GetPostgresHost() string {
	return os.Getenv(c.PostgresHost)
}

func (c *captureServerEnvironment) GetPostgresPort() int {
	portStr := os.Getenv(c.PostgresPort)
	if portStr == "" {
		return 5432
	}
	portNum, err := strconv.Atoi(portStr)
	if err != nil {
		msg := fmt.Sprintf("Invalid Postgres port %s", portStr)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return portNum
}

func (c *captureServerEnvironment) GetPostgresUser() string {
	return os.Getenv(c.PostgresUser)
}

func (c *captureServerEnvironment) GetPostgresPW() string {
	return os.Getenv(c.PostgresPW)
}

func (c *captureServerEnvironment) GetPostgresDB() string {
	db := os.Getenv(c.PostgresDB)
	if db == "" {
		return "hhcapture"
	}
	return db
}

func (c *captureServerEnvironment) GetRestPort() int {
	portStr := os.Getenv(c.RestPort)
	if portStr == "" {
		return 8080
	}
	portNum, err := strconv.Atoi(portStr)
	if err != nil {
		msg := fmt.Sprintf("Invalid REST port %s", portStr)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return portNum
}

func (c *captureServerEnvironment) GetZeroLogLogLevel() zerolog.Level {
	levelStr := strings.ToLower(os.Getenv(c.LogLevel))
	switch levelStr {
	case "":
		return zerolog.InfoLevel
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		environmentLogger.Warn().Msgf("Unknown log level %s. Using info", levelStr)
		return zerolog.InfoLevel
	}
}
