package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/KillerEXXD/hhcapture-sub002/archive"
	"github.com/KillerEXXD/hhcapture-sub002/handscript"
	"github.com/KillerEXXD/hhcapture-sub002/logging"
	"github.com/KillerEXXD/hhcapture-sub002/persist"
	"github.com/KillerEXXD/hhcapture-sub002/rest"
	"github.com/KillerEXXD/hhcapture-sub002/session"
	"github.com/KillerEXXD/hhcapture-sub002/util"
	"github.com/KillerEXXD/hhcapture-sub002/util/random"
)

var runServer *bool
var runScriptTests *bool
var handScriptsFileOrDir *string
var mainLogger = logging.GetZeroLogger("main::main", nil)

func init() {
	runServer = flag.Bool("server", true, "runs the capture server")
	runScriptTests = flag.Bool("script-tests", false, "runs hand script tests")
	handScriptsFileOrDir = flag.String("hand-scripts", "handscript/test_scripts", "runs tests with hand script files")
}

func main() {
	rand.Seed(random.NewSeed())

	err := run()
	if err != nil {
		mainLogger.Error().Msg(err.Error())
		os.Exit(1)
	}
}

func run() error {
	logLevel := util.Env.GetZeroLogLogLevel()
	fmt.Printf("Setting log level to %s\n", logLevel)
	zerolog.SetGlobalLevel(logLevel)
	flag.Parse()

	if *runScriptTests {
		return testScripts()
	}
	if !*runServer {
		return nil
	}

	tracker, err := createTracker()
	if err != nil {
		return errors.Wrap(err, "Error while creating the session state tracker")
	}

	var handStore *archive.HandStore
	if util.Env.GetPostgresHost() != "" {
		handStore, err = archive.NewHandStore()
		if err != nil {
			return errors.Wrap(err, "Error while connecting to the hand archive")
		}
		mainLogger.Info().Msg("Hand archival is enabled")
	} else {
		mainLogger.Warn().Msg("POSTGRES_HOST is not set. Finished hands will not be archived.")
	}

	manager, err := session.NewManager(tracker, handStore)
	if err != nil {
		return errors.Wrap(err, "Error while creating the session manager")
	}

	port := util.Env.GetRestPort()
	mainLogger.Info().Msgf("Running the capture server on port %d", port)
	return rest.RunRestServer(manager, port)
}

func createTracker() (persist.SessionStateTracker, error) {
	method := util.Env.GetPersistMethod()
	switch method {
	case "memory":
		return persist.NewMemorySessionTracker(), nil
	case "redis":
		redisURL := fmt.Sprintf("%s:%d", util.Env.GetRedisHost(), util.Env.GetRedisPort())
		mainLogger.Info().Msgf("Using Redis at %s for session state", redisURL)
		return persist.NewRedisSessionTracker(redisURL, util.Env.GetRedisPW(), util.Env.GetRedisDB()), nil
	default:
		return nil, fmt.Errorf("Unknown PERSIST_METHOD [%s]", method)
	}
}

func testScripts() error {
	info, err := os.Stat(*handScriptsFileOrDir)
	if err != nil {
		return errors.Wrapf(err, "Unable to read %s", *handScriptsFileOrDir)
	}
	if info.IsDir() {
		return handscript.RunDir(*handScriptsFileOrDir)
	}
	script, err := handscript.ReadScript(*handScriptsFileOrDir)
	if err != nil {
		return err
	}
	return handscript.Run(script)
}
