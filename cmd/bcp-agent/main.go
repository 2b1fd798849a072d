// Command bcp-agent runs one link agent against a radio device, seeking or
// advertising a connection and then relaying whatever the wired message
// pipe produces.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/bcp/internal/agent"
	"github.com/danmuck/bcp/internal/agentconfig"
	"github.com/danmuck/bcp/internal/agentmetrics"
	"github.com/danmuck/bcp/internal/agentops"
	"github.com/danmuck/bcp/internal/bcplog"
	"github.com/danmuck/bcp/internal/pipe"
	"github.com/danmuck/bcp/internal/radio"
	"github.com/danmuck/bcp/internal/radio/radiotest"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [-config path] <ID> <ACTION>; ACTION 0 to seek, 1 to advertise\n", os.Args[0])
}

func main() {
	configPath := flag.String("config", "", "path to a bcp-agent TOML config file")
	adminAddr := flag.String("admin", "", "override the admin HTTP listen address")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		usage()
		os.Exit(1)
	}

	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		log.Fatalf("bad ID %q: %v", args[0], err)
	}
	advertise, err := strconv.ParseBool(args[1])
	if err != nil {
		log.Fatalf("bad ACTION %q: %v", args[1], err)
	}

	logger := bcplog.ConfigureRuntime()

	loaded := agentconfig.Loaded{
		Address:   uint32(id),
		AdminAddr: ":8080",
		Agent:     agent.DefaultConfig(),
	}
	if *configPath != "" {
		fromFile, err := agentconfig.Load(*configPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
		loaded = fromFile
	}
	if *adminAddr != "" {
		loaded.AdminAddr = *adminAddr
	}

	r := newRadio(loaded.Device, logger)
	mpipe := pipe.New(pingMessageSource(), loggingMessageSink(logger))

	a := agent.New(uint32(id), r, mpipe, loaded.Agent, logger)
	if advertise {
		a.SetGoal(agent.GoalAdvertiseConnection)
	} else {
		a.SetGoal(agent.GoalSeekConnection)
	}

	agentmetrics.Register()
	srv := agentops.New(a, loaded.CORS, logger)
	go func() {
		if err := srv.Run(loaded.AdminAddr); err != nil {
			logger.Error().Err(err).Msg("admin server exited")
		}
	}()

	logger.Info().Uint32("address", a.Address()).Str("goal", a.Goal().String()).Msg("agent starting")
	for {
		a.ExecuteAgentAction()
	}
}

// newRadio resolves a device path to a transceiver. A real SX1276 binding
// is an opaque external collaborator outside this module's scope; any
// device string falls back to a self-looped radio so the binary still
// produces observable behavior without hardware attached.
func newRadio(device string, logger zerolog.Logger) radio.Interface {
	logger.Warn().Str("device", device).Msg("no hardware radio binding in this build; looping locally")
	return radiotest.NewLocalRadio(50 * time.Millisecond)
}

func pingMessageSource() pipe.GetMessageFunc {
	next := 0
	return func() []byte {
		msg := fmt.Sprintf("ping %d", next)
		next++
		return []byte(msg)
	}
}

func loggingMessageSink(logger zerolog.Logger) pipe.ReceiveMessageFunc {
	return func(payload []byte) {
		logger.Info().Str("payload", string(payload)).Msg("message received")
	}
}
