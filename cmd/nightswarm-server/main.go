package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/feralbyte/nightswarm-mp/network"
	"github.com/feralbyte/nightswarm-mp/server/core"
	"github.com/feralbyte/nightswarm-mp/shared/netconfig"
)

func main() {
	port := flag.Uint("port", netconfig.DefaultPort, "WebSocket listen port")
	tickRate := flag.Int("tickrate", netconfig.DefaultTickRate, "Simulation ticks per second")
	name := flag.String("name", "Nightswarm Server", "Session display name")
	version := flag.String("version", netconfig.ProtocolVersion, "Required client version (empty = accept any)")
	seed := flag.Uint("seed", 0, "Session seed (0 = random)")
	masterURL := flag.String("master", "", "Master server URL to advertise on (empty = unlisted)")
	address := flag.String("address", "", "Public address to advertise (required with -master)")
	region := flag.String("region", "", "Region label for the session list")
	verbose := flag.Bool("verbose", false, "Debug logging")
	flag.Parse()

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	log := logrus.NewEntry(logger)

	tr := network.NewWsHostTransport(log)
	server := core.New(core.Config{
		Name:     *name,
		Version:  *version,
		TickRate: *tickRate,
		Seed:     uint32(*seed),
		Log:      log,
	}, tr)

	var reg *core.Registration
	if *masterURL != "" {
		addr := *address
		if addr == "" {
			addr = fmt.Sprintf("ws://localhost:%d", *port)
			log.Warn("no -address given, advertising localhost")
		}
		reg = core.NewRegistration(*masterURL, *name, addr, *version, *region,
			netconfig.MaxPlayers, server)
		reg.Start()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down")
		if reg != nil {
			reg.Stop()
		}
		server.Stop()
		os.Exit(0)
	}()

	go server.Run()

	log.WithField("name", *name).
		WithField("port", *port).
		WithField("tickrate", *tickRate).
		WithField("seed", server.Session().SessionSeed()).
		Info("starting host")
	if err := tr.Listen(*port); err != nil {
		log.WithError(err).Fatal("listen failed")
	}
}
