package core

import (
	"time"
)

// GameLoop drives the server at a fixed tick rate.
type GameLoop struct {
	server   *Server
	tickRate int
	stopChan chan struct{}
}

func NewGameLoop(server *Server, tickRate int) *GameLoop {
	return &GameLoop{
		server:   server,
		tickRate: tickRate,
		stopChan: make(chan struct{}),
	}
}

func (g *GameLoop) Run() {
	ticker := time.NewTicker(time.Second / time.Duration(g.tickRate))
	defer ticker.Stop()

	dt := 1.0 / float64(g.tickRate)
	g.server.log.WithField("tickrate", g.tickRate).Info("game loop started")

	for {
		select {
		case <-g.stopChan:
			g.server.log.Info("game loop stopped")
			return
		case <-ticker.C:
			g.server.Tick(dt)
		}
	}
}

func (g *GameLoop) Stop() {
	close(g.stopChan)
}
