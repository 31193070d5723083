package main

import (
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/feralbyte/nightswarm-mp/master"
)

func main() {
	port := flag.Int("port", 8080, "HTTP listen port")
	ttl := flag.Duration("ttl", 90*time.Second, "Session TTL before expiry")
	flag.Parse()

	log := logrus.NewEntry(logrus.New())

	reg := master.NewRegistry(*ttl, log)
	defer reg.Stop()

	addr := fmt.Sprintf(":%d", *port)
	log.WithField("addr", addr).WithField("ttl", *ttl).Info("session list starting")
	if err := http.ListenAndServe(addr, master.NewMux(reg, log)); err != nil {
		log.WithError(err).Fatal("listen failed")
	}
}
