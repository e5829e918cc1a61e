package main

import (
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/CrazyMocks/ProjektZPraktycznychZastosowanRownanCiepla/config"
	"github.com/CrazyMocks/ProjektZPraktycznychZastosowanRownanCiepla/server"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func main() {
	upgrader.CheckOrigin = func(r *http.Request) bool {
		return true
	}
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		log.WithError(err).Warn("constants table not loaded, using built-in defaults")
		cfg = config.Default()
	}
	s := server.NewServer(":9000", upgrader, cfg)
	s.Serve()
}
