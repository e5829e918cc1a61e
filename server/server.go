package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/CrazyMocks/ProjektZPraktycznychZastosowanRownanCiepla/config"
	"github.com/CrazyMocks/ProjektZPraktycznychZastosowanRownanCiepla/model"
)

type Server struct {
	addr     string
	upgrader websocket.Upgrader
	cfg      *config.Config
}

func NewServer(addr string, upgrader websocket.Upgrader, cfg *config.Config) *Server {
	return &Server{
		addr:     addr,
		upgrader: upgrader,
		cfg:      cfg,
	}
}

// serveWs handles websocket requests from the peer. Each connection gets its
// own hub and its own simulation session.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Error("upgrade failed")
		return
	}
	defer conn.Close()
	hub := NewHub(s.cfg)
	hub.conn = conn
	defer hub.close()
	go hub.handleRequest()
	go hub.handleResponse()
	for {
		var msg model.Msg
		if err := conn.ReadJSON(&msg); err != nil {
			log.WithError(err).Info("connection closed")
			return
		}
		hub.msg <- msg
	}
}

func (s *Server) Serve() {
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		s.serveWs(w, r)
	})
	log.WithField("addr", s.addr).Info("listening")
	if err := http.ListenAndServe(s.addr, nil); err != nil {
		log.WithError(err).Fatal("ListenAndServe")
	}
}
