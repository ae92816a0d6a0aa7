package main

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/mlecomte/papote/internal/auth"
	"github.com/mlecomte/papote/internal/config"
	"github.com/mlecomte/papote/internal/email"
	"github.com/mlecomte/papote/internal/handlers"
	"github.com/mlecomte/papote/internal/middleware"
	"github.com/mlecomte/papote/internal/service"
	"github.com/mlecomte/papote/internal/store"
	"github.com/mlecomte/papote/internal/store/filestore"
	"github.com/mlecomte/papote/internal/store/sqlstore"
	"github.com/mlecomte/papote/internal/ws"
)

func main() {
	conf, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}

	logger := newLogger(conf)
	auth.SetSecret(conf.CookieSecret)

	var st store.Store
	switch conf.StoreDriver {
	case "file":
		st, err = filestore.New(conf.StorePath, logger)
	case "sqlite3", "postgres":
		st, err = sqlstore.New(conf.StoreDriver, conf.StoreDSN, logger)
	default:
		logger.Fatalf("unknown store driver %q", conf.StoreDriver)
	}
	if err != nil {
		logger.Fatalf("failed to open user store: %v", err)
	}

	mailer := email.NewSender(conf.SMTPHost, conf.SMTPPort, conf.SMTPUsername, conf.SMTPPassword, conf.SMTPFrom)
	svc := service.New(st, mailer, logger)

	hub := ws.NewHub(logger)
	go hub.Run()

	authHandler := &handlers.AuthHandler{Service: svc}
	userHandler := &handlers.UserHandler{Service: svc}
	chatHandler := &handlers.ChatHandler{Service: svc, Hub: hub}
	messageHandler := &handlers.MessageHandler{Service: svc, Hub: hub}

	r := mux.NewRouter()
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(conf.AllowedOrigin))

	// API Endpoints
	r.HandleFunc("/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/user/{email}", userHandler.GetUser).Methods("GET")
	r.HandleFunc("/user/{email}", userHandler.UpdateUser).Methods("PUT")
	r.HandleFunc("/chats", chatHandler.CreateChat).Methods("POST")
	r.HandleFunc("/groups", chatHandler.CreateGroup).Methods("POST")
	r.HandleFunc("/contacts/add-by-email", chatHandler.AddContact).Methods("POST")
	r.HandleFunc("/messages", messageHandler.SendMessage).Methods("POST")

	// CORS preflight requests must reach the middleware chain.
	r.PathPrefix("/").Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	// WebSocket Endpoint
	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(auth.CookieName)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		userEmail, err := auth.VerifyCookie(cookie.Value)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ws.ServeWs(hub, w, r, userEmail)
	})

	addr := fmt.Sprintf(":%d", conf.Port)
	logger.WithField("addr", addr).Info("starting papote backend")
	logger.Fatal(http.ListenAndServe(addr, r))
}

func newLogger(conf *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(conf.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if conf.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{})
	}
	return logger
}
