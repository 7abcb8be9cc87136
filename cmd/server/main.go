// cmd/server is the main entrypoint for a replicated KV store node.
//
// Configuration is entirely via flags so a single binary can serve any
// role in the cluster.
//
// Example — 3-node cluster:
//
//	./server --id node1 --addr :8080 \
//	         --peers node1=localhost:8080,node2=localhost:8081,node3=localhost:8082
//	./server --id node2 --addr :8081 \
//	         --peers node1=localhost:8080,node2=localhost:8081,node3=localhost:8082
//	./server --id node3 --addr :8082 \
//	         --peers node1=localhost:8080,node2=localhost:8081,node3=localhost:8082
//
// There is no durability: a restart resets the store and the vector clock
// to zero.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"distributed-kvstore/internal/api"
	"distributed-kvstore/internal/config"
	"distributed-kvstore/internal/engine"
	"distributed-kvstore/internal/transport"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	tport := transport.New(cfg.NodeID, cfg.Peers, log)
	eng := engine.New(cfg.NodeIDs(), cfg.NodeID, tport, log)
	defer eng.Stop()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(api.Logger(log), api.Recovery(log))

	handler := api.NewHandler(eng)
	handler.Register(router)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"node_id": cfg.NodeID,
			"addr":    cfg.Addr,
			"peers":   len(cfg.Peers) - 1,
		}).Info("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.WithField("node_id", cfg.NodeID).Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server shutdown error")
	}
}
