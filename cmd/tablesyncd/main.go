// Command tablesyncd runs a tablesync coordinator as a standalone daemon,
// optionally exposing it over gRPC. It plays the same role as the
// teacher's cmd/server/main.go: a thin flag/config-driven wrapper around
// the library, with no business logic of its own.
package main

import (
	"flag"
	"log"
	"net"
	"os"

	"google.golang.org/grpc"

	"github.com/open-collab/tablesync/internal/config"
	"github.com/open-collab/tablesync/internal/coordinator"
	grpctransport "github.com/open-collab/tablesync/transport/grpc"
)

var (
	flagConfig = flag.String("config", "", "path to a YAML coordinator config (optional; flags below override it)")
	flagDelay  = flag.String("delay", "", "pending-queue drain period, e.g. 2s, overriding the config file's delay (empty: defer to config, or immediate-processing mode if it's also empty)")
	flagGRPC   = flag.String("grpc", "", "gRPC listen address, overriding the config file's grpc_addr (empty: defer to config, or disable if it's also empty)")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	if *flagConfig != "" {
		loaded, err := config.Load(*flagConfig)
		if err != nil {
			log.Fatalf("tablesyncd: %v", err)
		}
		cfg = loaded
	}
	if *flagDelay != "" {
		cfg.Delay = *flagDelay
	}
	if *flagGRPC != "" {
		cfg.GRPCAddr = *flagGRPC
	}

	delay, err := cfg.DrainDelay()
	if err != nil {
		log.Fatalf("tablesyncd: %v", err)
	}

	logger := log.New(os.Stderr, "tablesyncd: ", log.LstdFlags)
	coord := coordinator.New(delay, logger)
	if err := coord.Start(); err != nil {
		log.Fatalf("tablesyncd: starting scheduler: %v", err)
	}
	defer coord.Stop()

	if cfg.GRPCAddr == "" {
		select {}
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("tablesyncd: gRPC listen: %v", err)
	}
	gs := grpc.NewServer()
	grpctransport.RegisterTableSyncServer(gs, grpctransport.NewServer(coord, logger))
	logger.Printf("gRPC listening on %s", cfg.GRPCAddr)
	if err := gs.Serve(lis); err != nil {
		log.Fatalf("tablesyncd: gRPC serve: %v", err)
	}
}
