// Package main - Entry point for the solarwise calculator server
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"

	"solarwise/internal/app"
	"solarwise/internal/config"
	"solarwise/internal/logging"
)

func main() {
	addr := flag.String("addr", "", "Server address (default server.addr from config)")
	cfgPath := flag.String("config", config.DefaultPath(), "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		log.Fatal(err)
	}
	defer logging.Sync()

	a, err := app.New(context.Background(), cfg, logging.Named("server"))
	if err != nil {
		log.Fatal(err)
	}
	defer a.Close()

	// Create API server
	apiServer, err := a.Server()
	if err != nil {
		log.Fatal(err)
	}

	// Create main mux
	mux := http.NewServeMux()

	// API routes
	mux.Handle("/api/", http.StripPrefix("/api", apiServer))

	listen := *addr
	if listen == "" {
		listen = cfg.Server.Addr
	}
	fmt.Printf("solarwise calculator server v%s\n", app.Version)
	fmt.Printf("   API: http://localhost%s/api\n", listen)
	fmt.Printf("   Schedules: %d loaded\n", len(a.Registry.Schedules()))
	fmt.Println()

	if err := http.ListenAndServe(listen, mux); err != nil {
		log.Fatal(err)
	}
}
