package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ankitjha412/clone/internal/detector"
	"github.com/ankitjha412/clone/internal/lookup"
	"github.com/ankitjha412/clone/internal/reference"
	"github.com/ankitjha412/clone/internal/server"
)

func main() {
	listenAddr := flag.String("listen", envOr("CLONE_LISTEN", ":8080"), "HTTP listen address")
	domainsPath := flag.String("domains", envOr("CLONE_DOMAINS", "./domains.txt"), "path to the reference domain list")
	providerName := flag.String("provider", envOr("CLONE_PROVIDER", "whois"), "registration lookup provider (whois or rdap)")
	lookupTimeout := flag.Duration("lookup-timeout", envDurationOr("CLONE_LOOKUP_TIMEOUT", lookup.DefaultTimeout), "timeout per registration lookup")
	lookupTTL := flag.Duration("lookup-ttl", envDurationOr("CLONE_LOOKUP_TTL", 0), "expiry for cached lookups (0 keeps them for the process lifetime)")
	rateLimit := flag.Int("rate-limit", envIntOr("CLONE_RATE_LIMIT", 60), "per-IP requests per minute (0 disables)")
	warm := flag.Bool("warm", false, "pre-warm registration lookups for all reference domains at startup")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	f, err := os.Open(*domainsPath)
	if err != nil {
		log.Fatalf("Failed to open reference domain list: %v", err)
	}
	refs, err := reference.Load(f, logger)
	f.Close()
	if err != nil {
		log.Fatalf("Failed to load reference domain list: %v", err)
	}
	if refs.Len() == 0 {
		log.Printf("WARNING: reference domain list %s is empty; every verdict will score 0", *domainsPath)
	}

	var provider lookup.Provider
	switch *providerName {
	case "whois":
		provider = lookup.NewWHOISProvider()
	case "rdap":
		provider = lookup.NewRDAPProvider()
	default:
		log.Fatalf("Unknown lookup provider %q (want whois or rdap)", *providerName)
	}

	cache := lookup.NewCache(provider, *lookupTimeout, *lookupTTL, logger)
	engine := detector.New(refs, cache, logger)

	srv := server.NewServer(server.Config{
		ListenAddr:     *listenAddr,
		RequestsPerMin: *rateLimit,
	}, engine, refs, cache, logger)
	defer srv.Stop()

	if *warm {
		go func() {
			start := time.Now()
			if err := cache.Warm(ctx, refs.Domains()); err != nil {
				logger.Warn("cache warm-up aborted", "error", err)
				return
			}
			logger.Info("cache warm-up finished",
				"domains", refs.Len(),
				"duration_ms", time.Since(start).Milliseconds())
		}()
	}

	httpSrv := &http.Server{
		Addr:    *listenAddr,
		Handler: srv.Handler(),
	}

	go func() {
		log.Printf("Listening on %s (%d reference domains, %s lookups)",
			*listenAddr, refs.Len(), provider.Name())
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Shutdown error: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
