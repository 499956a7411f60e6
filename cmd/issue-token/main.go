package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/stemsi/exstem-insights/internal/config"
	"github.com/stemsi/exstem-insights/internal/service"
)

func main() {
	var (
		subject string
		ttl     time.Duration
	)
	flag.StringVar(&subject, "sub", "", "Subject recorded in the token (e.g. dashboard name)")
	flag.DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	if subject == "" {
		fmt.Fprintln(os.Stderr, "Usage: issue-token -sub <subject> [-ttl 24h]")
		os.Exit(2)
	}

	cfg := config.Load()
	token, err := service.NewAuthService(cfg.JWTSecret, ttl).GenerateToken(subject)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
