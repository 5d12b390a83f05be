// Command hashpass prints an argon2id hash for seeding usuarios.password_hash.
//
//	go run ./cmd/hashpass -password admin123
//	echo -n admin123 | go run ./cmd/hashpass
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/medsupply/cotizaciones-api/pkg/config"
	"github.com/medsupply/cotizaciones-api/pkg/logger"
	"github.com/medsupply/cotizaciones-api/pkg/security"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "hashpass"})
	ctx := context.Background()

	_ = godotenv.Load()

	password := flag.String("password", "", "plain password (read from stdin when empty)")
	flag.Parse()

	plain := *password
	if plain == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			logg.Error(ctx, "no password provided", err)
			os.Exit(1)
		}
		plain = strings.TrimRight(line, "\r\n")
	}

	cfg, err := config.LoadPassword()
	if err != nil {
		logg.Error(ctx, "failed to load password config", err)
		os.Exit(1)
	}

	hash, err := security.HashPassword(plain, cfg)
	if err != nil {
		logg.Error(ctx, "failed to hash password", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
