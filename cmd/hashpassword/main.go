// Command hashpassword prints a bcrypt hash for seeding console users.
// The password is read from the first argument or, when absent, from
// the first line of stdin.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fleetflow/console/internal/auth"
	"github.com/fleetflow/console/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var password string
	if len(os.Args) > 1 {
		password = os.Args[1]
	} else {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			log.Fatalf("read password: %v", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	hash, err := auth.HashPassword(password, cfg.Auth.BcryptCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	fmt.Println(hash)
}
