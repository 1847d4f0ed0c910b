// Command adminpass reads a password from stdin and prints the bcrypt hash
// for ADMIN_PASSWORD_HASH.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/example/tg-storefront/internal/auth"
)

func main() {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		log.WithError(err).Fatal("failed to read password")
	}

	hash, err := auth.HashPassword(strings.TrimRight(line, "\r\n"))
	if err != nil {
		log.WithError(err).Fatal("failed to hash password")
	}
	fmt.Println(hash)
}
