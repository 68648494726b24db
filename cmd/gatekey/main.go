// Command gatekey generates the kiosk credentials: the bearer token the UI
// presents to the local API and the HMAC secret used to sign attendance
// submissions to the HR backend.
package main

import (
	"fmt"
	"os"

	"github.com/veridesk/facegate/internal/domain"
)

func main() {
	token, err := domain.GenerateToken(domain.KioskTokenPrefix)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	secret, err := domain.GenerateToken(domain.SigningSecretPrefix)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	fmt.Printf("KIOSK_TOKEN=%s\nSIGNING_SECRET=%s\n", token, secret)
}
