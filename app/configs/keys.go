package configs

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/gorilla/securecookie"
)

const keysFile = ".env.new_keys"

// GenerateJWTSecret returns a fresh base64 encoded 64 byte signing secret.
func GenerateJWTSecret() (string, error) {
	key := securecookie.GenerateRandomKey(64)
	if key == nil {
		return "", fmt.Errorf("could not generate signing key")
	}
	return base64.URLEncoding.EncodeToString(key), nil
}

func GenerateAndPrintKeys() error {
	secret, err := GenerateJWTSecret()
	if err != nil {
		return err
	}

	fmt.Println("================================================")
	fmt.Printf("JWT_SECRET=%s\n", secret)
	fmt.Println("================================================")

	file, err := os.Create(keysFile)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", keysFile, err)
	}
	defer file.Close()

	if _, err := fmt.Fprintf(file, "JWT_SECRET=%s\n", secret); err != nil {
		return fmt.Errorf("failed to write keys to file %s: %w", keysFile, err)
	}

	fmt.Printf("Keys have been written to '%s'. Copy them into your .env file.\n", keysFile)
	fmt.Println("Regenerating the secret invalidates every issued bearer token.")
	return nil
}
