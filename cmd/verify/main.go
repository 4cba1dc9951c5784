// Command verify reads a notarized TLS session proof, verifies it against
// the notary named in the environment, and prints the verified data with
// non-disclosed bytes shown as 'X'.
package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"

	"tlsn-verify/notary"
	"tlsn-verify/proofverifier"
	"tlsn-verify/shared"
)

type verifyConfig struct {
	NotaryHost string
	NotaryPort int
	ProofFile  string
}

func loadConfig() verifyConfig {
	// .env is optional; plain environment variables work too
	_ = godotenv.Load()
	return verifyConfig{
		NotaryHost: shared.GetEnvOrDefault("NOTARY_HOST", "127.0.0.1"),
		NotaryPort: shared.GetEnvIntOrDefault("NOTARY_PORT", 7047),
		ProofFile:  shared.GetEnvOrDefault("PROOF_FILE", "simple_proof.json"),
	}
}

func main() {
	cfg := loadConfig()

	logger, err := shared.NewLoggerFromEnv("verify")
	if err != nil {
		log.Fatalf("cannot initialize logger: %v", err)
	}
	defer logger.Sync()

	report, err := proofverifier.Verify(context.Background(), proofverifier.Config{
		ProofPath:  cfg.ProofFile,
		NotaryHost: cfg.NotaryHost,
		NotaryPort: cfg.NotaryPort,
		Resolver:   notary.NewClient(logger.Logger),
		Logger:     logger,
	})
	if err != nil {
		log.Fatalf("verification failed: %v", err)
	}

	fmt.Println(strings.Repeat("-", 67))
	fmt.Printf("Successfully verified that the bytes below came from a session with %q at %s.\n",
		report.ServerName, report.Time)
	fmt.Println("Note that the bytes which the Prover chose not to disclose are shown as X.")
	fmt.Println()
	fmt.Println("Bytes sent:")
	fmt.Println()
	fmt.Println(string(report.Sent.Data()))
	fmt.Println()
	fmt.Println("Bytes received:")
	fmt.Println()
	fmt.Println(string(report.Recv.Data()))
	fmt.Println(strings.Repeat("-", 67))
}
