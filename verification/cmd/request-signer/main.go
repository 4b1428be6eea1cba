package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stackpop/mocktioneer/verification"
)

// plainTextFormatter writes the bare message without timestamps or levels,
// appropriate for CLI output
type plainTextFormatter struct{}

func (plainTextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return []byte(entry.Message + "\n"), nil
}

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(plainTextFormatter{})
	return l
}

func main() {
	// Define CLI flags
	var (
		keygen     = flag.Bool("keygen", false, "Generate an Ed25519 key pair and print its key set")
		kid        = flag.String("kid", "mocktioneer-dev", "Key id for -keygen and -sign")
		seedInput  = flag.String("seed", "", "Private key seed, base64url (required for -sign)")
		requestID  = flag.String("request-id", "", "Request id to sign or verify")
		signature  = flag.String("signature", "", "Signature to verify, base64url")
		jwksInput  = flag.String("jwks", "", "Key set for -verify (file path or inline JSON)")
		domain     = flag.String("domain", "", "Fetch the key set from this domain for -verify instead of -jwks")
		sign       = flag.Bool("sign", false, "Sign -request-id and print the ext.trusted_server block")
		verify     = flag.Bool("verify", false, "Verify -signature over -request-id")
		outputJSON = flag.Bool("json", false, "Print results as JSON")
		help       = flag.Bool("help", false, "Show usage information")
	)

	flag.Parse()

	if *help {
		showUsage()
		os.Exit(0)
	}

	switch {
	case *keygen:
		if err := runKeygen(*kid); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating key: %v\n", err)
			os.Exit(2)
		}
	case *sign:
		if *seedInput == "" || *requestID == "" {
			showUsage()
			fmt.Fprintf(os.Stderr, "\nError: -sign requires -seed and -request-id\n")
			os.Exit(1)
		}
		if err := runSign(*seedInput, *kid, *requestID); err != nil {
			fmt.Fprintf(os.Stderr, "Error signing: %v\n", err)
			os.Exit(2)
		}
	case *verify:
		if *requestID == "" || *signature == "" || (*jwksInput == "" && *domain == "") {
			showUsage()
			fmt.Fprintf(os.Stderr, "\nError: -verify requires -request-id, -signature and one of -jwks or -domain\n")
			os.Exit(1)
		}
		outcome, err := runVerify(*jwksInput, *domain, *kid, *requestID, *signature)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading key set: %v\n", err)
			os.Exit(2)
		}
		printOutcome(outcome, *outputJSON)
		if !outcome.IsVerified() {
			os.Exit(1)
		}
	default:
		showUsage()
		os.Exit(1)
	}
	os.Exit(0)
}

func showUsage() {
	fmt.Println("Mocktioneer Request Signer")
	fmt.Println()
	fmt.Println("Generates Ed25519 keys, signs request ids and verifies signatures the way")
	fmt.Println("the exchange does for ext.trusted_server.")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  request-signer -keygen [-kid <kid>]")
	fmt.Println("  request-signer -sign -seed <seed> -request-id <id> [-kid <kid>]")
	fmt.Println("  request-signer -verify -request-id <id> -signature <sig> -kid <kid> (-jwks <json> | -domain <host>)")
	fmt.Println()
	fmt.Println("Serve the printed key set at http://<domain>/.well-known/ts.jwks.json")
	fmt.Println("to have the exchange verify requests signed with the matching seed.")
	fmt.Println()
	fmt.Println("Exit Codes:")
	fmt.Println("  0 - Success")
	fmt.Println("  1 - Verification failed or missing flags")
	fmt.Println("  2 - Invalid input or runtime error")
}

func runKeygen(kid string) error {
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return err
	}

	keySet := verification.KeySet{Keys: []verification.JWK{{
		KeyID: kid,
		X:     verification.EncodeRawURL(public),
		KTY:   "OKP",
		CRV:   "Ed25519",
		ALG:   "EdDSA",
		Use:   "sig",
	}}}
	data, err := json.MarshalIndent(keySet, "", "  ")
	if err != nil {
		return err
	}

	logger.Info(string(data))
	logger.Infof("seed: %s", verification.EncodeRawURL(private.Seed()))
	return nil
}

func runSign(seedInput, kid, requestID string) error {
	seed, err := verification.RawURLBase64(seedInput).Decode()
	if err != nil {
		return fmt.Errorf("decode seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}

	private := ed25519.NewKeyFromSeed(seed)
	block := map[string]any{
		"trusted_server": map[string]string{
			"signature": verification.EncodeRawURL(ed25519.Sign(private, []byte(requestID))).String(),
			"kid":       kid,
		},
	}
	data, err := json.MarshalIndent(block, "", "  ")
	if err != nil {
		return err
	}
	logger.Info(string(data))
	return nil
}

// staticKeySet serves one parsed key set for any domain.
type staticKeySet struct {
	keySet *verification.KeySet
}

func (s staticKeySet) Get(_ context.Context, _ string) (*verification.KeySet, error) {
	return s.keySet, nil
}

func runVerify(jwksInput, domain, kid, requestID, signature string) (verification.SignatureOutcome, error) {
	var source verification.KeySetSource
	if jwksInput != "" {
		keySet, err := verification.ParseKeySet(readJSONInput(jwksInput))
		if err != nil {
			return verification.SignatureOutcome{}, err
		}
		source = staticKeySet{keySet: keySet}
		if domain == "" {
			domain = "local"
		}
	} else {
		source = verification.NewKeySetCache(verification.NewHTTPFetcher(5 * time.Second))
	}

	ext, err := json.Marshal(map[string]any{
		"trusted_server": map[string]string{"signature": signature, "kid": kid},
	})
	if err != nil {
		return verification.SignatureOutcome{}, err
	}

	verifier := verification.NewVerifier(source)
	return verifier.VerifySignature(context.Background(), requestID, ext, domain), nil
}

func readJSONInput(input string) []byte {
	// Try reading as file first
	if data, err := os.ReadFile(input); err == nil {
		return data
	}
	// Treat as inline JSON
	return []byte(input)
}

func printOutcome(outcome verification.SignatureOutcome, asJSON bool) {
	if asJSON {
		data, err := json.MarshalIndent(outcome, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
			os.Exit(2)
		}
		logger.Info(string(data))
		return
	}

	logger.Infof("Status: %s", outcome.Status)
	if outcome.KeyID != "" {
		logger.Infof("Key ID: %s", outcome.KeyID)
	}
	if outcome.Reason != "" {
		logger.Infof("Reason: %s", outcome.Reason)
	}
	if outcome.IsVerified() {
		logger.Info("VERIFICATION: ✓ PASSED")
	} else {
		logger.Info("VERIFICATION: ✗ FAILED")
	}
}
