// Command sheets-auth runs the Google OAuth consent flow once and writes an
// authorized-user credentials file usable as GOOGLE_CREDENTIALS_FILE.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"finledger/internal/cli"
	"finledger/internal/log"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

const authTimeout = 5 * time.Minute

// authorizedUser is the credentials layout google.CredentialsFromJSON accepts
// for a user refresh token.
type authorizedUser struct {
	Type         string `json:"type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token"`
}

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentSheets)

	clientJSON, err := loadClientJSON()
	if err != nil {
		cli.Fatal(logger, "Missing OAuth client", err)
	}
	cfg, err := google.ConfigFromJSON(clientJSON, sheets.SpreadsheetsScope)
	if err != nil {
		cli.Fatal(logger, "Invalid OAuth client", err)
	}

	port := os.Getenv("OAUTH_REDIRECT_PORT")
	if port == "" {
		port = "8085"
	}
	cfg.RedirectURL = "http://localhost:" + port + "/callback"

	ctx, stop := cli.GracefulShutdown(logger)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	code, err := awaitCode(ctx, logger, cfg, ":"+port)
	if err != nil {
		cli.Fatal(logger, "Authorization failed", err)
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		cli.Fatal(logger, "Token exchange failed", err)
	}
	if tok.RefreshToken == "" {
		cli.Fatal(logger, "Token exchange failed", errors.New("no refresh token returned; revoke the app grant and retry"))
	}

	outFile := os.Getenv("GOOGLE_CREDENTIALS_FILE")
	if outFile == "" {
		outFile = "credentials.json"
	}
	if err := writeCredentials(outFile, authorizedUser{
		Type:         "authorized_user",
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RefreshToken: tok.RefreshToken,
	}); err != nil {
		cli.Fatal(logger, "Failed to save credentials", err)
	}
	logger.Info("Saved credentials", "path", outFile)
}

func loadClientJSON() ([]byte, error) {
	if v := os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"); v != "" {
		return []byte(v), nil
	}
	if path := os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read client file: %w", err)
		}
		return b, nil
	}
	return nil, errors.New("set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE")
}

// awaitCode serves the redirect URI until Google calls back with a code.
func awaitCode(ctx context.Context, logger *log.Logger, cfg *oauth2.Config, addr string) (string, error) {
	state := uuid.NewString()
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("error") != "":
			http.Error(w, "OAuth error: "+q.Get("error"), http.StatusBadRequest)
			errCh <- fmt.Errorf("consent denied: %s", q.Get("error"))
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
		default:
			fmt.Fprintln(w, "You may close this window and return to the terminal.")
			select {
			case codeCh <- q.Get("code"):
			default:
			}
		}
	})
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	defer cli.RunCleanup(logger, "callback server", time.Second, srv.Shutdown)

	fmt.Printf("Open this URL to authorize:\n%s\n", cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))

	select {
	case code := <-codeCh:
		return code, nil
	case err := <-errCh:
		return "", err
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for callback: %w", ctx.Err())
	}
}

func writeCredentials(path string, creds authorizedUser) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open credentials file: %w", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(creds)
}
