package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/teemow/workspace-tasks/internal/google"
)

const (
	// oauthCallbackTimeout bounds how long login waits for the browser.
	oauthCallbackTimeout = 5 * time.Minute

	tokenExchangeTimeout = 30 * time.Second

	callbackPath = "/callback"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored Google OAuth token",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var (
		flags        googleFlags
		manual       bool
		callbackAddr string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize access to Google Tasks and store the token",
		Long: `Open the printed URL in a browser and grant access to Google Tasks.

By default a local callback server on 127.0.0.1 receives the authorization
code. With --manual the code, or the full URL the browser was redirected to,
is read from stdin instead. This works when the browser runs on another
machine.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, err := flags.newAuthManager(nil, slog.Default())
			if err != nil {
				return err
			}
			return runAuthLogin(cmd.Context(), auth, manual, callbackAddr, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags.addFlags(cmd)
	cmd.Flags().BoolVar(&manual, "manual", false, "Read the authorization code from stdin instead of running a callback server")
	cmd.Flags().StringVar(&callbackAddr, "callback-addr", "127.0.0.1:0", "Listen address of the local callback server")

	return cmd
}

func runAuthLogin(ctx context.Context, auth *google.AuthManager, manual bool, callbackAddr string, in io.Reader, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	listener, err := net.Listen("tcp", callbackAddr)
	if err != nil {
		return fmt.Errorf("could not bind local port for OAuth callback: %w", err)
	}
	defer listener.Close()

	redirectURL := fmt.Sprintf("http://%s%s", listener.Addr().String(), callbackPath)
	state, err := google.NewState()
	if err != nil {
		return err
	}
	verifier := oauth2.GenerateVerifier()

	fmt.Fprintln(errOut, "Open this URL in your browser:")
	fmt.Fprintln(errOut, auth.AuthURL(redirectURL, state, verifier))

	var code string
	if manual {
		// The redirect target only has to look valid to Google.
		_ = listener.Close()
		fmt.Fprint(errOut, "\nPaste the authorization code or the URL you were redirected to: ")
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read authorization code: %w", err)
		}
		code, err = google.ParseAuthorizationInput(line, state)
		if err != nil {
			return err
		}
	} else {
		waitCtx, cancel := context.WithTimeout(ctx, oauthCallbackTimeout)
		defer cancel()
		code, err = waitForCallback(waitCtx, listener, state)
		if err != nil {
			return err
		}
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, tokenExchangeTimeout)
	defer cancel()
	if err := auth.Exchange(exchangeCtx, redirectURL, code, verifier); err != nil {
		return err
	}

	fmt.Fprintf(out, "Token for account %s stored in %s\n", auth.Account(), auth.TokenPath())
	return nil
}

// callbackHandler delivers the first valid authorization code, or the first
// error reported by Google, on the returned channels. Other malformed
// requests get a 400 and login keeps waiting.
func callbackHandler(state string) (http.Handler, <-chan string, <-chan error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		code, err := google.CodeFromQuery(q, state)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			if q.Has("error") {
				select {
				case errCh <- err:
				default:
				}
			}
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><h1>Authentication successful</h1><p>You may close this window.</p></body></html>")
		select {
		case codeCh <- code:
		default:
		}
	})

	return mux, codeCh, errCh
}

func waitForCallback(ctx context.Context, listener net.Listener, state string) (string, error) {
	handler, codeCh, errCh := callbackHandler(state)

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	select {
	case code := <-codeCh:
		return code, nil
	case err := <-errCh:
		return "", err
	case err := <-serveErr:
		return "", fmt.Errorf("callback server failed: %w", err)
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", errors.New("OAuth callback timed out")
		}
		return "", errors.New("login cancelled")
	}
}

func newAuthStatusCmd() *cobra.Command {
	var flags googleFlags

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether a token is stored for the account",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.applyEnv()
			return runAuthStatus(flags, cmd.OutOrStdout())
		},
	}
	flags.addFlags(cmd)
	return cmd
}

func runAuthStatus(flags googleFlags, out io.Writer) error {
	store, account, err := tokenStore(flags)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Account:    %s\n", account)
	fmt.Fprintf(out, "Token file: %s\n", store.Path(account))

	token, err := store.Load(account)
	if errors.Is(err, google.ErrNoToken) {
		fmt.Fprintln(out, "Status:     not logged in")
		fmt.Fprintf(out, "\nRun 'workspace-tasks auth login --account %s' to authorize.\n", account)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Status:     logged in")
	if !token.Expiry.IsZero() {
		fmt.Fprintf(out, "Expiry:     %s\n", token.Expiry.Format(time.RFC3339))
	}
	fmt.Fprintf(out, "Refresh:    %t\n", token.RefreshToken != "")
	return nil
}

func newAuthLogoutCmd() *cobra.Command {
	var flags googleFlags

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Delete the stored token of the account",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.applyEnv()
			store, account, err := tokenStore(flags)
			if err != nil {
				return err
			}
			if err := store.Delete(account); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token for account %s removed\n", account)
			return nil
		},
	}
	flags.addFlags(cmd)
	return cmd
}

// tokenStore opens the store without requiring OAuth client credentials.
func tokenStore(flags googleFlags) (*google.FileTokenStore, string, error) {
	store, err := google.NewFileTokenStore(flags.tokenDir)
	if err != nil {
		return nil, "", err
	}
	account := flags.account
	if account == "" {
		account = google.DefaultAccount
	}
	return store, account, nil
}
