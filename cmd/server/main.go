package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/queryconsole/go-query-console/internal/config"
	"github.com/queryconsole/go-query-console/oauth"
	"github.com/queryconsole/go-query-console/provision"
	"github.com/queryconsole/go-query-console/server"
	"github.com/queryconsole/go-query-console/session"
	"github.com/queryconsole/go-query-console/warehouse"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		log.Fatalf("Error: %s\n", err)
	}
}

func rootCommand() *cobra.Command {
	settings := config.DefaultSettings()

	root := &cobra.Command{
		Use:          settings.AppName,
		Short:        "Web demo of the OAuth Authorization Code flow with PKCE: log in with your own identity, then run SQL against a warehouse",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(settings)
		},
	}

	root.PersistentFlags().StringVar(&settings.Host, "host", settings.Host, "workspace URL, e.g. https://my-workspace.example.com")
	root.PersistentFlags().IntVar(&settings.Port, "port", settings.Port, "local port to listen on; part of the registered redirect URL")
	root.Flags().StringVar(&settings.ClientID, "client-id", settings.ClientID, "OAuth application client ID")
	root.Flags().StringVar(&settings.ClientSecret, "client-secret", settings.ClientSecret, "OAuth application client secret")
	root.Flags().StringVar(&settings.WarehouseID, "warehouse-id", settings.WarehouseID, "SQL warehouse to execute statements on")
	root.PersistentFlags().StringVar(&settings.Profile, "profile", "DEFAULT", "account profile name used when registering an OAuth application")

	root.AddCommand(registerCommand(&settings))
	return root
}

func runServe(settings config.Settings) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	if err := settings.Validate(); err != nil {
		return err
	}
	c := config.New(settings)
	displayAppname(c.GetAppName())

	oauthClient, err := oauth.NewClient(context.Background(), oauth.Config{
		Host:         c.GetHost(),
		ClientID:     c.GetClientID(),
		ClientSecret: c.GetClientSecret(),
		RedirectURL:  c.GetRedirectURL(),
		Scopes:       c.GetScopes(),
	})
	if err != nil {
		return fmt.Errorf("oauth.NewClient: %w", err)
	}

	signer, err := session.NewSigner()
	if err != nil {
		return fmt.Errorf("session.NewSigner: %w", err)
	}

	srv, err := server.New(c, oauthClient, session.NewInMemoryRepo(), signer, warehouse.New(c.GetHost(), c.GetWarehouseID()))
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	go listenAndServe(httpServer)
	log.Printf("Open http://localhost%s in your browser to go through the SSO flow\n", c.GetPort())
	waitForStopSignal()
	return shutdown(httpServer)
}

// registerCommand is the one-time provisioning tool: it registers a
// confidential OAuth application whose redirect URL points at this app's
// callback, and prints the issued credentials so a later run can reuse them
// with --client-id/--client-secret.
func registerCommand(settings *config.Settings) *cobra.Command {
	var accountHost, accountID string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register an OAuth application for this demo and print its client credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if accountHost == "" || accountID == "" {
				return errors.New("--account-host and --account-id are required")
			}

			username, password, err := promptAccountCredentials(settings.Profile)
			if err != nil {
				return err
			}

			registrar := provision.NewRegistrar(accountHost, accountID)
			redirectURL := fmt.Sprintf("http://localhost:%d/callback", settings.Port)
			reg, err := registrar.RegisterCustomApp(cmd.Context(), username, password, settings.AppName, []string{redirectURL})
			if err != nil {
				return err
			}

			fmt.Printf("Registered OAuth application %q\n", settings.AppName)
			fmt.Printf("  client_id:     %s\n", reg.ClientID)
			fmt.Printf("  client_secret: %s\n", reg.ClientSecret)
			fmt.Println("Restart with --client-id and --client-secret to use it.")
			return nil
		},
	}

	cmd.Flags().StringVar(&accountHost, "account-host", "", "account console URL")
	cmd.Flags().StringVar(&accountID, "account-id", "", "account ID to register the application under")
	return cmd
}

func promptAccountCredentials(profile string) (username, password string, err error) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Printf("Account username for profile %q: ", profile)
	username, err = reader.ReadString('\n')
	if err != nil {
		return "", "", fmt.Errorf("read username: %w", err)
	}

	fmt.Print("Account password: ")
	password, err = reader.ReadString('\n')
	if err != nil {
		return "", "", fmt.Errorf("read password: %w", err)
	}

	return strings.TrimSpace(username), strings.TrimSpace(password), nil
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
