package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-admin-console/credentials"
	"github.com/jrsteele09/go-admin-console/format"
	"github.com/jrsteele09/go-admin-console/server"
	"github.com/jrsteele09/go-admin-console/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

type command func(args []string) error

var commands = map[string]command{
	"login":           loginCommand,
	"register":        registerCommand,
	"forgot-password": forgotPasswordCommand,
	"reset-password":  resetPasswordCommand,
	"logout":          logoutCommand,
	"whoami":          whoamiCommand,
	"serve":           serveCommand,
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: console %s [flags]\n\n%s", name, fs.FlagUsages())
	}
	return fs
}

func requireFlag(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("--%s is required", name)
	}
	return nil
}

func loginCommand(args []string) error {
	var email, password string
	fs := newFlagSet("login")
	fs.StringVarP(&email, "email", "e", "", "account email")
	fs.StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireFlag("email", email); err != nil {
		return err
	}
	password, err := passwordOrPrompt(password, "Password: ")
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.session.Login(ctx, email, password); err != nil {
		return err
	}
	printSignedIn(a.session.State())
	return nil
}

func registerCommand(args []string) error {
	var email, password, confirmation string
	fs := newFlagSet("register")
	fs.StringVarP(&email, "email", "e", "", "account email")
	fs.StringVarP(&password, "password", "p", "", "new password (prompted when omitted)")
	fs.StringVar(&confirmation, "password-confirmation", "", "repeat the password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireFlag("email", email); err != nil {
		return err
	}
	password, err := passwordOrPrompt(password, "Password: ")
	if err != nil {
		return err
	}
	confirmation, err = passwordOrPrompt(confirmation, "Confirm password: ")
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.session.Register(ctx, email, password, confirmation); err != nil {
		return err
	}
	printSignedIn(a.session.State())
	return nil
}

func forgotPasswordCommand(args []string) error {
	var email string
	fs := newFlagSet("forgot-password")
	fs.StringVarP(&email, "email", "e", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireFlag("email", email); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	msg, err := a.session.RequestPasswordResetLink(ctx, email)
	if err != nil {
		return errors.New(session.ExtractMessage(err))
	}
	if msg == "" {
		msg = "Reset link requested."
	}
	fmt.Println(msg)
	return nil
}

func resetPasswordCommand(args []string) error {
	var email, token, password, confirmation string
	fs := newFlagSet("reset-password")
	fs.StringVarP(&email, "email", "e", "", "account email")
	fs.StringVarP(&token, "token", "t", "", "reset token from the emailed link")
	fs.StringVarP(&password, "password", "p", "", "new password (prompted when omitted)")
	fs.StringVar(&confirmation, "password-confirmation", "", "repeat the password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireFlag("email", email); err != nil {
		return err
	}
	if err := requireFlag("token", token); err != nil {
		return err
	}
	password, err := passwordOrPrompt(password, "New password: ")
	if err != nil {
		return err
	}
	confirmation, err = passwordOrPrompt(confirmation, "Confirm password: ")
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	msg, err := a.session.ChangePassword(ctx, email, token, password, confirmation)
	if err != nil {
		return errors.New(session.ExtractMessage(err))
	}
	if msg == "" {
		msg = "Password changed."
	}
	fmt.Println(msg)
	return nil
}

func logoutCommand(args []string) error {
	fs := newFlagSet("logout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Println("Signed out.")
	return nil
}

func whoamiCommand(args []string) error {
	fs := newFlagSet("whoami")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.session.Bootstrap(ctx); err != nil {
		return err
	}
	st := a.session.State()
	switch st.Status() {
	case session.StatusAnonymous:
		fmt.Println("Not signed in.")
		return nil
	case session.StatusProfileUnknown:
		fmt.Println("Signed in, but the profile could not be loaded.")
	default:
		printSignedIn(st)
	}

	if claims, err := credentials.Inspect(st.Credentials); err == nil {
		fmt.Printf("Token subject: %s\n", claims.Subject)
		fmt.Printf("Token issued:  %s\n", format.DateTime(claims.IssuedAt))
		fmt.Printf("Token expires: %s\n", format.DateTime(claims.ExpiresAt))
		if claims.Expired(time.Now()) {
			fmt.Println("The token has expired; the backend will reject it.")
		}
	}
	return nil
}

func printSignedIn(st session.State) {
	if st.Profile == nil {
		fmt.Println("Signed in.")
		return
	}
	fmt.Printf("Signed in as %s", st.Profile.DisplayName())
	if email := st.Profile.Email(); email != "" {
		fmt.Printf(" <%s>", email)
	}
	fmt.Println()
	if roles := st.Profile.Roles(); len(roles) > 0 {
		fmt.Printf("Roles: %s\n", strings.Join(roles, ", "))
	}
}

func serveCommand(args []string) error {
	fs := newFlagSet("serve")
	port := fs.String("port", "", "listen port (defaults to PORT)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	displayAppname(a.config.GetAppName())

	console, err := server.New(a.config, a.session)
	if err != nil {
		return err
	}
	go func() {
		if err := a.session.Bootstrap(ctx); err != nil {
			log.Err(err).Msg("Session bootstrap failed")
		}
	}()

	addr := *port
	if addr == "" {
		addr = a.config.GetPort()
	}
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	srv := &http.Server{Addr: addr, Handler: console, ReadHeaderTimeout: 10 * time.Second}

	errs := make(chan error, 1)
	go func() {
		errs <- listenAndServe(srv)
	}()

	select {
	case err := <-errs:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(srv)
}

func listenAndServe(srv *http.Server) error {
	log.Info().Str("addr", srv.Addr).Msg("Console listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
