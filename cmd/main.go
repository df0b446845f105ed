package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"clubauth/internal/cache"
	"clubauth/internal/config"
	"clubauth/internal/logger"
	"clubauth/internal/models"
	"clubauth/internal/repository"
	repodb "clubauth/internal/repository/db"
	"clubauth/internal/security"
	"clubauth/internal/service"
)

// app bundles everything the commands need once the stores are up.
type app struct {
	log      *logger.Logger
	db       *sql.DB
	rdb      *redis.Client
	services *service.Service
	security *security.Manager
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "clubauth",
		Short:         "User registration and session management for the community site",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	root.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newCheckUsernameCmd(a),
		newCheckEmailCmd(a),
	)
	return root
}

// init wires config -> logger -> sqlite -> redis -> services.
func (a *app) init() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.log = logger.Get(cfg.LogLevel)

	a.db, err = repodb.Init(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("init sqlite: %w", err)
	}

	a.rdb = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	repos := repository.NewRepository(a.db)
	store := cache.NewCache(a.rdb)
	a.services = service.NewService(repos, store, cfg, a.log)
	a.security = security.NewManager(store.Tokens, store.Users, repos.Accounts, a.log)
	return nil
}

func (a *app) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warnw("failed to close sqlite", "err", err)
		}
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.log.Warnw("failed to close redis client", "err", err)
		}
	}
}

func newRegisterCmd(a *app) *cobra.Command {
	var username, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account and print its session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passwordOrPrompt(password)
			if err != nil {
				return err
			}
			token, err := a.services.Register(cmd.Context(), models.RegisterInput{
				Username: username,
				Email:    email,
				Password: pw,
			})
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var username, password string
	var remember bool
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passwordOrPrompt(password)
			if err != nil {
				return err
			}
			token, err := a.services.Login(cmd.Context(), models.LoginInput{
				Username: username,
				Password: pw,
				Remember: remember,
			})
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	cmd.Flags().BoolVar(&remember, "remember", false, "keep the session for 30 days instead of 7")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Invalidate a session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.services.LogOut(cmd.Context(), token)
		},
	}
	cmd.Flags().StringVarP(&token, "token", "t", "", "session token")
	return cmd
}

func newWhoamiCmd(a *app) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the account behind a session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.security.Authenticate(cmd.Context(), token)
			if err != nil {
				return err
			}
			fmt.Printf("%d\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, u.Status)
			return nil
		},
	}
	cmd.Flags().StringVarP(&token, "token", "t", "", "session token")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func newCheckUsernameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check-username <username>",
		Short: "Report whether a username is taken",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taken, err := a.services.IsUserNameRegistered(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(taken)
			return nil
		},
	}
}

func newCheckEmailCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check-email <email>",
		Short: "Report whether an email is taken",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taken, err := a.services.IsEmailRegistered(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(taken)
			return nil
		},
	}
}

// passwordOrPrompt returns the flag value when given, otherwise reads the
// password from the terminal without echo.
func passwordOrPrompt(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(os.Stderr, "Password: ")
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}
