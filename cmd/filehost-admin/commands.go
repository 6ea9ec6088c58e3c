package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"filehost/internal/config"
	"filehost/internal/logger"
	"filehost/internal/repository"
	"filehost/internal/repository/db"
	"filehost/internal/service"
	"filehost/internal/storage"

	"github.com/spf13/cobra"
)

const cliActor = "filehost-admin"

// app holds the flag values shared by every subcommand.
type app struct {
	configDir  string
	accounts   string
	uploads    string
	activityDB string

	out io.Writer
	in  io.Reader
}

func newRootCmd(out io.Writer, in io.Reader) *cobra.Command {
	a := &app{out: out, in: in}

	rootCmd := &cobra.Command{
		Use:   "filehost-admin",
		Short: "Manage filehost accounts",
		Long: `Manage filehost accounts directly on the account store.

Settings come from configs/config.yml and FILEHOST_* variables, like the server.
Flags override the file locations.

Examples:
  # List approved users with their storage usage
  filehost-admin users

  # Approve a pending registration
  filehost-admin approve alice

  # Hash a password for manual edits of config.json
  echo -n 's3cret' | filehost-admin hash-password`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "Directory holding config.yml (default: configs, then .)")
	rootCmd.PersistentFlags().StringVar(&a.accounts, "accounts", "", "Path of the JSON account store (overrides storage.config_path)")
	rootCmd.PersistentFlags().StringVar(&a.uploads, "uploads", "", "Upload root (overrides storage.upload_dir)")
	rootCmd.PersistentFlags().StringVar(&a.activityDB, "activity-db", "", "SQLite activity log (overrides activity.db_path)")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "users",
			Short: "List approved users",
			Args:  cobra.NoArgs,
			RunE:  a.runUsers,
		},
		&cobra.Command{
			Use:   "pending",
			Short: "List pending registration requests",
			Args:  cobra.NoArgs,
			RunE:  a.runPending,
		},
		&cobra.Command{
			Use:   "approve <username>",
			Short: "Approve a pending registration",
			Args:  cobra.ExactArgs(1),
			RunE:  a.runApprove,
		},
		&cobra.Command{
			Use:   "deny <username>",
			Short: "Deny a pending registration",
			Args:  cobra.ExactArgs(1),
			RunE:  a.runDeny,
		},
		&cobra.Command{
			Use:   "hash-password [password]",
			Short: "Print the bcrypt hash of a password",
			Long:  `Print the bcrypt hash of a password. Without an argument the first line of stdin is used.`,
			Args:  cobra.MaximumNArgs(1),
			RunE:  a.runHashPassword,
		},
	)
	return rootCmd
}

// open wires the same services the server uses, against the configured files.
func (a *app) open() (*service.Service, func(), error) {
	var paths []string
	if a.configDir != "" {
		paths = []string{a.configDir}
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return nil, nil, err
	}
	if a.accounts != "" {
		cfg.Storage.ConfigPath = a.accounts
	}
	if a.uploads != "" {
		cfg.Storage.UploadDir = a.uploads
	}
	if a.activityDB != "" {
		cfg.Activity.DBPath = a.activityDB
	}

	sqlDB, err := db.InitDB(cfg.Activity.DBPath)
	if err != nil {
		return nil, nil, err
	}
	store, err := storage.NewStore(cfg.Storage.UploadDir)
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, err
	}

	services := service.NewService(repository.NewRepository(cfg.Storage.ConfigPath, sqlDB), store, service.Options{
		AdminUsername: cfg.Admin.Username,
		AdminPassword: cfg.Admin.Password,
	}, logger.Nop())

	if err := services.Bootstrap(context.Background()); err != nil {
		_ = sqlDB.Close()
		if errors.Is(err, repository.ErrConfigCorrupt) {
			return nil, nil, fmt.Errorf("account store %s is corrupt: %w", cfg.Storage.ConfigPath, err)
		}
		return nil, nil, err
	}
	return services, func() { _ = sqlDB.Close() }, nil
}

func (a *app) runUsers(cmd *cobra.Command, _ []string) error {
	services, closeFn, err := a.open()
	if err != nil {
		return err
	}
	defer closeFn()

	out, err := services.Overview(cmd.Context())
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "USERNAME\tROLE\tFILES\tSTORAGE\tCREATED")
	for _, u := range out.Users {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", u.Username, u.Role, u.FileCount, u.StorageUsedHuman, formatTime(u.CreatedAt))
	}
	return tw.Flush()
}

func (a *app) runPending(cmd *cobra.Command, _ []string) error {
	services, closeFn, err := a.open()
	if err != nil {
		return err
	}
	defer closeFn()

	out, err := services.Overview(cmd.Context())
	if err != nil {
		return err
	}
	if len(out.PendingRequests) == 0 {
		fmt.Fprintln(a.out, "No pending registration requests.")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "USERNAME\tEMAIL\tREQUESTED")
	for _, p := range out.PendingRequests {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Username, p.Email, formatTime(p.RequestedAt))
	}
	return tw.Flush()
}

func (a *app) runApprove(cmd *cobra.Command, args []string) error {
	services, closeFn, err := a.open()
	if err != nil {
		return err
	}
	defer closeFn()

	if err := services.Approve(cmd.Context(), cliActor, args[0]); err != nil {
		return fmt.Errorf("approve %s: %w", args[0], err)
	}
	fmt.Fprintf(a.out, "User %s approved.\n", args[0])
	return nil
}

func (a *app) runDeny(cmd *cobra.Command, args []string) error {
	services, closeFn, err := a.open()
	if err != nil {
		return err
	}
	defer closeFn()

	if err := services.Deny(cmd.Context(), cliActor, args[0]); err != nil {
		return fmt.Errorf("deny %s: %w", args[0], err)
	}
	fmt.Fprintf(a.out, "Registration request for %s denied.\n", args[0])
	return nil
}

func (a *app) runHashPassword(_ *cobra.Command, args []string) error {
	var password string
	if len(args) == 1 {
		password = args[0]
	} else {
		line, err := bufio.NewReader(a.in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	hash, err := service.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, hash)
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}
