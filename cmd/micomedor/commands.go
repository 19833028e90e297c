package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-micomedor/internal/config"
	"github.com/goliatone/go-micomedor/pkg/comedor"
	"github.com/goliatone/go-micomedor/pkg/listview"
	"github.com/goliatone/go-micomedor/pkg/report"
	"github.com/goliatone/go-micomedor/pkg/session"
)

func (a *app) loginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Long: `Log in against the backend. Without flags the credentials are prompted;
with --username and --password the login is non-interactive.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if username != "" && password != "" {
				user, err := session.Login(ctx, a.client, a.store, username, password)
				if err != nil {
					return fmt.Errorf("login: %w", err)
				}
				a.logger.Info("login", zap.String("username", user.Username), zap.Int64("user_id", user.ID))
				fmt.Fprintf(cmd.OutOrStdout(), "Sesión iniciada como %s.\n", user.Username)
				return nil
			}

			c, err := a.console()
			if err != nil {
				return err
			}
			ok, err := c.Login(ctx)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			if !ok {
				return session.ErrNotAuthenticated
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := session.Logout(a.store); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Sesión cerrada.")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := session.Require(a.store)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (id %d)\n", user.Username, user.ID)
			return nil
		},
	}
}

// listPage is the JSON document printed by the list command.
type listPage[T any] struct {
	Entity     string `json:"entity"`
	Filter     string `json:"filter,omitempty"`
	Page       int    `json:"page"`
	TotalPages int    `json:"totalPages"`
	Total      int    `json:"total"`
	Items      []T    `json:"items"`
}

type listFlags struct {
	filter   string
	page     int
	pageSize int
}

func (a *app) listCmd() *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:       "list <entity>",
		Short:     "Print one page of an entity as JSON",
		Long:      "Entities: " + strings.Join(comedor.Entities, ", ") + ".",
		Args:      cobra.ExactArgs(1),
		ValidArgs: comedor.Entities,
		RunE: func(cmd *cobra.Command, args []string) error {
			entity := args[0]
			if flags.pageSize <= 0 {
				flags.pageSize = a.cfg.PageSize(entity)
			}
			ctx, out := cmd.Context(), cmd.OutOrStdout()
			switch entity {
			case comedor.EntityBeneficiary:
				return listEntity(ctx, out, entity, a.client.ActiveBeneficiaries, comedor.BeneficiaryFields, flags)
			case comedor.EntityProduct:
				return listEntity(ctx, out, entity, a.client.Products().ListByUser, comedor.ProductFields, flags)
			case comedor.EntityRation:
				return listEntity(ctx, out, entity, a.client.Rations().ListByUser, comedor.RationFields, flags)
			case comedor.EntityBudget:
				return listEntity(ctx, out, entity, a.client.Budgets().ListByUser, comedor.BudgetFields, flags, listview.NewestFirst())
			case comedor.EntityTask:
				return listEntity(ctx, out, entity, a.client.Tasks().ListByUser, comedor.TaskFields, flags, listview.NewestFirst())
			case comedor.EntityNote:
				return listEntity(ctx, out, entity, a.client.Notes().ListByUser, comedor.NoteFields, flags)
			default:
				return fmt.Errorf("list: unknown entity %q (valid: %s)", entity, strings.Join(comedor.Entities, ", "))
			}
		},
	}
	cmd.Flags().StringVarP(&flags.filter, "filter", "f", "", "only records whose display fields contain this text")
	cmd.Flags().IntVar(&flags.page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&flags.pageSize, "page-size", 0, "records per page (default from config)")
	return cmd
}

func listEntity[T any](ctx context.Context, out io.Writer, entity string, load listview.Loader[T], fields listview.FieldsFunc[T], flags listFlags, opts ...listview.Option) error {
	opts = append(opts, listview.WithPageSize(flags.pageSize))
	view := listview.New(fields, load, opts...)
	if err := view.Reload(ctx); err != nil {
		return fmt.Errorf("list %s: %w", entity, err)
	}
	view.SetFilter(flags.filter)
	view.SetPage(flags.page)

	items := view.Visible()
	if items == nil {
		items = []T{}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(listPage[T]{
		Entity:     entity,
		Filter:     view.Filter(),
		Page:       view.Page(),
		TotalPages: view.TotalPages(),
		Total:      len(view.Filtered()),
		Items:      items,
	})
}

func (a *app) reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "report [daily|weekly]",
		Short:     "Print the daily or weekly report",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"daily", "weekly"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := "daily"
			if len(args) == 1 {
				kind = args[0]
			}
			renderer, err := report.NewRenderer(a.reportOptions()...)
			if err != nil {
				return err
			}
			builder := report.NewBuilder(a.client, report.WithLogger(a.logger))
			ctx, out := cmd.Context(), cmd.OutOrStdout()

			switch kind {
			case "daily":
				daily, err := builder.Daily(ctx)
				if err != nil {
					return fmt.Errorf("report: %w", err)
				}
				_, err = renderer.Daily(daily, out)
				return err
			case "weekly":
				weekly, err := builder.Weekly(ctx)
				if err != nil {
					return fmt.Errorf("report: %w", err)
				}
				_, err = renderer.Weekly(weekly, out)
				return err
			default:
				return fmt.Errorf("report: unknown report %q (valid: daily, weekly)", kind)
			}
		},
	}
}

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Args:  cobra.NoArgs,
		// the file may not exist or be valid yet
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.ResolvePath(a.configPath)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config: %s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("config: %w", err)
			}
			if err := config.Default().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuración escrita en %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}
