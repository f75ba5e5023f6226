package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"pomodoro/internal/db"
	"pomodoro/internal/db/migrations"
	"pomodoro/pkg/config"
	"pomodoro/pkg/logger"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func main() {
	if err := newApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runner opens the database lazily so `create` works without one.
type runner struct {
	out io.Writer
	log *zap.Logger
}

func newApp(out io.Writer) *cli.Command {
	r := &runner{out: out}

	return &cli.Command{
		Name:  "migrate",
		Usage: "manage the database schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to a config file (environment variables still apply)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "debug, info, warn or error",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			log, err := logger.New(cmd.String("log-level"))
			if err != nil {
				return ctx, err
			}
			r.log = log
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "apply every pending migration",
				Action: r.up,
			},
			{
				Name:   "down",
				Usage:  "roll back the most recent migration",
				Action: r.down,
			},
			{
				Name:   "status",
				Usage:  "list migrations and whether they are applied",
				Action: r.status,
			},
			{
				Name:  "create",
				Usage: "write a new empty up/down migration pair",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "message",
						Aliases:  []string{"m"},
						Usage:    "short description used for the file name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "dir",
						Value: "internal/db/migrations/sql",
						Usage: "directory holding the migration files",
					},
				},
				Action: r.create,
			},
		},
	}
}

func (r *runner) migrator(cmd *cli.Command) (*migrations.Migrator, func(), error) {
	var paths []string
	if p := cmd.String("config"); p != "" {
		paths = append(paths, p)
	}

	dbCfg, err := config.LoadDatabase(paths...)
	if err != nil {
		return nil, nil, err
	}

	sqlDB, err := db.Open(dbCfg)
	if err != nil {
		return nil, nil, err
	}

	migs, err := migrations.Embedded()
	if err != nil {
		sqlDB.Close()
		return nil, nil, err
	}

	database := db.Wrap(sqlDB, 1)

	return migrations.NewMigrator(database, migs, r.log), func() { database.CloseConnection() }, nil
}

func (r *runner) up(ctx context.Context, cmd *cli.Command) error {
	m, closeFn, err := r.migrator(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	done, err := m.Up(ctx)
	for _, mig := range done {
		fmt.Fprintf(r.out, "applied %04d_%s\n", mig.Version, mig.Name)
	}
	if err != nil {
		return err
	}
	if len(done) == 0 {
		fmt.Fprintln(r.out, "nothing to migrate")
	}

	return nil
}

func (r *runner) down(ctx context.Context, cmd *cli.Command) error {
	m, closeFn, err := r.migrator(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	mig, err := m.Down(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(r.out, "rolled back %04d_%s\n", mig.Version, mig.Name)
	return nil
}

func (r *runner) status(ctx context.Context, cmd *cli.Command) error {
	m, closeFn, err := r.migrator(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	statuses, err := m.Status(ctx)
	if err != nil {
		return err
	}

	return printStatus(r.out, statuses)
}

func printStatus(out io.Writer, statuses []migrations.Status) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED")
	for _, s := range statuses {
		applied := "no"
		if s.AppliedAt != nil {
			applied = s.AppliedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%04d\t%s\t%s\n", s.Version, s.Name, applied)
	}

	return w.Flush()
}

func (r *runner) create(_ context.Context, cmd *cli.Command) error {
	up, down, err := migrations.Create(cmd.String("dir"), cmd.String("message"))
	if err != nil {
		return err
	}

	fmt.Fprintf(r.out, "created %s\ncreated %s\n", up, down)
	return nil
}
