package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/ExtCrs/extcourses/core"
	"github.com/ExtCrs/extcourses/core/lesson"
	"github.com/ExtCrs/extcourses/core/user"
	eventsvc "github.com/ExtCrs/extcourses/services/events"
	"github.com/ExtCrs/extcourses/storage/database"
)

var (
	migrateFunc = database.RunMigrations // mockable
	watchFunc   = eventsvc.Watch         // mockable

	errHelp    = errors.New("help provided")
	errNoRedis = errors.New("redis is not configured")
)

type commandLine struct {
	conf      *core.Config
	db        *sqlx.DB
	rdb       *redis.Client
	validate  *validator.Validate
	usrSvc    *user.Service
	lessonSvc *lesson.Service
	logger    core.Logger
	out       io.Writer
}

func (cli *commandLine) run(args []string) error {
	return cli.runContext(context.Background(), args)
}

// runContext executes args, program name included.
func (cli *commandLine) runContext(ctx context.Context, args []string) error {
	root := cli.rootCmd()
	root.SetArgs(args[1:])
	root.SetOut(cli.out)
	root.SetErr(cli.out)
	return root.ExecuteContext(ctx)
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "ExtCourses administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Usage()
			return errHelp
		},
	}
	root.AddCommand(
		cli.migrateCmd(),
		cli.addUserCmd(),
		cli.setOrgCmd(),
		cli.lockCmd("lock", "Lock a lesson for review", cli.lessonSvc.Lock),
		cli.lockCmd("unlock", "Release the review lock of a lesson", cli.lessonSvc.Unlock),
		cli.reviewQueueCmd(),
		cli.statusMapCmd(),
		cli.watchCmd(),
	)
	return root
}

func (cli *commandLine) printJSON(v interface{}) error {
	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (cli *commandLine) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [ARGS...]",
		Short: "Run a goose command: up, up-by-one, up-to, down, down-to, redo, reset, status, version",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Usage()
				return errHelp
			}
			return migrateFunc(cmd.Context(), cli.db, args[0], args[1:]...)
		},
	}
}

func (cli *commandLine) addUserCmd() *cobra.Command {
	var nu user.NewUser
	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := nu.Validate(cli.validate); err != nil {
				return err
			}
			usr, err := cli.usrSvc.Create(cmd.Context(), nu)
			if err != nil {
				return err
			}
			return cli.printJSON(usr)
		},
	}
	cmd.Flags().StringVar(&nu.Name, "name", "", "full name")
	cmd.Flags().StringVar(&nu.Email, "email", "", "email address")
	cmd.Flags().StringVar(&nu.Role, "role", user.RoleLearner, "learner, reviewer or admin")
	cmd.Flags().StringVar(&nu.OrgID, "org", "", "organization ID")
	return cmd
}

func (cli *commandLine) setOrgCmd() *cobra.Command {
	var userID, orgID string
	cmd := &cobra.Command{
		Use:   "setorg",
		Short: "Link a profile to an organization; an empty --org unlinks it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			usr, err := cli.usrSvc.SetOrg(cmd.Context(), userID, orgID)
			if err != nil {
				return err
			}
			return cli.printJSON(usr)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "profile ID")
	cmd.Flags().StringVar(&orgID, "org", "", "organization ID")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

type lessonFlags struct {
	key lesson.Key
}

func (f *lessonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.key.CourseInstanceID, "course", "", "course instance ID")
	cmd.Flags().StringVar(&f.key.StudentID, "student", "", "student profile ID")
	cmd.Flags().IntVar(&f.key.LessonNum, "lesson", 0, "lesson number")
	_ = cmd.MarkFlagRequired("course")
	_ = cmd.MarkFlagRequired("student")
	_ = cmd.MarkFlagRequired("lesson")
}

func (cli *commandLine) lockCmd(use, short string, action func(context.Context, lesson.Key) (lesson.Record, error)) *cobra.Command {
	var f lessonFlags
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, err := action(cmd.Context(), f.key)
			if err != nil {
				return err
			}
			return cli.printJSON(rec)
		},
	}
	f.register(cmd)
	return cmd
}

func (cli *commandLine) reviewQueueCmd() *cobra.Command {
	var orgID string
	cmd := &cobra.Command{
		Use:   "review-queue",
		Short: "List the course instances waiting for a reviewer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := cli.lessonSvc.ReviewQueue(cmd.Context(), user.User{Role: user.RoleAdmin}, orgID)
			if err != nil {
				return err
			}
			return cli.printJSON(items)
		},
	}
	cmd.Flags().StringVar(&orgID, "org", "", "only this organization")
	return cmd
}

func (cli *commandLine) statusMapCmd() *cobra.Command {
	var courseID, studentID string
	cmd := &cobra.Command{
		Use:   "status-map",
		Short: "Print the lesson statuses of a student in a course instance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			statuses, err := cli.lessonSvc.StatusMap(cmd.Context(), courseID, studentID)
			if err != nil {
				return err
			}
			return cli.printJSON(statuses)
		},
	}
	cmd.Flags().StringVar(&courseID, "course", "", "course instance ID")
	cmd.Flags().StringVar(&studentID, "student", "", "student profile ID")
	_ = cmd.MarkFlagRequired("course")
	_ = cmd.MarkFlagRequired("student")
	return cmd
}

func (cli *commandLine) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print review events as they are published",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cli.rdb == nil {
				return errNoRedis
			}
			onEvent := func(ev lesson.Event) { _ = cli.printJSON(ev) }
			onError := func(err error) { cli.logger.Warn("undecodable event", err) }
			return watchFunc(cmd.Context(), cli.rdb, cli.conf.Redis.Channel, onEvent, onError)
		},
	}
}
