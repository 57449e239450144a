package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	echoapi "github.com/ExtCrs/extcourses/apps/api/echo"
	"github.com/ExtCrs/extcourses/core"
	"github.com/ExtCrs/extcourses/core/catalog"
	"github.com/ExtCrs/extcourses/core/lesson"
	"github.com/ExtCrs/extcourses/core/preference"
	"github.com/ExtCrs/extcourses/core/user"
	emailsvc "github.com/ExtCrs/extcourses/services/email"
	eventsvc "github.com/ExtCrs/extcourses/services/events"
	logsvc "github.com/ExtCrs/extcourses/services/logger"
	"github.com/ExtCrs/extcourses/storage/database"
	sqlxrepos "github.com/ExtCrs/extcourses/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

func newRollbarLogger(name string, conf *core.Config) *logsvc.RollbarLogger {
	local, err := logsvc.NewZapLogger(name, conf)
	if err != nil {
		log.Fatalf("building %s logger: %v", name, err)
	}
	logger := logsvc.NewRollbarLogger(local, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newLogger(conf *core.Config) (*logsvc.RollbarLogger, core.Logger) {
	logger := newRollbarLogger("api", conf)
	return logger, logger
}

func newDBLogger(conf *core.Config) core.Logger {
	return newRollbarLogger("db", conf)
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) (*sqlx.DB, core.DBExecutor) {
	setUp := func() (*sqlx.DB, error) {
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if err = database.Migrate(context.Background(), db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db, db
}

func newCatalog(conf *core.Config) catalog.Catalog {
	dir := conf.Catalog.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(conf.WorkDir, dir)
	}
	return catalog.NewFSCatalog(os.DirFS(dir), conf.Catalog.DefaultLang)
}

func newRedisClient(conf *core.Config, logger core.Logger) *redis.Client {
	rdb, err := eventsvc.NewRedisClient(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("connecting to redis: %v", err), err)
	}
	return rdb
}

func newProfileGetter(svc *user.Service) lesson.ProfileGetter {
	return svc
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type ServerParams struct {
	dig.In

	Conf          *core.Config
	Logger        core.Logger
	Validate      *validator.Validate
	Translator    ut.Translator
	LessonSvc     *lesson.Service
	UserSvc       *user.Service
	PreferenceSvc *preference.Service
}

func newServerOptions(p ServerParams) *echoapi.Options {
	return &echoapi.Options{
		Address:       p.Conf.Server.Host,
		AppName:       p.Conf.AppName,
		SecretKey:     []byte(p.Conf.SecretKey),
		Debug:         p.Conf.Debug,
		TestMode:      p.Conf.TestMode,
		Logger:        p.Logger,
		Validate:      p.Validate,
		Translator:    p.Translator,
		LessonSvc:     p.LessonSvc,
		UserSvc:       p.UserSvc,
		PreferenceSvc: p.PreferenceSvc,
	}
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newCatalog))
	must(c.Provide(newRedisClient))
	must(c.Provide(emailsvc.NewService))
	must(c.Provide(sqlxrepos.NewLessonRepository))
	must(c.Provide(sqlxrepos.NewUserRepository))
	must(c.Provide(sqlxrepos.NewPreferenceRepository))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))
	must(c.Provide(user.NewService))
	must(c.Provide(newProfileGetter))
	must(c.Provide(eventsvc.New))
	must(c.Provide(lesson.NewService))
	must(c.Provide(preference.NewService))
	must(c.Provide(newServerOptions))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
