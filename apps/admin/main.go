package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/ExtCrs/extcourses/core"
	"github.com/ExtCrs/extcourses/core/catalog"
	"github.com/ExtCrs/extcourses/core/lesson"
	"github.com/ExtCrs/extcourses/core/user"
	eventsvc "github.com/ExtCrs/extcourses/services/events"
	logsvc "github.com/ExtCrs/extcourses/services/logger"
	"github.com/ExtCrs/extcourses/storage/database"
	sqlxrepos "github.com/ExtCrs/extcourses/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	local, err := logsvc.NewZapLogger("admin", conf)
	if err != nil {
		log.Fatal(err)
	}
	logger := logsvc.NewRollbarLogger(local, conf)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}

	rdb, err := eventsvc.NewRedisClient(conf)
	if err != nil {
		logger.Warn("redis unavailable", err)
	}

	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	catalogDir := conf.Catalog.Dir
	if !filepath.IsAbs(catalogDir) {
		catalogDir = filepath.Join(conf.WorkDir, catalogDir)
	}
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db))
	lessonSvc := lesson.NewService(
		sqlxrepos.NewLessonRepository(db),
		catalog.NewFSCatalog(os.DirFS(catalogDir), conf.Catalog.DefaultLang),
		usrSvc,
		eventsvc.NewLogNotifier(logger),
		logger,
	)

	// start CLI
	cli := commandLine{
		conf:      conf,
		db:        db,
		rdb:       rdb,
		validate:  validate,
		usrSvc:    usrSvc,
		lessonSvc: lessonSvc,
		logger:    logger,
		out:       os.Stdout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = cli.runContext(ctx, os.Args)
	stop()
	_ = db.Close()
	logger.Sync()

	if err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		os.Exit(1)
	}
}
