package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/wordwise/core"
	"github.com/trezcool/wordwise/core/user"
	logsvc "github.com/trezcool/wordwise/services/logger"
	"github.com/trezcool/wordwise/storage/database"
)

func main() {
	conf := core.NewConfig()

	stdLogger := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)

	// set up DB
	store, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// start CLI
	cli := newCommandLine(core.Deps{
		Store:      store,
		Validate:   validate,
		Translator: translator,
		Logger:     logger,
	})
	err = cli.run(os.Args)

	if cErr := store.Close(); cErr != nil {
		logger.Error("closing database", cErr)
	}
	logger.Close()

	if err != nil {
		if err != errHelp {
			stdLogger.Printf("\nerror: %s\n", printable(err))
		}
		os.Exit(1)
	}
}
