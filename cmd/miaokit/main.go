package main

import (
	"flag"
	"log"

	"github.com/Sor85/miao-kit/internal/app"
	"github.com/Sor85/miao-kit/internal/config"
	"github.com/Sor85/miao-kit/internal/logger"
)

var (
	flagA string
	flagD string
	flagR string
	flagL string
)

func init() {
	flag.StringVar(&flagA, "a", ":3000", "address:host")
	flag.StringVar(&flagD, "d", "public/uploads", "upload directory")
	flag.StringVar(&flagR, "r", "forward-rules.json", "forward rules file")
	flag.StringVar(&flagL, "l", "info", "log level")
}

func main() {
	flag.Parse()
	cfg, err := config.NewConfig(
		config.ConfigAddress(flagA),
		config.ConfigUploadDir(flagD),
		config.ConfigRulesFile(flagR),
		config.ConfigLogLevel(flagL),
	)
	if err != nil {
		log.Fatal(err)
	}
	lg, err := logger.NewLogger(logger.LevelFromString(cfg.LogLevel))
	if err != nil {
		log.Fatal(err)
	}
	defer lg.Close()
	srv, err := app.NewServer(cfg, lg.Logger)
	if err != nil {
		log.Fatal(err)
	}
	if err = srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
