package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/labqc/internal/app"
)

const usage = `usage: labqc [-user NAME -password PASS] [-env FILE] <command> [flags]

commands:
  serve                              metrics and health endpoints
  version                            build information
  passwd -new PASS                   change own password
  clients add|list|search            client registry
  services list|add|price|enable|disable
  orders create|list|show|status     laboratory orders
  report -from DATE -to DATE [-format csv|xlsx] [-out FILE]
`

// setupLogger настраивает формат и уровень логирования для CLI.
func setupLogger(level log.Level) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stderr)
	log.SetLevel(level)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.WithError(err).Error("команда завершилась с ошибкой")
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	global := flag.NewFlagSet("labqc", flag.ContinueOnError)
	global.Usage = func() { _, _ = fmt.Fprint(global.Output(), usage) }
	var (
		username = global.String("user", os.Getenv("LABQC_USER"), "operator login (fallback: LABQC_USER)")
		password = global.String("password", os.Getenv("LABQC_PASSWORD"), "operator password (fallback: LABQC_PASSWORD)")
		envFile  = global.String("env", ".env", "dotenv file with LABQC_* settings")
	)
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return flag.ErrHelp
	}

	cfg, err := app.LoadConfig(*envFile)
	if err != nil {
		return err
	}
	setupLogger(cfg.Level())

	a, err := app.Open(ctx, cfg, log.WithField("component", "app"))
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.WithError(err).Warn("failed to close storage")
		}
	}()

	c := &cli{app: a, out: stdout, username: *username, password: *password}
	return c.dispatch(ctx, global.Args())
}
