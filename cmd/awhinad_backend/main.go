package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/carg563/Awhina-2-Testing-Portal/cmd/awhinad_backend/projects"
	configs "github.com/carg563/Awhina-2-Testing-Portal/pkg/configs/backend"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/gis"
	gisrest "github.com/carg563/Awhina-2-Testing-Portal/pkg/gis/rest"
)

func main() {

	pconfig := flag.String(
		"config", os.Getenv("AWHINA_BACKEND_CONFIG"), "path to config file",
	)
	loglevel := flag.String("loglevel", "warn", "log level. debug|info|warn|error|off")
	flag.Parse()

	godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer cancel()

	conf, err := configs.LoadBackendConfig(*pconfig)
	if err != nil {
		panic(err)
	}

	store := projects.Store{
		DeploymentsRoot: conf.DeploymentsRoot,
		TemplateRoot:    conf.TemplateRoot,
	}
	gateway := func(cred gis.Credential) gis.Gateway {
		return gisrest.New(conf.PortalURL, "", cred)
	}

	server := BuildServer(store, operatorValidator(gateway, conf.AdminGroupIDs), *loglevel)
	for _, r := range server.Routes() {
		server.Logger.Debugf("- mount handler: %s %s", strings.ToUpper(r.Method), r.Path)
	}

	ch := make(chan error, 1)
	go func() {
		defer close(ch)
		if err := server.Start(":" + conf.ServerPort); err != nil && err != http.ErrServerClosed {
			ch <- err
		}
	}()

	exit := 0
	select {
	case <-ctx.Done(): // wait
		if err := ctx.Err(); err != nil {
			server.Logger.Infof("context has been done: %s, cause: %s", err, context.Cause(ctx))
			exit = 1
		}
	case err := <-ch:
		if err != nil {
			server.Logger.Error("server stops with error:", err)
			exit = 1
		}
	}

	{
		server.Logger.Info("shutting down...")
		qctx, qcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer qcancel()

		if err := server.Shutdown(qctx); err != nil {
			server.Logger.Fatalf("Shutdown with error. %+v", err)
			os.Exit(1)
		}
		os.Exit(exit)
	}
}
