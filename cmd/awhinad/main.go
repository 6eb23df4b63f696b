package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/carg563/Awhina-2-Testing-Portal/cmd/awhinad/handlers"
	kcf "github.com/carg563/Awhina-2-Testing-Portal/pkg/configs/frontend"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain/batch"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain/orchestrate"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain/portalcfg"
	recgis "github.com/carg563/Awhina-2-Testing-Portal/pkg/domain/record/gis"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain/schema"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain/teardown"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/echoutil"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/gis"
	gisrest "github.com/carg563/Awhina-2-Testing-Portal/pkg/gis/rest"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/projectfiles"
	"github.com/carg563/Awhina-2-Testing-Portal/pkg/utils/filewatch"
)

func main() {

	configPath := flag.String("config-path", "", "frontend config path")
	loglevel := flag.String("loglevel", "info", "log level. debug|info|warn|error|off")
	pcert := flag.String("cert", "", "certification file for TLS")
	pkey := flag.String("certkey", "", "key of certification file for TLS")
	flag.Parse()

	// optional; the service credential can come from the real environment
	godotenv.Load()

	e := echo.New()
	e.Pre(middleware.AddTrailingSlash())

	// set log
	echoutil.SetLevel(e, *loglevel)
	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}
	e.Use(echoutil.LogHandlerFunc)

	metrics := echoutil.NewMetrics("awhinad")
	e.Use(metrics.Middleware())
	metrics.Mount(e)

	// read configfile
	conf, err := kcf.LoadFrontendConfig(*configPath)
	if err != nil {
		log.Fatalf("can not read configration: %s", err)
	}

	catalogue, err := schema.Load(conf.CataloguePath)
	if err != nil {
		log.Fatalf("can not read field catalogue: %s", err)
	}
	template, err := os.ReadFile(conf.DashboardTemplatePath)
	if err != nil {
		log.Fatalf("can not read dashboard template: %s", err)
	}

	// the catalogue and the template are read once at startup. When
	// either file changes, quit so the supervisor restarts us with the
	// new content.
	{
		ctx, cancel, err := filewatch.UntilModifyContext(
			context.Background(), conf.CataloguePath, conf.DashboardTemplatePath,
		)
		if err != nil {
			log.Fatalf("can not watch configration: %s", err)
		}
		defer cancel()
		context.AfterFunc(ctx, func() {
			log.Println("catalogue or dashboard template is updated. quit to restart server.")
			graceful, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := e.Shutdown(graceful); err != nil {
				log.Printf("error on shutdown by config update: %s", err)
			}
		})
	}

	// the record table is owned by the service account; operators reach
	// the portal with their own token.
	svcCred := gis.Credential{
		Username: os.Getenv("AWHINA_PORTAL_USER"),
		Token:    os.Getenv("AWHINA_PORTAL_TOKEN"),
	}
	if svcCred.Token == "" {
		log.Fatal("AWHINA_PORTAL_TOKEN is not set")
	}

	gateway := func(cred gis.Credential) gis.Gateway {
		return gisrest.New(conf.PortalURL, conf.RecordTableURL, cred)
	}
	records := recgis.New(gateway(svcCred).Features())
	files := projectfiles.NewClient(conf.BackendApiRoot)

	zapcfg := zap.NewProductionConfig()
	if *loglevel == "debug" {
		zapcfg = zap.NewDevelopmentConfig()
	}
	logger, err := zapcfg.Build()
	if err != nil {
		log.Fatalf("can not build logger: %s", err)
	}
	defer logger.Sync()

	orc := orchestrate.New(orchestrate.Config{
		Records:           records,
		Files:             files,
		Catalogue:         catalogue,
		DashboardTemplate: template,
		Locations: portalcfg.Locations{
			PortalURL:         conf.PortalURL,
			DeploymentBaseURL: conf.DeploymentBaseURL,
			Survey123BaseURL:  conf.Survey123BaseURL,
		},
		Scheduler: batch.Scheduler{MaxGroupIteration: conf.MaxGroupIteration},
		Logger:    logger,
	})
	runner := teardown.New(records, files, logger)

	// handlers
	{
		api := e.Group("/api", echoutil.CredentialAuth(gateway, conf.AdminGroupIDs))
		uid := "uid"

		api.GET("/deployments/", handlers.ListDeploymentsHandler(records))
		api.POST("/deployments/", handlers.CreateDeploymentHandler(orc, gateway, conf.Register()))

		api.GET("/deployments/:uid/", handlers.GetDeploymentHandler(records, uid))
		api.DELETE("/deployments/:uid/", handlers.DeleteDeploymentHandler(runner, gateway, uid))

		api.PUT("/deployments/:uid/resume/", handlers.ResumeDeploymentHandler(orc, records, gateway, uid))
		api.PUT("/deployments/:uid/needs/", handlers.ExtendDeploymentHandler(orc, records, gateway, uid))
	}
	log.Println("registred routes:")
	for _, r := range e.Routes() {
		log.Println(r.Method, r.Path)
	}

	cert, key := *pcert, *pkey
	if cert != "" && key != "" {
		e.Logger.Fatal(e.StartTLS(":"+conf.ServerPort, cert, key))
	} else {
		e.Logger.Fatal(e.Start(":" + conf.ServerPort))
	}
}
