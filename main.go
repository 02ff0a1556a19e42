package main

import (
	"log"
	"net/http"

	"orderhub/account"
	"orderhub/bizerror"
	"orderhub/common"
	"orderhub/domain"
	"orderhub/domain/order"
	"orderhub/infra/tracing"
	"orderhub/persistence"
	"orderhub/servehttp"
	"orderhub/session"
	"orderhub/sessions"
	"orderhub/sheetsync"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("service start")

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		log.Fatalf("parse database config failed %v\n", err)
	}
	feedConfig, err := sheetsync.ParseFeedConfigFromEnv()
	if err != nil {
		log.Fatalf("parse feed config failed %v\n", err)
	}
	sheetsync.ActiveFeedConfig = feedConfig

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			log.Fatalf("failed to prepare database %v\n", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		log.Fatalf("database conneciton failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB().AutoMigrate(&domain.Order{}, &domain.Assignment{}, &account.User{}).Error
	if err != nil {
		log.Fatalf("database migration failed %v\n", err)
	}

	if err := account.BootstrapAdmin(); err != nil {
		log.Fatalf("failed to bootstrap admin account %v\n", err)
	}

	tracerCloser, err := tracing.InitJaegerTracer(common.GetServiceName())
	if err != nil {
		log.Printf("jaeger tracer not started: %v\n", err)
	} else {
		defer tracerCloser.Close()
	}

	engine := gin.Default()
	engine.Use(tracing.TracingIngress(), bizerror.ErrorHandling())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "orderhub")
	})

	sessions.RegisterSessionsHandler(engine)
	account.RegisterUsersRestAPI(engine, session.SimpleAuthFilter())
	order.RegisterOrdersRestAPI(engine, session.SimpleAuthFilter())
	sheetsync.RegisterSheetSyncRestAPI(engine, session.SimpleAuthFilter())

	scheduler, err := sheetsync.StartSyncSchedule(feedConfig)
	if err != nil {
		log.Fatalf("invalid SYNC_CRON expression %v\n", err)
	}
	if scheduler != nil {
		defer scheduler.Stop()
	}

	servehttp.StartHTTPServer(engine)
}
