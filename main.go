package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"vsal/api/contexts"
	"vsal/api/models"
	serviceInfo "vsal/api/models/constants/service-info"
	variantsMvc "vsal/api/mvc/variants"
	"vsal/api/services"
	variantsService "vsal/api/services/variants"
	"vsal/api/utils"

	"github.com/kelseyhightower/envconfig"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
)

func main() {
	// Gather environment variables
	var cfg models.Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	fmt.Printf("Using : \n"+

		"\tDebug : %t \n\n"+

		"\tElasticsearch Url : %s \n"+
		"\tElasticsearch Username : %s\n"+
		"\tScan Batch Size : %d\n"+
		"\tScan Timeout (seconds) : %d\n\n"+

		"\tJWT Issuer : %s\n"+
		"\tJWT Access Claim : %s\n"+
		"\tOIDC Public JWKS Url : %s\n\n"+

		"\tPheno Directory Path : %s\n"+
		"\tMax Variants : %d\n\n"+

		"Running on Port : %s\n",

		cfg.Debug,
		cfg.Elasticsearch.Url, cfg.Elasticsearch.Username,
		cfg.Elasticsearch.ScanBatchSize,
		cfg.Elasticsearch.ScanTimeoutSeconds,
		cfg.AuthX.JwtIssuer, cfg.AuthX.JwtAccessClaim,
		cfg.AuthX.PublicJwksUrl,
		cfg.Pheno.Path,
		cfg.Api.MaxVariants,
		cfg.Api.Port)
	// --

	// Instantiate Server
	e := echo.New()

	// Service Connections:
	// -- Elasticsearch
	es := utils.CreateEsConnection(&cfg)

	// Service Singletons
	vs := variantsService.NewVariantService(&cfg, es)
	jz := services.NewJwtService(&cfg)
	ps := services.NewPhenoService(&cfg)
	core := services.NewCoreService(vs, jz, ps)

	// Configure Server
	if cfg.Debug {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST},
	}))

	// -- Override handlers with "custom Vsal" context
	//		to be able to provide variables and global singletons
	e.Use(func(h echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &contexts.VsalContext{
				Context:     c,
				Config:      &cfg,
				CoreService: core,
			}
			return h(cc)
		}
	})

	// Begin MVC Routes
	// -- Root
	e.GET("/", func(c echo.Context) error {
		fmt.Printf("[%s] - Root hit!\n", time.Now())
		return c.JSON(http.StatusOK, serviceInfo.SERVICE_WELCOME)
	})

	// -- Service Info
	e.GET("/service-info", func(c echo.Context) error {
		// Spec: https://github.com/ga4gh-discovery/ga4gh-service-info
		return c.JSON(http.StatusOK, map[string]interface{}{
			"id":          serviceInfo.SERVICE_ID,
			"name":        serviceInfo.SERVICE_NAME,
			"type":        serviceInfo.SERVICE_TYPE,
			"description": serviceInfo.SERVICE_DESCRIPTION,
			"organization": map[string]string{
				"name": "Garvan Institute of Medical Research",
				"url":  "https://www.garvan.org.au",
			},
			"contactUrl": serviceInfo.SERVICE_CONTACT,
			"version":    serviceInfo.SERVICE_VERSION,
		})
	})

	// -- Find
	e.GET("/find", variantsMvc.VariantsFindGet)
	e.POST("/find", variantsMvc.VariantsFindPost)

	// Run
	e.Logger.Fatal(e.Start(":" + cfg.Api.Port))
}
