// Package main MangaZone API.
//
// @title           MangaZone API
// @version         1.0
// @description     Manga catalog, social features and rentals with eSewa payments.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/SiddharthPaudel/MangaZone-Backend/app/echoServer"
	authctrl "github.com/SiddharthPaudel/MangaZone-Backend/app/echoServer/controller/auth"
	mangactrl "github.com/SiddharthPaudel/MangaZone-Backend/app/echoServer/controller/manga"
	paymentctrl "github.com/SiddharthPaudel/MangaZone-Backend/app/echoServer/controller/payment"
	rentalctrl "github.com/SiddharthPaudel/MangaZone-Backend/app/echoServer/controller/rental"
	"github.com/SiddharthPaudel/MangaZone-Backend/app/echoServer/validation"
	"github.com/SiddharthPaudel/MangaZone-Backend/config"
	"github.com/SiddharthPaudel/MangaZone-Backend/repository/esewa"
	mangarepo "github.com/SiddharthPaudel/MangaZone-Backend/repository/manga"
	paymentrepo "github.com/SiddharthPaudel/MangaZone-Backend/repository/payment"
	rentalrepo "github.com/SiddharthPaudel/MangaZone-Backend/repository/rental"
	userrepo "github.com/SiddharthPaudel/MangaZone-Backend/repository/user"
	authsvc "github.com/SiddharthPaudel/MangaZone-Backend/service/auth"
	mangasvc "github.com/SiddharthPaudel/MangaZone-Backend/service/manga"
	paymentsvc "github.com/SiddharthPaudel/MangaZone-Backend/service/payment"
	rentalsvc "github.com/SiddharthPaudel/MangaZone-Backend/service/rental"
	"github.com/SiddharthPaudel/MangaZone-Backend/util/database"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db)
	mr := mangarepo.New(db)
	rr := rentalrepo.New(db)
	pr := paymentrepo.New(db)
	gw := esewa.New(cfg.Esewa.MerchantCode, cfg.Esewa.SecretKey, cfg.Esewa.FormURL)

	// services
	as := authsvc.New(ur, cfg.JWTSecret)
	ms := mangasvc.New(mr, ur)
	rs := rentalsvc.New(db.Pool, rr, mr, ur, pr, gw, cfg.BackendURL)
	ps := paymentsvc.New(db.Pool, pr, rr, ur, mr, gw, cfg.FrontendURL)

	// expired grant sweeper
	go rentalsvc.RunSweeper(ctx, rentalsvc.NewCleaner(rr), time.Hour, log)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	mangaC := &mangactrl.Controller{Svc: ms, V: v, Log: log, UploadDir: cfg.UploadDir}
	rentalC := &rentalctrl.Controller{Svc: rs, V: v, Log: log}
	paymentC := &paymentctrl.Controller{Svc: ps, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.Static("/uploads", cfg.UploadDir)

	echoServer.Register(e, echoServer.C{
		Auth:    authC,
		Manga:   mangaC,
		Rental:  rentalC,
		Payment: paymentC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
