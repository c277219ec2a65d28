package echoServer

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/SiddharthPaudel/MangaZone-Backend/app/echoServer/controller/auth"
	"github.com/SiddharthPaudel/MangaZone-Backend/app/echoServer/controller/manga"
	"github.com/SiddharthPaudel/MangaZone-Backend/app/echoServer/controller/payment"
	"github.com/SiddharthPaudel/MangaZone-Backend/app/echoServer/controller/rental"
	"github.com/SiddharthPaudel/MangaZone-Backend/app/echoServer/jwtx"
)

type C struct {
	Auth    *auth.Controller
	Manga   *manga.Controller
	Rental  *rental.Controller
	Payment *payment.Controller

	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	adminMW := []echo.MiddlewareFunc{
		echojwt.WithConfig(echojwt.Config{
			SigningKey:    []byte(c.JWTSecret),
			NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
			TokenLookup:   "header:Authorization",
		}),
		requireAdmin,
	}

	api := e.Group("/api")

	// Auth
	a := api.Group("/auth")
	a.POST("/signup", c.Auth.Signup)
	a.POST("/login", c.Auth.Login)
	a.PUT("/update/:userId", c.Auth.Update)
	a.GET("/profile/:userId", c.Auth.Profile)
	a.POST("/forgot-password", c.Auth.ForgotPassword)
	a.POST("/reset-password", c.Auth.ResetPassword)
	a.GET("", c.Auth.List, adminMW...)

	// Payment callbacks (gateway-invoked, public by contract)
	p := api.Group("/payment")
	p.GET("/esewa-success", c.Payment.EsewaSuccess)
	p.GET("/esewa-failure", c.Payment.EsewaFailure)

	// Manga catalog
	m := api.Group("/manga")
	m.GET("", c.Manga.List)
	m.GET("/top-rated", c.Manga.TopRated)
	m.GET("/bookmarks/:userId", c.Manga.BookmarksByUser)
	m.GET("/user/:userId", c.Rental.UserRentals)
	m.GET("/:mangaId", c.Manga.Detail)

	// Admin endpoints
	m.POST("", c.Manga.Create, adminMW...)
	m.POST("/:mangaId/chapters", c.Manga.AddChapter, adminMW...)
	m.PUT("/update/:mangaId", c.Manga.Update, adminMW...)
	m.DELETE("/delete/:mangaId", c.Manga.Delete, adminMW...)
	m.GET("/summary", c.Rental.Summary, adminMW...)
	m.GET("/rentals", c.Rental.AllRentals, adminMW...)
	m.DELETE("/rental/:rentalId", c.Rental.Delete, adminMW...)
	m.DELETE("/:mangaId/overall-comments/:commentId", c.Manga.DeleteComment, adminMW...)

	// Social + rentals
	m.POST("/:mangaId/rent", c.Rental.Rent)
	m.POST("/:mangaId/comment", c.Manga.AddComment)
	m.DELETE("/:mangaId/comment/:commentId", c.Manga.RemoveComment)
	m.POST("/:mangaId/bookmark", c.Manga.AddBookmark)
	m.DELETE("/:mangaId/bookmark", c.Manga.RemoveBookmark)
	m.POST("/rate/:mangaId", c.Manga.Rate)
	m.DELETE("/review/:mangaId/:reviewId", c.Manga.RemoveRating)
}

func requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !jwtx.IsAdmin(c) {
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		}
		return next(c)
	}
}
