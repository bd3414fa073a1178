package main

import (
	"log"
	"os"

	"propel-server/routes"
	"propel-server/storage"
	"propel-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	storage.InitializeDB()
	storage.InitializeRedis()
	storage.InitializeUploads()

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	user := app.Party("/api/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
		user.Post("/google", routes.GoogleLoginOrSignUp)
		user.Post("/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)
	}

	profile := app.Party("/api/profile")
	{
		profile.Get("/", accessTokenVerifierMiddleware, routes.GetMyProfile)
		profile.Patch("/", accessTokenVerifierMiddleware, routes.UpdateProfile)
		profile.Put("/preference", accessTokenVerifierMiddleware, routes.UpdateListingPreference)
		profile.Get("/search", accessTokenVerifierMiddleware, routes.SearchProfiles)
		profile.Get("/{id:uint}", accessTokenVerifierMiddleware, routes.GetProfile)
	}

	connection := app.Party("/api/connection", accessTokenVerifierMiddleware)
	{
		connection.Post("/request/{id:uint}", routes.RequestConnection)
		connection.Post("/accept/{id:uint}", routes.AcceptConnection)
		connection.Delete("/{id:uint}", routes.Disconnect)
		connection.Get("/", routes.GetConnections)
		connection.Get("/pending", routes.GetPendingConnections)
		connection.Get("/status/{id:uint}", routes.GetConnectionStatus)
	}

	post := app.Party("/api/post")
	{
		post.Post("/", accessTokenVerifierMiddleware, routes.CreatePost)
		post.Get("/feed", accessTokenVerifierMiddleware, routes.GetFeed)
		post.Delete("/{id:uint}", accessTokenVerifierMiddleware, routes.DeletePost)
		post.Post("/{id:uint}/like", accessTokenVerifierMiddleware, routes.LikePost)
		post.Delete("/{id:uint}/like", accessTokenVerifierMiddleware, routes.UnlikePost)
		post.Post("/{id:uint}/comment", accessTokenVerifierMiddleware, routes.CommentOnPost)
		post.Get("/{id:uint}/comments", routes.GetComments)
		post.Delete("/{id:uint}/comment/{commentID:uint}", accessTokenVerifierMiddleware, routes.DeleteComment)
	}

	property := app.Party("/api/property")
	{
		property.Post("/", accessTokenVerifierMiddleware, routes.CreateProperty)
		property.Get("/search", routes.SearchProperties)
		property.Get("/search/preference", accessTokenVerifierMiddleware, routes.SearchByPreference)
		property.Get("/mine", accessTokenVerifierMiddleware, routes.GetMyProperties)
		property.Get("/{id:uint}", routes.GetProperty)
		property.Delete("/{id:uint}", accessTokenVerifierMiddleware, routes.DeleteProperty)
	}

	rating := app.Party("/api/rating")
	{
		rating.Post("/{id:uint}", accessTokenVerifierMiddleware, routes.RateBusiness)
		rating.Get("/{id:uint}", routes.GetBusinessRatings)
	}

	shortlist := app.Party("/api/shortlist")
	{
		// capability-based: the token is the only credential
		shortlist.Get("/shared/{token}", routes.GetSharedShortlist)

		shortlist.Post("/", accessTokenVerifierMiddleware, routes.CreateShortlist)
		shortlist.Get("/", accessTokenVerifierMiddleware, routes.GetMyShortlists)
		shortlist.Patch("/{id:uint}", accessTokenVerifierMiddleware, routes.UpdateShortlist)
		shortlist.Delete("/{id:uint}", accessTokenVerifierMiddleware, routes.DeleteShortlist)
		shortlist.Post("/{id:uint}/properties", accessTokenVerifierMiddleware, routes.AddPropertyToShortlist)
		shortlist.Delete("/{id:uint}/properties/{propertyID:uint}", accessTokenVerifierMiddleware, routes.RemovePropertyFromShortlist)
		shortlist.Get("/{id:uint}/properties", accessTokenVerifierMiddleware, routes.GetShortlistProperties)
		shortlist.Patch("/{id:uint}/sharing", accessTokenVerifierMiddleware, routes.ToggleShortlistSharing)
		shortlist.Post("/{id:uint}/invitations", accessTokenVerifierMiddleware, routes.CreateShortlistInvitation)
	}

	invitation := app.Party("/api/invitation", accessTokenVerifierMiddleware)
	{
		invitation.Get("/", routes.ListMyInvitations)
		invitation.Post("/{id:uint}/respond", routes.RespondToInvitation)
	}

	notifications := app.Party("/api/notifications", accessTokenVerifierMiddleware)
	{
		notifications.Get("/", routes.ListNotifications)
		notifications.Get("/unread", routes.UnreadCount)
		notifications.Get("/stream", routes.StreamNotifications)
		notifications.Patch("/{id:uint}/read", routes.MarkNotificationRead)
		notifications.Patch("/read-all", routes.MarkAllNotificationsRead)
		notifications.Patch("/settings", routes.UpdateNotificationSettings)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	log.Printf("listening on :%s", port)
	app.Listen(":" + port)
}
