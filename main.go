package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/app"
	"storefront/infra/postgres"
	"storefront/infra/rabbitmq"
	"storefront/internal/auth"
	"storefront/internal/middleware"
	"storefront/pkg/aws"
	"storefront/pkg/config"
	"storefront/pkg/events"
	"storefront/pkg/httperror"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Request any
type Response any

type HandlerInterface[R Request, Res Response] interface {
	Handle(ctx context.Context, req *R) (*Res, error)
}

func handle[R Request, Res Response](handler HandlerInterface[R, Res]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req R

		if err := c.BodyParser(&req); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
			return writeError(c, httperror.BadRequest(
				"request.invalid_body",
				"Invalid body",
				fiber.Map{"error": err.Error()},
			))
		}

		if err := c.ParamsParser(&req); err != nil {
			return writeError(c, httperror.BadRequest(
				"request.invalid_path_params",
				"Invalid path params",
				fiber.Map{"error": err.Error()},
			))
		}

		if err := c.QueryParser(&req); err != nil {
			return writeError(c, httperror.BadRequest(
				"request.invalid_query_params",
				"Invalid query params",
				fiber.Map{"error": err.Error()},
			))
		}

		if err := c.ReqHeaderParser(&req); err != nil {
			return writeError(c, httperror.BadRequest(
				"request.invalid_headers",
				"Invalid headers",
				fiber.Map{"error": err.Error()},
			))
		}

		ctx := c.UserContext()
		// Multipart handlers pull the raw fiber context back out.
		ctx = context.WithValue(ctx, "fiber", c)

		res, err := handler.Handle(ctx, &req)
		if err != nil {
			return writeError(c, err)
		}

		return c.JSON(res)
	}
}

func main() {
	zapConfig := zap.NewDevelopmentConfig()
	zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logger, _ := zapConfig.Build()
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	appConfig := config.Read()
	zap.L().Info("app starting...")
	zap.L().Info("app config", zap.String("serviceName", appConfig.ServiceName), zap.String("port", appConfig.Port))

	fiberApp := fiber.New(fiber.Config{
		IdleTimeout:  5 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		Concurrency:  256 * 1024,
	})

	pgRepository := postgres.NewPgRepository(
		appConfig.PostgresHost,
		appConfig.PostgresDatabase,
		appConfig.PostgresUsername,
		appConfig.PostgresPassword,
		appConfig.PostgresPort,
	)
	defer pgRepository.Close()

	var eventPublisher events.Publisher
	if appConfig.RabbitMQURL != "" {
		publisher, err := rabbitmq.NewPublisher(appConfig.RabbitMQURL, appConfig.ServiceName)
		if err != nil {
			zap.L().Fatal("Failed to create event publisher", zap.Error(err))
		}
		defer publisher.Close()
		eventPublisher = publisher
	} else {
		zap.L().Warn("RABBITMQ_URL not set, catalog change events disabled")
	}

	blobStore := aws.NewS3Bucket(appConfig)

	tokenManager := auth.NewTokenManager(
		appConfig.JWTSecret,
		time.Duration(appConfig.JWTTTLMinutes)*time.Minute,
	)
	authService := auth.NewService(pgRepository, tokenManager)

	signInHandler := app.NewSignInHandler(authService)
	signUpHandler := app.NewSignUpHandler(authService)
	getItemsHandler := app.NewGetItemsHandler(pgRepository)
	getItemHandler := app.NewGetItemHandler(pgRepository)
	createItemHandler := app.NewCreateItemHandler(pgRepository, eventPublisher)
	uploadItemImageHandler := app.NewUploadItemImageHandler(pgRepository, blobStore, eventPublisher)
	getCommentsHandler := app.NewGetCommentsHandler(pgRepository)
	createCommentHandler := app.NewCreateCommentHandler(pgRepository, eventPublisher)

	publicRoutes := fiberApp.Group("/api/v1")
	publicRoutes.Post("/auth/sign-in", handle[app.SignInRequest, app.SignInResponse](signInHandler))
	publicRoutes.Post("/auth/sign-up", handle[app.SignUpRequest, app.SignUpResponse](signUpHandler))
	publicRoutes.Get("/items", handle[app.GetItemsRequest, app.GetItemsResponse](getItemsHandler))
	publicRoutes.Get("/items/:id", handle[app.GetItemRequest, app.GetItemResponse](getItemHandler))
	publicRoutes.Get("/items/:id/comments", handle[app.GetCommentsRequest, app.GetCommentsResponse](getCommentsHandler))

	protectedRoutes := fiberApp.Group("/api/v1", middleware.NewAuthMiddleware(tokenManager))
	protectedRoutes.Post("/items", handle[app.CreateItemRequest, app.CreateItemResponse](createItemHandler))
	protectedRoutes.Post("/items/:id/image", handle[app.UploadItemImageRequest, app.UploadItemImageResponse](uploadItemImageHandler))
	protectedRoutes.Post("/items/:id/comments", handle[app.CreateCommentRequest, app.CreateCommentResponse](createCommentHandler))

	// Start server in a goroutine
	go func() {
		if err := fiberApp.Listen(fmt.Sprintf("0.0.0.0:%s", appConfig.Port)); err != nil {
			zap.L().Error("Failed to start server", zap.Error(err))
			os.Exit(1)
		}
	}()

	zap.L().Info("Server started on port", zap.String("port", appConfig.Port))

	gracefulShutdown(fiberApp)
}

func gracefulShutdown(fiberApp *fiber.App) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	zap.L().Info("Shutting down server...")

	if err := fiberApp.ShutdownWithTimeout(5 * time.Second); err != nil {
		zap.L().Error("Error during server shutdown", zap.Error(err))
	}

	zap.L().Info("Server gracefully stopped")
}

func writeError(c *fiber.Ctx, err error) error {
	var httpErr *httperror.Error
	if errors.As(err, &httpErr) {
		payload := fiber.Map{
			"code":    httpErr.Code,
			"message": httpErr.Message,
		}

		if httpErr.Details != nil {
			payload["details"] = httpErr.Details
		}

		if httpErr.Status >= fiber.StatusInternalServerError {
			zap.L().Error("Handler returned server error", zap.String("code", httpErr.Code), zap.Error(httpErr))
		} else {
			zap.L().Warn("Handler returned client error", zap.String("code", httpErr.Code), zap.Error(httpErr))
		}

		return c.Status(httpErr.Status).JSON(payload)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		zap.L().Warn("Fiber validation error", zap.String("message", fiberErr.Message), zap.Error(err))
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"code":    "request.invalid",
			"message": fiberErr.Message,
		})
	}

	zap.L().Error("Unhandled error", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"code":    "internal_server_error",
		"message": "Internal server error.",
	})
}
