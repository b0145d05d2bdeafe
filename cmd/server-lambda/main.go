package main

import (
	"context"
	"log"
	"os"
	"time"

	"example/aoe4-reviewer/app"
	"example/aoe4-reviewer/app/config"
	"example/aoe4-reviewer/auth"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
)

// lambdaDataDir is the only writable path inside a Lambda container.
const lambdaDataDir = "/tmp/data"

const janitorEvery = 5 * time.Minute

var ginLambda *ginadapter.GinLambda

// init runs once per container (cold start).
func init() {
	if os.Getenv("DATA_DIR") == "" {
		_ = os.Setenv("DATA_DIR", lambdaDataDir)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	app.ConfigureLogging(cfg.Logs)

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("failed to load display timezone: %v", err)
	}
	deps := app.ServerDeps{Location: loc}
	ctx := context.Background()
	// Without Redis each warm container keeps its own sessions.
	sessions, _, err := app.OpenSessions(ctx, cfg.Sessions, janitorEvery)
	if err != nil {
		log.Fatalf("failed to open sessions: %v", err)
	}
	deps.Sessions = sessions

	if cfg.DB.Enabled() {
		idx, err := app.OpenIndex(ctx, cfg.DB)
		if err != nil {
			log.Fatalf("failed to open review index: %v", err)
		}
		deps.Index = idx
	}
	if cfg.QueueURL != "" {
		n, err := app.NewSQSNotifierFromEnv(ctx, cfg.QueueURL)
		if err != nil {
			log.Fatalf("failed to initialize notifier: %v", err)
		}
		deps.Notifier = n
	}

	var verifier *auth.Verifier
	if cfg.Auth.Enabled() {
		verifier, err = auth.NewVerifier(cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.JWKSURL)
		if err != nil {
			log.Fatalf("failed to initialize auth: %v", err)
		}
	}

	router, err := app.NewRouter(app.NewServer(cfg, deps), verifier)
	if err != nil {
		log.Fatalf("failed to initialize router: %v", err)
	}
	ginLambda = ginadapter.New(router)
}

// Handler is the entrypoint for API Gateway proxy integrations.
func Handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return ginLambda.ProxyWithContext(ctx, req)
}

func main() {
	lambda.Start(Handler)
}
