// Command envinfo is the serverless counterpart of GET /api/environment.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/geoform/intake-service/internal/services"
	"github.com/geoform/intake-service/internal/utils"
)

func handler(getenv func(string) string, now func() time.Time) func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		body, err := json.Marshal(services.EnvironmentInfo(getenv("ENV"), now()))
		if err != nil {
			return events.APIGatewayProxyResponse{}, err
		}
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       string(body),
		}, nil
	}
}

func main() {
	utils.InitLogger(utils.DefaultAppName + "-envinfo")
	lambda.Start(handler(os.Getenv, time.Now))
}
