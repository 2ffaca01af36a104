package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/wolfman30/meeting-assistant/internal/app/bootstrap"
	appconfig "github.com/wolfman30/meeting-assistant/internal/config"
	"github.com/wolfman30/meeting-assistant/internal/dialogue"
	httpmiddleware "github.com/wolfman30/meeting-assistant/internal/http/middleware"
	"github.com/wolfman30/meeting-assistant/pkg/logging"
)

func main() {
	cfg := appconfig.Load()
	logger := logging.NewWithOptions(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if !cfg.UsesRedisSessions() {
		logger.Warn("voice lambda running with in-memory sessions; turns will not survive cold starts")
	}

	rt, err := bootstrap.BuildRuntime(context.Background(), cfg, nil, logger)
	if err != nil {
		logger.Error("failed to build dialogue runtime", "error", err)
		os.Exit(1)
	}
	defer rt.Close()

	turns := dialogue.NewHandler(rt.Engine, logger)
	lambda.Start(func(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return handle(ctx, turns, evt)
	})
}

func handle(ctx context.Context, turns *dialogue.Handler, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))
	path := strings.TrimSpace(evt.RawPath)
	if path == "" {
		path = strings.TrimSpace(evt.RequestContext.HTTP.Path)
	}

	if path == "/health" || path == "/_health" {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusOK, Body: "ok"}, nil
	}

	if path != "/process" {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusNotFound}, nil
	}
	if method != http.MethodPost {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusMethodNotAllowed}, nil
	}

	body, err := decodeBody(evt)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusBadRequest, Body: "invalid body"}, nil
	}

	var req dialogue.ProcessRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusBadRequest, Body: "Invalid request body"}, nil
	}

	reply, sessionID, err := turns.Turn(ctx, req, headerValue(evt.Headers, httpmiddleware.SessionHeader))
	var reqErr *dialogue.RequestError
	switch {
	case errors.As(err, &reqErr):
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusBadRequest, Body: reqErr.Message}, nil
	case err != nil:
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusInternalServerError, Body: "Failed to process transcript"}, nil
	}

	payload, err := json.Marshal(reply)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusInternalServerError}, nil
	}
	headers := map[string]string{"content-type": "application/json"}
	headers[strings.ToLower(httpmiddleware.SessionHeader)] = sessionID
	return events.APIGatewayV2HTTPResponse{
		StatusCode: dialogue.StatusCode(reply),
		Body:       string(payload),
		Headers:    headers,
	}, nil
}

func decodeBody(evt events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if !evt.IsBase64Encoded {
		return []byte(evt.Body), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(evt.Body)
	if err != nil {
		return nil, err
	}
	return decoded, nil
}

func headerValue(headers map[string]string, key string) string {
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
