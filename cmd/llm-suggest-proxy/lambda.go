package main

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/spf13/cobra"

	"llm-suggest-proxy/internal/envelope"
	"llm-suggest-proxy/internal/gateway"
	"llm-suggest-proxy/internal/upstream"
)

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Run as an AWS Lambda function",
	Long: `Run as an AWS Lambda function behind a function URL or API Gateway.
The config path may also be given in the ` + configEnv + ` environment variable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		// Lambda ships logs from stdout; there is no scrape target.
		service := gateway.NewService(cfg, upstream.NewClient(), nil, newLogger(cfg.Log))
		lambda.Start(lambdaHandler(service))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lambdaCmd)
}

func lambdaHandler(service *gateway.Service) func(context.Context, json.RawMessage) (envelope.Envelope, error) {
	return func(ctx context.Context, raw json.RawMessage) (envelope.Envelope, error) {
		if lc, ok := lambdacontext.FromContext(ctx); ok {
			ctx = gateway.ContextWithRequestID(ctx, lc.AwsRequestID)
		}
		return service.HandleEvent(ctx, raw), nil
	}
}
