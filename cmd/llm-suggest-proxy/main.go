// Command llm-suggest-proxy translates editor suggestion requests into OpenAI
// Responses API or Anthropic Messages API calls and relays the answer back in
// one uniform envelope.
//
// Usage:
//
//	# Serve over HTTP for local development
//	llm-suggest-proxy serve --config config.yaml
//
//	# Run as an AWS Lambda function
//	llm-suggest-proxy lambda
package main

func main() {
	Execute()
}
