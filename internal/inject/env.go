package inject

import "os"

const (
	EnvGeminiAPIKey      = "GEMINI_API_KEY"
	EnvGoogleAPIKey      = "GOOGLE_API_KEY"
	EnvGeminiAPIKeyParam = "GEMINI_API_KEY_PARAM"
	EnvGeminiModel       = "GEMINI_MODEL"
	EnvMaxImageEdge      = "MAX_IMAGE_EDGE"
	EnvPort              = "PORT"

	EnvLambdaFunctionName = "AWS_LAMBDA_FUNCTION_NAME"
)

const defaultMaxImageEdge = 2048

// InLambda reports whether the process was started by the Lambda runtime.
func InLambda() bool {
	return os.Getenv(EnvLambdaFunctionName) != ""
}
