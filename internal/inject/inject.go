package inject

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/dmorgan81/tryonbot/internal/handler"
	"github.com/dmorgan81/tryonbot/internal/image"
	"github.com/dmorgan81/tryonbot/internal/log"
	"github.com/dmorgan81/tryonbot/internal/metrics"
	"github.com/dmorgan81/tryonbot/internal/page"
	"github.com/dmorgan81/tryonbot/internal/param"
	"github.com/dmorgan81/tryonbot/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/do"
	"github.com/samber/lo"
	"google.golang.org/genai"
)

var errNoAPIKey = errors.New(EnvGeminiAPIKey + " or " + EnvGeminiAPIKeyParam + " is required")

func Setup(ctx context.Context) *do.Injector {
	log := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		},
	})
	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return config.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		return ssm.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[param.Fetcher](injector, param.NewParameterStoreFetcher)

	do.ProvideNamed[string](injector, "gemini_api_key", func(i *do.Injector) (string, error) {
		if key, ok := lo.Coalesce(os.Getenv(EnvGeminiAPIKey), os.Getenv(EnvGoogleAPIKey)); ok {
			return key, nil
		}
		if path := os.Getenv(EnvGeminiAPIKeyParam); path != "" {
			return do.MustInvoke[param.Fetcher](i).Fetch(ctx, path)
		}
		return "", errNoAPIKey
	})
	do.ProvideNamed[int](injector, "max_image_edge", func(i *do.Injector) (int, error) {
		v := os.Getenv(EnvMaxImageEdge)
		if v == "" {
			return defaultMaxImageEdge, nil
		}
		edge, err := strconv.Atoi(v)
		if err != nil || edge < 0 {
			return 0, fmt.Errorf("%s must be a non-negative integer, got %q", EnvMaxImageEdge, v)
		}
		return edge, nil
	})
	do.ProvideNamedValue[string](injector, "gemini_model",
		lo.Ternary(os.Getenv(EnvGeminiModel) != "", os.Getenv(EnvGeminiModel), image.DefaultGeminiModel))
	do.ProvideNamedValue[string](injector, "addr",
		":"+lo.Ternary(os.Getenv(EnvPort) != "", os.Getenv(EnvPort), "8080"))

	do.Provide[*genai.Client](injector, func(i *do.Injector) (*genai.Client, error) {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  do.MustInvokeNamed[string](i, "gemini_api_key"),
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("creating genai client: %w", err)
		}
		return client, nil
	})
	do.Provide[image.Generator](injector, func(i *do.Injector) (image.Generator, error) {
		client := do.MustInvoke[*genai.Client](i)
		return image.NewGeminiGenerator(client.Models, do.MustInvokeNamed[string](i, "gemini_model")), nil
	})

	do.Provide[*prometheus.Registry](injector, func(i *do.Injector) (*prometheus.Registry, error) {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		return reg, nil
	})
	do.Provide[*metrics.Metrics](injector, func(i *do.Injector) (*metrics.Metrics, error) {
		return metrics.New(do.MustInvoke[*prometheus.Registry](i)), nil
	})

	do.Provide[*page.Templator](injector, page.NewTemplator)
	do.Provide[*handler.Handler](injector, handler.NewHandler)
	do.Provide[*server.Server](injector, server.NewServer)

	return injector
}
