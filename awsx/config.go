package awsx

import (
	"context"
	"fmt"
	"os"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
)

// LoadConfig loads the default AWS config. Setting AWS_ENDPOINT points all
// SDK clients at that URL instead of AWS, which is how LocalStack is wired
// in local compose setups.
func LoadConfig(ctx context.Context) (sdkaws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return cfg, fmt.Errorf("failed to load aws config: %w", err)
	}

	if endpoint := os.Getenv("AWS_ENDPOINT"); endpoint != "" {
		signingRegion := cfg.Region
		if signingRegion == "" {
			signingRegion = os.Getenv("AWS_REGION")
		}
		cfg.EndpointResolverWithOptions = sdkaws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (sdkaws.Endpoint, error) {
				sr := signingRegion
				if sr == "" {
					sr = region
				}
				return sdkaws.Endpoint{
					URL:               endpoint,
					SigningRegion:     sr,
					HostnameImmutable: true,
				}, nil
			})
	}

	return cfg, nil
}
