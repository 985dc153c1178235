package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// NewSSMClient builds a Parameter Store client from the default credential chain
func NewSSMClient(ctx context.Context, region string) (*ssm.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return ssm.NewFromConfig(cfg), nil
}

/*
LoadSSM copies every parameter stored below path into cfg.

Parameter names are turned into keys by dropping the path and upper-casing
the rest, with "/", "-" and "." replaced by "_":

	/blog/prod/jwt-secret    -> JWT_SECRET
	/blog/prod/s3/bucket     -> S3_BUCKET

Keys that are already present in cfg are left alone so the process
environment can override Parameter Store. It returns the number of keys set.
*/
func LoadSSM(ctx context.Context, client ssm.GetParametersByPathAPIClient, path string, cfg map[string]string) (int, error) {
	prefix := strings.TrimSuffix(path, "/") + "/"

	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(path),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})

	set := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return set, fmt.Errorf("get parameters by path %s: %w", path, err)
		}

		for _, param := range page.Parameters {
			key := parameterKey(prefix, aws.ToString(param.Name))
			if key == "" {
				continue
			}
			if _, exists := cfg[key]; exists {
				continue
			}
			cfg[key] = aws.ToString(param.Value)
			set++
		}
	}

	return set, nil
}

var keyReplacer = strings.NewReplacer("/", "_", "-", "_", ".", "_")

func parameterKey(prefix, name string) string {
	name = strings.TrimPrefix(name, prefix)
	name = strings.Trim(name, "/")
	return strings.ToUpper(keyReplacer.Replace(name))
}
