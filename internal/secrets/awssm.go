package secrets

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/secretsmanager/secretsmanageriface"
)

// SecretsManagerProvider resolves secrets from AWS Secrets Manager.
type SecretsManagerProvider struct {
	client secretsmanageriface.SecretsManagerAPI
}

// NewSecretsManagerProvider builds a provider against the given region
// using the default AWS credential chain.
func NewSecretsManagerProvider(region string) (*SecretsManagerProvider, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSecretUnavailable, err)
	}
	return &SecretsManagerProvider{client: secretsmanager.New(sess)}, nil
}

func (p *SecretsManagerProvider) Get(ctx context.Context, name string) (string, error) {
	out, err := p.client.GetSecretValueWithContext(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrSecretUnavailable, name, err)
	}
	if out.SecretString == nil || *out.SecretString == "" {
		return "", fmt.Errorf("%w: %s has no string value", ErrSecretUnavailable, name)
	}
	return *out.SecretString, nil
}
