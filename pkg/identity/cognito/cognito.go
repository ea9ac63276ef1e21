// Package cognito implements identity.Provider on top of an Amazon Cognito
// user pool using admin password authentication.
package cognito

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-lfs/pkg/identity"
)

// API is the subset of the Cognito identity provider client used here.
type API interface {
	AdminInitiateAuth(ctx context.Context, params *cip.AdminInitiateAuthInput, optFns ...func(*cip.Options)) (*cip.AdminInitiateAuthOutput, error)
	AdminSetUserPassword(ctx context.Context, params *cip.AdminSetUserPasswordInput, optFns ...func(*cip.Options)) (*cip.AdminSetUserPasswordOutput, error)
}

var _ API = (*cip.Client)(nil)

// Options configures a Provider.
type Options struct {
	Region       string
	UserPoolID   string
	ClientID     string
	ClientSecret string
}

// Provider is a Cognito backed identity.Provider.
type Provider struct {
	api    API
	opts   Options
	logger *log.Logger
}

var _ identity.Provider = (*Provider)(nil)

// New loads the default AWS configuration and returns a Provider talking to
// the user pool described by opts.
func New(ctx context.Context, opts Options) (*Provider, error) {
	var cfgOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		cfgOpts = append(cfgOpts, config.WithRegion(opts.Region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, cfgOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return NewWithClient(ctx, cip.NewFromConfig(awsCfg), opts), nil
}

// NewWithClient returns a Provider using the given client.
func NewWithClient(ctx context.Context, api API, opts Options) *Provider {
	return &Provider{
		api:    api,
		opts:   opts,
		logger: log.FromContext(ctx).WithPrefix("identity.cognito"),
	}
}

// SecretHash computes the SECRET_HASH parameter required by user pool
// clients that have a client secret: base64(HMAC-SHA256(secret, id+clientID)).
func SecretHash(id, clientID, clientSecret string) string {
	mac := hmac.New(sha256.New, []byte(clientSecret))
	mac.Write([]byte(id + clientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify implements identity.Provider.
func (p *Provider) Verify(ctx context.Context, id, secret string) error {
	out, err := p.api.AdminInitiateAuth(ctx, &cip.AdminInitiateAuthInput{
		UserPoolId: aws.String(p.opts.UserPoolID),
		ClientId:   aws.String(p.opts.ClientID),
		AuthFlow:   types.AuthFlowTypeAdminNoSrpAuth,
		AuthParameters: map[string]string{
			"USERNAME":    id,
			"PASSWORD":    secret,
			"SECRET_HASH": SecretHash(id, p.opts.ClientID, p.opts.ClientSecret),
		},
	})
	if err != nil {
		return mapError(err)
	}

	if out != nil && out.ChallengeName != "" {
		p.logger.Debug("authentication challenge", "user", id, "challenge", out.ChallengeName)
	}

	return nil
}

// SetSecret implements identity.Provider. The new password is permanent.
func (p *Provider) SetSecret(ctx context.Context, id, newSecret string) error {
	if _, err := p.api.AdminSetUserPassword(ctx, &cip.AdminSetUserPasswordInput{
		UserPoolId: aws.String(p.opts.UserPoolID),
		Username:   aws.String(id),
		Password:   aws.String(newSecret),
		Permanent:  true,
	}); err != nil {
		return mapError(err)
	}

	p.logger.Info("password updated", "user", id)
	return nil
}

func mapError(err error) error {
	var (
		notAuthorized *types.NotAuthorizedException
		notFound      *types.UserNotFoundException
		notConfirmed  *types.UserNotConfirmedException
		resetRequired *types.PasswordResetRequiredException
	)
	switch {
	case errors.As(err, &notAuthorized),
		errors.As(err, &notFound),
		errors.As(err, &notConfirmed),
		errors.As(err, &resetRequired):
		return fmt.Errorf("%w: %v", identity.ErrInvalidCredentials, err)
	default:
		return fmt.Errorf("cognito: %w", err)
	}
}
