package sms

import "context"

type Provider interface {
	Send(ctx context.Context, to string, message string) error
}

// NoOpProvider is the default implementation; gateway integration is left to
// deployments that carry their own Provider.
type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, to string, message string) error {
	return nil
}
