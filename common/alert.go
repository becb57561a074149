package common

import (
	"log"

	raven "github.com/getsentry/raven-go"
)

// Alerter reports faults that need an operator to look at them.
type Alerter interface {
	Alert(err error, tags map[string]string)
}

// RavenAlerter sends alerts to Sentry. A client created with an empty DSN
// drops every event, so it is safe to use without a Sentry project.
type RavenAlerter struct {
	client *raven.Client
}

func NewRavenAlerter(dsn string, env string) (*RavenAlerter, error) {
	client, err := raven.NewWithTags(dsn, map[string]string{"env": env})
	if err != nil {
		return nil, err
	}
	return &RavenAlerter{client: client}, nil
}

// Client returns the underlying Sentry client, for middlewares.
func (self *RavenAlerter) Client() *raven.Client {
	return self.client
}

func (self *RavenAlerter) Alert(err error, tags map[string]string) {
	log.Printf("ALERT: %s, tags: %v", err, tags)
	self.client.CaptureError(err, tags)
}
