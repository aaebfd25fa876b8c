package events

import "context"

type NoopPublisher struct{}

func (NoopPublisher) PublishRoutesInvalidated(context.Context, RoutesInvalidated) error {
	return nil
}

func (NoopPublisher) PublishPostPublished(context.Context, PostPublished) error {
	return nil
}

var _ Publisher = (*NoopPublisher)(nil)
