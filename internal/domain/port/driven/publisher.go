package driven

import "context"

// ResultPublisher defines the driven port for pushing collected artifacts to a
// remote after a collection pass.
type ResultPublisher interface {
	// Publish commits and pushes whatever changed under the collection root.
	// When there is nothing new to publish it returns committed false and no
	// error.
	Publish(ctx context.Context, message string) (committed bool, err error)
}
