package client

import "context"

// limitador caps the number of requests in flight against the API.
type limitador struct {
	sem chan struct{}
}

func newLimitador(max int) *limitador {
	if max < 1 {
		max = 1
	}
	return &limitador{sem: make(chan struct{}, max)}
}

func (l *limitador) adquirir(ctx context.Context) error {
	select {
	case l.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *limitador) liberar() {
	<-l.sem
}
