package sdk

import (
	"context"
	"fmt"

	"github.com/psds-microservice/tracker-service/internal/errs"
)

// StaticIParams: installation parameters из фиксированной карты (из конфига).
type StaticIParams map[string]string

func (p StaticIParams) Get(_ context.Context, key string) (string, error) {
	v, ok := p[key]
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", errs.ErrMissingIParam, key)
	}
	return v, nil
}
