package crawler

import (
	"context"
	"math/rand/v2"
	"time"
)

// jitter devolve d acrescido de até 50% aleatórios, para que o intervalo entre
// requisições não forme um padrão fácil de detectar.
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + time.Duration(rand.Int64N(int64(d)/2+1))
}

// sleepCtx dorme por d ou até ctx ser cancelado.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
