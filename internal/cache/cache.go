// Package cache implementa o cache em três tiers na frente do repositório.
// Cada chave vai para um tier e recebe um TTL conforme o prefixo; o cache
// nunca é fonte de verdade, então falha de backend vira miss.
package cache

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"catalogsync/internal/logger"
	"catalogsync/internal/observability"
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set grava val; ttl > 0 substitui o TTL da política.
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)
	GetOrSet(ctx context.Context, key string, factory func(ctx context.Context) ([]byte, error)) ([]byte, error)
	Delete(ctx context.Context, key string)
	Flush(ctx context.Context)
	Keys(ctx context.Context) map[Tier][]string
	Stats(ctx context.Context) map[Tier]TierStats
}

type TierStats struct {
	Keys   int    `json:"keys"`
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

type counters struct {
	hits   atomic.Uint64
	misses atomic.Uint64
}

// Tiered roteia cada chave para um Backend por tier.
type Tiered struct {
	policy   Policy
	backends map[Tier]Backend
	counters map[Tier]*counters
	group    singleflight.Group
	log      *zap.Logger

	fillTimeout time.Duration
}

// DefaultFillTimeout limita uma carga de GetOrSet; uma marca grande pode
// levar minutos por causa do atraso entre páginas.
const DefaultFillTimeout = 10 * time.Minute

// New monta o cache. backends sem um tier recebem um MemoryBackend.
func New(policy Policy, backends map[Tier]Backend, log *zap.Logger) *Tiered {
	c := &Tiered{
		policy:   policy,
		backends: make(map[Tier]Backend, len(tiers)),
		counters: make(map[Tier]*counters, len(tiers)),
		log:      logger.OrNop(log),

		fillTimeout: DefaultFillTimeout,
	}
	for _, t := range tiers {
		b, ok := backends[t]
		if !ok || b == nil {
			b = NewMemoryBackend()
		}
		c.backends[t] = b
		c.counters[t] = &counters{}
	}
	return c
}

// NewMemory é o cache todo em memória.
func NewMemory(policy Policy, log *zap.Logger) *Tiered {
	return New(policy, nil, log)
}

func (c *Tiered) Get(ctx context.Context, key string) ([]byte, bool) {
	tier, _ := c.policy.Route(key)
	val, ok, err := c.backends[tier].Get(ctx, key)
	if err != nil {
		c.log.Warn("falha ao ler cache", zap.String("tier", string(tier)), zap.String("key", key), zap.Error(err))
	}
	if ok {
		c.counters[tier].hits.Add(1)
		observability.CacheRequests.WithLabelValues(string(tier), "hit").Inc()
		return val, true
	}
	c.counters[tier].misses.Add(1)
	observability.CacheRequests.WithLabelValues(string(tier), "miss").Inc()
	return nil, false
}

func (c *Tiered) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	tier, routed := c.policy.Route(key)
	if ttl <= 0 {
		ttl = routed
	}
	if err := c.backends[tier].Set(ctx, key, val, ttl); err != nil {
		c.log.Warn("falha ao gravar cache", zap.String("tier", string(tier)), zap.String("key", key), zap.Error(err))
	}
}

// GetOrSet devolve o valor em cache ou chama factory uma única vez por chave,
// mesmo com chamadores concorrentes. Erro da factory não é guardado.
//
// A carga compartilhada roda desligada do cancelamento de quem a iniciou,
// limitada por fillTimeout; cada chamador só espera enquanto o próprio ctx
// estiver vivo.
func (c *Tiered) GetOrSet(ctx context.Context, key string, factory func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	if val, ok := c.Get(ctx, key); ok {
		return val, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		fillCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fillTimeout)
		defer cancel()

		// outro chamador pode ter populado enquanto esperávamos
		tier, _ := c.policy.Route(key)
		if val, ok, _ := c.backends[tier].Get(fillCtx, key); ok {
			return val, nil
		}
		val, err := factory(fillCtx)
		if err != nil {
			return nil, err
		}
		c.Set(fillCtx, key, val, 0)
		return val, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// Delete remove a chave de todos os tiers.
func (c *Tiered) Delete(ctx context.Context, key string) {
	for _, t := range tiers {
		if err := c.backends[t].Delete(ctx, key); err != nil {
			c.log.Warn("falha ao remover do cache", zap.String("tier", string(t)), zap.String("key", key), zap.Error(err))
		}
	}
}

func (c *Tiered) Flush(ctx context.Context) {
	for _, t := range tiers {
		if err := c.backends[t].Flush(ctx); err != nil {
			c.log.Warn("falha ao limpar cache", zap.String("tier", string(t)), zap.Error(err))
		}
	}
}

func (c *Tiered) Keys(ctx context.Context) map[Tier][]string {
	out := make(map[Tier][]string, len(tiers))
	for _, t := range tiers {
		keys, err := c.backends[t].Keys(ctx)
		if err != nil {
			c.log.Warn("falha ao listar chaves", zap.String("tier", string(t)), zap.Error(err))
		}
		out[t] = keys
	}
	return out
}

func (c *Tiered) Stats(ctx context.Context) map[Tier]TierStats {
	keys := c.Keys(ctx)
	out := make(map[Tier]TierStats, len(tiers))
	for _, t := range tiers {
		out[t] = TierStats{
			Keys:   len(keys[t]),
			Hits:   c.counters[t].hits.Load(),
			Misses: c.counters[t].misses.Load(),
		}
	}
	return out
}

// Close para os janitors dos backends em memória.
func (c *Tiered) Close() {
	for _, b := range c.backends {
		if m, ok := b.(*MemoryBackend); ok {
			m.Close()
		}
	}
}
