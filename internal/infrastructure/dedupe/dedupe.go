package dedupe

import (
	"context"
	"fmt"
	"time"

	"github.com/flowfix/flowfix-api/pkg/config"
	"github.com/redis/go-redis/v9"
)

// Deduper descarta eventos ya procesados usando SetNX con TTL. Es un guard de
// conveniencia, no la fuente de verdad: el update condicional en la base
// decide la idempotencia real, así que ante un redis caído se deja pasar
// (fail-open).
type Deduper struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewDeduper construye el guard desde la configuración. Addr vacío devuelve
// nil: los casos de uso tratan un deduper nil como guard desactivado.
func NewDeduper(cfg config.RedisConfig, ttl time.Duration) *Deduper {
	if cfg.Addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Deduper{rdb: rdb, ttl: ttl}
}

// AcquireOnce intenta adquirir el lock de dedupe para scope+id.
// true la primera vez; false si es un duplicado dentro del TTL.
func (d *Deduper) AcquireOnce(ctx context.Context, scope, id string) bool {
	key := fmt.Sprintf("dedup:%s:%s", scope, id)
	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		// Redis no disponible: no bloquear el procesamiento.
		return true
	}
	return ok
}

// Release libera la clave de dedupe de scope+id. Se usa cuando el
// procesamiento del evento falló después de adquirir: el reintento con el
// mismo id debe volver a pasar. Un fallo de redis aquí se ignora (el TTL
// termina limpiando la clave).
func (d *Deduper) Release(ctx context.Context, scope, id string) {
	key := fmt.Sprintf("dedup:%s:%s", scope, id)
	d.rdb.Del(ctx, key)
}

// Close cierra la conexión a redis.
func (d *Deduper) Close() error {
	if d == nil {
		return nil
	}
	return d.rdb.Close()
}
