package cli

import (
	"fmt"
	"time"

	"github.com/aretw0/machi/pkg/adapters/file"
	"github.com/aretw0/machi/pkg/adapters/memory"
	"github.com/aretw0/machi/pkg/adapters/redis"
	"github.com/aretw0/machi/pkg/persistence/middleware"
	"github.com/aretw0/machi/pkg/ports"
)

// Store kinds accepted by OpenStore.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// StoreConfig selects and configures a session store.
type StoreConfig struct {
	Kind string
	Dir  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	// EncryptionKey, when set, seals every stored state with AES-256-GCM.
	EncryptionKey []byte
}

// Stores is an opened session store with its optional locker.
type Stores struct {
	State  ports.StateStore
	Locker ports.DistributedLocker
	close  func() error
}

// Close releases the store connections.
func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStore builds the store named by cfg.Kind. Redis stores come with a
// distributed locker on the same connection.
func OpenStore(cfg StoreConfig) (*Stores, error) {
	stores, err := openStore(cfg)
	if err != nil || len(cfg.EncryptionKey) == 0 {
		return stores, err
	}
	mw, err := middleware.NewEncryption(middleware.EncryptionConfig{ActiveKey: cfg.EncryptionKey})
	if err != nil {
		stores.Close()
		return nil, err
	}
	stores.State = middleware.Chain(stores.State, mw)
	return stores, nil
}

func openStore(cfg StoreConfig) (*Stores, error) {
	switch cfg.Kind {
	case "", StoreMemory:
		return &Stores{State: memory.NewStore()}, nil
	case StoreFile:
		dir := cfg.Dir
		if dir == "" {
			dir = file.DefaultDir
		}
		return &Stores{State: file.New(dir)}, nil
	case StoreRedis:
		var opts []redis.Option
		if cfg.RedisTTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.RedisTTL))
		}
		store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, opts...)
		return &Stores{
			State:  store,
			Locker: redis.NewLocker(store.Client(), redis.DefaultPrefix),
			close:  store.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown store %q (want memory, file or redis)", cfg.Kind)
}
