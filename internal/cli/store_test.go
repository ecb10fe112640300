package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/machi/pkg/domain"
	"github.com/aretw0/machi/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		cfg        StoreConfig
		wantLocker bool
	}{
		{name: "default", cfg: StoreConfig{}},
		{name: "memory", cfg: StoreConfig{Kind: StoreMemory}},
		{name: "file", cfg: StoreConfig{Kind: StoreFile, Dir: t.TempDir()}},
		{name: "redis", cfg: StoreConfig{Kind: StoreRedis, RedisAddr: mr.Addr(), RedisTTL: time.Hour}, wantLocker: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stores, err := OpenStore(tt.cfg)
			require.NoError(t, err)
			defer func() { assert.NoError(t, stores.Close()) }()

			assert.Equal(t, tt.wantLocker, stores.Locker != nil)

			require.NoError(t, stores.State.Save(ctx, "s1", domain.NewState("s1", map[string]any{"k": "v"})))
			got, err := stores.State.Load(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, "v", got.Context["k"])
		})
	}

	_, err := OpenStore(StoreConfig{Kind: "etcd"})
	assert.Error(t, err)

	_, err = OpenStore(StoreConfig{EncryptionKey: []byte("short")})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)
}

func TestOpenStore_Encrypted(t *testing.T) {
	dir := t.TempDir()
	key := bytes.Repeat([]byte{7}, middleware.KeySize)
	ctx := context.Background()

	stores, err := OpenStore(StoreConfig{Kind: StoreFile, Dir: dir, EncryptionKey: key})
	require.NoError(t, err)
	require.NoError(t, stores.State.Save(ctx, "s1", domain.NewState("s1", map[string]any{"secret": "sauce"})))

	raw, err := os.ReadFile(filepath.Join(dir, "s1.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "sauce")

	got, err := stores.State.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "sauce", got.Context["secret"])
}
