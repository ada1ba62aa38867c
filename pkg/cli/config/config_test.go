package config_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/fusa-lab/talos/pkg/cli/config"
)

func TestLogger_Configure(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := config.NewLoggerForTest("info", "console", "stdout")
		closer, err := cfg.Configure()
		gt.NoError(t, err).Required()
		closer()
	})

	t.Run("json to stderr", func(t *testing.T) {
		cfg := config.NewLoggerForTest("debug", "json", "stderr")
		closer, err := cfg.Configure()
		gt.NoError(t, err).Required()
		closer()
	})

	t.Run("invalid level", func(t *testing.T) {
		cfg := config.NewLoggerForTest("verbose", "console", "stdout")
		_, err := cfg.Configure()
		gt.Error(t, err)
	})

	t.Run("invalid format", func(t *testing.T) {
		cfg := config.NewLoggerForTest("info", "xml", "stdout")
		_, err := cfg.Configure()
		gt.Error(t, err)
	})
}

func TestGemini_Configure(t *testing.T) {
	t.Run("returns nil client when project ID is empty", func(t *testing.T) {
		cfg := config.NewGeminiForTest("", "us-central1")
		client, err := cfg.Configure(t.Context())
		gt.NoError(t, err)
		gt.Value(t, client).Nil()
	})

	t.Run("returns flags", func(t *testing.T) {
		cfg := config.NewGeminiForTest("", "")
		flags := cfg.Flags()
		gt.Value(t, len(flags)).Equal(2)
	})
}

func TestRepository_Configure(t *testing.T) {
	ctx := context.Background()

	t.Run("memory backend", func(t *testing.T) {
		cfg := config.NewRepositoryForTest("memory", "", "")
		repo, err := cfg.Configure(ctx)
		gt.NoError(t, err).Required()
		gt.Bool(t, repo != nil).True()
	})

	t.Run("firestore requires project ID", func(t *testing.T) {
		cfg := config.NewRepositoryForTest("firestore", "", "")
		_, err := cfg.Configure(ctx)
		gt.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := config.NewRepositoryForTest("etcd", "", "")
		_, err := cfg.Configure(ctx)
		gt.Error(t, err)
	})
}
