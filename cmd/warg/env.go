package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/warg/cmd/warg/shaders"
	"github.com/Faultbox/warg/internal/assets"
	"github.com/Faultbox/warg/internal/config"
	"github.com/Faultbox/warg/internal/engine/asset"
	"github.com/Faultbox/warg/internal/logger"
)

// env holds the search paths shared by all commands.
type env struct {
	models   *assets.Manager
	textures *assets.Manager
	shaders  *assets.Manager
	flags    asset.Flags

	scratch string
}

func newEnv(cfg *config.Config) (*env, error) {
	flags, err := asset.ParseFlags(cfg.Assets.ImportFlags)
	if err != nil {
		return nil, err
	}
	return &env{
		models:   assets.NewManager(cfg.Assets.ModelDir),
		textures: assets.NewManager(cfg.Assets.TextureDir),
		shaders:  assets.NewManager(cfg.Assets.ShaderDir),
		flags:    flags,
	}, nil
}

// scratchDir returns a temporary directory removed by close, creating
// it on first use.
func (e *env) scratchDir() (string, error) {
	if e.scratch != "" {
		return e.scratch, nil
	}
	dir, err := os.MkdirTemp("", "warg-")
	if err != nil {
		return "", fmt.Errorf("creating scratch dir: %w", err)
	}
	e.scratch = dir
	return dir, nil
}

// provide writes data as name into the scratch directory and adds it to m
// unless m already resolves name.
func (e *env) provide(m *assets.Manager, name string, data []byte) error {
	_, err := m.Resolve(name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, assets.ErrNotFound) {
		return err
	}
	dir, err := e.scratchDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	m.AddRoot(dir)
	logger.Info("using generated file", zap.String("name", name), zap.String("path", path))
	return nil
}

// provideBenchFiles makes sure the bench asset and the built-in shaders
// resolve, generating the ones that are missing.
func (e *env) provideBenchFiles(cfg *config.Config) error {
	chest, err := asset.Marshal(asset.Chest())
	if err != nil {
		return err
	}
	if err := e.provide(e.models, cfg.Bench.Asset, chest); err != nil {
		return err
	}
	for name, src := range shaders.Files {
		if err := e.provide(e.shaders, name, []byte(src)); err != nil {
			return err
		}
	}
	return nil
}

func (e *env) close() {
	e.models.Close()
	e.textures.Close()
	e.shaders.Close()
	if e.scratch != "" {
		os.RemoveAll(e.scratch)
	}
}
