package predictor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

// Backend names.
const (
	BackendArtifact = "artifact"
	BackendRemote   = "remote"
)

// Options selects and configures a backend.
type Options struct {
	Backend        string
	ModelDir       string
	RegressorFile  string
	ForecasterFile string
	ServerURL      string
	ServerTimeout  time.Duration
}

// Load builds the models once at startup.
func Load(ctx context.Context, opts Options) (*Set, error) {
	switch opts.Backend {
	case BackendArtifact, "":
		return LoadArtifacts(opts.ModelDir, opts.RegressorFile, opts.ForecasterFile)
	case BackendRemote:
		return ConnectRemote(ctx, opts.ServerURL, opts.ServerTimeout)
	default:
		return nil, fmt.Errorf("unknown predictor backend %q", opts.Backend)
	}
}

// LoadArtifacts reads the regressor and forecaster artifacts from dir.
func LoadArtifacts(dir, regressorFile, forecasterFile string) (*Set, error) {
	regPath := filepath.Join(dir, regressorFile)
	reg, err := readArtifact(regPath, ReadTreeEnsemble)
	if err != nil {
		return nil, err
	}
	log.Infof("[PREDICTOR] loaded regressor from %s (%d trees)", regPath, len(reg.trees))

	fcPath := filepath.Join(dir, forecasterFile)
	fc, err := readArtifact(fcPath, ReadAdditiveForecaster)
	if err != nil {
		return nil, err
	}
	log.Infof("[PREDICTOR] loaded forecaster from %s (%d seasonalities)", fcPath, len(fc.seasonalities))

	return &Set{Regressor: reg, Forecaster: fc, Backend: BackendArtifact}, nil
}

// ConnectRemote builds both models on one model server and checks it is up.
func ConnectRemote(ctx context.Context, url string, timeout time.Duration) (*Set, error) {
	m, err := NewRemoteModel(url, timeout)
	if err != nil {
		return nil, err
	}
	if err := m.Ping(ctx); err != nil {
		return nil, err
	}
	log.Infof("[PREDICTOR] using model server at %s", m.baseURL)
	return &Set{Regressor: m, Forecaster: m, Backend: BackendRemote}, nil
}

func readArtifact[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("open model artifact: %w", err)
	}
	defer f.Close()
	v, err := read(f)
	if err != nil {
		return zero, fmt.Errorf("load %s: %w", path, err)
	}
	return v, nil
}
