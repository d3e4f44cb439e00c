// Package file stores flow definitions as one JSON file per flow under a
// root directory.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kmare/flowsync/pkg/models"
	"github.com/kmare/flowsync/pkg/persistence"
)

type Store struct {
	root string
}

// NewStore creates a file-backed flow store rooted at the given
// directory, accepting both plain paths and file:// URLs.
func NewStore(root string) *Store {
	return &Store{
		root: strings.TrimPrefix(root, "file://"),
	}
}

func (s *Store) Flows(ctx context.Context) ([]*models.FlowDefinition, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*models.FlowDefinition{}, nil
		}

		return nil, fmt.Errorf("read flows directory: %w", err)
	}

	flows := make([]*models.FlowDefinition, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		flow, err := s.FlowByID(ctx, strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			return nil, err
		}

		flows = append(flows, flow)
	}

	return flows, nil
}

func (s *Store) FlowByID(_ context.Context, id string) (*models.FlowDefinition, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, persistence.ErrFlowNotFound
		}

		return nil, fmt.Errorf("read flow %s: %w", id, err)
	}

	var flow models.FlowDefinition

	err = json.Unmarshal(data, &flow)
	if err != nil {
		return nil, fmt.Errorf("decode flow %s: %w", id, err)
	}

	return &flow, nil
}

func (s *Store) SaveFlow(_ context.Context, flow *models.FlowDefinition) error {
	err := os.MkdirAll(s.root, 0o755)
	if err != nil {
		return fmt.Errorf("create flows directory: %w", err)
	}

	data, err := json.MarshalIndent(flow, "", "  ")
	if err != nil {
		return fmt.Errorf("encode flow %s: %w", flow.ID, err)
	}

	err = os.WriteFile(s.path(flow.ID), data, 0o644)
	if err != nil {
		return fmt.Errorf("write flow %s: %w", flow.ID, err)
	}

	return nil
}

func (s *Store) DeleteFlow(_ context.Context, id string) error {
	err := os.Remove(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return persistence.ErrFlowNotFound
	}

	return err
}

func (s *Store) HealthCheck(_ context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.root)
	}

	return nil
}

func (s *Store) Close(_ context.Context) error {
	return nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.root, id+".json")
}
