// Package model wraps the trained gravity classifier behind a small predict
// interface. The trained model ships as a versioned, self-describing JSON
// artifact (feature names and order, class labels, hyperparameters recorded
// next to the tree weights) so compatibility with the runtime feature schema
// is checked before any inference, and a mismatch fails fast instead of
// silently misaligning columns.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/linnemanlabs/sentinelle/internal/features"
	"github.com/linnemanlabs/sentinelle/internal/patient"
)

// Sentinel errors of the ML path. Both are recoverable: the caller falls
// back to rule-only grading and labels the result accordingly.
var (
	// ErrUnavailable means no model artifact is loaded.
	ErrUnavailable = errors.New("model unavailable")

	// ErrInference means the input does not fit the loaded artifact.
	ErrInference = errors.New("inference failed")
)

// artifactFormat is the supported artifact file format revision.
const artifactFormat = 1

// Node is one decision node of a regression tree. Leaf nodes carry the
// margin contribution; split nodes route on feature < threshold.
type Node struct {
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
	Leaf      bool    `json:"leaf,omitempty"`
	Value     float64 `json:"value,omitempty"`
}

// Tree is one boosted regression tree contributing to a single class margin.
type Tree struct {
	Class int    `json:"class"`
	Nodes []Node `json:"nodes"`
}

// Hyperparameters records how the artifact was trained. Informational; kept
// in the artifact so a model is auditable without the training pipeline.
type Hyperparameters struct {
	NEstimators  int     `json:"n_estimators"`
	MaxDepth     int     `json:"max_depth"`
	LearningRate float64 `json:"learning_rate"`
}

// Artifact is the on-disk model: weights plus everything needed to verify
// it matches the runtime feature contract. Immutable after load.
type Artifact struct {
	FormatVersion        int             `json:"format_version"`
	ModelVersion         string          `json:"model_version"`
	TrainedAt            time.Time       `json:"trained_at"`
	FeatureSchemaVersion string          `json:"feature_schema_version"`
	FeatureNames         []string        `json:"feature_names"`
	Classes              []string        `json:"classes"`
	BaseScore            float64         `json:"base_score"`
	Hyperparameters      Hyperparameters `json:"hyperparameters"`
	Trees                []Tree          `json:"trees"`
}

// Load reads and verifies an artifact file. Any failure wraps
// ErrUnavailable: the file may be absent, unreadable, malformed, or
// declared against a different feature schema.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read artifact %s: %w", ErrUnavailable, path, err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: parse artifact %s: %w", ErrUnavailable, path, err)
	}

	if err := a.verify(); err != nil {
		return nil, fmt.Errorf("%w: artifact %s: %w", ErrUnavailable, path, err)
	}

	return &a, nil
}

// verify checks internal consistency and compatibility with the runtime
// feature schema.
func (a *Artifact) verify() error {
	if a.FormatVersion != artifactFormat {
		return fmt.Errorf("unsupported artifact format %d (runtime supports %d)", a.FormatVersion, artifactFormat)
	}
	if a.ModelVersion == "" {
		return errors.New("artifact missing model_version")
	}

	if err := features.CheckCompatible(a.FeatureSchemaVersion, a.FeatureNames); err != nil {
		return err
	}

	if len(a.Classes) == 0 {
		return errors.New("artifact declares no classes")
	}
	for _, c := range a.Classes {
		if _, err := patient.ParseGravity(c); err != nil {
			return fmt.Errorf("artifact class: %w", err)
		}
	}

	if len(a.Trees) == 0 {
		return errors.New("artifact contains no trees")
	}
	for i, tr := range a.Trees {
		if tr.Class < 0 || tr.Class >= len(a.Classes) {
			return fmt.Errorf("tree %d targets unknown class %d", i, tr.Class)
		}
		if len(tr.Nodes) == 0 {
			return fmt.Errorf("tree %d has no nodes", i)
		}
		for j, n := range tr.Nodes {
			if n.Leaf {
				continue
			}
			if n.Feature < 0 || n.Feature >= len(a.FeatureNames) {
				return fmt.Errorf("tree %d node %d splits on unknown feature %d", i, j, n.Feature)
			}
			if n.Left < 0 || n.Left >= len(tr.Nodes) || n.Right < 0 || n.Right >= len(tr.Nodes) {
				return fmt.Errorf("tree %d node %d has out-of-range children", i, j)
			}
		}
	}

	return nil
}
