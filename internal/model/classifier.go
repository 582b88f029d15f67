package model

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/linnemanlabs/sentinelle/internal/features"
	"github.com/linnemanlabs/sentinelle/internal/patient"
)

// Prediction is the classifier's verdict for one feature vector.
type Prediction struct {
	Level         patient.GravityLevel
	Confidence    float64            // probability mass of the predicted class
	Probabilities map[string]float64 // class label -> probability
	ModelVersion  string
}

// Classifier serves predictions from the currently loaded artifact. The
// artifact is held behind an atomic pointer: predictions running during a
// reload keep the artifact they started with, and the swap is a single
// pointer store, so a reader never observes a partially loaded model.
// Safe for concurrent use.
type Classifier struct {
	artifact atomic.Pointer[loadedArtifact]
}

type loadedArtifact struct {
	*Artifact
	loadedAt time.Time
}

// NewClassifier returns an empty classifier. Predict returns ErrUnavailable
// until Reload succeeds; the triage pipeline treats that as the rules-only
// degraded mode, not a fatal condition.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Reload loads the artifact at path and atomically swaps it in. On failure
// the previous artifact (if any) stays active.
func (c *Classifier) Reload(path string) error {
	a, err := Load(path)
	if err != nil {
		return err
	}
	c.artifact.Store(&loadedArtifact{Artifact: a, loadedAt: time.Now()})
	return nil
}

// Manifest describes the loaded artifact for the model-administration API.
type Manifest struct {
	ModelVersion         string          `json:"model_version"`
	FeatureSchemaVersion string          `json:"feature_schema_version"`
	FeatureNames         []string        `json:"feature_names"`
	Classes              []string        `json:"classes"`
	Hyperparameters      Hyperparameters `json:"hyperparameters"`
	TrainedAt            time.Time       `json:"trained_at"`
	LoadedAt             time.Time       `json:"loaded_at"`
}

// Manifest returns the loaded artifact's description, or false when the
// classifier is empty.
func (c *Classifier) Manifest() (*Manifest, bool) {
	la := c.artifact.Load()
	if la == nil {
		return nil, false
	}
	return &Manifest{
		ModelVersion:         la.ModelVersion,
		FeatureSchemaVersion: la.FeatureSchemaVersion,
		FeatureNames:         la.FeatureNames,
		Classes:              la.Classes,
		Hyperparameters:      la.Hyperparameters,
		TrainedAt:            la.TrainedAt,
		LoadedAt:             la.loadedAt,
	}, true
}

// Version returns the loaded model version, or "" when none is loaded.
func (c *Classifier) Version() string {
	if la := c.artifact.Load(); la != nil {
		return la.ModelVersion
	}
	return ""
}

// Predict scores a feature vector against the loaded artifact. Margins are
// accumulated per class over the boosted trees and squashed with softmax;
// the predicted level is the argmax class and the confidence its
// probability mass.
func (c *Classifier) Predict(v features.Vector) (*Prediction, error) {
	la := c.artifact.Load()
	if la == nil {
		return nil, ErrUnavailable
	}
	a := la.Artifact

	if len(v) != len(a.FeatureNames) {
		return nil, fmt.Errorf("%w: vector has %d features, model expects %d", ErrInference, len(v), len(a.FeatureNames))
	}

	margins := make([]float64, len(a.Classes))
	for i := range margins {
		margins[i] = a.BaseScore
	}
	for i := range a.Trees {
		tr := &a.Trees[i]
		leaf, err := tr.score(v)
		if err != nil {
			return nil, fmt.Errorf("%w: tree %d: %w", ErrInference, i, err)
		}
		margins[tr.Class] += leaf
	}

	probs := softmax(margins)

	best := 0
	for i := range probs {
		if probs[i] > probs[best] {
			best = i
		}
	}

	level, err := patient.ParseGravity(a.Classes[best])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInference, err)
	}

	byClass := make(map[string]float64, len(a.Classes))
	for i, cl := range a.Classes {
		byClass[cl] = probs[i]
	}

	return &Prediction{
		Level:         level,
		Confidence:    probs[best],
		Probabilities: byClass,
		ModelVersion:  a.ModelVersion,
	}, nil
}

// score walks the tree from the root to a leaf. Traversal is bounded by the
// node count to stay finite on a malformed (cyclic) tree.
func (t *Tree) score(v features.Vector) (float64, error) {
	idx := 0
	for steps := 0; steps <= len(t.Nodes); steps++ {
		n := &t.Nodes[idx]
		if n.Leaf {
			return n.Value, nil
		}
		if v[n.Feature] < n.Threshold {
			idx = n.Left
		} else {
			idx = n.Right
		}
	}
	return 0, fmt.Errorf("no leaf reached after %d steps", len(t.Nodes))
}

func softmax(margins []float64) []float64 {
	max := margins[0]
	for _, m := range margins[1:] {
		if m > max {
			max = m
		}
	}

	out := make([]float64, len(margins))
	var sum float64
	for i, m := range margins {
		out[i] = math.Exp(m - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
