package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"salesapi/models"
)

// KindObliviousTrees identifies a regressor artifact.
const KindObliviousTrees = "oblivious_trees"

// maxTreeDepth bounds leaf tables to 2^16 entries.
const maxTreeDepth = 16

// TreeSplit is one level of an oblivious tree. Exactly one of Border or
// Equals is set: numeric columns test value > Border, categorical columns
// test value == Equals.
type TreeSplit struct {
	Feature string   `json:"feature"`
	Border  *float64 `json:"border,omitempty"`
	Equals  *string  `json:"equals,omitempty"`
}

// ObliviousTree applies the same split at every node of a level, so the leaf
// is addressed by one bit per split.
type ObliviousTree struct {
	Splits     []TreeSplit `json:"splits"`
	LeafValues []float64   `json:"leaf_values"`
}

type treeEnsembleArtifact struct {
	Kind  string          `json:"kind"`
	Bias  float64         `json:"bias"`
	Scale *float64        `json:"scale,omitempty"`
	Trees []ObliviousTree `json:"trees"`
}

// TreeEnsemble is a gradient-boosted regressor made of oblivious trees.
type TreeEnsemble struct {
	bias  float64
	scale float64
	trees []ObliviousTree
}

// NewTreeEnsemble validates trees and returns a regressor.
func NewTreeEnsemble(trees []ObliviousTree, scale, bias float64) (*TreeEnsemble, error) {
	if len(trees) == 0 {
		return nil, errors.New("tree ensemble has no trees")
	}
	for i, t := range trees {
		if err := validateTree(t); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return &TreeEnsemble{bias: bias, scale: scale, trees: trees}, nil
}

// ReadTreeEnsemble decodes an oblivious_trees JSON artifact.
func ReadTreeEnsemble(r io.Reader) (*TreeEnsemble, error) {
	var a treeEnsembleArtifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode regressor artifact: %w", err)
	}
	if a.Kind != KindObliviousTrees {
		return nil, fmt.Errorf("regressor artifact kind %q, want %q", a.Kind, KindObliviousTrees)
	}
	scale := 1.0
	if a.Scale != nil {
		scale = *a.Scale
	}
	return NewTreeEnsemble(a.Trees, scale, a.Bias)
}

func validateTree(t ObliviousTree) error {
	depth := len(t.Splits)
	if depth > maxTreeDepth {
		return fmt.Errorf("depth %d exceeds %d", depth, maxTreeDepth)
	}
	if want := 1 << depth; len(t.LeafValues) != want {
		return fmt.Errorf("%d splits need %d leaf values, got %d", depth, want, len(t.LeafValues))
	}
	for j, s := range t.Splits {
		switch {
		case s.Border != nil && s.Equals != nil:
			return fmt.Errorf("split %d on %q sets both border and equals", j, s.Feature)
		case s.Border != nil:
			if !models.IsNumericColumn(s.Feature) {
				return fmt.Errorf("split %d: %q is not a numeric feature", j, s.Feature)
			}
		case s.Equals != nil:
			if !models.IsCategoricalColumn(s.Feature) {
				return fmt.Errorf("split %d: %q is not a categorical feature", j, s.Feature)
			}
		default:
			return fmt.Errorf("split %d on %q sets neither border nor equals", j, s.Feature)
		}
	}
	return nil
}

// Predict implements Regressor.
func (e *TreeEnsemble) Predict(ctx context.Context, rows []models.FeatureRow) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = e.predictRow(row)
	}
	return out, nil
}

func (e *TreeEnsemble) predictRow(row models.FeatureRow) float64 {
	var sum float64
	for _, t := range e.trees {
		sum += t.LeafValues[t.leafIndex(row)]
	}
	return e.scale*sum + e.bias
}

func (t ObliviousTree) leafIndex(row models.FeatureRow) int {
	idx := 0
	for bit, s := range t.Splits {
		if s.matches(row) {
			idx |= 1 << bit
		}
	}
	return idx
}

func (s TreeSplit) matches(row models.FeatureRow) bool {
	if s.Border != nil {
		v, _ := row.Numeric(s.Feature)
		return v > *s.Border
	}
	v, _ := row.Categorical(s.Feature)
	return v == *s.Equals
}
