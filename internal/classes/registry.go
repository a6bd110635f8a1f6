package classes

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fiscal/internal/model"
)

// Registry is an immutable lookup over depreciation classes.
// Build one with NewRegistry and pass it to whatever needs rates.
type Registry struct {
	classes []model.DepreciationClass
	byID    map[string]model.DepreciationClass
}

// NewRegistry creates a Registry from a class table. Duplicate IDs and rates
// outside (0, 1] are rejected.
func NewRegistry(classes []model.DepreciationClass) (*Registry, error) {
	byID := make(map[string]model.DepreciationClass, len(classes))
	own := make([]model.DepreciationClass, 0, len(classes))
	for _, c := range classes {
		if c.ID == "" {
			return nil, fmt.Errorf("depreciation class with empty ID")
		}
		if _, dup := byID[c.ID]; dup {
			return nil, fmt.Errorf("duplicate depreciation class %q", c.ID)
		}
		if !c.Rate.IsPositive() || c.Rate.GreaterThan(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("class %q: rate %s outside (0, 1]", c.ID, c.Rate)
		}
		byID[c.ID] = c
		own = append(own, c)
	}
	return &Registry{classes: own, byID: byID}, nil
}

// Default returns a Registry over DefaultClasses.
func Default() *Registry {
	r, err := NewRegistry(DefaultClasses())
	if err != nil {
		panic("default class table: " + err.Error())
	}
	return r
}

// Load reads classes/cca-classes.csv from a project root and returns a Registry.
func Load(root string) (*Registry, error) {
	f, err := os.Open(filePath(root))
	if err != nil {
		return nil, fmt.Errorf("opening class table: %w", err)
	}
	defer f.Close()

	cls, err := ReadClasses(f)
	if err != nil {
		return nil, fmt.Errorf("reading class table: %w", err)
	}
	return NewRegistry(cls)
}

// Get returns the class with the given ID.
func (r *Registry) Get(classID string) (model.DepreciationClass, error) {
	c, ok := r.byID[classID]
	if !ok {
		return model.DepreciationClass{}, fmt.Errorf("%w: %q", model.ErrClassNotFound, classID)
	}
	return c, nil
}

// Rate returns the annual rate of a class.
func (r *Registry) Rate(classID string) (decimal.Decimal, error) {
	c, err := r.Get(classID)
	if err != nil {
		return decimal.Zero, err
	}
	return c.Rate, nil
}

// Description returns the human description of a class.
func (r *Registry) Description(classID string) (string, error) {
	c, err := r.Get(classID)
	if err != nil {
		return "", err
	}
	return c.Description, nil
}

// Exists reports whether a class ID is known.
func (r *Registry) Exists(classID string) bool {
	_, ok := r.byID[classID]
	return ok
}

// All returns every class in table order. The slice is a copy.
func (r *Registry) All() []model.DepreciationClass {
	out := make([]model.DepreciationClass, len(r.classes))
	copy(out, r.classes)
	return out
}

// Save writes the class table to classes/cca-classes.csv.
func (r *Registry) Save(root string) error {
	path := filePath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating classes dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating class table file: %w", err)
	}
	defer f.Close()

	if err := WriteClasses(f, r.classes); err != nil {
		return fmt.Errorf("writing class table: %w", err)
	}
	return nil
}

func filePath(root string) string {
	return filepath.Join(root, "classes", "cca-classes.csv")
}
