// Package sidecar reads and writes YAML sidecar documents: a portable
// snapshot of one item's history stack and masks, stored next to the
// item's file so edits survive catalog loss and travel with the image.
package sidecar

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tmoravec/pastiche/internal/hist"
)

// FormatVersion is the sidecar document version this package writes.
const FormatVersion = 1

// Document is a full sidecar snapshot.
type Document struct {
	Version            int     `yaml:"version"`
	ActiveLength       int     `yaml:"active_length"`
	AutoPresetsApplied bool    `yaml:"auto_presets_applied,omitempty"`
	History            []Entry `yaml:"history"`
	Masks              []Mask  `yaml:"masks,omitempty"`
}

// Entry mirrors hist.Entry with YAML field names. Byte payloads are
// encoded by the YAML library as !!binary (base64).
type Entry struct {
	Seq           int    `yaml:"seq"`
	Operation     string `yaml:"operation"`
	Instance      int    `yaml:"instance"`
	InstanceLabel string `yaml:"instance_label,omitempty"`
	Enabled       bool   `yaml:"enabled"`
	Params        []byte `yaml:"params,omitempty"`
	BlendParams   []byte `yaml:"blend_params,omitempty"`
	BlendVersion  int    `yaml:"blend_version,omitempty"`
}

// Mask mirrors hist.Mask with YAML field names.
type Mask struct {
	FormID      int64  `yaml:"form_id"`
	Form        int    `yaml:"form"`
	Name        string `yaml:"name,omitempty"`
	Version     int    `yaml:"version,omitempty"`
	Points      []byte `yaml:"points,omitempty"`
	PointsCount int    `yaml:"points_count,omitempty"`
	Source      []byte `yaml:"source,omitempty"`
}

// Load reads and validates a sidecar document.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sidecar: %w", err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse sidecar: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, fmt.Errorf("invalid sidecar: %w", err)
	}
	return &doc, nil
}

// Write marshals a document to path, overwriting any existing file.
func Write(path string, doc *Document) error {
	if doc.Version == 0 {
		doc.Version = FormatVersion
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal sidecar: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write sidecar: %w", err)
	}
	return nil
}

func (d *Document) validate() error {
	if d.Version <= 0 || d.Version > FormatVersion {
		return fmt.Errorf("unsupported version %d", d.Version)
	}
	for i, e := range d.History {
		if e.Operation == "" {
			return fmt.Errorf("history[%d]: operation is required", i)
		}
		if e.Instance < 0 {
			return fmt.Errorf("history[%d]: negative instance", i)
		}
	}
	if d.ActiveLength < 0 || d.ActiveLength > len(d.History) {
		return errors.New("active_length out of range")
	}
	return nil
}

// HistoryEntries converts the document's history to hist values in
// document order. The unnamed sentinel is restored for entries whose
// label was omitted.
func (d *Document) HistoryEntries() []hist.Entry {
	entries := make([]hist.Entry, 0, len(d.History))
	for _, e := range d.History {
		label := e.InstanceLabel
		if label == "" {
			label = hist.UnnamedLabel
		}
		entries = append(entries, hist.Entry{
			Seq:           e.Seq,
			Operation:     e.Operation,
			Instance:      e.Instance,
			InstanceLabel: label,
			Enabled:       e.Enabled,
			Params:        e.Params,
			BlendParams:   e.BlendParams,
			BlendVersion:  e.BlendVersion,
		})
	}
	return entries
}

// MaskEntries converts the document's masks to hist values.
func (d *Document) MaskEntries() []hist.Mask {
	masks := make([]hist.Mask, 0, len(d.Masks))
	for _, m := range d.Masks {
		masks = append(masks, hist.Mask{
			FormID:      m.FormID,
			Form:        m.Form,
			Name:        m.Name,
			Version:     m.Version,
			Points:      m.Points,
			PointsCount: m.PointsCount,
			Source:      m.Source,
		})
	}
	return masks
}

// FromStack builds a document from stored history state. Unnamed
// labels are omitted from the file for readability.
func FromStack(entries []hist.Entry, masks []hist.Mask, activeLength int, autoPresets bool) *Document {
	doc := &Document{
		Version:            FormatVersion,
		ActiveLength:       activeLength,
		AutoPresetsApplied: autoPresets,
		History:            make([]Entry, 0, len(entries)),
		Masks:              make([]Mask, 0, len(masks)),
	}
	for _, e := range entries {
		label := e.InstanceLabel
		if label == hist.UnnamedLabel {
			label = ""
		}
		doc.History = append(doc.History, Entry{
			Seq:           e.Seq,
			Operation:     e.Operation,
			Instance:      e.Instance,
			InstanceLabel: label,
			Enabled:       e.Enabled,
			Params:        e.Params,
			BlendParams:   e.BlendParams,
			BlendVersion:  e.BlendVersion,
		})
	}
	for _, m := range masks {
		doc.Masks = append(doc.Masks, Mask{
			FormID:      m.FormID,
			Form:        m.Form,
			Name:        m.Name,
			Version:     m.Version,
			Points:      m.Points,
			PointsCount: m.PointsCount,
			Source:      m.Source,
		})
	}
	return doc
}
