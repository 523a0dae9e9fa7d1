// Package sink holds the scene writers fed by the exporter.
package sink

import (
	"sync"

	"github.com/mogaika/skelanim/anm"
	"github.com/mogaika/skelanim/morph"
)

// Collector keeps results in memory, safe for concurrent readers.
type Collector struct {
	mu        sync.RWMutex
	sequences []*anm.SequenceResult
	targets   []*morph.TargetResult
}

func (c *Collector) WriteSequence(res *anm.SequenceResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sequences = append(c.sequences, res)
	return nil
}

func (c *Collector) WriteMorphTarget(res *morph.TargetResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.targets = append(c.targets, res)
	return nil
}

func (c *Collector) Sequences() []*anm.SequenceResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*anm.SequenceResult(nil), c.sequences...)
}

func (c *Collector) MorphTargets() []*morph.TargetResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*morph.TargetResult(nil), c.targets...)
}

func (c *Collector) Sequence(name string) *anm.SequenceResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.sequences {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func (c *Collector) MorphTarget(name string) *morph.TargetResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.targets {
		if t.Name == name {
			return t
		}
	}
	return nil
}
