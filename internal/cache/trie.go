// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package cache

import (
	"sort"
	"strings"
	"sync"
)

const defaultMaxSuggestions = 10

type trieNode struct {
	children map[rune]*trieNode
	terminal bool
	value    string
	weight   int
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[rune]*trieNode)}
}

// Suggestion is one autocomplete result.
type Suggestion struct {
	Value  string `json:"value"`
	Weight int    `json:"weight"`
}

// Trie is a case-insensitive prefix tree of dish names. Each insert of an
// existing name raises its weight, so frequently searched dishes rank first.
type Trie struct {
	mu   sync.RWMutex
	root *trieNode
	size int
}

// NewTrie returns an empty trie.
func NewTrie() *Trie {
	return &Trie{root: newTrieNode()}
}

func normalizeTrieKey(s string) []rune {
	return []rune(strings.ToLower(strings.TrimSpace(s)))
}

// Insert adds value with weight 1, or bumps an existing value's weight.
// It reports whether value was new.
func (t *Trie) Insert(value string) bool {
	return t.InsertWeighted(value, 1)
}

// InsertWeighted adds weight to value. The first spelling inserted is the one
// returned by suggestions.
func (t *Trie) InsertWeighted(value string, weight int) bool {
	key := normalizeTrieKey(value)
	if len(key) == 0 {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	node := t.root
	for _, r := range key {
		child := node.children[r]
		if child == nil {
			child = newTrieNode()
			node.children[r] = child
		}
		node = child
	}

	isNew := !node.terminal
	if isNew {
		node.terminal = true
		node.value = strings.TrimSpace(value)
		t.size++
	}
	node.weight += weight
	return isNew
}

// Contains reports whether value was inserted.
func (t *Trie) Contains(value string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	node := t.find(normalizeTrieKey(value))
	return node != nil && node.terminal
}

// Suggest returns up to limit values starting with prefix, ordered by weight
// then alphabetically. An empty prefix returns the heaviest values overall.
func (t *Trie) Suggest(prefix string, limit int) []Suggestion {
	if limit <= 0 {
		limit = defaultMaxSuggestions
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	node := t.find(normalizeTrieKey(prefix))
	if node == nil {
		return nil
	}

	var out []Suggestion
	collect(node, &out)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Delete removes value and prunes empty branches.
func (t *Trie) Delete(value string) bool {
	key := normalizeTrieKey(value)
	if len(key) == 0 {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	path := make([]*trieNode, 0, len(key)+1)
	node := t.root
	path = append(path, node)
	for _, r := range key {
		node = node.children[r]
		if node == nil {
			return false
		}
		path = append(path, node)
	}
	if !node.terminal {
		return false
	}

	node.terminal = false
	node.value = ""
	node.weight = 0
	t.size--

	for i := len(key) - 1; i >= 0; i-- {
		child := path[i+1]
		if child.terminal || len(child.children) > 0 {
			break
		}
		delete(path[i].children, key[i])
	}
	return true
}

// Size returns the number of distinct values.
func (t *Trie) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.size
}

func (t *Trie) find(key []rune) *trieNode {
	node := t.root
	for _, r := range key {
		node = node.children[r]
		if node == nil {
			return nil
		}
	}
	return node
}

func collect(node *trieNode, out *[]Suggestion) {
	if node.terminal {
		*out = append(*out, Suggestion{Value: node.value, Weight: node.weight})
	}
	for _, child := range node.children {
		collect(child, out)
	}
}
