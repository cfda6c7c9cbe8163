package lexicon

import "slices"

// Trie is an in-memory lexicon over a rune trie.
type Trie struct {
	base
}

type trieNode struct {
	children map[rune]*trieNode
	entries  []Entry
}

type trieStorage struct {
	root  *trieNode
	count int
}

var _ Lexicon = (*Trie)(nil)

// NewTrie creates an empty in-memory lexicon.
func NewTrie(caseSensitive bool) *Trie {
	t := &Trie{}
	t.caseSensitive = caseSensitive
	t.st = &trieStorage{root: newTrieNode()}
	return t
}

func newTrieNode() *trieNode {
	return &trieNode{children: map[rune]*trieNode{}}
}

func (s *trieStorage) find(key string) *trieNode {
	cur := s.root
	for _, r := range key {
		next, ok := cur.children[r]
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

func (s *trieStorage) lookup(key string) []Entry {
	n := s.find(key)
	if n == nil || len(n.entries) == 0 {
		return nil
	}
	return slices.Clone(n.entries)
}

func (s *trieStorage) insert(key string, e Entry) error {
	cur := s.root
	for _, r := range key {
		next, ok := cur.children[r]
		if !ok {
			next = newTrieNode()
			cur.children[r] = next
		}
		cur = next
	}
	if len(cur.entries) == 0 {
		s.count++
	}
	cur.entries = append(cur.entries, e)
	return nil
}

// hasPrefix: a reachable node means some key continues through it.
func (s *trieStorage) hasPrefix(key string) bool {
	return s.find(key) != nil
}

func (s *trieStorage) keys() []string {
	out := make([]string, 0, s.count)
	var path []rune
	var walk func(n *trieNode)
	walk = func(n *trieNode) {
		if len(n.entries) > 0 {
			out = append(out, string(path))
		}
		runes := make([]rune, 0, len(n.children))
		for r := range n.children {
			runes = append(runes, r)
		}
		slices.Sort(runes)
		for _, r := range runes {
			path = append(path, r)
			walk(n.children[r])
			path = path[:len(path)-1]
		}
	}
	walk(s.root)
	return out
}

func (s *trieStorage) size() int { return s.count }
