package graph

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/tristendillon/depcheck/core/logger"
	"github.com/tristendillon/depcheck/core/models"
)

var ErrCyclic = errors.New("module graph contains cycles")

// Node is one project file in the local module graph.
type Node struct {
	FilePath     string   `json:"file_path"`
	Dependencies []string `json:"dependencies"` // files this imports
	Dependents   []string `json:"dependents"`   // files that import this
}

// Graph holds the import edges between project files. Package imports and
// unresolved references are not part of it.
type Graph struct {
	nodes map[string]*Node
	mutex sync.RWMutex
}

func New() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// FromReport builds the graph from every resolved reference that matched a
// project file.
func FromReport(report *models.ScanReport) *Graph {
	g := New()
	for _, ref := range report.ResolvedReferences {
		g.ensure(ref.SourceFile)
		if ref.Target == "" || ref.Target == ref.SourceFile {
			continue
		}
		g.addEdge(ref.SourceFile, ref.Target)
	}
	for _, ref := range report.UnresolvedReferences {
		g.ensure(ref.SourceFile)
	}
	for _, node := range g.nodes {
		sort.Strings(node.Dependencies)
		sort.Strings(node.Dependents)
	}

	logger.Debug("Graph: Built graph with %d nodes", len(g.nodes))
	return g
}

func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.nodes)
}

// GetNode returns a copy of the node for filePath.
func (g *Graph) GetNode(filePath string) (Node, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	node, exists := g.nodes[filePath]
	if !exists {
		return Node{}, false
	}
	return Node{
		FilePath:     node.FilePath,
		Dependencies: append([]string(nil), node.Dependencies...),
		Dependents:   append([]string(nil), node.Dependents...),
	}, true
}

// GetDependents returns every file that imports filePath directly or
// through other project files, sorted.
func (g *Graph) GetDependents(filePath string) []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	visited := map[string]bool{filePath: true}
	var affected []string
	g.visitDependents(filePath, visited, &affected)

	sort.Strings(affected)
	return affected
}

func (g *Graph) visitDependents(filePath string, visited map[string]bool, affected *[]string) {
	node, exists := g.nodes[filePath]
	if !exists {
		return
	}
	for _, dependent := range node.Dependents {
		if visited[dependent] {
			continue
		}
		visited[dependent] = true
		*affected = append(*affected, dependent)
		g.visitDependents(dependent, visited, affected)
	}
}

// DetectCycles returns the import cycles found by a depth-first walk from
// every file in lexical order. Each cycle appears once, rotated so that its
// lexically smallest file comes first.
func (g *Graph) DetectCycles() [][]string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	var cycles [][]string
	seen := make(map[string]bool)
	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	var visit func(filePath string, stack []string)
	visit = func(filePath string, stack []string) {
		visited[filePath] = true
		onStack[filePath] = true
		stack = append(stack, filePath)

		if node, ok := g.nodes[filePath]; ok {
			for _, dep := range node.Dependencies {
				if onStack[dep] {
					cycle := canonicalCycle(stack, dep)
					key := strings.Join(cycle, "\x00")
					if !seen[key] {
						seen[key] = true
						cycles = append(cycles, cycle)
					}
					continue
				}
				if !visited[dep] {
					visit(dep, stack)
				}
			}
		}

		onStack[filePath] = false
	}

	for _, filePath := range g.sortedPaths() {
		if !visited[filePath] {
			visit(filePath, nil)
		}
	}

	sort.Slice(cycles, func(i, j int) bool {
		return strings.Join(cycles[i], "\x00") < strings.Join(cycles[j], "\x00")
	})
	if len(cycles) > 0 {
		logger.Debug("Graph: Detected %d cycles", len(cycles))
	}
	return cycles
}

// TopologicalOrder lists files so that every file comes after the files it
// imports. Ties are broken lexically.
func (g *Graph) TopologicalOrder() ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// Kahn's algorithm over the import edges
	pending := make(map[string]int, len(g.nodes))
	var queue []string
	for _, filePath := range g.sortedPaths() {
		pending[filePath] = len(g.nodes[filePath].Dependencies)
		if pending[filePath] == 0 {
			queue = append(queue, filePath)
		}
	}

	result := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, current)

		var ready []string
		for _, dependent := range g.nodes[current].Dependents {
			pending[dependent]--
			if pending[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
		sort.Strings(ready)
		queue = append(queue, ready...)
	}

	if len(result) != len(g.nodes) {
		return nil, ErrCyclic
	}
	return result, nil
}

// ensure returns the node for filePath, creating it. Caller must lock.
func (g *Graph) ensure(filePath string) *Node {
	node, exists := g.nodes[filePath]
	if !exists {
		node = &Node{FilePath: filePath}
		g.nodes[filePath] = node
	}
	return node
}

// addEdge records from -> to once. Caller must lock.
func (g *Graph) addEdge(from, to string) {
	src := g.ensure(from)
	dst := g.ensure(to)
	for _, existing := range src.Dependencies {
		if existing == to {
			return
		}
	}
	src.Dependencies = append(src.Dependencies, to)
	dst.Dependents = append(dst.Dependents, from)
}

func (g *Graph) sortedPaths() []string {
	paths := make([]string, 0, len(g.nodes))
	for filePath := range g.nodes {
		paths = append(paths, filePath)
	}
	sort.Strings(paths)
	return paths
}

// canonicalCycle cuts the cycle starting at start out of stack and rotates it.
func canonicalCycle(stack []string, start string) []string {
	from := 0
	for i, p := range stack {
		if p == start {
			from = i
			break
		}
	}
	cycle := append([]string(nil), stack[from:]...)

	smallest := 0
	for i, p := range cycle {
		if p < cycle[smallest] {
			smallest = i
		}
	}
	rotated := make([]string, 0, len(cycle))
	rotated = append(rotated, cycle[smallest:]...)
	return append(rotated, cycle[:smallest]...)
}
