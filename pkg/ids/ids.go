// Package ids generates record ids: a snowflake (millisecond timestamp, node
// number, sequence) rendered in base 36.
package ids

import (
	"fmt"
	"math/rand"

	"github.com/bwmarrin/snowflake"
)

// Generator is safe for concurrent use.
type Generator struct {
	node *snowflake.Node
}

// New builds a generator for node. A negative node picks a random one, which
// keeps two processes sharing a store from colliding in practice.
func New(node int64) (*Generator, error) {
	if node < 0 {
		node = rand.Int63n(1 << snowflake.NodeBits)
	}
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("ids: node %d: %w", node, err)
	}
	return &Generator{node: n}, nil
}

// MustNew is New for static wiring; it panics on an invalid node.
func MustNew(node int64) *Generator {
	g, err := New(node)
	if err != nil {
		panic(err)
	}
	return g
}

// Next returns a fresh id.
func (g *Generator) Next() string {
	return g.node.Generate().Base36()
}
