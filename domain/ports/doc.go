// Package ports defines interfaces for the harness collaborators.
// These ports enable dependency inversion - the game loop and Player depend
// on abstractions, and infrastructure adapters (wazero, PRNG) implement them.
package ports
