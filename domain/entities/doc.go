// Package entities provides the core domain entities of the guessing harness.
// These types cross package boundaries: the game produces GuessResult values,
// the game loop produces RunReport values, and both carry ErrorDetail.
package entities
