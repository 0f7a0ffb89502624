// Package state archives evaluated solutions in SQLite.
//
// A Run groups the solutions evaluated against one dataset with one
// objective policy. Solutions keep their rendered expression, the
// function-call form that parses back into the same tree, their objective
// vector, ranking metadata, scaling coefficients and structural metrics, so
// a front can be reported without re-evaluating anything.
package state

import (
	"errors"
	"time"

	"github.com/leapstack-labs/symtree/pkg/core"
)

// ErrNotOpened is returned when the store is used before Open.
var ErrNotOpened = errors.New("database not opened")

// ErrNotFound is returned when a run or solution does not exist.
var ErrNotFound = errors.New("not found")

// Run is one evaluation session.
type Run struct {
	ID             string    `json:"id" yaml:"id"`
	Dataset        string    `json:"dataset" yaml:"dataset"`
	Rows           int       `json:"rows" yaml:"rows"`
	ObjectiveNames []string  `json:"objective_names" yaml:"objective_names"`
	Seed           uint64    `json:"seed" yaml:"seed"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
}

// Solution is an archived expression with its fitness.
type Solution struct {
	ID         string             `json:"id" yaml:"id"`
	RunID      string             `json:"run_id" yaml:"run_id"`
	Expression string             `json:"expression" yaml:"expression"`
	Call       string             `json:"call" yaml:"call"`
	Fitness    core.Fitness       `json:"fitness" yaml:"fitness"`
	Scaling    core.LinearScaling `json:"scaling" yaml:"scaling"`
	Size       int                `json:"size" yaml:"size"`
	Height     int                `json:"height" yaml:"height"`
	Complexity int                `json:"complexity" yaml:"complexity"`
	CreatedAt  time.Time          `json:"created_at" yaml:"created_at"`
}

// Store is the archive contract used by the CLI.
type Store interface {
	Open(path string) error
	Close() error
	Migrate() error

	CreateRun(dataset string, rows int, objectiveNames []string, seed uint64) (*Run, error)
	GetRun(id string) (*Run, error)
	LatestRun() (*Run, error)
	ListRuns(limit int) ([]*Run, error)

	SaveSolutions(runID string, solutions []*Solution) error
	ListSolutions(runID string) ([]*Solution, error)
	Front(runID string) ([]*Solution, error)
}
