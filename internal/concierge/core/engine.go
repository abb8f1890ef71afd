package core

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrUnknownFlow = errors.New("unsupported flow")
	// ErrStop ends a flow early without failing it.
	ErrStop = errors.New("stop flow")
)

type Step struct {
	Name    string
	Execute func(ctx *ConciergeContext) error
}

func NewStep(name string, execute func(ctx *ConciergeContext) error) *Step {
	return &Step{
		Name:    name,
		Execute: execute,
	}
}

type Flow struct {
	Name  string
	Steps []*Step
}

func NewFlow(name string, steps ...*Step) *Flow {
	return &Flow{Name: name, Steps: steps}
}

// StepError names the step that stopped the pipeline.
type StepError struct {
	Flow string
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s step failed, %s pipeline errored: %s", e.Step, e.Flow, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

type Engine struct {
	flows map[string]*Flow
}

func NewEngine(flows ...*Flow) *Engine {
	m := map[string]*Flow{}
	for _, f := range flows {
		m[f.Name] = f
	}
	return &Engine{flows: m}
}


func (e *Engine) Run(flowName string, ctx *ConciergeContext) error {
	f, exists := e.flows[flowName]
	if !exists {
		return fmt.Errorf("%w: %v", ErrUnknownFlow, flowName)
	}
	for _, step := range f.Steps {
		if err := step.Execute(ctx); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return &StepError{Flow: flowName, Step: step.Name, Err: err}
		}
	}
	return nil
}

func (e *Engine) Has(flowName string) bool {
	_, ok := e.flows[flowName]
	return ok
}

func (e *Engine) Flows() []string {
	names := make([]string, 0, len(e.flows))
	for name := range e.flows {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

