package registry

import "github.com/papapumpkin/modeshift/internal/plan"

// Result is the outcome of checking a registry against a contract.
type Result struct {
	RequiredSatisfied bool
	MissingRequired   []string
	MissingOptional   []string
}

// Validate checks the registry for presence of every required and
// optional service named by the contract. It is pure: neither input is
// mutated and no I/O happens here.
func Validate(reg *Registry, contract plan.Contract) Result {
	res := Result{}
	for _, name := range contract.Required {
		if !reg.Has(name) {
			res.MissingRequired = append(res.MissingRequired, name)
		}
	}
	for _, name := range contract.Optional {
		if !reg.Has(name) {
			res.MissingOptional = append(res.MissingOptional, name)
		}
	}
	res.RequiredSatisfied = len(res.MissingRequired) == 0
	return res
}
